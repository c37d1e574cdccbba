// Package progress implements the refiner's progress reporting: an
// atomic pixel counter, a mutex-guarded "last reported percent" to
// avoid redundant callbacks, and the user callback itself — replacing
// the original engine's nested-function callback capturing parent
// locals (see Design Notes: "model as a small progress object").
package progress

import (
	"sync"
	"sync/atomic"
)

// CallbackChunk is how many completed target pixels accumulate before
// a worker folds them into the shared counter (spec.md §4.3: "in
// fixed chunks (e.g. 4096)").
const CallbackChunk = 4096

// Callback receives the current percent complete (0-100) and the
// opaque context value supplied to Reporter.
type Callback func(percent int, context any)

// Reporter aggregates progress across workers and invokes Callback at
// most once per integer percent advance. Safe for concurrent use by
// multiple workers.
type Reporter struct {
	completed int64 // atomic
	estimated int64

	mu           sync.Mutex
	priorPercent int
	callback     Callback
	context      any
}

// New creates a Reporter targeting estimatedTotal pixels.
func New(estimatedTotal int64, cb Callback, context any) *Reporter {
	if cb == nil {
		cb = func(int, any) {}
	}
	return &Reporter{estimated: estimatedTotal, callback: cb, context: context}
}

// AddCompleted folds n newly completed pixels into the shared counter
// and invokes the callback if the integer percent advanced. Workers
// call this with n == CallbackChunk after every chunk of visited
// target pixels, and once with any remainder at the end of a pass.
func (r *Reporter) AddCompleted(n int64) {
	completed := atomic.AddInt64(&r.completed, n)
	if r.estimated <= 0 {
		return
	}
	percent := int(float64(completed) / float64(r.estimated) * 100)

	r.mu.Lock()
	defer r.mu.Unlock()
	if percent > r.priorPercent {
		r.priorPercent = percent
		r.callback(percent, r.context)
	}
}

// Completed returns the current completed-pixel count.
func (r *Reporter) Completed() int64 { return atomic.LoadInt64(&r.completed) }
