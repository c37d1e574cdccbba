// Package synth is the non-parametric neighborhood-matching image
// synthesizer: given a packed pixel buffer, a selection mask, and a
// format, it fills the masked region with pixels drawn from the
// unmasked region so that every local neighborhood in the filled
// region statistically matches some neighborhood in the corpus.
//
// This is the engine's entry point — the collaborator contract of
// spec.md §6, gluing setup, refiner, and progress/cancel together.
package synth

import (
	"errors"
	"fmt"

	"github.com/resynth/resynth/internal/synth/params"
	"github.com/resynth/resynth/internal/synth/pixmap"
	"github.com/resynth/resynth/internal/synth/prober"
	"github.com/resynth/resynth/internal/synth/progress"
	"github.com/resynth/resynth/internal/synth/refiner"
	"github.com/resynth/resynth/internal/synth/setup"
)

// ErrorCode mirrors the legacy integer ABI of spec.md §7/§6 while
// staying a normal Go error.
type ErrorCode int

const (
	OK ErrorCode = iota
	EmptyCorpusCode
	EmptyTargetCode
	MaskGeometryMismatchCode
	InvalidParametersCode
	CancelledCode
)

func (c ErrorCode) String() string {
	switch c {
	case OK:
		return "ok"
	case EmptyCorpusCode:
		return "empty corpus"
	case EmptyTargetCode:
		return "empty target"
	case MaskGeometryMismatchCode:
		return "mask geometry mismatch"
	case InvalidParametersCode:
		return "invalid parameters"
	case CancelledCode:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown error code %d", int(c))
	}
}

// Error wraps an ErrorCode as a Go error.
type Error struct {
	Code ErrorCode
	Err  error
}

func (e *Error) Error() string { return e.Code.String() + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Buffer describes a packed pixel buffer: bytes mutated in place,
// with explicit width/height/rowBytes (spec.md §6).
type Buffer struct {
	Bytes    []byte
	Width    int
	Height   int
	RowBytes int
}

// Mask describes a one-pixelel-per-pixel selection mask, same
// geometry convention as Buffer.
type Mask struct {
	Bytes    []byte
	Width    int
	Height   int
	RowBytes int
}

// ProgressFunc is called on integer percent advances.
type ProgressFunc func(percent int, context any)

// Options bundles the optional collaborator-facing knobs of the entry
// point (spec.md §6): parameters, progress callback + context, and a
// cooperative cancel flag.
type Options struct {
	Parameters *params.Parameters // nil selects params.Default()
	Progress   ProgressFunc
	Context    any
	CancelFlag *int32

	// OnPassComplete, if set, surfaces refiner.PassStats after every
	// pass (debug/verbose tooling; not part of the base ABI).
	OnPassComplete func(refiner.PassStats)

	// OnSynthesized, if set, is called once synthesis finishes (whether
	// it ran to completion or was cancelled) with the setup result the
	// refiner operated on, before the buffer is copied back to the
	// caller's row pitch. Debug tooling (--dump-maps) uses this to hex
	// dump hasValueMap/sourceOfMap the way Test.cpp's dumpBuffer/dumpImage
	// inspected the engine's working maps; not part of the base ABI.
	OnSynthesized func(*setup.Result)
}

// Result reports what happened, for callers that want more than the
// mutated buffer: which ErrorCode applies, and (on success or
// cancellation) how many passes ran.
type Result struct {
	Code      ErrorCode
	PassesRun int
	Cancelled bool
}

// Synthesize fills buf's masked region in place. It is the Go
// counterpart of the original imageSynth(buffer, mask, format,
// parameters, progressCb, context, cancelFlag) entry point.
func Synthesize(buf *Buffer, mask *Mask, format pixmap.Format, opts Options) (Result, error) {
	if mask.Width != buf.Width || mask.Height != buf.Height {
		return Result{Code: MaskGeometryMismatchCode}, &Error{
			Code: MaskGeometryMismatchCode,
			Err:  setup.ErrMaskGeometryMismatch,
		}
	}

	p := params.Default()
	if opts.Parameters != nil {
		p = *opts.Parameters
	}
	if err := p.Validate(); err != nil {
		return Result{Code: InvalidParametersCode}, &Error{Code: InvalidParametersCode, Err: err}
	}
	p = p.EffectiveParameters(buf.Width, buf.Height)

	ix := pixmap.IndicesForFormat(format)
	if p.HasMapChannel {
		ix = ix.WithMapChannel()
	}

	built, err := setup.Build(buf.Width, buf.Height, buf.Bytes, buf.RowBytes, mask.Bytes, mask.RowBytes, ix, p)
	if err != nil {
		return Result{Code: codeForSetupError(err)}, &Error{Code: codeForSetupError(err), Err: err}
	}

	// Workers is already resolved to a concrete, positive value by
	// EffectiveParameters above.
	workers := p.Workers

	bestDistance := prober.NewBestDistanceSlice(buf.Width, buf.Height)

	var reporter *progress.Reporter
	if opts.Progress != nil {
		reporter = progress.New(refiner.EstimatePixelsToSynth(built.TargetPoints.Len()),
			func(pct int, ctx any) { opts.Progress(pct, ctx) }, opts.Context)
	}

	rf := &refiner.Refiner{
		Width: buf.Width, Height: buf.Height,
		ThreadLimit:  workers,
		TargetPoints: built.TargetPoints,
		Progress:     reporter,
		CancelFlag:   opts.CancelFlag,
		NewProber: func(threadIndex int) *prober.Prober {
			return prober.New(threadIndex, built.PRNG.Derive(threadIndex), p.Trys, buf.Width, buf.Height, bestDistance, prober.Resources{
				TargetMap:        built.TargetMap,
				HasValueMap:      built.HasValueMap,
				SourceOfMap:      built.SourceOfMap,
				RecentProberMap:  built.RecentProberMap,
				CorpusPoints:     built.CorpusPoints,
				SortedOffsets:    built.SortedOffsets,
				Tables:           built.Tables,
				Indices:          built.Indices,
				WrapHorizontal:   p.MakeSeamlesslyTileableHorizontally,
				WrapVertical:     p.MakeSeamlesslyTileableVertically,
				MatchContextType: p.MatchContextType,
			})
		},
		OnPassComplete: opts.OnPassComplete,
	}

	passesRun, cancelled := rf.Run()

	if opts.OnSynthesized != nil {
		opts.OnSynthesized(built)
	}

	copyTightToRows(buf, built.TargetMap)

	if cancelled {
		return Result{Code: CancelledCode, PassesRun: passesRun, Cancelled: true},
			&Error{Code: CancelledCode, Err: errCancelled}
	}
	return Result{Code: OK, PassesRun: passesRun}, nil
}

var errCancelled = errors.New("resynth: synthesis cancelled")

func codeForSetupError(err error) ErrorCode {
	switch {
	case errors.Is(err, setup.ErrEmptyCorpus):
		return EmptyCorpusCode
	case errors.Is(err, setup.ErrEmptyTarget):
		return EmptyTargetCode
	case errors.Is(err, setup.ErrMaskGeometryMismatch):
		return MaskGeometryMismatchCode
	default:
		return InvalidParametersCode
	}
}

// copyTightToRows writes the engine's tightly packed working map back
// into buf's original row pitch (which may include trailing padding
// bytes, per spec.md §3's PixelMap row-pitch convention).
func copyTightToRows(buf *Buffer, tm *pixmap.PixelMap) {
	rowPitch := tm.Width * tm.PixelelsPerPixel
	for y := 0; y < tm.Height; y++ {
		copy(buf.Bytes[y*buf.RowBytes:y*buf.RowBytes+rowPitch], tm.Bytes[y*rowPitch:y*rowPitch+rowPitch])
	}
}
