// Package points implements PointSequence: an ordered list of (x, y)
// coordinates grown by append during setup, then shuffled once, then
// read-only — replacing the original engine's hand-rolled growable
// array (see Design Notes: typed sequence per element kind, no
// generic "any" container).
package points

import "github.com/resynth/resynth/internal/synth/prng"

// Point is an image-space coordinate.
type Point struct {
	X, Y int
}

// Sequence is an ordered, append-then-shuffle-then-read-only list of
// points. Two instances are used per synthesis: targetPoints (pixels
// to synthesize) and corpusPoints (legitimate source pixels).
type Sequence struct {
	pts    []Point
	frozen bool
}

// NewSequence creates an empty sequence with capacity hint n.
func NewSequence(capacityHint int) *Sequence {
	return &Sequence{pts: make([]Point, 0, capacityHint)}
}

// Append adds a point. Panics if called after Shuffle, enforcing the
// append-then-read-only discipline.
func (s *Sequence) Append(p Point) {
	if s.frozen {
		panic("points: Append after Shuffle")
	}
	s.pts = append(s.pts, p)
}

// Len returns the number of points.
func (s *Sequence) Len() int { return len(s.pts) }

// At returns the i'th point in shuffled (or append) order.
func (s *Sequence) At(i int) Point { return s.pts[i] }

// Shuffle randomly permutes the sequence in place using the given
// PRNG (Fisher-Yates) and freezes it against further Append calls.
func (s *Sequence) Shuffle(r *prng.PRNG) {
	for i := len(s.pts) - 1; i > 0; i-- {
		j := r.IntInRange(0, i+1)
		s.pts[i], s.pts[j] = s.pts[j], s.pts[i]
	}
	s.frozen = true
}

// Slice returns the underlying points as a plain slice, read-only by
// convention (callers must not mutate it).
func (s *Sequence) Slice() []Point { return s.pts }
