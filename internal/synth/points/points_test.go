package points

import (
	"testing"

	"github.com/resynth/resynth/internal/synth/prng"
)

func TestAppendThenShufflePreservesMembership(t *testing.T) {
	s := NewSequence(4)
	want := []Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	for _, p := range want {
		s.Append(p)
	}

	s.Shuffle(prng.New(1))

	if s.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(want))
	}
	seen := map[Point]bool{}
	for i := 0; i < s.Len(); i++ {
		seen[s.At(i)] = true
	}
	for _, p := range want {
		if !seen[p] {
			t.Fatalf("shuffled sequence lost point %+v", p)
		}
	}
}

func TestAppendAfterShufflePanics(t *testing.T) {
	s := NewSequence(1)
	s.Append(Point{0, 0})
	s.Shuffle(prng.New(1))

	defer func() {
		if recover() == nil {
			t.Fatal("expected Append after Shuffle to panic")
		}
	}()
	s.Append(Point{1, 1})
}

func TestShuffleDeterministicForFixedSeed(t *testing.T) {
	build := func() *Sequence {
		s := NewSequence(10)
		for i := 0; i < 10; i++ {
			s.Append(Point{X: i, Y: 0})
		}
		return s
	}

	a := build()
	a.Shuffle(prng.New(7))
	b := build()
	b.Shuffle(prng.New(7))

	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			t.Fatalf("shuffle diverged at index %d: %+v != %+v", i, a.At(i), b.At(i))
		}
	}
}

func TestSliceReflectsCurrentOrder(t *testing.T) {
	s := NewSequence(3)
	s.Append(Point{1, 1})
	s.Append(Point{2, 2})
	sl := s.Slice()
	if len(sl) != 2 || sl[0] != (Point{1, 1}) || sl[1] != (Point{2, 2}) {
		t.Fatalf("unexpected slice contents: %+v", sl)
	}
}
