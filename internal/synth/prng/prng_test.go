package prng

import "testing"

func TestDeterministicForFixedSeed(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		va := a.IntInRange(0, 1000)
		vb := b.IntInRange(0, 1000)
		if va != vb {
			t.Fatalf("divergence at step %d: %d != %d", i, va, vb)
		}
	}
}

func TestIntInRangeBounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		v := r.IntInRange(5, 9)
		if v < 5 || v >= 9 {
			t.Fatalf("value %d out of [5,9)", v)
		}
	}
}

func TestDeriveIsDeterministicAndDistinct(t *testing.T) {
	root := New(123)
	w0 := root.Derive(0)
	w1 := root.Derive(1)

	root2 := New(123)
	w0b := root2.Derive(0)

	if w0.IntInRange(0, 1<<30) != w0b.IntInRange(0, 1<<30) {
		t.Fatal("deriving the same threadIndex from the same seed should reproduce the same stream")
	}

	a := w0.IntInRange(0, 1<<30)
	b := w1.IntInRange(0, 1<<30)
	if a == b {
		t.Skip("low-probability collision between distinct sub-streams; not a correctness signal on its own")
	}
}

func TestZeroSeedDoesNotDegenerate(t *testing.T) {
	r := New(0)
	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		seen[r.IntInRange(0, 1<<20)] = true
	}
	if len(seen) < 40 {
		t.Fatalf("zero seed looks degenerate: only %d distinct values in 50 draws", len(seen))
	}
}
