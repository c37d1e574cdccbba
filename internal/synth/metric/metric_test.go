package metric

import "testing"

func TestZeroDifferenceIsZeroWeight(t *testing.T) {
	tab := Build(0.117, 0.5)
	if tab.ColorDiffTable[255] != 0 {
		t.Fatalf("zero diff should weight 0, got %d", tab.ColorDiffTable[255])
	}
	if tab.MapDiffTable[255] != 0 {
		t.Fatalf("zero map diff should weight 0, got %d", tab.MapDiffTable[255])
	}
}

func TestMonotonicAroundZero(t *testing.T) {
	tab := Build(0.117, 0.5)
	for i := 256; i < TableSize; i++ {
		if tab.ColorDiffTable[i] < tab.ColorDiffTable[i-1] {
			t.Fatalf("color table not monotone at index %d", i)
		}
	}
	for i := 255; i > 0; i-- {
		if tab.ColorDiffTable[i-1] < tab.ColorDiffTable[i] {
			t.Fatalf("color table not symmetric-monotone at index %d", i)
		}
	}
}

func TestFoldDiffRoundTrip(t *testing.T) {
	cases := []struct{ a, b byte }{{0, 0}, {255, 0}, {0, 255}, {128, 130}}
	for _, c := range cases {
		idx := FoldDiff(c.a, c.b)
		if idx < 0 || idx >= TableSize {
			t.Fatalf("FoldDiff(%d,%d)=%d out of range", c.a, c.b, idx)
		}
	}
}

func TestMaxWeightNeverExceeded(t *testing.T) {
	tab := Build(0.01, 2.0) // aggressive params to try to overflow
	for _, v := range tab.ColorDiffTable {
		if v > MaxWeight {
			t.Fatalf("color table exceeded MaxWeight: %d", v)
		}
	}
}
