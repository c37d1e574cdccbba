package synth

import (
	"errors"
	"testing"

	"github.com/resynth/resynth/internal/synth/params"
	"github.com/resynth/resynth/internal/synth/pixmap"
)

// These fixtures are lifted byte-for-byte from the original engine's
// Test.cpp harness (original_source/lib/Test.cpp), not paraphrased.

func TestRGBAMiddlePixelSynthesizedAlphaPreserved(t *testing.T) {
	// image2 / mask2 from Test.cpp: 3x1 RGBA, middle pixel masked.
	image := []byte{
		128, 128, 128, 0xFF,
		1, 1, 1, 1,
		0, 0, 0, 0,
	}
	mask := []byte{0, 0xFF, 0}

	buf := &Buffer{Bytes: image, Width: 3, Height: 1, RowBytes: 12}
	m := &Mask{Bytes: mask, Width: 3, Height: 1, RowBytes: 3}

	p := params.Default()
	p.Seed = 1
	res, err := Synthesize(buf, m, pixmap.RGBA, Options{Parameters: &p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Code != OK {
		t.Fatalf("expected OK, got %v", res.Code)
	}

	// Pixel 0 (corpus) must be untouched.
	wantPixel0 := []byte{128, 128, 128, 0xFF}
	for i, want := range wantPixel0 {
		if image[i] != want {
			t.Fatalf("corpus pixel 0 mutated at pixelel %d: got %d, want %d", i, image[i], want)
		}
	}
	// Pixel 1 (target): color copied from the sole opaque corpus
	// neighbor, alpha preserved from input (1), per spec.md scenario 1.
	if image[4] != 128 || image[5] != 128 || image[6] != 128 {
		t.Fatalf("target color not synthesized from corpus: got %v", image[4:7])
	}
	if image[7] != 1 {
		t.Fatalf("target alpha must be preserved, got %d", image[7])
	}
	// Pixel 2 (transparent, unselected) must be untouched.
	wantPixel2 := []byte{0, 0, 0, 0}
	for i, want := range wantPixel2 {
		if image[8+i] != want {
			t.Fatalf("pixel 2 mutated at pixelel %d: got %d, want %d", i, image[8+i], want)
		}
	}
}

func TestGrayAMiddlePixelSynthesized(t *testing.T) {
	// imageGrayA / mask2 from Test.cpp: 3x1 GrayA, middle masked.
	image := []byte{128, 0xFF, 64, 1, 1, 0}
	mask := []byte{0, 0xFF, 0}

	buf := &Buffer{Bytes: image, Width: 3, Height: 1, RowBytes: 6}
	m := &Mask{Bytes: mask, Width: 3, Height: 1, RowBytes: 3}

	p := params.Default()
	p.Seed = 1
	res, err := Synthesize(buf, m, pixmap.GrayA, Options{Parameters: &p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Code != OK {
		t.Fatalf("expected OK, got %v", res.Code)
	}
	if image[2] != 128 {
		t.Fatalf("middle pixel gray channel: got %d, want 128", image[2])
	}
	if image[3] != 1 {
		t.Fatalf("middle pixel alpha must be preserved, got %d", image[3])
	}
}

func TestGrayWithNilParametersUsesDefaults(t *testing.T) {
	// imageGray / mask2 from Test.cpp, validates the default-parameter path.
	image := []byte{128, 64, 1}
	mask := []byte{0, 0xFF, 0}

	buf := &Buffer{Bytes: image, Width: 3, Height: 1, RowBytes: 3}
	m := &Mask{Bytes: mask, Width: 3, Height: 1, RowBytes: 3}

	res, err := Synthesize(buf, m, pixmap.Gray, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Code != OK {
		t.Fatalf("expected OK, got %v", res.Code)
	}
	if image[1] != 128 {
		t.Fatalf("middle pixel: got %d, want 128", image[1])
	}
}

func TestRGBLastColumnMaskedKeepsCorpus(t *testing.T) {
	// Scenario 2 from spec.md §8: RGB 3x2, last column of each row
	// masked. Checks that synthesis succeeds and leaves the four
	// corpus pixels unchanged; the synthesized values are not checked.
	image := []byte{
		128, 128, 128, 1, 1, 1, 2, 2, 2,
		64, 64, 64, 4, 4, 4, 3, 3, 3,
	}
	mask := []byte{
		0, 0, 0xFF,
		0, 0, 0xFF,
	}

	buf := &Buffer{Bytes: image, Width: 3, Height: 2, RowBytes: 9}
	m := &Mask{Bytes: mask, Width: 3, Height: 2, RowBytes: 3}

	p := params.Default()
	p.Seed = 1
	res, err := Synthesize(buf, m, pixmap.RGB, Options{Parameters: &p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Code != OK {
		t.Fatalf("expected OK, got %v", res.Code)
	}
	// Corpus columns must be untouched.
	wantUnchanged := [][3]byte{{128, 128, 128}, {1, 1, 1}, {64, 64, 64}, {4, 4, 4}}
	got := [][3]byte{
		{image[0], image[1], image[2]},
		{image[3], image[4], image[5]},
		{image[9], image[10], image[11]},
		{image[12], image[13], image[14]},
	}
	for i := range wantUnchanged {
		if got[i] != wantUnchanged[i] {
			t.Fatalf("corpus pixel %d mutated: got %v, want %v", i, got[i], wantUnchanged[i])
		}
	}
}

func TestEmptyCorpusReturnsErrorWithoutMutatingBuffer(t *testing.T) {
	image := []byte{1, 2, 3, 4, 5, 6}
	orig := append([]byte{}, image...)
	mask := []byte{0xFF, 0xFF, 0xFF}

	buf := &Buffer{Bytes: image, Width: 3, Height: 1, RowBytes: 6}
	m := &Mask{Bytes: mask, Width: 3, Height: 1, RowBytes: 3}

	res, err := Synthesize(buf, m, pixmap.GrayA, Options{})
	if err == nil {
		t.Fatal("expected an error for an all-selected mask")
	}
	if res.Code != EmptyCorpusCode {
		t.Fatalf("expected EmptyCorpusCode, got %v", res.Code)
	}
	var se *Error
	if !errors.As(err, &se) || se.Code != EmptyCorpusCode {
		t.Fatalf("expected *Error with EmptyCorpusCode, got %v", err)
	}
	for i := range image {
		if image[i] != orig[i] {
			t.Fatalf("buffer mutated on setup failure at index %d", i)
		}
	}
}

func TestEmptyTargetReturnsError(t *testing.T) {
	image := []byte{1, 2, 3, 4, 5, 6}
	mask := []byte{0, 0, 0}

	buf := &Buffer{Bytes: image, Width: 3, Height: 1, RowBytes: 6}
	m := &Mask{Bytes: mask, Width: 3, Height: 1, RowBytes: 3}

	res, err := Synthesize(buf, m, pixmap.GrayA, Options{})
	if err == nil {
		t.Fatal("expected an error for an all-unselected mask")
	}
	if res.Code != EmptyTargetCode {
		t.Fatalf("expected EmptyTargetCode, got %v", res.Code)
	}
}

func TestMaskGeometryMismatch(t *testing.T) {
	image := make([]byte, 12)
	mask := make([]byte, 2) // wrong size/geometry

	buf := &Buffer{Bytes: image, Width: 3, Height: 1, RowBytes: 12}
	m := &Mask{Bytes: mask, Width: 1, Height: 1, RowBytes: 1}

	res, err := Synthesize(buf, m, pixmap.RGBA, Options{})
	if err == nil {
		t.Fatal("expected a geometry mismatch error")
	}
	if res.Code != MaskGeometryMismatchCode {
		t.Fatalf("expected MaskGeometryMismatchCode, got %v", res.Code)
	}
}

func TestCancellationOnFullyMaskedImage(t *testing.T) {
	const side = 64
	image := make([]byte, side*side*4)
	mask := make([]byte, side*side)
	for i := range mask {
		mask[i] = 0xFF
	}
	// Leave exactly one corpus pixel so setup succeeds.
	mask[0] = 0
	image[3] = 0xFF // opaque corpus pixel's alpha

	buf := &Buffer{Bytes: image, Width: side, Height: side, RowBytes: side * 4}
	m := &Mask{Bytes: mask, Width: side, Height: side, RowBytes: side}

	var cancel int32 = 1
	res, err := Synthesize(buf, m, pixmap.RGBA, Options{CancelFlag: &cancel})
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	if res.Code != CancelledCode || !res.Cancelled {
		t.Fatalf("expected CancelledCode, got %v (cancelled=%v)", res.Code, res.Cancelled)
	}
}

func TestMapChannelOptInAddsExtraPixelel(t *testing.T) {
	// RGB + one map pixelel: 3x1, middle masked. The map channel
	// carries a distinct gradient so a wrong channel count would
	// either panic on row-pitch arithmetic or bleed map bytes into
	// color, both of which this test would catch.
	image := []byte{
		10, 10, 10, 200,
		0, 0, 0, 99,
		30, 30, 30, 210,
	}
	mask := []byte{0, 0xFF, 0}

	buf := &Buffer{Bytes: image, Width: 3, Height: 1, RowBytes: 12}
	m := &Mask{Bytes: mask, Width: 3, Height: 1, RowBytes: 3}

	p := params.Default()
	p.Seed = 7
	p.HasMapChannel = true
	res, err := Synthesize(buf, m, pixmap.RGB, Options{Parameters: &p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Code != OK {
		t.Fatalf("expected OK, got %v", res.Code)
	}
	// Corpus pixels untouched, including their map pixelel.
	if image[3] != 200 || image[11] != 210 {
		t.Fatalf("corpus map pixelels mutated: got %d, %d", image[3], image[11])
	}
	// Target color must have been synthesized from one of the two
	// corpus pixels (10,10,10) or (30,30,30).
	c := image[4]
	if c != 10 && c != 30 {
		t.Fatalf("target color not drawn from corpus: got %d", c)
	}
}

func TestDeterministicSingleThreadSameSeed(t *testing.T) {
	run := func() []byte {
		image := []byte{
			128, 128, 128, 1, 1, 1, 2, 2, 2, 9, 9, 9,
			64, 64, 64, 4, 4, 4, 3, 3, 3, 8, 8, 8,
			7, 7, 7, 6, 6, 6, 5, 5, 5, 4, 4, 4,
		}
		mask := []byte{
			0, 0, 0xFF, 0xFF,
			0, 0, 0xFF, 0xFF,
			0, 0, 0xFF, 0xFF,
		}
		buf := &Buffer{Bytes: append([]byte{}, image...), Width: 4, Height: 3, RowBytes: 12}
		m := &Mask{Bytes: mask, Width: 4, Height: 3, RowBytes: 4}
		p := params.Default()
		p.Seed = 12345
		p.Workers = 1
		if _, err := Synthesize(buf, m, pixmap.RGB, Options{Parameters: &p}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return buf.Bytes
	}

	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic output at byte %d: %d vs %d", i, a[i], b[i])
		}
	}
}
