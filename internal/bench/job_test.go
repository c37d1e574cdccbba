package bench

import (
	"image"
	"image/color"
	"testing"
)

func TestPreScaleOversizedLeavesSmallImagesUntouched(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	mask := image.NewGray(image.Rect(0, 0, 64, 48))

	gotImg, gotMask := preScaleOversized(img, mask)
	if gotImg != img || gotMask != mask {
		t.Fatal("expected images within the cap to pass through unchanged")
	}
}

func TestPreScaleOversizedShrinksLongestSide(t *testing.T) {
	w, h := maxBenchInputDim*2, maxBenchInputDim
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	mask := image.NewGray(image.Rect(0, 0, w, h))

	gotImg, gotMask := preScaleOversized(img, mask)

	b := gotImg.Bounds()
	if b.Dx() != maxBenchInputDim || b.Dy() != maxBenchInputDim/2 {
		t.Fatalf("image bounds = %v, want %dx%d", b, maxBenchInputDim, maxBenchInputDim/2)
	}
	mb := gotMask.Bounds()
	if mb.Dx() != b.Dx() || mb.Dy() != b.Dy() {
		t.Fatalf("mask bounds %v don't match image bounds %v", mb, b)
	}
}
