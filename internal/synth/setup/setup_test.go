package setup

import (
	"errors"
	"testing"

	"github.com/resynth/resynth/internal/synth/params"
	"github.com/resynth/resynth/internal/synth/pixmap"
)

// TestBuildPartitionsMaskThreshold verifies the maskVal >= 255 boundary:
// a pixel at exactly MaskTotallySelected is a target even with a fully
// opaque alpha channel; one pixelel below is corpus instead.
func TestBuildPartitionsMaskThreshold(t *testing.T) {
	width, height := 3, 1
	imageBytes := []byte{
		10, 10, 10, 255, // x=0: opaque, corpus candidate
		20, 20, 20, 255, // x=1: opaque, corpus candidate
		30, 30, 30, 255, // x=2: opaque, corpus candidate
	}
	maskBytes := []byte{0, 254, 255}

	r, err := Build(width, height, imageBytes, width*4, maskBytes, width, pixmap.IndicesForFormat(pixmap.RGBA), params.Default())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if r.TargetPoints.Len() != 1 {
		t.Fatalf("expected exactly 1 target point (maskVal==255), got %d", r.TargetPoints.Len())
	}
	if r.CorpusPoints.Len() != 2 {
		t.Fatalf("expected 2 corpus points (maskVal 0 and 254), got %d", r.CorpusPoints.Len())
	}

	if r.HasValueMap.Get(2, 0) {
		t.Error("pixel at the target threshold (maskVal=255) must start with hasValueMap false")
	}
	if !r.HasValueMap.Get(0, 0) || !r.HasValueMap.Get(1, 0) {
		t.Error("corpus pixels (maskVal<255) must start with hasValueMap true")
	}
}

// TestBuildExcludesTransparentUnselectedPixels verifies the alpha
// threshold boundary for formats carrying an alpha channel: a pixel
// below the mask target threshold AND below AlphaSelectionThreshold is
// neither corpus nor target, while one at exactly the threshold still
// qualifies as corpus.
func TestBuildExcludesTransparentUnselectedPixels(t *testing.T) {
	width, height := 4, 1
	imageBytes := []byte{
		10, 10, 10, 127, // x=0: below AlphaSelectionThreshold, excluded
		20, 20, 20, 128, // x=1: exactly AlphaSelectionThreshold, corpus
		30, 30, 30, 255, // x=2: opaque, corpus
		40, 40, 40, 255, // x=3: target
	}
	maskBytes := []byte{0, 0, 0, 255} // only x=3 hits the mask target threshold

	r, err := Build(width, height, imageBytes, width*4, maskBytes, width, pixmap.IndicesForFormat(pixmap.RGBA), params.Default())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if r.CorpusPoints.Len() != 2 {
		t.Fatalf("expected 2 corpus points (alpha>=128), got %d", r.CorpusPoints.Len())
	}
	for i := 0; i < r.CorpusPoints.Len(); i++ {
		if p := r.CorpusPoints.At(i); p.X == 0 {
			t.Fatalf("pixel with alpha below threshold must never be corpus, found %+v", p)
		}
	}
	if r.HasValueMap.Get(0, 0) {
		t.Error("excluded pixel must have hasValueMap false, same as an unfilled target")
	}
}

// TestBuildFormatWithoutAlphaIgnoresAlphaThreshold verifies that the
// alpha exclusion rule only applies to formats that carry an alpha
// channel at all (ix.HasAlpha()) — an RGB image has no alpha pixelel
// to fail the threshold against, so every non-target pixel is corpus.
func TestBuildFormatWithoutAlphaIgnoresAlphaThreshold(t *testing.T) {
	width, height := 3, 1
	imageBytes := []byte{
		0, 0, 0, // x=0
		255, 255, 255, // x=1
		9, 9, 9, // x=2: target
	}
	maskBytes := []byte{0, 0, 255}

	r, err := Build(width, height, imageBytes, width*3, maskBytes, width, pixmap.IndicesForFormat(pixmap.RGB), params.Default())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if r.CorpusPoints.Len() != 2 {
		t.Fatalf("expected both pixels to be corpus for an alpha-less format, got %d", r.CorpusPoints.Len())
	}
}

// TestBuildRejectsEmptyCorpus verifies ErrEmptyCorpus when every pixel
// is a target.
func TestBuildRejectsEmptyCorpus(t *testing.T) {
	width, height := 2, 1
	imageBytes := []byte{0, 0, 0, 255, 0, 0, 0, 255}
	maskBytes := []byte{255, 255}

	_, err := Build(width, height, imageBytes, width*4, maskBytes, width, pixmap.IndicesForFormat(pixmap.RGBA), params.Default())
	if err != ErrEmptyCorpus {
		t.Fatalf("Build: got err=%v, want ErrEmptyCorpus", err)
	}
}

// TestBuildRejectsEmptyTarget verifies ErrEmptyTarget when no pixel
// reaches the mask target threshold.
func TestBuildRejectsEmptyTarget(t *testing.T) {
	width, height := 2, 1
	imageBytes := []byte{0, 0, 0, 255, 0, 0, 0, 255}
	maskBytes := []byte{0, 254}

	_, err := Build(width, height, imageBytes, width*4, maskBytes, width, pixmap.IndicesForFormat(pixmap.RGBA), params.Default())
	if err != ErrEmptyTarget {
		t.Fatalf("Build: got err=%v, want ErrEmptyTarget", err)
	}
}

// TestBuildRejectsMaskGeometryMismatch verifies a too-small mask
// buffer is rejected before any partition logic runs.
func TestBuildRejectsMaskGeometryMismatch(t *testing.T) {
	width, height := 4, 4
	imageBytes := make([]byte, width*height*4)
	maskBytes := make([]byte, 2) // far too small for 4x4

	_, err := Build(width, height, imageBytes, width*4, maskBytes, width, pixmap.IndicesForFormat(pixmap.RGBA), params.Default())
	if !errors.Is(err, ErrMaskGeometryMismatch) {
		t.Fatalf("Build: got err=%v, want ErrMaskGeometryMismatch", err)
	}
}

// TestBuildRejectsInvalidParameters verifies Validate is consulted
// before the partition loop runs at all.
func TestBuildRejectsInvalidParameters(t *testing.T) {
	width, height := 2, 1
	imageBytes := []byte{0, 0, 0, 255, 0, 0, 0, 255}
	maskBytes := []byte{0, 255}

	bad := params.Default()
	bad.Neighbors = 0

	_, err := Build(width, height, imageBytes, width*4, maskBytes, width, pixmap.IndicesForFormat(pixmap.RGBA), bad)
	if err == nil {
		t.Fatal("expected an error for invalid parameters")
	}
}
