package cmd

import (
	"bytes"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/resynth/resynth/internal/synth/params"
	"github.com/resynth/resynth/internal/synth/pixmap"
	"github.com/resynth/resynth/internal/synth/setup"
)

func TestThumbDimsPreservesAspectAndNeverUpscales(t *testing.T) {
	w, h := thumbDims(image.Rect(0, 0, 512, 256), 256)
	if w != 256 || h != 128 {
		t.Fatalf("thumbDims(512x256, 256) = %dx%d, want 256x128", w, h)
	}

	w, h = thumbDims(image.Rect(0, 0, 100, 50), 256)
	if w != 100 || h != 50 {
		t.Fatalf("thumbDims(100x50, 256) = %dx%d, want unchanged 100x50", w, h)
	}
}

func TestWritePreviewProducesSideBySidePNG(t *testing.T) {
	before := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	after := image.NewNRGBA(image.Rect(0, 0, 8, 8))

	dir := t.TempDir()
	path := filepath.Join(dir, "out.preview.png")
	if err := writePreview(path, before, after); err != nil {
		t.Fatalf("writePreview: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected preview file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected a non-empty preview PNG")
	}
}

func TestPreviewOutPathDerivesFromInput(t *testing.T) {
	got := previewOutPath("scene.png")
	want := "scene.preview.png"
	if got != want {
		t.Fatalf("previewOutPath(scene.png) = %q, want %q", got, want)
	}
}

func TestDumpSynthesisMapsPrintsBothMaps(t *testing.T) {
	width, height := 3, 1
	imageBytes := make([]byte, width*height*4)
	imageBytes[3] = 255  // pixel 0: opaque
	imageBytes[11] = 255 // pixel 2: opaque
	maskBytes := []byte{0, 255, 0} // pixel 1 is the target

	built, err := setup.Build(width, height, imageBytes, width*4, maskBytes, width, pixmap.IndicesForFormat(pixmap.RGBA), params.Default())
	if err != nil {
		t.Fatalf("setup.Build: %v", err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	origStdout := os.Stdout
	os.Stdout = w
	dumpSynthesisMaps(built)
	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)
	out := buf.String()

	if !strings.Contains(out, "hasValueMap:") {
		t.Error("expected output to contain hasValueMap header")
	}
	if !strings.Contains(out, "sourceOfMap") {
		t.Error("expected output to contain sourceOfMap header")
	}
}
