package bench

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/resynth/resynth/internal/synth/params"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func buildFixture(t *testing.T, dir, key string) {
	t.Helper()
	const w, h = 6, 6
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
				mask.Set(x, y, color.Gray{Y: 0})
			} else {
				img.Set(x, y, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
				mask.Set(x, y, color.Gray{Y: 255})
			}
		}
	}
	writePNG(t, filepath.Join(dir, key+".png"), img)
	writePNG(t, filepath.Join(dir, key+".mask.png"), mask)
}

func TestScanFixturesPairsImageAndMask(t *testing.T) {
	dir := t.TempDir()
	buildFixture(t, dir, "wall")
	buildFixture(t, dir, "sub/door")

	sources, err := ScanFixtures(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(sources))
	}
	keys := map[string]bool{}
	for _, s := range sources {
		keys[s.Key] = true
		if s.ImagePath == "" || s.MaskPath == "" {
			t.Fatalf("fixture %q missing image or mask path", s.Key)
		}
	}
	if !keys["wall"] || !keys["sub/door"] {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestScanFixturesSkipsUnpairedImages(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	writePNG(t, filepath.Join(dir, "orphan.png"), img)

	sources, err := ScanFixtures(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(sources) != 0 {
		t.Fatalf("expected 0 fixtures for an unpaired image, got %d", len(sources))
	}
}

func TestBenchRunProducesLogAndOutputFile(t *testing.T) {
	fixtureDir := t.TempDir()
	outDir := t.TempDir()
	buildFixture(t, fixtureDir, "wall")

	p := params.Default()
	p.Seed = 1

	b := New(Config{
		FixtureDir: fixtureDir,
		OutDir:     outDir,
		Preset:     "fast",
		Parameters: p,
		Workers:    1,
	})

	l, err := b.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	job, ok := l.Jobs["wall"]
	if !ok {
		t.Fatal("expected a job for fixture 'wall'")
	}
	if job.ErrorCode != "ok" {
		t.Fatalf("expected ok, got %q", job.ErrorCode)
	}
	if job.OutputHash == "" {
		t.Fatal("expected a non-empty output hash")
	}
	if job.Thumbnail == "" {
		t.Fatal("expected a non-empty thumbnail")
	}

	if _, err := os.Stat(filepath.Join(outDir, "wall.png")); err != nil {
		t.Fatalf("expected output file: %v", err)
	}

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal log: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty log JSON")
	}
}

func TestBenchRunErrorsOnEmptyFixtureDir(t *testing.T) {
	b := New(Config{FixtureDir: t.TempDir(), OutDir: t.TempDir(), Workers: 1})
	if _, err := b.Run(); err == nil {
		t.Fatal("expected an error for an empty fixture directory")
	}
}
