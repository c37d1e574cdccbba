package bench

import (
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/resynth/resynth/internal/encoder"
	"github.com/resynth/resynth/internal/hasher"
	"github.com/resynth/resynth/internal/imageio"
	"github.com/resynth/resynth/internal/runlog"
	"github.com/resynth/resynth/internal/synth"
	"github.com/resynth/resynth/internal/synth/params"
	"github.com/resynth/resynth/internal/synth/refiner"
	"github.com/resynth/resynth/internal/thumbhash"
)

// maxBenchInputDim bounds the longest side of a fixture image fed into
// synthesis. Corpus scanning is quadratic-ish in pixel count (every
// corpus pixel is a candidate), so an oversized fixture dropped into a
// batch run the way the teacher resizes per profile width for variant
// generation, just applied before synthesis instead of after.
const maxBenchInputDim = 1536

// jobResult holds the result of processing a single fixture.
type jobResult struct {
	key string
	job runlog.Job
	err error
}

// runJob decodes src's image and mask, synthesizes the masked region,
// encodes the result, and writes it under outDir.
func runJob(src Source, p params.Parameters, outFormat string, outDir string, registry *encoder.Registry) jobResult {
	result := jobResult{key: src.Key}
	start := time.Now()

	img, err := decodeFile(src.ImagePath)
	if err != nil {
		result.job = runlog.Job{ErrorCode: "decode error", DurationMs: time.Since(start).Milliseconds()}
		result.err = fmt.Errorf("decode %s: %w", src.Key, err)
		return result
	}
	maskImg, err := decodeFile(src.MaskPath)
	if err != nil {
		result.job = runlog.Job{ErrorCode: "decode mask error", DurationMs: time.Since(start).Milliseconds()}
		result.err = fmt.Errorf("decode mask %s: %w", src.Key, err)
		return result
	}

	img, maskImg = preScaleOversized(img, maskImg)

	buf, format := imageio.Unpack(img)
	mask := imageio.UnpackMask(maskImg, buf.Width, buf.Height)

	var passes []runlog.PassStat
	opts := synth.Options{
		Parameters: &p,
		OnPassComplete: func(ps refiner.PassStats) {
			passes = append(passes, runlog.PassStat{
				PassIndex: ps.PassIndex, EndTargetIndex: ps.EndTargetIndex, Betters: ps.Betters,
			})
		},
	}

	res, synthErr := synth.Synthesize(buf, mask, format, opts)

	job := runlog.Job{
		Input: runlog.InputInfo{
			Width: buf.Width, Height: buf.Height,
			Format: src.Format, Size: src.Size, HasAlpha: thumbhash.HasAlpha(img),
		},
		PassesRun:  res.PassesRun,
		Cancelled:  res.Cancelled,
		Passes:     passes,
		DurationMs: time.Since(start).Milliseconds(),
		ErrorCode:  res.Code.String(),
	}

	if synthErr != nil {
		result.job = job
		result.err = fmt.Errorf("synthesize %s: %w", src.Key, synthErr)
		return result
	}

	out := imageio.Pack(buf)
	job.Thumbnail = base64.StdEncoding.EncodeToString(thumbhash.Encode(out))

	enc := registry.Get(outFormat)
	if enc == nil {
		result.job = job
		result.err = fmt.Errorf("no encoder available for format %q", outFormat)
		return result
	}
	data, err := enc.Encode(out, encoder.DefaultQuality)
	if err != nil {
		result.job = job
		result.err = fmt.Errorf("encode %s: %w", src.Key, err)
		return result
	}

	job.OutputHash = hasher.ContentHash(data, 16)

	outPath := filepath.Join(outDir, fmt.Sprintf("%s.%s", src.Key, enc.Extension()))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		result.job = job
		result.err = fmt.Errorf("mkdir for %s: %w", src.Key, err)
		return result
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		result.job = job
		result.err = fmt.Errorf("write %s: %w", outPath, err)
		return result
	}

	result.job = job
	return result
}

// preScaleOversized resizes img (and mask alongside it, to keep
// geometry matching) down to maxBenchInputDim on its longest side,
// using imaging.Resize the same way processor.go resizes per profile
// width — just triggered by an input-size cap instead of a named
// preset. Images already within the cap pass through untouched.
func preScaleOversized(img, mask image.Image) (image.Image, image.Image) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxBenchInputDim && h <= maxBenchInputDim {
		return img, mask
	}

	var newW, newH int
	if w >= h {
		newW = maxBenchInputDim
		newH = int(float64(h) * float64(maxBenchInputDim) / float64(w))
	} else {
		newH = maxBenchInputDim
		newW = int(float64(w) * float64(maxBenchInputDim) / float64(h))
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	resizedImg := imaging.Resize(img, newW, newH, imaging.Lanczos)
	resizedMask := imaging.Resize(mask, newW, newH, imaging.NearestNeighbor)
	return resizedImg, resizedMask
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := imageio.Decode(f)
	return img, err
}
