package cmd

import (
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"github.com/resynth/resynth/internal/encoder"
	"github.com/resynth/resynth/internal/hasher"
	"github.com/resynth/resynth/internal/imageio"
	"github.com/resynth/resynth/internal/synth"
	"github.com/resynth/resynth/internal/synth/params"
	"github.com/resynth/resynth/internal/synth/refiner"
	"github.com/resynth/resynth/internal/synth/setup"
	"github.com/resynth/resynth/internal/thumbhash"
	"github.com/spf13/cobra"
)

var (
	fillOut       string
	fillMask      string
	fillPreset    string
	fillWorkers   int
	fillNeighbors int
	fillTrys      int
	fillSeed      uint64
	fillSeedText  string
	fillWrapH     bool
	fillWrapV     bool
	fillFormat    string
	fillPreview   bool
	fillDumpMaps  bool
)

var fillCmd = &cobra.Command{
	Use:   "fill <input_image>",
	Short: "Synthesize a masked region of an image from its own texture",
	Long: `Reads an image and a selection mask (same dimensions, white = fill,
black = keep), fills the masked region by neighborhood-matching texture
synthesis, and writes the result.`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

func init() {
	fillCmd.Flags().StringVarP(&fillOut, "out", "o", "", "output path (default: <input>.resynth.<ext>)")
	fillCmd.Flags().StringVarP(&fillMask, "mask", "m", "", "mask image path (required)")
	fillCmd.Flags().StringVarP(&fillPreset, "preset", "p", "default", "parameter preset: default, fast, hq")
	fillCmd.Flags().IntVarP(&fillWorkers, "workers", "w", 0, "parallel workers (0 = preset default)")
	fillCmd.Flags().IntVar(&fillNeighbors, "neighbors", 0, "override neighbors (0 = preset default)")
	fillCmd.Flags().IntVar(&fillTrys, "trys", 0, "override candidate trys per pixel (0 = preset default)")
	fillCmd.Flags().Uint64Var(&fillSeed, "seed", 0, "PRNG seed (0 = fixed default seed)")
	fillCmd.Flags().StringVar(&fillSeedText, "seed-text", "", "derive the PRNG seed from text instead of --seed")
	fillCmd.Flags().BoolVar(&fillWrapH, "wrap-x", false, "make the result seamlessly tileable horizontally")
	fillCmd.Flags().BoolVar(&fillWrapV, "wrap-y", false, "make the result seamlessly tileable vertically")
	fillCmd.Flags().StringVar(&fillFormat, "format", "", "output format: png, webp, jpeg (default: match input)")
	fillCmd.Flags().BoolVar(&fillPreview, "preview", false, "write a <input>.preview.png side-by-side before/after thumbnail")
	fillCmd.Flags().BoolVar(&fillDumpMaps, "dump-maps", false, "hex-dump hasValueMap/sourceOfMap after synthesis (debug)")
	fillCmd.MarkFlagRequired("mask")
	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	start := time.Now()

	if fillMask == "" {
		return fmt.Errorf("--mask is required")
	}

	img, srcFormat, err := decodeImageFile(inputPath)
	if err != nil {
		return fmt.Errorf("decode %s: %w", inputPath, err)
	}
	maskImg, _, err := decodeImageFile(fillMask)
	if err != nil {
		return fmt.Errorf("decode mask %s: %w", fillMask, err)
	}

	p := params.Get(fillPreset)
	if fillNeighbors > 0 {
		p.Neighbors = fillNeighbors
	}
	if fillTrys > 0 {
		p.Trys = fillTrys
	}
	p.Seed = fillSeed
	if fillSeedText != "" {
		p.Seed = hasher.SeedFromText(fillSeedText)
	}
	p.Workers = fillWorkers
	p.MakeSeamlesslyTileableHorizontally = fillWrapH
	p.MakeSeamlesslyTileableVertically = fillWrapV

	buf, format := imageio.Unpack(img)
	mask := imageio.UnpackMask(maskImg, buf.Width, buf.Height)

	logVerbose("input:  %s (%dx%d)", inputPath, buf.Width, buf.Height)
	logVerbose("mask:   %s", fillMask)
	logVerbose("preset: %s (neighbors=%d trys=%d)", fillPreset, p.Neighbors, p.Trys)

	var passes []refiner.PassStats
	opts := synth.Options{
		Parameters: &p,
		OnPassComplete: func(ps refiner.PassStats) {
			passes = append(passes, ps)
			logVerbose("pass %d: end=%d betters=%d", ps.PassIndex, ps.EndTargetIndex, ps.Betters)
		},
	}
	if fillDumpMaps {
		opts.OnSynthesized = func(built *setup.Result) { dumpSynthesisMaps(built) }
	}
	res, err := synth.Synthesize(buf, mask, format, opts)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	out := imageio.Pack(buf)
	logVerbose("thumbnail: %s", thumbnailBase64(out))

	if fillPreview {
		previewPath := previewOutPath(inputPath)
		if err := writePreview(previewPath, img, out); err != nil {
			return fmt.Errorf("write preview %s: %w", previewPath, err)
		}
		logVerbose("preview: %s", previewPath)
	}

	outFormat := fillFormat
	if outFormat == "" {
		outFormat = srcFormat
	}
	outPath := fillOut
	if outPath == "" {
		outPath = defaultFillOutPath(inputPath, outFormat)
	}

	registry := encoder.NewRegistry()
	const fillOutputQuality = 92 // single-image write; bench uses encoder.DefaultQuality for throughput
	data, _, err := registry.EncodeBest(out, outFormat, fillOutputQuality)
	if err != nil {
		return fmt.Errorf("encode %s: %w", outFormat, err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	printFillReport(inputPath, outPath, res, passes, data, time.Since(start))
	return nil
}

func decodeImageFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	return imageio.Decode(f)
}

func defaultFillOutPath(inputPath, format string) string {
	ext := filepath.Ext(inputPath)
	base := inputPath[:len(inputPath)-len(ext)]
	if format == "" {
		format = "png"
	}
	return fmt.Sprintf("%s.resynth.%s", base, format)
}

func previewOutPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	base := inputPath[:len(inputPath)-len(ext)]
	return base + ".preview.png"
}

// previewThumbWidth bounds the before/after thumbnails written by
// --preview to a reasonable side-by-side PNG size, the same role
// the teacher's profile widths play for processImage's variant
// resizes.
const previewThumbWidth = 256

// writePreview resizes before/after to a shared thumbnail size with
// imaging.Resize (mirrors processor.go's imaging.Resize(img, w, h,
// imaging.Lanczos) call) and composites them side by side with
// golang.org/x/image/draw, then writes the result as a PNG.
func writePreview(path string, before, after image.Image) error {
	bw, bh := thumbDims(before.Bounds(), previewThumbWidth)
	aw, ah := thumbDims(after.Bounds(), previewThumbWidth)

	beforeThumb := imaging.Resize(before, bw, bh, imaging.Lanczos)
	afterThumb := imaging.Resize(after, aw, ah, imaging.Lanczos)

	gutter := 8
	height := bh
	if ah > height {
		height = ah
	}
	canvas := image.NewRGBA(image.Rect(0, 0, bw+gutter+aw, height))

	xdraw.Draw(canvas, image.Rect(0, 0, bw, bh), beforeThumb, image.Point{}, xdraw.Src)
	xdraw.Draw(canvas, image.Rect(bw+gutter, 0, bw+gutter+aw, ah), afterThumb, image.Point{}, xdraw.Src)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return imageio.EncodePNG(canvas, f)
}

// thumbDims scales b down to width w, preserving aspect ratio, never
// upscaling beyond the source's own dimensions.
func thumbDims(b image.Rectangle, w int) (int, int) {
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= w {
		return srcW, srcH
	}
	h := int(float64(srcH) * float64(w) / float64(srcW))
	if h < 1 {
		h = 1
	}
	return w, h
}

// dumpSynthesisMaps hex-dumps hasValueMap and sourceOfMap row by row,
// the same row/col nested-loop shape as Test.cpp's dumpBuffer, so a
// reader comparing the two debug dumps recognizes the layout.
func dumpSynthesisMaps(built *setup.Result) {
	w, h := built.HasValueMap.Width, built.HasValueMap.Height

	fmt.Println("  hasValueMap:")
	for y := 0; y < h; y++ {
		fmt.Print("    ")
		for x := 0; x < w; x++ {
			v := byte(0)
			if built.HasValueMap.Get(x, y) {
				v = 1
			}
			fmt.Printf("%02x ", v)
		}
		fmt.Println()
	}

	fmt.Println("  sourceOfMap (srcX srcY):")
	for y := 0; y < h; y++ {
		fmt.Print("    ")
		for x := 0; x < w; x++ {
			src, ok := built.SourceOfMap.Get(x, y)
			if !ok {
				fmt.Print("..,.. ")
				continue
			}
			fmt.Printf("%02x,%02x ", byte(src.X), byte(src.Y))
		}
		fmt.Println()
	}
}

func printFillReport(inputPath, outPath string, res synth.Result, passes []refiner.PassStats, data []byte, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║              resynth fill complete                ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Printf("  Input:    %s\n", inputPath)
	fmt.Printf("  Output:   %s (%s)\n", outPath, formatBytes(int64(len(data))))
	fmt.Printf("  Result:   %s\n", res.Code)
	fmt.Printf("  Passes:   %d\n", res.PassesRun)
	if res.Cancelled {
		fmt.Println("  Cancelled before completion")
	}
	fmt.Printf("  Hash:     %s\n", hasher.ContentHash(data, 16))
	fmt.Printf("  Time:     %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	if len(passes) > 0 {
		fmt.Println("  Per-pass betters:")
		for _, ps := range passes {
			fmt.Printf("    pass %d  end=%-8d betters=%d\n", ps.PassIndex, ps.EndTargetIndex, ps.Betters)
		}
		fmt.Println()
	}
}

// thumbnailBase64 is used by verbose reporting to surface a quick
// visual-diff placeholder without decoding the written file back.
func thumbnailBase64(img image.Image) string {
	return base64.StdEncoding.EncodeToString(thumbhash.Encode(img))
}
