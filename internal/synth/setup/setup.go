// Package setup builds everything the refiner needs from a packed
// image buffer, a mask buffer, a format, and parameters: the
// target/corpus point lists, the committed-value and source-of maps,
// the sorted neighborhood offsets, the metric tables, and the PRNG.
// This is the "Setup (collaborator contract)" of spec.md §4.1.
package setup

import (
	"errors"
	"fmt"

	"github.com/resynth/resynth/internal/synth/metric"
	"github.com/resynth/resynth/internal/synth/offsets"
	"github.com/resynth/resynth/internal/synth/params"
	"github.com/resynth/resynth/internal/synth/pixmap"
	"github.com/resynth/resynth/internal/synth/points"
	"github.com/resynth/resynth/internal/synth/prng"
)

// MaskTotallySelected is the mask threshold at or above which a pixel
// is a target pixel (spec.md §4.1).
const MaskTotallySelected = 255

// AlphaSelectionThreshold is the minimum alpha for a pixel to be
// eligible as corpus, for formats carrying an alpha channel.
const AlphaSelectionThreshold = 128

// ErrEmptyCorpus is returned when no pixel qualifies as corpus: mask
// below MaskTotallySelected and, for formats with alpha, alpha at
// least AlphaSelectionThreshold.
var ErrEmptyCorpus = errors.New("resynth: empty corpus")

// ErrEmptyTarget is returned when no pixel is selected.
var ErrEmptyTarget = errors.New("resynth: empty target")

// ErrMaskGeometryMismatch is returned when mask dimensions don't
// match the image buffer's.
var ErrMaskGeometryMismatch = errors.New("resynth: mask geometry mismatch")

// Result bundles everything the refiner consumes.
type Result struct {
	TargetMap       *pixmap.PixelMap
	CorpusMap       *pixmap.PixelMap // same backing image as TargetMap; kept distinct for clarity of intent
	HasValueMap     *pixmap.BoolMap
	SourceOfMap     *pixmap.SourceMap
	RecentProberMap *pixmap.ByteMap

	TargetPoints *points.Sequence
	CorpusPoints *points.Sequence

	SortedOffsets []offsets.Offset
	Tables        *metric.Tables
	PRNG          *prng.PRNG

	Indices pixmap.Indices
}

// Build runs the setup phase described in spec.md §4.1.
//
// imageBytes/imageRowBytes describe the packed pixel buffer in the
// given format; maskBytes/maskRowBytes is one mask pixelel per pixel
// (0 = unselected, 255 = totally selected, intermediate values are
// weighted selection and are treated the same as "unselected" for
// corpus/target partition purposes — only the two thresholds above
// matter to membership).
//
// When no pixel is a target, ErrEmptyTarget is returned even if the
// corpus is empty too.
func Build(width, height int, imageBytes []byte, imageRowBytes int, maskBytes []byte, maskRowBytes int, ix pixmap.Indices, p params.Parameters) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	maskWidth, maskHeight := width, height
	if maskRowBytes < maskWidth || len(maskBytes) < maskRowBytes*maskHeight {
		return nil, fmt.Errorf("%w: mask buffer too small for %dx%d", ErrMaskGeometryMismatch, maskWidth, maskHeight)
	}

	targetMap := pixmap.NewFromRows(width, height, ix.TotalPixelels, imageBytes, imageRowBytes)

	hasValueMap := pixmap.NewBoolMap(width, height)
	sourceOfMap := pixmap.NewSourceMap(width, height)
	recentProberMap := pixmap.NewByteMap(width, height)

	targetPoints := points.NewSequence(width * height / 4)
	corpusPoints := points.NewSequence(width * height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			maskVal := maskBytes[y*maskRowBytes+x]
			if maskVal >= MaskTotallySelected {
				targetPoints.Append(points.Point{X: x, Y: y})
				hasValueMap.Set(x, y, false)
				continue
			}

			if ix.HasAlpha() && targetMap.Get(x, y, ix.AlphaIndex) < AlphaSelectionThreshold {
				// Transparent and unselected: neither legitimate
				// corpus nor target. Leave hasValueMap false so the
				// prober's "skip this offset" rule applies to it too.
				continue
			}

			corpusPoints.Append(points.Point{X: x, Y: y})
			hasValueMap.Set(x, y, true)
		}
	}

	if targetPoints.Len() == 0 {
		return nil, ErrEmptyTarget
	}
	if corpusPoints.Len() == 0 {
		return nil, ErrEmptyCorpus
	}

	prngState := prng.New(p.Seed)
	targetPoints.Shuffle(prngState)
	corpusPoints.Shuffle(prngState)

	sortedOffsets := offsets.Build(p.Neighbors)
	tables := metric.Build(p.SensitivityToOutliers, p.MapWeight)

	return &Result{
		TargetMap:       targetMap,
		CorpusMap:       targetMap,
		HasValueMap:     hasValueMap,
		SourceOfMap:     sourceOfMap,
		RecentProberMap: recentProberMap,
		TargetPoints:    targetPoints,
		CorpusPoints:    corpusPoints,
		SortedOffsets:   sortedOffsets,
		Tables:          tables,
		PRNG:            prngState,
		Indices:         ix,
	}, nil
}
