// Package prober implements the per-target-pixel search: candidate
// generation, neighborhood metric, best-source tracking, and commit.
// This is the hot inner loop of the engine (spec.md §4.2).
package prober

import (
	"math"
	"sync/atomic"

	"github.com/resynth/resynth/internal/synth/metric"
	"github.com/resynth/resynth/internal/synth/offsets"
	"github.com/resynth/resynth/internal/synth/pixmap"
	"github.com/resynth/resynth/internal/synth/points"
	"github.com/resynth/resynth/internal/synth/prng"
)

// OutOfImagePenalty is the fixed contribution of an offset that falls
// outside the image rectangle, applied once per missing pixel.
const OutOfImagePenalty uint64 = 1 << 20

// CoherencePrefixLen is the number of leading (nearest) sorted offsets
// consulted by the coherence heuristic — spec.md's Open Question notes
// the original's exact cutoff is not pinned down; this package fixes a
// small prefix rather than the full offset list, matching the
// algorithm's intent ("a small prefix of sortedOffsets").
const CoherencePrefixLen = 5

// Prober holds everything one worker needs to visit target pixels: a
// view of the shared maps/tables/points and the shared best-distance
// slice, plus its own thread-local state (threadIndex, sub-stream
// PRNG, visit tag).
// Distinct Probers for distinct threadIndex values may run
// concurrently; see the package doc on TryPixel for the concurrency
// discipline this requires.
type Prober struct {
	TargetMap       *pixmap.PixelMap
	HasValueMap     *pixmap.BoolMap
	SourceOfMap     *pixmap.SourceMap
	RecentProberMap *pixmap.ByteMap

	CorpusPoints  *points.Sequence
	SortedOffsets []offsets.Offset
	Tables        *metric.Tables
	Indices       pixmap.Indices

	ThreadIndex int
	Rand        *prng.PRNG
	Trys        int

	// WrapHorizontal/WrapVertical implement
	// isMakeSeamlesslyTileableHorizontally/Vertically (spec.md §6):
	// offsets that would fall outside the image wrap around instead
	// of incurring the out-of-image penalty.
	WrapHorizontal bool
	WrapVertical   bool

	// MatchContextType implements spec.md §6's matchContextType: 0 =
	// vanilla (every offset weighted equally), 1 = directional
	// weighting (axis-aligned offsets weighted more heavily than
	// diagonal ones; see offsetWeights).
	MatchContextType int

	// offsetWeights is precomputed once per Prober, parallel to
	// SortedOffsets, so patchDistance's hot loop never branches on
	// MatchContextType per offset.
	offsetWeights []uint64

	// bestDistance records, per target pixel, the best (lowest)
	// distance found across all visits so far, enforcing the
	// metric-monotonicity invariant (spec.md P5). Keyed by y*width+x.
	bestDistance []uint64
	width        int
	height       int

	// visitTag rotates on every TryPixel call, so RecentProberMap's
	// per-candidate tag scopes the "already probed this source" dedup
	// to one visit (spec.md §4.2), not the Prober's entire lifetime.
	// 0 is reserved as RecentProberMap's zero-value "untouched" state,
	// so this wraps 1..255.
	visitTag byte
}

// New creates a Prober for one worker. bestDistance is shared
// read/write by every Prober instance operating on the same
// synthesis (one slice per synthesis, not per worker) so that the
// monotonicity invariant holds across passes and across threads, even
// though each worker only ever writes the entries for pixels it owns
// in a given pass (disjoint per pass, per spec.md §5).
func New(threadIndex int, rand *prng.PRNG, trys int, width, height int, bestDistance []uint64, r Resources) *Prober {
	return &Prober{
		TargetMap:        r.TargetMap,
		HasValueMap:      r.HasValueMap,
		SourceOfMap:      r.SourceOfMap,
		RecentProberMap:  r.RecentProberMap,
		CorpusPoints:     r.CorpusPoints,
		SortedOffsets:    r.SortedOffsets,
		Tables:           r.Tables,
		Indices:          r.Indices,
		ThreadIndex:      threadIndex,
		Rand:             rand,
		Trys:             trys,
		WrapHorizontal:   r.WrapHorizontal,
		WrapVertical:     r.WrapVertical,
		MatchContextType: r.MatchContextType,
		offsetWeights:    buildOffsetWeights(r.SortedOffsets, r.MatchContextType),
		bestDistance:     bestDistance,
		width:            width,
		height:           height,
	}
}

// directionalWeight is the contribution multiplier applied to an
// axis-aligned offset (dx==0 or dy==0) under matchContextType=1: such
// offsets sit directly on the target's row or column and carry the
// strongest row/column coherence signal, so they're weighted twice as
// strongly as diagonal offsets. matchContextType=0 ("vanilla") weighs
// every offset equally.
const directionalWeight = 2

// buildOffsetWeights precomputes, parallel to sortedOffsets, the
// per-offset contribution multiplier spec.md §6's matchContextType
// selects (0 = vanilla, 1 = directional weighting), so the hot loop in
// patchDistance never branches on matchContextType itself.
func buildOffsetWeights(sortedOffsets []offsets.Offset, matchContextType int) []uint64 {
	w := make([]uint64, len(sortedOffsets))
	for i, o := range sortedOffsets {
		if matchContextType == 1 && (o.DX == 0 || o.DY == 0) {
			w[i] = directionalWeight
		} else {
			w[i] = 1
		}
	}
	return w
}

// Resources is the read-mostly state shared across all Probers in one
// synthesis: maps, offsets, tables, and the corpus point list.
type Resources struct {
	TargetMap        *pixmap.PixelMap
	HasValueMap      *pixmap.BoolMap
	SourceOfMap      *pixmap.SourceMap
	RecentProberMap  *pixmap.ByteMap
	CorpusPoints     *points.Sequence
	SortedOffsets    []offsets.Offset
	Tables           *metric.Tables
	Indices          pixmap.Indices
	WrapHorizontal   bool
	WrapVertical     bool
	MatchContextType int
}

// NewBestDistanceSlice allocates the shared bestDistance bookkeeping,
// initialized to +infinity (spec.md §4.2: "initial prior = +infinity").
func NewBestDistanceSlice(width, height int) []uint64 {
	s := make([]uint64, width*height)
	for i := range s {
		s[i] = math.MaxUint64
	}
	return s
}

func (pr *Prober) priorIndex(p points.Point) int { return p.Y*pr.width + p.X }

func (pr *Prober) inBounds(p points.Point) bool {
	return p.X >= 0 && p.X < pr.width && p.Y >= 0 && p.Y < pr.height
}

// wrapCoord folds x/y back into range when the corresponding
// seamless-tiling flag is set; otherwise it is a no-op and leaves
// out-of-range values for the caller to penalize.
func (pr *Prober) wrapCoord(x, y int) (int, int) {
	if pr.WrapHorizontal {
		x = ((x % pr.width) + pr.width) % pr.width
	}
	if pr.WrapVertical {
		y = ((y % pr.height) + pr.height) % pr.height
	}
	return x, y
}

// TryPixel visits target pixel p and returns whether its recorded
// distance strictly improved.
//
// Concurrency: this method writes TargetMap/SourceOfMap/HasValueMap and
// the best-distance entry only at (p.X, p.Y) — the caller (refiner)
// guarantees distinct workers in one pass are assigned disjoint target
// pixels, so these writes never race each other. It also writes its
// visit tag into RecentProberMap at candidate cells, where collisions
// are tolerated (see pixmap.ByteMap). Reads of neighbor pixels (via offsets) may observe
// another worker's in-flight write to a different target pixel; this
// is the documented "racy by design, safe in practice" discipline of
// spec.md §5 — ordinary byte loads/stores are sufficient, no atomics
// required, because the metric is an additive sum over independent
// byte channels that tolerates a torn read of one neighbor.
func (pr *Prober) TryPixel(p points.Point, cancelFlag *int32) bool {
	if cancelFlag != nil && atomic.LoadInt32(cancelFlag) != 0 {
		return false
	}

	priorIdx := pr.priorIndex(p)
	priorDist := pr.bestDistance[priorIdx]

	pr.visitTag++
	if pr.visitTag == 0 {
		pr.visitTag = 1
	}
	tag := pr.visitTag

	var bestDist uint64 = math.MaxUint64
	var bestSrc points.Point
	found := false

	tryCandidate := func(q points.Point) {
		if q == p {
			return
		}
		if pr.RecentProberMap.Get(q.X, q.Y) == tag {
			return // already probed this source for this visit
		}
		pr.RecentProberMap.Set(q.X, q.Y, tag)

		d := pr.patchDistance(p, q, bestDist)
		if d < bestDist {
			bestDist = d
			bestSrc = q
			found = true
		}
	}

	// 1. Coherence heuristic: repeat the source of a nearby
	// already-synthesized neighbor, shifted by the same offset.
	prefixLen := CoherencePrefixLen
	if prefixLen > len(pr.SortedOffsets) {
		prefixLen = len(pr.SortedOffsets)
	}
	for i := 0; i < prefixLen; i++ {
		o := pr.SortedOffsets[i]
		np := points.Point{X: p.X + o.DX, Y: p.Y + o.DY}
		if !pr.inBounds(np) || !pr.HasValueMap.Get(np.X, np.Y) {
			continue
		}
		src, ok := pr.SourceOfMap.Get(np.X, np.Y)
		if !ok {
			continue
		}
		q := points.Point{X: int(src.X) - o.DX, Y: int(src.Y) - o.DY}
		if !pr.inBounds(q) {
			continue
		}
		tryCandidate(q)
	}

	// 2. Random candidates from the corpus, filling out the trys
	// budget.
	corpusLen := pr.CorpusPoints.Len()
	for i := 0; i < pr.Trys && corpusLen > 0; i++ {
		q := pr.CorpusPoints.At(pr.Rand.IntInRange(0, corpusLen))
		tryCandidate(q)
	}

	if !found || bestDist >= priorDist {
		return false
	}

	pr.commit(p, bestSrc, bestDist, priorIdx)
	return true
}

func (pr *Prober) commit(p, src points.Point, dist uint64, priorIdx int) {
	pr.TargetMap.CopyPixelelsFrom(p.X, p.Y, pr.TargetMap, src.X, src.Y, pr.Indices.ColorStart, pr.Indices.ColorEnd)
	if pr.Indices.HasMap() {
		pr.TargetMap.Set(p.X, p.Y, pr.Indices.MapStart, pr.TargetMap.Get(src.X, src.Y, pr.Indices.MapStart))
	}
	pr.SourceOfMap.Set(p.X, p.Y, pixmap.Point{X: int16(src.X), Y: int16(src.Y)})
	pr.HasValueMap.Set(p.X, p.Y, true)
	pr.bestDistance[priorIdx] = dist
}

// patchDistance sums the per-offset contribution of candidate source
// q against target p, short-circuiting once the accumulator exceeds
// best (spec.md §4.2 "Short-circuit").
//
// The penalty applies when either p+o or q+o falls outside the image;
// the algorithm description only calls out p+o, but q+o can walk off
// the edge too (q is a candidate source near the image boundary), and
// there is no pixel there to read — the penalty is the only safe
// contribution.
func (pr *Prober) patchDistance(p, q points.Point, best uint64) uint64 {
	var acc uint64
	ix := pr.Indices

	for i, o := range pr.SortedOffsets {
		if acc >= best {
			return acc
		}

		px, py := pr.wrapCoord(p.X+o.DX, p.Y+o.DY)
		qx, qy := pr.wrapCoord(q.X+o.DX, q.Y+o.DY)

		pIn := px >= 0 && px < pr.width && py >= 0 && py < pr.height
		qIn := qx >= 0 && qx < pr.width && qy >= 0 && qy < pr.height
		if !pIn || !qIn {
			acc += OutOfImagePenalty
			continue
		}
		if !pr.HasValueMap.Get(px, py) {
			continue // no information yet at this offset
		}

		var contribution uint64
		for k := ix.ColorStart; k < ix.ColorEnd; k++ {
			idx := metric.FoldDiff(pr.TargetMap.Get(px, py, k), pr.TargetMap.Get(qx, qy, k))
			contribution += uint64(pr.Tables.ColorDiffTable[idx])
		}
		if ix.HasMap() {
			idx := metric.FoldDiff(pr.TargetMap.Get(px, py, ix.MapStart), pr.TargetMap.Get(qx, qy, ix.MapStart))
			contribution += uint64(pr.Tables.MapDiffTable[idx])
		}
		if ix.HasAlpha() {
			ap := pr.TargetMap.Get(px, py, ix.AlphaIndex)
			aq := pr.TargetMap.Get(qx, qy, ix.AlphaIndex)
			contribution = contribution * uint64(ap) * uint64(aq) / (255 * 255)
		}

		acc += contribution * pr.offsetWeights[i]
	}
	return acc
}
