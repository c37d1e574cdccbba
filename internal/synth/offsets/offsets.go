// Package offsets builds NeighborhoodOffsets: the sorted list of
// (dx, dy) deltas that defines the local patch shape used by the
// prober's metric. Generated once per synthesis and shared read-only
// across workers.
package offsets

import "sort"

// Offset is one (dx, dy) delta from a patch center.
type Offset struct {
	DX, DY int
}

func (o Offset) sqRadius() int { return o.DX*o.DX + o.DY*o.DY }

// Build returns up to neighbors offsets, sorted by ascending squared
// radius (axis origin (0,0) first), covering a square big enough to
// guarantee at least neighbors candidates exist before truncation.
//
// Ties in squared radius are broken by (dy, dx) ascending — a
// deterministic, arbitrary-but-fixed rule (spec.md §3 requires only
// that the rule be deterministic, not which one).
func Build(neighbors int) []Offset {
	if neighbors <= 0 {
		return []Offset{{0, 0}}
	}

	// A square of side 2R+1 centered on the origin contains
	// (2R+1)^2 points; grow R until that count is comfortably >=
	// neighbors, then sort and truncate.
	r := 1
	for (2*r+1)*(2*r+1) < neighbors+8 {
		r++
	}

	all := make([]Offset, 0, (2*r+1)*(2*r+1))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			all = append(all, Offset{DX: dx, DY: dy})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		ri, rj := all[i].sqRadius(), all[j].sqRadius()
		if ri != rj {
			return ri < rj
		}
		if all[i].DY != all[j].DY {
			return all[i].DY < all[j].DY
		}
		return all[i].DX < all[j].DX
	})

	if len(all) > neighbors {
		all = all[:neighbors]
	}
	return all
}
