package pixmap

// BoolMap is a 1-byte/pixel flag grid, used for hasValueMap (committed
// pixel). recentProberMap uses ByteMap, which has the same layout.
type BoolMap struct {
	Width, Height int
	bytes         []byte
}

// NewBoolMap allocates a zeroed (all-false) BoolMap.
func NewBoolMap(width, height int) *BoolMap {
	return &BoolMap{Width: width, Height: height, bytes: make([]byte, width*height)}
}

func (m *BoolMap) index(x, y int) int { return y*m.Width + x }

// Get reads the flag at (x, y).
func (m *BoolMap) Get(x, y int) bool { return m.bytes[m.index(x, y)] != 0 }

// Set writes the flag at (x, y). Plain byte store — see pixmap.PixelMap.Set.
func (m *BoolMap) Set(x, y int, v bool) {
	if v {
		m.bytes[m.index(x, y)] = 1
	} else {
		m.bytes[m.index(x, y)] = 0
	}
}

// ByteMap is a 1-byte/pixel tag grid, used for recentProberMap: each
// worker writes its own per-visit rotating tag (Prober.visitTag) into
// the cells it probes, to approximately deduplicate candidate sources
// within one TryPixel visit. The tag changes every visit, so a cell
// tagged by an earlier visit is never mistaken for "already probed
// this visit." Collisions between threads sharing the same tag value
// at the same moment are tolerated — the dedup is a heuristic, not a
// correctness requirement.
type ByteMap struct {
	Width, Height int
	bytes         []byte
}

// NewByteMap allocates a zeroed ByteMap.
func NewByteMap(width, height int) *ByteMap {
	return &ByteMap{Width: width, Height: height, bytes: make([]byte, width*height)}
}

func (m *ByteMap) index(x, y int) int { return y*m.Width + x }

// Get reads the tag at (x, y).
func (m *ByteMap) Get(x, y int) byte { return m.bytes[m.index(x, y)] }

// Set writes the tag at (x, y).
func (m *ByteMap) Set(x, y int, v byte) { m.bytes[m.index(x, y)] = v }

// Point is a signed 2-D integer coordinate, narrow enough (int16) to
// pack two of them into the 4 bytes/pixel the original SourceOfMap
// used, while staying a normal Go value everywhere else in this
// package (points.Sequence uses its own int-based points.Point for
// target/corpus lists).
type Point struct {
	X, Y int16
}

// undefinedCoord marks an unset SourceMap entry. Image coordinates
// are never negative, so -1 is an unambiguous "undefined" sentinel.
const undefinedCoord = -1

// SourceMap is sourceOfMap: for each target pixel, the (x, y) in the
// target map that its current value was copied from, or undefined.
type SourceMap struct {
	Width, Height int
	xs, ys        []int16
}

// NewSourceMap allocates a SourceMap with every entry undefined.
func NewSourceMap(width, height int) *SourceMap {
	m := &SourceMap{
		Width: width, Height: height,
		xs: make([]int16, width*height),
		ys: make([]int16, width*height),
	}
	for i := range m.xs {
		m.xs[i] = undefinedCoord
		m.ys[i] = undefinedCoord
	}
	return m
}

func (m *SourceMap) index(x, y int) int { return y*m.Width + x }

// Get returns the recorded source point and whether it is defined.
func (m *SourceMap) Get(x, y int) (Point, bool) {
	i := m.index(x, y)
	if m.xs[i] == undefinedCoord && m.ys[i] == undefinedCoord {
		return Point{}, false
	}
	return Point{X: m.xs[i], Y: m.ys[i]}, true
}

// Set records the source point for (x, y). Plain writes to the
// worker's own target pixel; see the package-level concurrency note
// on pixmap.PixelMap.Set.
func (m *SourceMap) Set(x, y int, src Point) {
	i := m.index(x, y)
	m.xs[i] = src.X
	m.ys[i] = src.Y
}
