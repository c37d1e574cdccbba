// Package params holds the synthesis Parameters record and named
// presets, mirroring the teacher's profile package (a small table of
// named presets over the same tunables, with one fallback lookup
// function).
package params

// Parameters controls the synthesis algorithm. Field names and
// defaults follow spec.md §6 exactly.
type Parameters struct {
	// Corpus selects which region is corpus. Reserved; corpus
	// membership is mask-derived (mask value below the
	// totally-selected threshold), this field exists for parity
	// with the original ABI and is not otherwise consulted.
	Corpus int

	Neighbors int // offsets per patch
	Trys      int // candidates per target pixel

	MakeSeamlesslyTileableHorizontally bool
	MakeSeamlesslyTileableVertically   bool

	// MatchContextType: 0 = vanilla, 1 = directional weighting.
	MatchContextType int

	// HasMapChannel declares that the caller's buffer carries one
	// extra pixelel per pixel beyond the base format (a user-supplied
	// guide channel, weighted by MapWeight during matching). Format
	// alone (Gray/GrayA/RGB/RGBA) never implies a map channel; this
	// flag is the only thing that does, so a caller who leaves it
	// false is never asked to provide bytes it didn't pack.
	HasMapChannel bool

	MapWeight             float64
	SensitivityToOutliers float64

	// Seed drives the PRNG. Zero is a valid seed (prng.New treats
	// it as "unset" and substitutes a fixed non-zero constant, so
	// determinism still holds for Seed == 0).
	Seed uint64

	// Workers bounds the thread pool used by the refiner. <=0 means
	// "use the package default" (see refiner.DefaultThreadLimit).
	Workers int
}

// Default returns the spec.md §6 default parameters.
func Default() Parameters {
	return Parameters{
		Corpus:                0,
		Neighbors:             30,
		Trys:                  200,
		MatchContextType:      1,
		MapWeight:             0.5,
		SensitivityToOutliers: 0.117,
	}
}

// Named presets, analogous to the teacher's profile.Get lookup table:
// a small set of tuned starting points layered on top of Default.
var presets = map[string]func() Parameters{
	"default": Default,
	"fast": func() Parameters {
		p := Default()
		p.Neighbors = 16
		p.Trys = 60
		return p
	},
	"hq": func() Parameters {
		p := Default()
		p.Neighbors = 48
		p.Trys = 400
		return p
	},
}

// Get returns a named preset, falling back to Default for unknown
// names (mirrors profile.Get's unknown-name fallback behavior).
func Get(name string) Parameters {
	if f, ok := presets[name]; ok {
		return f()
	}
	return Default()
}

// Validate reports whether the parameters are usable. A non-nil
// error here is the InvalidParameters case of spec.md §7.
func (p Parameters) Validate() error {
	switch {
	case p.Neighbors <= 0:
		return errInvalid("neighbors must be > 0")
	case p.Trys <= 0:
		return errInvalid("trys must be > 0")
	case p.MapWeight < 0:
		return errInvalid("mapWeight must be >= 0")
	case p.SensitivityToOutliers <= 0:
		return errInvalid("sensitivityToOutliers must be > 0")
	case p.MatchContextType != 0 && p.MatchContextType != 1:
		return errInvalid("matchContextType must be 0 or 1")
	}
	return nil
}

// defaultWorkers mirrors refiner.DefaultThreadLimit. Duplicated here
// rather than imported because params sits below refiner in the
// dependency graph (refiner depends on prober, not the reverse); the
// two constants are kept in sync deliberately, see DESIGN.md.
const defaultWorkers = 4

// EffectiveParameters returns a copy of p adapted to an image of the
// given dimensions, analogous to Profile.EffectiveWidths: it never
// asks the prober to search for more neighbors or candidates than a
// small image actually has pixels for, and it resolves the "use the
// package default" zero-value knobs (Workers) into a concrete number
// so callers that log or persist Parameters see what actually ran,
// not a sentinel.
func (p Parameters) EffectiveParameters(width, height int) Parameters {
	eff := p
	pixelCount := width * height

	if pixelCount > 0 {
		if eff.Neighbors > pixelCount {
			eff.Neighbors = pixelCount
		}
		if eff.Trys > pixelCount {
			eff.Trys = pixelCount
		}
	}
	if eff.Workers <= 0 {
		eff.Workers = defaultWorkers
	}
	return eff
}

type invalidParamsError string

func (e invalidParamsError) Error() string { return "invalid parameters: " + string(e) }

func errInvalid(msg string) error { return invalidParamsError(msg) }
