package encoder

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// DefaultQuality is the lossy-encode quality bench's per-fixture
// write uses; cmd/fill uses its own, slightly higher, single-image
// quality since batch throughput isn't a concern there.
const DefaultQuality = 90

// ErrNoEncoderAvailable is returned by EncodeBest when neither the
// requested format nor the PNG fallback has a usable encoder — e.g.
// the requested format is webp/avif and neither cwebp nor avifenc is
// installed, and the standard-library PNG encoder is somehow also
// unavailable (Available() on PNGEncoder/JPEGEncoder is always true,
// so in practice this only fires if a future encoder implementation
// narrows Available()).
var ErrNoEncoderAvailable = errors.New("encoder: no usable encoder available")

// Registry holds all available encoders and selects the best one per format.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry, probing all encoders for availability.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[string]Encoder),
	}

	// Register all encoders. Only available ones will be used.
	all := []Encoder{
		&AVIFEncoder{},
		&WebPEncoder{},
		&JPEGEncoder{},
		&PNGEncoder{},
	}

	for _, enc := range all {
		if enc.Available() {
			r.encoders[enc.Format()] = enc
		}
	}

	return r
}

// Get returns an encoder for the given format, or nil if unavailable.
func (r *Registry) Get(format string) Encoder {
	return r.encoders[strings.ToLower(format)]
}

// Available returns all available format names.
func (r *Registry) Available() []string {
	var result []string
	// Maintain priority order.
	for _, f := range []string{"avif", "webp", "jpeg", "png"} {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// EncodeBest encodes img at quality in the requested format, falling
// back to PNG if format has no available encoder, and returning the
// Encoder actually used so the caller can pick a matching output
// extension. resynth's fill command uses it after picking a
// post-synthesis output format; bench looks the format up with Get and
// does not fall back.
func (r *Registry) EncodeBest(img image.Image, format string, quality int) ([]byte, Encoder, error) {
	enc := r.Get(format)
	if enc == nil {
		enc = r.Get("png")
	}
	if enc == nil {
		return nil, nil, ErrNoEncoderAvailable
	}
	data, err := enc.Encode(img, quality)
	if err != nil {
		return nil, nil, err
	}
	return data, enc, nil
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	return fmt.Sprintf("encoders: %s", strings.Join(avail, ", "))
}
