// Package encoder picks and runs the final output codec for a
// synthesized image, the last step of both cmd/fill and internal/bench:
// the filled pixmap comes back from synth.Synthesize as a packed
// buffer, gets re-imaged by imageio.Pack, and is handed to an Encoder
// chosen here for the caller's requested output format.
package encoder

import (
	"image"
)

// Encoder encodes an image to a specific format.
type Encoder interface {
	// Format returns the output format name (e.g. "jpeg", "webp", "avif", "png").
	Format() string

	// Encode converts the image to bytes at the given quality (1-100).
	Encode(img image.Image, quality int) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp, avifenc) may not be installed.
	Available() bool

	// Extension returns the file extension without dot.
	Extension() string
}
