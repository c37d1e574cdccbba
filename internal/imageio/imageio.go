// Package imageio bridges decoded image.Image values and the synth
// engine's packed Buffer/Mask layout: unpacking a source image (and an
// optional mask image) into tightly packed pixelel buffers, and
// packing a synthesized buffer back into an image.Image for encoding.
//
// Decoding recognizes the same formats as the teacher's pipeline
// package: PNG/JPEG/GIF via the standard library, BMP/TIFF/WebP via
// golang.org/x/image's blank-imported decoders.
package imageio

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/resynth/resynth/internal/synth"
	"github.com/resynth/resynth/internal/synth/pixmap"
)

// Decode reads and decodes an image from r, returning the decoded
// image and the format name reported by image.Decode.
func Decode(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}

// Unpack converts img into a synth.Buffer in RGBA format, tightly
// packed (RowBytes == Width*4), with the format the buffer was built
// for.
func Unpack(img image.Image) (*synth.Buffer, pixmap.Format) {
	nrgba := imaging.Clone(img) // normalizes to *image.NRGBA, draws into a fresh buffer
	b := nrgba.Bounds()
	width, height := b.Dx(), b.Dy()

	rowBytes := width * 4
	out := make([]byte, rowBytes*height)
	for y := 0; y < height; y++ {
		srcOff := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*rowBytes:(y+1)*rowBytes], nrgba.Pix[srcOff:srcOff+rowBytes])
	}

	return &synth.Buffer{Bytes: out, Width: width, Height: height, RowBytes: rowBytes}, pixmap.RGBA
}

// UnpackMask converts a mask image into a synth.Mask: one byte per
// pixel, the mask's red channel (masks are conventionally grayscale,
// but any image.Image works — only the red channel is sampled).
// maskImg's dimensions must match width/height; callers get
// synth.ErrMaskGeometryMismatch (via synth.Synthesize) when they
// don't.
func UnpackMask(maskImg image.Image, width, height int) *synth.Mask {
	b := maskImg.Bounds()
	if b.Dx() != width || b.Dy() != height {
		width, height = b.Dx(), b.Dy()
	}
	out := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := maskImg.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out[y*width+x] = byte(r >> 8)
		}
	}
	return &synth.Mask{Bytes: out, Width: width, Height: height, RowBytes: width}
}

// Pack converts a synthesized RGBA buffer back into an *image.NRGBA
// ready for encoding.
func Pack(buf *synth.Buffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	for y := 0; y < buf.Height; y++ {
		srcOff := y * buf.RowBytes
		dstOff := img.PixOffset(0, y)
		copy(img.Pix[dstOff:dstOff+buf.Width*4], buf.Bytes[srcOff:srcOff+buf.Width*4])
	}
	return img
}

// EncodePNG is the zero-dependency PNG output path, used by fill's
// preview writer and any caller that doesn't need the encoder
// registry's format negotiation.
func EncodePNG(img image.Image, w io.Writer) error {
	return png.Encode(w, img)
}
