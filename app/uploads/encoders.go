package uploads

import (
	"image"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/gen2brain/avif"
)

// Encoder re-encodes a resized variant into one output format.
type Encoder struct {
	Format      string
	ContentType string
	Encode      func(w io.Writer, img image.Image) error
}

// DefaultEncoders returns the production output set. AVIF first so modern
// clients get the smallest files, PNG as the universal fallback.
func DefaultEncoders() []Encoder {
	return []Encoder{
		{
			Format:      "avif",
			ContentType: "image/avif",
			Encode: func(w io.Writer, img image.Image) error {
				return avif.Encode(w, img)
			},
		},
		{
			Format:      "webp",
			ContentType: "image/webp",
			Encode: func(w io.Writer, img image.Image) error {
				return webp.Encode(w, img, &webp.Options{Quality: 85})
			},
		},
		{
			Format:      "png",
			ContentType: "image/png",
			Encode: func(w io.Writer, img image.Image) error {
				return png.Encode(w, img)
			},
		},
	}
}
