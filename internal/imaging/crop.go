package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// Downscale shrinks img so that neither dimension exceeds maxDim, preserving
// the aspect ratio. It returns the working image and the factor that maps its
// coordinates back to the original (original = scaled * factor).
//
// Images already within bounds are returned unchanged with a factor of 1.
func Downscale(img *image.NRGBA, maxDim int) (*image.NRGBA, float64) {
	b := img.Bounds()
	longest := b.Dx()
	if b.Dy() > longest {
		longest = b.Dy()
	}
	if maxDim <= 0 || longest <= maxDim {
		return img, 1.0
	}

	small := imaging.Fit(img, maxDim, maxDim, imaging.Box)
	factor := float64(b.Dx()) / float64(small.Bounds().Dx())
	return small, factor
}

// Crop extracts a rectangular region, clipped to the image bounds.
func Crop(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	r := rect.Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", rect, img.Bounds())
	}
	return imaging.Crop(img, r), nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
