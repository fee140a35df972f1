package imaging

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV holds the three 8-bit channel planes of an image in HSV color space.
//
// Each plane has the same bounds as the source working copy:
//   - H: hue in degrees / 2 (0-179)
//   - S: saturation scaled to 0-255
//   - V: value (brightest RGB component) 0-255
type HSV struct {
	H *image.Gray
	S *image.Gray
	V *image.Gray
}

// HSVPlanes converts an NRGBA working copy to HSV channel planes.
func HSVPlanes(img *image.NRGBA) *HSV {
	b := img.Bounds()
	planes := &HSV{
		H: image.NewGray(b),
		S: image.NewGray(b),
		V: image.NewGray(b),
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			h, s, v := pixelHSV(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
			j := planes.S.PixOffset(x, y)
			planes.H.Pix[j] = h
			planes.S.Pix[j] = s
			planes.V.Pix[j] = v
		}
	}

	return planes
}

// pixelHSV converts one 8-bit RGB triple to 8-bit H, S, V.
func pixelHSV(r, g, b uint8) (uint8, uint8, uint8) {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	h, s, v := c.Hsv()

	hq := math.Round(h / 2)
	if hq >= 180 {
		hq = 0
	}
	return uint8(hq), uint8(math.Round(s * 255)), uint8(math.Round(v * 255))
}

// Saturation returns the 8-bit saturation of a single pixel.
// Used by the color sampler when the saturation channel is selected.
func Saturation(r, g, b uint8) uint8 {
	_, s, _ := pixelHSV(r, g, b)
	return s
}
