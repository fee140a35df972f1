package detection

import (
	"image"

	"github.com/ironsheep/wellplate/internal/imaging"
)

// Detection is the result of segmenting and extracting wells from one image.
type Detection struct {
	// Circles are in the coordinate space of the input image, sorted by (Y, X).
	Circles []Circle
	// Scale maps working-image coordinates to input coordinates (1 when the
	// image was not downscaled).
	Scale float64
	// ForegroundPixels is the mask foreground count on the working image.
	ForegroundPixels int
	ContourBlobs     int
	FallbackRan      bool
	FallbackAdded    int
}

// Detect segments img and extracts well circles.
//
// Images whose width or height exceeds p.MaxDimension are downscaled to fit
// before processing, and the returned circles are scaled back to input
// coordinates. img is not modified.
func Detect(img *image.NRGBA, p Params) *Detection {
	work, scale := imaging.Downscale(img, p.MaxDimension)

	mask := Segment(work, p)
	ext := Extract(mask, work, p)

	circles := ext.Circles
	if scale > 1.0 {
		circles = rescale(circles, scale)
	}

	return &Detection{
		Circles:          circles,
		Scale:            scale,
		ForegroundPixels: imaging.CountForeground(mask),
		ContourBlobs:     ext.ContourBlobs,
		FallbackRan:      ext.FallbackRan,
		FallbackAdded:    ext.FallbackAdded,
	}
}

// rescale maps circles from a downscaled working image back to the input.
func rescale(circles []Circle, scale float64) []Circle {
	out := make([]Circle, 0, len(circles))
	for _, c := range circles {
		r := int(float64(c.R) * scale)
		if r <= 0 {
			r = 1
		}
		out = append(out, Circle{
			X: int(float64(c.X) * scale),
			Y: int(float64(c.Y) * scale),
			R: r,
		})
	}
	return normalizeCircles(out)
}
