package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Gradient holds per-pixel Sobel derivatives of a grayscale image.
//
// Slices are row-major with Width*Height entries. Magnitudes are in 8-bit
// intensity units, so a hard black/white step produces values near 1020.
type Gradient struct {
	Width  int
	Height int
	DX     []float64
	DY     []float64
	Mag    []float64
}

// BlurredGray converts img to grayscale (0.3R + 0.6G + 0.1B) and applies a
// Gaussian blur of roughly the given sigma. A sigma <= 0 skips the blur.
func BlurredGray(img image.Image, sigma float64) *image.Gray {
	gray := effect.Grayscale(img)
	if sigma > 0 {
		// bild's kernel is only centered for whole radii.
		gray = blur.Gaussian(gray, math.Ceil(sigma))
	}
	return redPlane(gray)
}

// redPlane copies the R channel of a gray RGBA image into an *image.Gray.
func redPlane(img *image.RGBA) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return out
}

// Sobel computes the horizontal and vertical gradients of gray using 3x3
// Sobel operators. Border pixels use clamped (replicated) neighbors.
func Sobel(gray *image.Gray) *Gradient {
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()

	g := &Gradient{
		Width:  width,
		Height: height,
		DX:     make([]float64, width*height),
		DY:     make([]float64, width*height),
		Mag:    make([]float64, width*height),
	}

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	at := func(x, y int) float64 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return float64(gray.Pix[gray.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := at(x+kx, y+ky)
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			i := y*width + x
			g.DX[i] = gx
			g.DY[i] = gy
			g.Mag[i] = math.Sqrt(gx*gx + gy*gy)
		}
	}

	return g
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
