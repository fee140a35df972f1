package imaging

import (
	"image"
	"math"
)

const (
	maskOn  = 255
	maskOff = 0
)

// ThresholdAbove returns a mask whose foreground is every pixel of plane
// strictly greater than level.
//
// Compared directly: segment.Threshold ranks gray pixels through a float
// weighted sum that truncates some values to v-1.
func ThresholdAbove(plane *image.Gray, level uint8) *image.Gray {
	out := image.NewGray(plane.Bounds())
	for i, v := range plane.Pix {
		if v > level {
			out.Pix[i] = maskOn
		}
	}
	return out
}

// And returns the pixel-wise intersection of two same-sized masks.
func And(a, b *image.Gray) *image.Gray {
	out := image.NewGray(a.Bounds())
	for i := range out.Pix {
		if a.Pix[i] != maskOff && b.Pix[i] != maskOff {
			out.Pix[i] = maskOn
		}
	}
	return out
}

// Open erodes then dilates mask with an elliptical structuring element of
// the given odd size, removing specks smaller than the element. A 3×3
// ellipse is a cross.
func Open(mask *image.Gray, size int) *image.Gray {
	el := ellipse(size)
	if el == nil {
		return cloneMask(mask)
	}
	return morph(morph(mask, el, true), el, false)
}

// Close dilates then erodes mask with an elliptical structuring element of
// the given odd size, filling pinholes and joining slightly fragmented
// regions.
func Close(mask *image.Gray, size int) *image.Gray {
	el := ellipse(size)
	if el == nil {
		return cloneMask(mask)
	}
	return morph(morph(mask, el, false), el, true)
}

// CountForeground returns the number of foreground pixels in mask.
func CountForeground(mask *image.Gray) int {
	n := 0
	for _, p := range mask.Pix {
		if p != maskOff {
			n++
		}
	}
	return n
}

// IsForeground reports whether (x, y) is inside mask and set.
func IsForeground(mask *image.Gray, x, y int) bool {
	if !(image.Point{X: x, Y: y}.In(mask.Rect)) {
		return false
	}
	return mask.Pix[mask.PixOffset(x, y)] != maskOff
}

// element is a structuring element symmetric about its center, stored as the
// half-width of each row. The middle row is the anchor row.
type element []int

// ellipse returns the elliptical element inscribed in a size×size box, the
// same shape OpenCV builds for MORPH_ELLIPSE. Sizes below 3 yield nil.
func ellipse(size int) element {
	if size < 3 {
		return nil
	}
	r := size / 2
	el := make(element, 2*r+1)
	for i := range el {
		dy := i - r
		el[i] = int(math.Round(float64(r) * math.Sqrt(float64(r*r-dy*dy)/float64(r*r))))
	}
	return el
}

// morph erodes (erode true) or dilates mask with el. Pixels outside the mask
// are ignored, so erosion does not eat into regions touching the border.
//
// Each row keeps a running count of foreground pixels, making every element
// row a constant-time window query.
func morph(mask *image.Gray, el element, erode bool) *image.Gray {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	if w == 0 || h == 0 {
		return out
	}

	prefix := make([]int32, h*(w+1))
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		p := prefix[y*(w+1) : (y+1)*(w+1)]
		for x, v := range row {
			p[x+1] = p[x]
			if v != maskOff {
				p[x+1]++
			}
		}
	}

	r := len(el) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			set := erode
			for i, hw := range el {
				yy := y + i - r
				if yy < 0 || yy >= h {
					continue
				}
				x0, x1 := max(x-hw, 0), min(x+hw+1, w)
				p := prefix[yy*(w+1):]
				n := int(p[x1] - p[x0])
				if erode && n < x1-x0 {
					set = false
					break
				}
				if !erode && n > 0 {
					set = true
					break
				}
			}
			if set {
				out.Pix[y*out.Stride+x] = maskOn
			}
		}
	}
	return out
}

func cloneMask(mask *image.Gray) *image.Gray {
	out := image.NewGray(mask.Bounds())
	copy(out.Pix, mask.Pix)
	return out
}
