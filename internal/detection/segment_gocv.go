//go:build gocv

package detection

import (
	"image"

	"gocv.io/x/gocv"
)

// Segment converts a working image into a binary foreground mask with
// OpenCV: HSV thresholds on saturation and value, then an elliptical opening
// (p.OpenKernel) and closing (p.CloseKernel).
//
// An image with no qualifying pixels yields an all-zero mask.
func Segment(img *image.NRGBA, p Params) *image.Gray {
	src := imageToMat(img)
	defer src.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	// InRange bounds are inclusive; thresholds are strict.
	mask := gocv.NewMat()
	defer mask.Close()
	lower := gocv.NewScalar(0, float64(p.SatThreshold)+1, float64(p.ValThreshold)+1, 0)
	upper := gocv.NewScalar(255, 255, 255, 0)
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	morphologyEx(&mask, gocv.MorphOpen, p.OpenKernel)
	morphologyEx(&mask, gocv.MorphClose, p.CloseKernel)

	out := image.NewGray(img.Bounds())
	copy(out.Pix, mask.ToBytes())
	return out
}

// morphologyEx applies op in place with a size×size elliptical kernel.
// Sizes below 3 leave the mask unchanged.
func morphologyEx(mask *gocv.Mat, op gocv.MorphType, size int) {
	if size < 3 {
		return
	}
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(size, size))
	defer kernel.Close()
	gocv.MorphologyEx(*mask, mask, op, kernel)
}
