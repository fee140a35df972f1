//go:build gocv

package detection

import (
	"image"

	"gocv.io/x/gocv"
)

// houghCircles runs OpenCV's gradient Hough transform over a blurred
// grayscale copy of img.
func houghCircles(img *image.NRGBA, p HoughParams) []Circle {
	if img == nil {
		return nil
	}

	src := imageToMat(img)
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), p.BlurSigma, p.BlurSigma, gocv.BorderDefault)

	circles := gocv.NewMat()
	defer circles.Close()
	gocv.HoughCirclesWithParams(blurred, &circles, gocv.HoughGradient,
		p.DP, p.MinDist, p.Param1, p.Param2, p.MinRadius, p.MaxRadius)

	if circles.Empty() || circles.Cols() == 0 {
		return nil
	}

	out := make([]Circle, 0, circles.Cols())
	for i := 0; i < circles.Cols(); i++ {
		v := circles.GetVecfAt(0, i)
		r := int(v[2])
		if r <= 0 {
			continue
		}
		out = append(out, Circle{X: int(v[0]), Y: int(v[1]), R: r})
	}
	return out
}

// imageToMat copies img into a BGR gocv.Mat.
func imageToMat(img *image.NRGBA) gocv.Mat {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			mat.SetUCharAt(y, x*3+0, img.Pix[i+2])
			mat.SetUCharAt(y, x*3+1, img.Pix[i+1])
			mat.SetUCharAt(y, x*3+2, img.Pix[i])
		}
	}
	return mat
}
