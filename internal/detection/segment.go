//go:build !gocv

package detection

import (
	"image"

	"github.com/ironsheep/wellplate/internal/imaging"
)

// Segment converts a working image into a binary foreground mask.
//
// A pixel is foreground when its HSV saturation exceeds p.SatThreshold and its
// value exceeds p.ValThreshold. The raw mask is opened with a p.OpenKernel
// element to drop salt noise, then closed with a p.CloseKernel element to fill
// small holes and rejoin slightly fragmented wells.
//
// An image with no qualifying pixels yields an all-zero mask.
func Segment(img *image.NRGBA, p Params) *image.Gray {
	planes := imaging.HSVPlanes(img)
	mask := imaging.And(
		imaging.ThresholdAbove(planes.S, p.SatThreshold),
		imaging.ThresholdAbove(planes.V, p.ValThreshold),
	)
	mask = imaging.Open(mask, p.OpenKernel)
	return imaging.Close(mask, p.CloseKernel)
}
