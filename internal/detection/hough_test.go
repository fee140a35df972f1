package detection

import (
	"image/color"
	"math"
	"testing"
)

func TestHoughCircles_DarkDisk(t *testing.T) {
	img := createPlateImage(200, 200, []Circle{{X: 100, Y: 100, R: 25}}, color.NRGBA{A: 255})

	circles := houghCircles(img, DefaultHoughParams())
	found := false
	for _, c := range circles {
		if math.Hypot(float64(c.X-100), float64(c.Y-100)) <= 3 && abs(c.R-25) <= 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("disk at (100,100) r=25 not found, got %+v", circles)
	}
}

func TestHoughCircles_Uniform(t *testing.T) {
	img := createPlateImage(100, 100, nil, wellColor)
	if got := houghCircles(img, DefaultHoughParams()); len(got) != 0 {
		t.Errorf("uniform image should have no circles, got %+v", got)
	}
}

func TestExtract_FallbackAddsUnsaturatedWell(t *testing.T) {
	// A gray well fails the saturation threshold but has a strong edge.
	gray := color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	img := createPlateImage(300, 200, []Circle{{X: 150, Y: 100, R: 25}}, gray)
	p := DefaultParams()

	ext := Extract(Segment(img, p), img, p)
	if !ext.FallbackRan || ext.ContourBlobs != 0 {
		t.Fatalf("expected fallback with no contour blobs, got %+v", ext)
	}
	if ext.FallbackAdded == 0 || len(ext.Circles) == 0 {
		t.Fatalf("fallback should add the gray well, got %+v", ext)
	}
}
