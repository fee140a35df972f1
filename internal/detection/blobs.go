package detection

import (
	"image"
	"math"
	"sort"
)

// Extraction is the outcome of blob extraction on one working image.
type Extraction struct {
	// Circles are the accepted wells, deduplicated and sorted by (Y, X).
	Circles []Circle
	// ContourBlobs counts circles accepted from mask boundaries.
	ContourBlobs int
	// FallbackRan reports whether the Hough search was run.
	FallbackRan bool
	// FallbackAdded counts Hough circles that survived duplicate suppression.
	FallbackAdded int
}

// Extract converts a foreground mask into candidate well circles.
//
// Each external boundary of the mask is filtered by area (p.MinArea) and
// circularity (p.MinCircularity) and fitted with its minimum enclosing circle.
// If fewer than p.ExpectedCols circles survive and p.Fallback is set, a Hough
// circle search runs over img and its circles are merged in with duplicate
// suppression.
//
// An empty mask yields an empty (non-nil) circle list unless the fallback
// finds circles in img.
func Extract(mask *image.Gray, img *image.NRGBA, p Params) *Extraction {
	circles := make([]Circle, 0)

	for _, contour := range findExternalContours(mask) {
		area := polygonArea(contour)
		if area < p.MinArea {
			continue
		}
		perimeter := polygonPerimeter(contour)
		if perimeter == 0 {
			continue
		}
		circularity := 4 * math.Pi * area / (perimeter * perimeter)
		if circularity < p.MinCircularity {
			continue
		}

		c := minEnclosingCircle(contour)
		r := int(c.R)
		if r <= 0 {
			continue
		}
		circles = append(circles, Circle{X: int(c.X), Y: int(c.Y), R: r})
	}

	ext := &Extraction{ContourBlobs: len(circles)}

	if p.Fallback && len(circles) < p.ExpectedCols {
		ext.FallbackRan = true
		before := len(circles)
		circles = mergeFallback(circles, houghCircles(img, p.Hough), p.DuplicateRatio)
		ext.FallbackAdded = len(circles) - before
	}

	ext.Circles = normalizeCircles(circles)
	return ext
}

// mergeFallback appends each candidate unless a circle already in the list
// (including candidates added earlier) lies within ratio × the larger radius.
func mergeFallback(accepted, candidates []Circle, ratio float64) []Circle {
	for _, c := range candidates {
		if c.R <= 0 {
			continue
		}
		duplicate := false
		for _, a := range accepted {
			if isDuplicate(a, c, ratio) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

// isDuplicate reports whether a and b are the same physical well.
func isDuplicate(a, b Circle, ratio float64) bool {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	larger := a.R
	if b.R > larger {
		larger = b.R
	}
	return math.Hypot(dx, dy) < ratio*float64(larger)
}

// normalizeCircles removes exact duplicates and sorts by (Y, X, R).
func normalizeCircles(circles []Circle) []Circle {
	seen := make(map[Circle]bool, len(circles))
	out := make([]Circle, 0, len(circles))
	for _, c := range circles {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].R < out[j].R
	})
	return out
}
