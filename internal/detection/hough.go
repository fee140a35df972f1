//go:build !gocv

package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/wellplate/internal/imaging"
)

// houghCircles finds circles with the gradient Hough method.
//
// The image is converted to blurred grayscale, edges are found by Sobel
// magnitude with non-maximum suppression and hysteresis (high threshold
// p.Param1, low p.Param1/2), and every edge pixel votes for centers along its
// gradient direction in an accumulator scaled down by p.DP. Local maxima with
// at least p.Param2 votes, at least p.MinDist apart, become centers; each
// center's radius is the distance in [p.MinRadius, p.MaxRadius] supported by
// the most edge pixels.
func houghCircles(img *image.NRGBA, p HoughParams) []Circle {
	if img == nil || p.MaxRadius < p.MinRadius || p.MaxRadius <= 0 {
		return nil
	}
	dp := p.DP
	if dp < 1 {
		dp = 1
	}

	gray := imaging.BlurredGray(img, p.BlurSigma)
	grad := imaging.Sobel(gray)
	edges := cannyEdges(grad, p.Param1/2, p.Param1)
	if len(edges) == 0 {
		return nil
	}

	accW := int(float64(grad.Width)/dp) + 2
	accH := int(float64(grad.Height)/dp) + 2
	acc := make([]int, accW*accH)

	minR := float64(p.MinRadius)
	if minR < 1 {
		minR = 1
	}
	maxR := float64(p.MaxRadius)

	for _, e := range edges {
		i := e.Y*grad.Width + e.X
		mag := grad.Mag[i]
		ux, uy := grad.DX[i]/mag, grad.DY[i]/mag
		for _, sign := range [2]float64{1, -1} {
			lastX, lastY := -1, -1
			for r := minR; r <= maxR; r++ {
				ax := int((float64(e.X) + sign*ux*r) / dp)
				ay := int((float64(e.Y) + sign*uy*r) / dp)
				if ax < 0 || ay < 0 || ax >= accW || ay >= accH {
					break
				}
				if ax == lastX && ay == lastY {
					continue
				}
				acc[ay*accW+ax]++
				lastX, lastY = ax, ay
			}
		}
	}

	centers := accumulatorPeaks(acc, accW, accH, int(math.Ceil(p.Param2)))
	circles := make([]Circle, 0)
	kept := make([][2]float64, 0)
	for _, c := range centers {
		cx := (float64(c.X) + 0.5) * dp
		cy := (float64(c.Y) + 0.5) * dp

		tooClose := false
		for _, k := range kept {
			if math.Hypot(cx-k[0], cy-k[1]) < p.MinDist {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		r, support := bestRadius(edges, cx, cy, p.MinRadius, p.MaxRadius)
		if r <= 0 || float64(support) < p.Param2 {
			continue
		}
		kept = append(kept, [2]float64{cx, cy})
		circles = append(circles, Circle{X: int(cx), Y: int(cy), R: r})
	}
	return circles
}

// cannyEdges thins gradient magnitudes by non-maximum suppression and keeps
// pixels above high, plus pixels above low connected to them.
func cannyEdges(g *imaging.Gradient, low, high float64) []image.Point {
	w, h := g.Width, g.Height
	thin := make([]float64, w*h)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := g.Mag[i]
			if m < low || m == 0 {
				continue
			}
			var n1, n2 float64
			angle := math.Atan2(g.DY[i], g.DX[i]) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			switch {
			case angle < 22.5 || angle >= 157.5:
				n1, n2 = g.Mag[i-1], g.Mag[i+1]
			case angle < 67.5:
				n1, n2 = g.Mag[i-w-1], g.Mag[i+w+1]
			case angle < 112.5:
				n1, n2 = g.Mag[i-w], g.Mag[i+w]
			default:
				n1, n2 = g.Mag[i-w+1], g.Mag[i+w-1]
			}
			if m >= n1 && m >= n2 {
				thin[i] = m
			}
		}
	}

	strong := make([]bool, w*h)
	stack := make([]int, 0)
	for i, m := range thin {
		if m >= high {
			strong[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if !strong[j] && thin[j] >= low && thin[j] > 0 {
					strong[j] = true
					stack = append(stack, j)
				}
			}
		}
	}

	edges := make([]image.Point, 0)
	for i, s := range strong {
		if s {
			edges = append(edges, image.Point{X: i % w, Y: i / w})
		}
	}
	return edges
}

type peak struct {
	image.Point
	votes int
}

// accumulatorPeaks returns 4-neighborhood local maxima with at least
// threshold votes, strongest first. Ties break by raster position.
func accumulatorPeaks(acc []int, w, h, threshold int) []peak {
	if threshold < 1 {
		threshold = 1
	}
	peaks := make([]peak, 0)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := acc[y*w+x]
			if v < threshold {
				continue
			}
			if v > acc[y*w+x-1] && v >= acc[y*w+x+1] && v > acc[(y-1)*w+x] && v >= acc[(y+1)*w+x] {
				peaks = append(peaks, peak{Point: image.Point{X: x, Y: y}, votes: v})
			}
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})
	return peaks
}

// bestRadius returns the radius in [minR, maxR] at which the most edge pixels
// lie from (cx, cy), with that count. Counts are normalized by radius when
// choosing so larger rings do not win by circumference alone.
func bestRadius(edges []image.Point, cx, cy float64, minR, maxR int) (int, int) {
	if minR < 1 {
		minR = 1
	}
	hist := make([]int, maxR+2)
	for _, e := range edges {
		dx := float64(e.X) - cx
		dy := float64(e.Y) - cy
		if math.Abs(dx) > float64(maxR)+1 || math.Abs(dy) > float64(maxR)+1 {
			continue
		}
		d := int(math.Round(math.Hypot(dx, dy)))
		if d >= minR && d <= maxR {
			hist[d]++
		}
	}

	bestR, bestCount := 0, 0
	bestScore := 0.0
	for r := minR; r <= maxR; r++ {
		// Blurred edges spread over neighboring bins.
		count := hist[r] + hist[r-1] + hist[r+1]
		score := float64(count) / float64(r)
		if score > bestScore {
			bestR, bestCount, bestScore = r, count, score
		}
	}
	return bestR, bestCount
}
