package detection

import (
	"image"
	"math"
	"math/rand"
)

// circleF is a circle with floating-point center and radius.
type circleF struct {
	X, Y, R float64
}

func (c circleF) contains(x, y float64) bool {
	dx, dy := x-c.X, y-c.Y
	return math.Sqrt(dx*dx+dy*dy) <= c.R+1e-7
}

// minEnclosingCircle returns the smallest circle containing every point.
//
// Points are visited in a shuffled order for expected linear time. The shuffle
// uses a fixed seed so the result is reproducible.
func minEnclosingCircle(pts []image.Point) circleF {
	switch len(pts) {
	case 0:
		return circleF{}
	case 1:
		return circleF{X: float64(pts[0].X), Y: float64(pts[0].Y)}
	}

	p := make([][2]float64, len(pts))
	for i, pt := range pts {
		p[i] = [2]float64{float64(pt.X), float64(pt.Y)}
	}
	rng := rand.New(rand.NewSource(1))
	rng.Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })

	c := circleF{X: p[0][0], Y: p[0][1]}
	for i := 1; i < len(p); i++ {
		if c.contains(p[i][0], p[i][1]) {
			continue
		}
		c = circleF{X: p[i][0], Y: p[i][1]}
		for j := 0; j < i; j++ {
			if c.contains(p[j][0], p[j][1]) {
				continue
			}
			c = diameterCircle(p[i], p[j])
			for k := 0; k < j; k++ {
				if c.contains(p[k][0], p[k][1]) {
					continue
				}
				c = circumcircle(p[i], p[j], p[k])
			}
		}
	}
	return c
}

// diameterCircle returns the circle with segment ab as its diameter.
func diameterCircle(a, b [2]float64) circleF {
	cx, cy := (a[0]+b[0])/2, (a[1]+b[1])/2
	return circleF{X: cx, Y: cy, R: math.Hypot(a[0]-cx, a[1]-cy)}
}

// circumcircle returns the circle through a, b and c. Collinear points fall
// back to the circle spanning the two farthest apart.
func circumcircle(a, b, c [2]float64) circleF {
	bx, by := b[0]-a[0], b[1]-a[1]
	cx, cy := c[0]-a[0], c[1]-a[1]
	d := 2 * (bx*cy - by*cx)
	if math.Abs(d) < 1e-12 {
		best := diameterCircle(a, b)
		if alt := diameterCircle(a, c); alt.R > best.R {
			best = alt
		}
		if alt := diameterCircle(b, c); alt.R > best.R {
			best = alt
		}
		return best
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	return circleF{X: a[0] + ux, Y: a[1] + uy, R: math.Hypot(ux, uy)}
}
