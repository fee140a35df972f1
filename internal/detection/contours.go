package detection

import (
	"image"
	"math"

	"github.com/ironsheep/wellplate/internal/imaging"
)

// moore lists the 8 neighbor offsets in clockwise screen order starting east.
var moore = [8]image.Point{
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
}

// findExternalContours returns the outer boundary of every 8-connected
// foreground region of mask, in raster order of each region's first pixel.
//
// Each boundary is an ordered, closed polygon of pixel positions. Holes inside
// a region are ignored.
func findExternalContours(mask *image.Gray) [][]image.Point {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()
	visited := make([]bool, width*height)

	contours := make([][]image.Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !imaging.IsForeground(mask, b.Min.X+x, b.Min.Y+y) {
				continue
			}
			markRegion(mask, visited, x, y)
			contours = append(contours, traceBoundary(mask, image.Point{X: b.Min.X + x, Y: b.Min.Y + y}))
		}
	}

	return contours
}

// markRegion flood-fills the 8-connected region containing (startX, startY).
//
// Uses a stack-based approach (not recursive) to avoid stack overflow on
// large wells.
func markRegion(mask *image.Gray, visited []bool, startX, startY int) {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		i := p.Y*width + p.X
		if visited[i] || !imaging.IsForeground(mask, b.Min.X+p.X, b.Min.Y+p.Y) {
			continue
		}
		visited[i] = true

		for _, d := range moore {
			stack = append(stack, p.Add(d))
		}
	}
}

// traceBoundary walks the outer boundary of the region containing start using
// Moore-neighbor tracing. start must be the region's first pixel in raster
// order, so its west neighbor is background.
func traceBoundary(mask *image.Gray, start image.Point) []image.Point {
	contour := []image.Point{start}

	p := start
	back := start.Add(moore[4])
	var first image.Point
	moved := false

	limit := 4*len(mask.Pix) + 8
	for step := 0; step < limit; step++ {
		d := neighborIndex(back.Sub(p))

		var next, nextBack image.Point
		found := false
		for i := 1; i <= 8; i++ {
			nd := (d + i) % 8
			q := p.Add(moore[nd])
			if imaging.IsForeground(mask, q.X, q.Y) {
				next = q
				nextBack = p.Add(moore[(nd+7)%8])
				found = true
				break
			}
		}
		if !found {
			// Isolated pixel
			return contour
		}

		if moved && p == start && next == first {
			break
		}
		if !moved {
			first = next
			moved = true
		}

		p, back = next, nextBack
		contour = append(contour, p)
	}

	// The walk re-enters start before detecting closure.
	if len(contour) > 1 && contour[len(contour)-1] == start {
		contour = contour[:len(contour)-1]
	}
	return contour
}

// neighborIndex returns the moore index of a unit offset, or 4 (west) for an
// offset that is not a neighbor.
func neighborIndex(off image.Point) int {
	for i, d := range moore {
		if d == off {
			return i
		}
	}
	return 4
}

// polygonArea returns the enclosed area of a closed polygon (shoelace formula).
func polygonArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += float64(pts[i].X*pts[j].Y - pts[j].X*pts[i].Y)
	}
	return math.Abs(sum) / 2
}

// polygonPerimeter returns the length of a closed polygon.
func polygonPerimeter(pts []image.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		dx := float64(pts[j].X - pts[i].X)
		dy := float64(pts[j].Y - pts[i].Y)
		sum += math.Sqrt(dx*dx + dy*dy)
	}
	return sum
}
