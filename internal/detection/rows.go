package detection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Row is one physical row of wells (a trial).
type Row struct {
	// Index is the 1-based trial index, top row first.
	Index int `json:"trial"`
	// Wells are ordered left to right.
	Wells []Circle `json:"wells"`
	// MeanY is the mean center Y of the row's wells.
	MeanY float64 `json:"mean_y"`
}

// Cluster groups circles into rows by density clustering on center Y only.
//
// The neighborhood radius is max(p.EpsFloor, median radius) × p.EpsScale, and
// a row needs at least p.MinRowSize wells; circles in no row are dropped.
// Rows are ordered by ascending mean Y and numbered from 1; wells within a
// row are ordered by ascending X.
//
// No circles yields an empty (non-nil) slice.
func Cluster(circles []Circle, p ClusterParams) []Row {
	rows := make([]Row, 0)
	if len(circles) == 0 {
		return rows
	}

	ys := make([]float64, len(circles))
	radii := make([]float64, len(circles))
	for i, c := range circles {
		ys[i] = float64(c.Y)
		radii[i] = float64(c.R)
	}

	eps := math.Max(p.EpsFloor, median(radii)) * p.EpsScale
	labels := dbscan(ys, eps, p.MinRowSize)

	groups := make(map[int][]Circle)
	order := make([]int, 0)
	for i, label := range labels {
		if label == noise {
			continue
		}
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], circles[i])
	}

	for _, label := range order {
		wells := groups[label]
		sort.SliceStable(wells, func(i, j int) bool {
			return wells[i].X < wells[j].X
		})

		wy := make([]float64, len(wells))
		for i, w := range wells {
			wy[i] = float64(w.Y)
		}
		rows = append(rows, Row{Wells: wells, MeanY: stat.Mean(wy, nil)})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MeanY < rows[j].MeanY
	})
	for i := range rows {
		rows[i].Index = i + 1
	}
	return rows
}

// median returns the middle value, averaging the two middle values for an
// even count. values is not modified.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// CountWells returns the number of wells assigned to rows. Circles that
// clustering discarded as noise are not counted.
func CountWells(rows []Row) int {
	n := 0
	for _, r := range rows {
		n += len(r.Wells)
	}
	return n
}
