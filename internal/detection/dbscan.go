package detection

import "math"

// noise marks points that belong to no cluster.
const noise = -1

// dbscan clusters 1-D values. A point is a core point when at least minPoints
// values (itself included) lie within eps of it. It returns one label per
// value: a cluster number starting at 0, or noise.
func dbscan(values []float64, eps float64, minPoints int) []int {
	n := len(values)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = noise
	}

	current := 0
	for i := 0; i < n; i++ {
		if labels[i] != noise {
			continue
		}

		neighbors := neighborsWithin(values, i, eps)
		if len(neighbors) < minPoints {
			continue
		}

		labels[i] = current
		expandCluster(values, labels, neighbors, current, eps, minPoints)
		current++
	}

	return labels
}

func neighborsWithin(values []float64, idx int, eps float64) []int {
	var neighbors []int
	for i := range values {
		if math.Abs(values[idx]-values[i]) <= eps {
			neighbors = append(neighbors, i)
		}
	}
	return neighbors
}

func expandCluster(values []float64, labels []int, neighbors []int, cluster int, eps float64, minPoints int) {
	for i := 0; i < len(neighbors); i++ {
		idx := neighbors[i]
		if labels[idx] != noise {
			continue
		}
		labels[idx] = cluster
		more := neighborsWithin(values, idx, eps)
		if len(more) >= minPoints {
			neighbors = append(neighbors, more...)
		}
	}
}
