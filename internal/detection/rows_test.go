package detection

import (
	"math"
	"testing"
)

func TestCluster_Empty(t *testing.T) {
	rows := Cluster(nil, DefaultClusterParams())
	if rows == nil || len(rows) != 0 {
		t.Errorf("got %+v, want empty non-nil", rows)
	}
}

func TestCluster_OrdersRowsAndWells(t *testing.T) {
	circles := []Circle{
		{X: 90, Y: 151, R: 10},
		{X: 30, Y: 50, R: 10},
		{X: 10, Y: 149, R: 10},
		{X: 60, Y: 52, R: 10},
		{X: 50, Y: 150, R: 10},
		{X: 5, Y: 51, R: 10},
	}

	rows := Cluster(circles, DefaultClusterParams())
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}

	wantX := [][]int{{5, 30, 60}, {10, 50, 90}}
	for i, row := range rows {
		if row.Index != i+1 {
			t.Errorf("row %d index: got %d", i, row.Index)
		}
		if len(row.Wells) != len(wantX[i]) {
			t.Fatalf("row %d wells: got %d, want %d", i, len(row.Wells), len(wantX[i]))
		}
		for j, w := range row.Wells {
			if w.X != wantX[i][j] {
				t.Errorf("row %d well %d: got x=%d, want %d", i, j, w.X, wantX[i][j])
			}
		}
	}
	if rows[0].MeanY >= rows[1].MeanY {
		t.Errorf("rows not ordered top to bottom: %f, %f", rows[0].MeanY, rows[1].MeanY)
	}
	if math.Abs(rows[1].MeanY-150) > 1e-9 {
		t.Errorf("row 2 mean y: got %f, want 150", rows[1].MeanY)
	}
}

func TestCluster_DropsIsolatedWell(t *testing.T) {
	circles := []Circle{
		{X: 10, Y: 50, R: 10},
		{X: 40, Y: 50, R: 10},
		{X: 70, Y: 300, R: 10},
	}
	rows := Cluster(circles, DefaultClusterParams())
	if len(rows) != 1 || len(rows[0].Wells) != 2 {
		t.Errorf("isolated well should be dropped, got %+v", rows)
	}
}

func TestCountWells(t *testing.T) {
	circles := []Circle{
		{X: 10, Y: 50, R: 10},
		{X: 40, Y: 50, R: 10},
		{X: 10, Y: 120, R: 10},
		{X: 40, Y: 120, R: 10},
		{X: 70, Y: 300, R: 10},
	}
	if got := CountWells(Cluster(circles, DefaultClusterParams())); got != 4 {
		t.Errorf("CountWells: got %d, want 4", got)
	}
	if got := CountWells(nil); got != 0 {
		t.Errorf("CountWells(nil): got %d, want 0", got)
	}
}

func TestCluster_ToleratesBowedRow(t *testing.T) {
	// eps = 10 * 1.8 = 18
	circles := []Circle{
		{X: 10, Y: 50, R: 10},
		{X: 40, Y: 58, R: 10},
		{X: 70, Y: 64, R: 10},
		{X: 100, Y: 58, R: 10},
		{X: 130, Y: 50, R: 10},
	}
	rows := Cluster(circles, DefaultClusterParams())
	if len(rows) != 1 || len(rows[0].Wells) != 5 {
		t.Errorf("bowed row should stay together, got %+v", rows)
	}
}

func TestCluster_EpsFloorForTinyWells(t *testing.T) {
	// Median radius 2 is below the floor, so eps = 6 * 1.8 = 10.8.
	circles := []Circle{
		{X: 10, Y: 50, R: 2},
		{X: 20, Y: 60, R: 2},
		{X: 30, Y: 80, R: 2},
		{X: 40, Y: 90, R: 2},
	}
	rows := Cluster(circles, DefaultClusterParams())
	if len(rows) != 2 {
		t.Errorf("rows: got %d, want 2", len(rows))
	}
}

func TestDBSCAN(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		eps    float64
		want   []int
	}{
		{"chain", []float64{0, 10, 20}, 12, []int{0, 0, 0}},
		{"two groups", []float64{0, 5, 100, 104}, 10, []int{0, 0, 1, 1}},
		{"noise", []float64{0, 50, 100}, 10, []int{noise, noise, noise}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dbscan(tt.values, tt.eps, 2)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("labels: got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestMedian(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("odd median: got %f", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Errorf("even median: got %f", got)
	}
	if got := median(nil); got != 0 {
		t.Errorf("empty median: got %f", got)
	}
}
