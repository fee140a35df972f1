package imaging

import (
	"image"
	"testing"
)

// createMask creates a mask with the given rectangles set to foreground
func createMask(width, height int, rects ...image.Rectangle) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, width, height))
	for _, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				m.Pix[m.PixOffset(x, y)] = 255
			}
		}
	}
	return m
}

func TestThresholdAbove_Strict(t *testing.T) {
	plane := image.NewGray(image.Rect(0, 0, 3, 1))
	plane.Pix[0] = 29
	plane.Pix[1] = 30
	plane.Pix[2] = 31

	m := ThresholdAbove(plane, 30)
	if m.Pix[0] != 0 || m.Pix[1] != 0 {
		t.Errorf("values <= level must be background, got %v", m.Pix)
	}
	if m.Pix[2] == 0 {
		t.Errorf("values > level must be foreground, got %v", m.Pix)
	}
}

func TestThresholdAbove_MaxLevel(t *testing.T) {
	plane := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range plane.Pix {
		plane.Pix[i] = 255
	}
	if n := CountForeground(ThresholdAbove(plane, 255)); n != 0 {
		t.Errorf("nothing exceeds 255, got %d foreground pixels", n)
	}
}

func TestAnd(t *testing.T) {
	a := createMask(10, 10, image.Rect(0, 0, 6, 10))
	b := createMask(10, 10, image.Rect(4, 0, 10, 10))

	got := CountForeground(And(a, b))
	if got != 20 {
		t.Errorf("And foreground: got %d, want 20", got)
	}
}

func TestOpen_RemovesSpecks(t *testing.T) {
	m := createMask(40, 40, image.Rect(10, 10, 30, 30), image.Rect(2, 2, 3, 3))

	opened := Open(m, 3)
	if IsForeground(opened, 2, 2) {
		t.Error("Open should remove a single-pixel speck")
	}
	if !IsForeground(opened, 20, 20) {
		t.Error("Open should keep the interior of a large region")
	}
}

func TestClose_FillsHoles(t *testing.T) {
	m := createMask(40, 40, image.Rect(10, 10, 30, 30))
	m.Pix[m.PixOffset(20, 20)] = 0

	closed := Close(m, 5)
	if !IsForeground(closed, 20, 20) {
		t.Error("Close should fill a one-pixel hole")
	}
}

func TestOpenClose_EmptyMask(t *testing.T) {
	m := createMask(20, 20)
	if n := CountForeground(Close(Open(m, 3), 5)); n != 0 {
		t.Errorf("empty mask should stay empty, got %d", n)
	}
}

func TestIsForeground_OutOfBounds(t *testing.T) {
	m := createMask(5, 5, image.Rect(0, 0, 5, 5))
	if IsForeground(m, -1, 0) || IsForeground(m, 5, 0) {
		t.Error("out-of-bounds points are background")
	}
}

func TestThresholdAbove_EveryLevel(t *testing.T) {
	plane := image.NewGray(image.Rect(0, 0, 256, 1))
	for i := range plane.Pix {
		plane.Pix[i] = uint8(i)
	}
	for _, level := range []uint8{0, 31, 39, 127, 250} {
		m := ThresholdAbove(plane, level)
		if got, want := CountForeground(m), 255-int(level); got != want {
			t.Errorf("level %d: got %d foreground, want %d", level, got, want)
		}
	}
}

func TestEllipse(t *testing.T) {
	tests := []struct {
		size int
		want element
	}{
		{1, nil},
		{3, element{0, 1, 0}},
		{5, element{0, 2, 2, 2, 0}},
		{7, element{0, 2, 3, 3, 3, 2, 0}},
	}
	for _, tt := range tests {
		got := ellipse(tt.size)
		if len(got) != len(tt.want) {
			t.Errorf("size %d: got %v, want %v", tt.size, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("size %d: got %v, want %v", tt.size, got, tt.want)
				break
			}
		}
	}
}

func TestOpen_KeepsCross(t *testing.T) {
	// A plus shape survives opening with a 3×3 ellipse but not with a
	// 3×3 square.
	m := createMask(20, 20, image.Rect(9, 8, 10, 11), image.Rect(8, 9, 11, 10))
	opened := Open(m, 3)
	if got := CountForeground(opened); got != 5 {
		t.Errorf("cross: got %d foreground pixels, want 5", got)
	}
	if IsForeground(opened, 8, 8) {
		t.Error("corner of the cross bounding box should stay background")
	}
}

func TestOpen_KeepsBorderRegions(t *testing.T) {
	m := createMask(30, 30, image.Rect(0, 0, 30, 30))
	if got := CountForeground(Open(m, 5)); got != 900 {
		t.Errorf("full mask: got %d foreground pixels, want 900", got)
	}
	if got := CountForeground(Close(m, 5)); got != 900 {
		t.Errorf("full mask: got %d foreground pixels, want 900", got)
	}
}

func TestClose_DoesNotGrowRegion(t *testing.T) {
	m := createMask(40, 40, image.Rect(10, 10, 30, 30))
	if got := CountForeground(Close(m, 5)); got != 400 {
		t.Errorf("closing a square: got %d foreground pixels, want 400", got)
	}
}

func TestMorph_NonZeroOrigin(t *testing.T) {
	m := image.NewGray(image.Rect(100, 50, 120, 70))
	for y := 55; y < 65; y++ {
		for x := 105; x < 115; x++ {
			m.Pix[m.PixOffset(x, y)] = 255
		}
	}
	opened := Open(m, 3)
	if opened.Bounds() != m.Bounds() {
		t.Fatalf("bounds: got %v, want %v", opened.Bounds(), m.Bounds())
	}
	if !IsForeground(opened, 110, 60) || IsForeground(opened, 101, 51) {
		t.Error("opening should act in the mask's own coordinates")
	}
}

// createDiskMask returns a plate-sized mask with rows×cols filled disks.
func createDiskMask(width, height, rows, cols, r int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, width, height))
	dx, dy := width/(cols+1), height/(rows+1)
	for row := 1; row <= rows; row++ {
		for col := 1; col <= cols; col++ {
			cx, cy := col*dx, row*dy
			for y := cy - r; y <= cy+r; y++ {
				for x := cx - r; x <= cx+r; x++ {
					if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
						m.Pix[m.PixOffset(x, y)] = 255
					}
				}
			}
		}
	}
	return m
}

func BenchmarkOpenClose(b *testing.B) {
	m := createDiskMask(2000, 1500, 6, 12, 60)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Close(Open(m, 3), 5)
	}
}
