package raster

import (
	"math"
	"testing"
)

// poly builds a polygon from flat x,y pairs.
func poly(xy ...float64) Polygon {
	p := make(Polygon, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		p = append(p, Point2D{X: xy[i], Y: xy[i+1]})
	}
	return p
}

// lShape is a concave outline covering cells (0..2,0), (0,1), (0,2) of a
// unit grid.
var lShape = poly(0, 0, 3, 0, 3, 1, 1, 1, 1, 3, 0, 3)

func TestContains(t *testing.T) {
	square := poly(0, 0, 2, 0, 2, 2, 0, 2)
	tests := []struct {
		name string
		poly Polygon
		x, y float64
		want bool
	}{
		{"square center", square, 1, 1, true},
		{"square near corner", square, 0.1, 1.9, true},
		{"square outside right", square, 2.5, 1, false},
		{"square outside below", square, 1, -0.5, false},
		{"L inner corner", lShape, 1.5, 1.5, false},
		{"L bottom arm", lShape, 2.5, 0.5, true},
		{"L left arm", lShape, 0.5, 2.5, true},
		{"triangle inside", poly(0, 0, 4, 0, 0, 4), 1, 1, true},
		{"triangle outside hypotenuse", poly(0, 0, 4, 0, 0, 4), 3, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.poly, tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestRasterizeFullBoundingRectangle(t *testing.T) {
	// 2 × 1.5 world units at cell size 0.5 gives a 4 × 3 grid.
	rect := poly(1, -1, 3, -1, 3, 0.5, 1, 0.5)
	m := Rasterize(rect, 4, 3, 1, -1, 0.5)

	if m.Width != 4 || m.Height != 3 {
		t.Fatalf("mask size = %dx%d, want 4x3", m.Width, m.Height)
	}
	if got := m.Count(); got != 12 {
		t.Errorf("Count() = %d, want 12 (every cell)", got)
	}
}

func TestRasterizeZeroArea(t *testing.T) {
	tests := []struct {
		name string
		poly Polygon
	}{
		{"horizontal segment", poly(0, 1, 2, 1, 4, 1)},
		{"vertical segment", poly(1, 0, 1, 2, 1, 4)},
		{"repeated point", poly(1, 1, 1, 1, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Rasterize(tt.poly, 4, 4, 0, 0, 1)
			if got := m.Count(); got != 0 {
				t.Errorf("Count() = %d, want 0", got)
			}
		})
	}
}

func TestRasterizeConcave(t *testing.T) {
	m := Rasterize(lShape, 3, 3, 0, 0, 1)
	want := [3][3]bool{
		{true, true, true},   // y = 0
		{true, false, false}, // y = 1
		{true, false, false}, // y = 2
	}
	for y := range 3 {
		for x := range 3 {
			if got := m.At(x, y); got != want[y][x] {
				t.Errorf("At(%d, %d) = %v, want %v", x, y, got, want[y][x])
			}
		}
	}
}

func TestRasterizeIntoOverwrites(t *testing.T) {
	dst := make([]uint8, 4)
	for i := range dst {
		dst[i] = 1
	}
	// Only the lower-left cell center (0.5, 0.5) is inside.
	RasterizeInto(dst, poly(0, 0, 1, 0, 1, 1, 0, 1), 2, 2, 0, 0, 1)

	want := []uint8{1, 0, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestBounds(t *testing.T) {
	r, ok := Bounds(poly(1, 2, 3, -1), poly(-4, 0, 0, 7))
	if !ok {
		t.Fatal("Bounds reported no vertices")
	}
	if r.LLx != -4 || r.LLy != -1 || r.URx != 3 || r.URy != 7 {
		t.Errorf("Bounds = %+v, want LL(-4,-1) UR(3,7)", r)
	}

	if _, ok := Bounds(); ok {
		t.Error("Bounds() with no polygons reported ok")
	}
}

func TestArea(t *testing.T) {
	tests := []struct {
		name string
		poly Polygon
		want float64
	}{
		{"square", poly(0, 0, 2, 0, 2, 2, 0, 2), 4},
		{"clockwise square", poly(0, 0, 0, 2, 2, 2, 2, 0), 4},
		{"L shape", lShape, 5},
		{"segment", poly(0, 0, 1, 0, 2, 0), 0},
		{"too few points", poly(0, 0, 1, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Area(tt.poly); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Area() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelfIntersects(t *testing.T) {
	tests := []struct {
		name string
		poly Polygon
		want bool
	}{
		{"square", poly(0, 0, 2, 0, 2, 2, 0, 2), false},
		{"L shape", lShape, false},
		{"triangle", poly(0, 0, 1, 0, 0, 1), false},
		{"bowtie", poly(0, 0, 2, 2, 2, 0, 0, 2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelfIntersects(tt.poly); got != tt.want {
				t.Errorf("SelfIntersects() = %v, want %v", got, tt.want)
			}
		})
	}
}
