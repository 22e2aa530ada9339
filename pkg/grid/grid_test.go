package grid

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// sameGrid reports whether a and b have the same dimensions and cells.
func sameGrid(a, b *Grid) bool {
	return a.Width == b.Width && a.Height == b.Height && a.Depth == b.Depth &&
		bytes.Equal(a.cells, b.cells)
}

func TestNewRejectsNonPositiveDims(t *testing.T) {
	tests := []struct {
		name    string
		w, h, d int
		param   string
	}{
		{"zero width", 0, 1, 1, "width"},
		{"negative height", 1, -2, 1, "height"},
		{"zero depth", 1, 1, 0, "depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.w, tt.h, tt.d)
			var pe *ParameterError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParameterError, got %v", err)
			}
			if pe.Param != tt.param {
				t.Errorf("Param = %q, want %q", pe.Param, tt.param)
			}
		})
	}
}

func TestNewRejectsOversizedGrids(t *testing.T) {
	tests := []struct {
		name    string
		w, h, d int
	}{
		{"product wraps to zero", 1 << 32, 1 << 32, 1},
		{"product wraps small", 1<<62 + 1, 4, 1},
		{"just above the cap", MaxCells/2 + 1, 2, 1},
		{"depth pushes past the cap", 1 << 16, 1 << 16, 1 << 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.w, tt.h, tt.d)
			var pe *ParameterError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParameterError, got %v", err)
			}
			if pe.Param != "cells" || pe.Limit != MaxCells {
				t.Errorf("unexpected error %+v", pe)
			}
		})
	}

	if err := CheckDims(MaxCells/4, 2, 2); err != nil {
		t.Errorf("grid of exactly MaxCells rejected: %v", err)
	}
}

func TestSetClearAt(t *testing.T) {
	g := MustNew(3, 2, 2)
	if g.Size() != 12 || g.Count() != 0 {
		t.Fatalf("fresh grid: size %d count %d", g.Size(), g.Count())
	}
	g.Set(2, 1, 1)
	g.Set(0, 0, 0)
	if !g.At(2, 1, 1) || !g.At(0, 0, 0) || g.At(1, 1, 1) {
		t.Errorf("unexpected cells after Set: %s", g)
	}
	if got := g.Index(2, 1, 1); got != 11 {
		t.Errorf("Index(2,1,1) = %d, want 11", got)
	}
	g.Clear(2, 1, 1)
	if g.At(2, 1, 1) || g.Count() != 1 {
		t.Errorf("Clear did not empty the cell: %s", g)
	}
}

func TestInBounds(t *testing.T) {
	g := MustNew(2, 3, 4)
	cases := []struct {
		x, y, z int
		want    bool
	}{
		{0, 0, 0, true},
		{1, 2, 3, true},
		{2, 0, 0, false},
		{0, 3, 0, false},
		{0, 0, 4, false},
		{-1, 0, 0, false},
	}
	for _, c := range cases {
		if got := g.InBounds(c.x, c.y, c.z); got != c.want {
			t.Errorf("InBounds(%d,%d,%d) = %v, want %v", c.x, c.y, c.z, got, c.want)
		}
	}
}

func TestLayerAliasesGrid(t *testing.T) {
	g := MustNew(2, 2, 3)
	l := g.Layer(1)
	if len(l) != 4 {
		t.Fatalf("len(Layer) = %d, want 4", len(l))
	}
	l[3] = 1
	if !g.At(1, 1, 1) {
		t.Error("write through Layer not visible in grid")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := MustNew(2, 2, 2)
	g.Set(1, 0, 1)
	c := g.Clone()
	if !sameGrid(c, g) {
		t.Fatal("clone differs from original")
	}
	c.Clear(1, 0, 1)
	if !g.At(1, 0, 1) {
		t.Error("clearing the clone modified the original")
	}
	if sameGrid(c, g) {
		t.Error("clone still matches after Clear")
	}
}

func TestSub(t *testing.T) {
	g := MustNew(4, 3, 2)
	g.Set(1, 1, 1)
	g.Set(3, 2, 1)
	g.Set(0, 0, 0)

	s := g.Sub(1, 1, 1, 3, 2, 1)
	if s.Width != 3 || s.Height != 2 || s.Depth != 1 {
		t.Fatalf("Sub dims = %dx%dx%d", s.Width, s.Height, s.Depth)
	}
	if !s.At(0, 0, 0) || !s.At(2, 1, 0) || s.Count() != 2 {
		t.Errorf("Sub copied wrong cells: %s", s)
	}
}

func TestFrameWorld(t *testing.T) {
	f := Frame{CellSize: 0.5, MinX: -1, MinY: 2, MinZ: 3}
	got := f.World(2, 1, 1)
	want := mgl64.Vec3{0, 2.5, 2}
	if !got.ApproxEqual(want) {
		t.Errorf("World(2,1,1) = %v, want %v", got, want)
	}

	zero := Frame{CellSize: 1}
	if got := zero.World(3, 0, 1); !got.ApproxEqual(mgl64.Vec3{3, 0, 1}) {
		t.Errorf("zero-origin World = %v", got)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ParameterError{Param: "cellSize", Value: 0}, "invalid parameter cellSize = 0: must be positive"},
		{&GeometryError{Slice: 2, Z: 5, Points: 1}, "slice 2 (z=5): polygon has 1 points, need at least 3"},
		{&RangeError{Voxel: 0, Axis: "y", Value: 4, Bound: 4}, "voxel 0: y = 4 out of range [0, 4)"},
		{&ParameterError{Param: "cells", Value: 8, Limit: 4}, "invalid parameter cells = 8: exceeds 4"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
