// Package grid holds the dense 3D occupancy grid and the two builders that
// assemble it: stacking rasterized polygon slices, or marking an explicit
// list of voxel coordinates.
package grid

import (
	"fmt"

	"github.com/chazu/boxcloud/pkg/raster"
)

// Slice is a polygon cross-section at integer level Z. Its world height is
// Z * cellSize.
type Slice struct {
	Z       int            `json:"z"`
	Polygon raster.Polygon `json:"polygon"`
}

// Voxel addresses one grid cell.
type Voxel struct {
	X, Y, Z int
}

// Grid is a dense binary occupancy grid indexed [z][y][x], stored
// contiguously at (z*Height+y)*Width+x. Every cell is 0 or 1.
//
// A Grid is not safe for concurrent use, except that distinct goroutines
// may write distinct layers obtained from Layer.
type Grid struct {
	Width  int
	Height int
	Depth  int
	cells  []uint8
}

// New returns an all-empty grid. All dimensions must be positive.
func New(width, height, depth int) (*Grid, error) {
	if err := CheckDims(width, height, depth); err != nil {
		return nil, err
	}
	return &Grid{
		Width:  width,
		Height: height,
		Depth:  depth,
		cells:  make([]uint8, width*height*depth),
	}, nil
}

// MustNew is like New but panics on invalid dimensions. Intended for tests.
func MustNew(width, height, depth int) *Grid {
	g, err := New(width, height, depth)
	if err != nil {
		panic(fmt.Sprintf("grid.MustNew: %v", err))
	}
	return g
}

// Index returns the linear offset of (x, y, z).
func (g *Grid) Index(x, y, z int) int {
	return (z*g.Height+y)*g.Width + x
}

// InBounds reports whether (x, y, z) addresses a cell of g.
func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height && z >= 0 && z < g.Depth
}

// At reports whether (x, y, z) is filled.
func (g *Grid) At(x, y, z int) bool {
	return g.cells[g.Index(x, y, z)] != 0
}

// Set marks (x, y, z) filled.
func (g *Grid) Set(x, y, z int) {
	g.cells[g.Index(x, y, z)] = 1
}

// Clear marks (x, y, z) empty.
func (g *Grid) Clear(x, y, z int) {
	g.cells[g.Index(x, y, z)] = 0
}

// Layer returns the Height×Width row-major cells of level z. The slice
// aliases the grid.
func (g *Grid) Layer(z int) []uint8 {
	n := g.Width * g.Height
	return g.cells[z*n : (z+1)*n]
}

// Count returns the number of filled cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c != 0 {
			n++
		}
	}
	return n
}

// Size returns the total number of cells.
func (g *Grid) Size() int {
	return len(g.cells)
}

// Clone returns an independent copy of g.
func (g *Grid) Clone() *Grid {
	c := *g
	c.cells = append([]uint8(nil), g.cells...)
	return &c
}

// Sub copies the w×h×d block anchored at (x, y, z) into a new grid. The
// block must lie inside g.
func (g *Grid) Sub(x, y, z, w, h, d int) *Grid {
	s := MustNew(w, h, d)
	for dz := range d {
		for dy := range h {
			src := g.Index(x, y+dy, z+dz)
			copy(s.cells[s.Index(0, dy, dz):s.Index(0, dy, dz)+w], g.cells[src:src+w])
		}
	}
	return s
}

func (g *Grid) String() string {
	return fmt.Sprintf("grid %dx%dx%d (%d filled)", g.Width, g.Height, g.Depth, g.Count())
}
