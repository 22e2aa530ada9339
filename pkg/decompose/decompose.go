// Package decompose covers the filled cells of an occupancy grid with
// disjoint axis-aligned boxes.
//
// The greedy scan visits cells in z-major, then y, then x order. At each
// filled anchor it grows a run along x, extends it along y while every cell
// of the next row is filled, then along z while every cell of the next
// rectangle is filled. The box is emitted, its cells are cleared, and the
// scan continues from the next cell. The result is a maximal cover, not a
// minimal one, and it depends on the scan order.
package decompose

import "github.com/chazu/boxcloud/pkg/grid"

// Decompose returns boxes whose union is exactly the filled cells of g.
// It consumes g: every cell is empty on return. Clone g first if the
// occupancy is needed afterwards.
func Decompose(g *grid.Grid) []Box {
	var boxes []Box
	for z := range g.Depth {
		for y := range g.Height {
			for x := range g.Width {
				if !g.At(x, y, z) {
					continue
				}
				b := grow(g, x, y, z)
				clearBox(g, b)
				boxes = append(boxes, b)
			}
		}
	}
	return boxes
}

// grow expands a box from the filled anchor (x, y, z) along x, then y,
// then z.
func grow(g *grid.Grid, x, y, z int) Box {
	x1 := x + 1
	for x1 < g.Width && g.At(x1, y, z) {
		x1++
	}

	y1 := y + 1
	for y1 < g.Height && rowFilled(g, x, x1, y1, z) {
		y1++
	}

	z1 := z + 1
	for z1 < g.Depth && rectFilled(g, x, x1, y, y1, z1) {
		z1++
	}

	return Box{X0: x, Y0: y, Z0: z, X1: x1, Y1: y1, Z1: z1}
}

func rowFilled(g *grid.Grid, x0, x1, y, z int) bool {
	for x := x0; x < x1; x++ {
		if !g.At(x, y, z) {
			return false
		}
	}
	return true
}

func rectFilled(g *grid.Grid, x0, x1, y0, y1, z int) bool {
	for y := y0; y < y1; y++ {
		if !rowFilled(g, x0, x1, y, z) {
			return false
		}
	}
	return true
}

func clearBox(g *grid.Grid, b Box) {
	for z := b.Z0; z < b.Z1; z++ {
		for y := b.Y0; y < b.Y1; y++ {
			for x := b.X0; x < b.X1; x++ {
				g.Clear(x, y, z)
			}
		}
	}
}
