package decompose

import (
	"github.com/chazu/boxcloud/pkg/grid"
	"github.com/chazu/boxcloud/pkg/workers"
)

// region is one sub-volume of a partitioned grid together with its result.
type region struct {
	x, y, z int
	sub     *grid.Grid
	boxes   []Box
}

// Partitioned splits g into blocks of at most chunk cells per axis,
// decomposes each block independently on up to n goroutines, and
// concatenates the results in block scan order (z, then y, then x).
// A chunk size <= 0 spans the whole axis.
//
// The result is still an exact disjoint cover of g, but boxes never cross
// block boundaries, so it can contain more boxes than Decompose would.
// Like Decompose, it empties g.
func Partitioned(g *grid.Grid, chunk [3]int, n int) []Box {
	cx, cy, cz := axisChunk(chunk[0], g.Width), axisChunk(chunk[1], g.Height), axisChunk(chunk[2], g.Depth)

	var regions []*region
	for z := 0; z < g.Depth; z += cz {
		for y := 0; y < g.Height; y += cy {
			for x := 0; x < g.Width; x += cx {
				w, h, d := min(cx, g.Width-x), min(cy, g.Height-y), min(cz, g.Depth-z)
				regions = append(regions, &region{x: x, y: y, z: z, sub: g.Sub(x, y, z, w, h, d)})
			}
		}
	}

	workers.Run(n, regions, func(r *region) {
		local := Decompose(r.sub)
		r.boxes = make([]Box, len(local))
		for i, b := range local {
			r.boxes[i] = b.Translate(r.x, r.y, r.z)
		}
	})

	var boxes []Box
	for _, r := range regions {
		boxes = append(boxes, r.boxes...)
	}
	clearBox(g, Box{X1: g.Width, Y1: g.Height, Z1: g.Depth})
	return boxes
}

func axisChunk(c, full int) int {
	if c <= 0 || c > full {
		return full
	}
	return c
}
