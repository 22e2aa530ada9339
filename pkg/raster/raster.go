// Package raster converts 2D polygon cross-sections into binary occupancy
// masks by sampling cell centers against an even-odd point-in-polygon test.
package raster

import (
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// edgeEpsilon is added to an edge's vertical extent so that horizontal
// edges never divide by zero. Points lying exactly on a horizontal edge may
// be misclassified; only cell centers are sampled, so this is acceptable.
const edgeEpsilon = 1e-6

// Point2D is a point in world units.
type Point2D = vec.Vec2

// Polygon is a simple closed outline. Edges join consecutive points and the
// last point back to the first. Callers must reject polygons with fewer
// than three vertices before rasterizing.
type Polygon []Point2D

// Mask is a row-major binary grid of Height rows by Width columns.
type Mask struct {
	Width  int
	Height int
	Cells  []uint8
}

// At reports whether cell (x, y) is set.
func (m *Mask) At(x, y int) bool {
	return m.Cells[y*m.Width+x] != 0
}

// Count returns the number of set cells.
func (m *Mask) Count() int {
	n := 0
	for _, c := range m.Cells {
		if c != 0 {
			n++
		}
	}
	return n
}

// Contains reports whether (x, y) lies inside poly under the even-odd rule.
func Contains(poly Polygon, x, y float64) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > y) != (pj.Y > y) &&
			x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y+edgeEpsilon)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// Rasterize samples poly on a width×height grid whose lower-left corner is
// (minX, minY). A cell is set iff its center lies inside the polygon.
func Rasterize(poly Polygon, width, height int, minX, minY, cellSize float64) *Mask {
	m := &Mask{
		Width:  width,
		Height: height,
		Cells:  make([]uint8, width*height),
	}
	RasterizeInto(m.Cells, poly, width, height, minX, minY, cellSize)
	return m
}

// RasterizeInto is like Rasterize but writes into dst, which must hold at
// least width*height cells. Every cell of dst is overwritten, so a layer
// that previously held another polygon is replaced rather than merged.
func RasterizeInto(dst []uint8, poly Polygon, width, height int, minX, minY, cellSize float64) {
	for y := range height {
		py := minY + (float64(y)+0.5)*cellSize
		row := dst[y*width : (y+1)*width]
		for x := range width {
			px := minX + (float64(x)+0.5)*cellSize
			if Contains(poly, px, py) {
				row[x] = 1
			} else {
				row[x] = 0
			}
		}
	}
}

// Bounds returns the bounding rectangle of all vertices of polys. The
// second result is false if there are no vertices at all.
func Bounds(polys ...Polygon) (rect.Rect, bool) {
	var r rect.Rect
	first := true
	for _, poly := range polys {
		for _, p := range poly {
			if first {
				r = rect.Rect{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y}
				first = false
				continue
			}
			r.LLx = min(r.LLx, p.X)
			r.LLy = min(r.LLy, p.Y)
			r.URx = max(r.URx, p.X)
			r.URy = max(r.URy, p.Y)
		}
	}
	return r, !first
}
