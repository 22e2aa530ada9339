package decompose

import (
	"fmt"

	"github.com/chazu/boxcloud/pkg/grid"
	"github.com/go-gl/mathgl/mgl64"
)

// Box is a half-open block of grid cells [X0,X1)×[Y0,Y1)×[Z0,Z1). Every
// emitted box has a positive extent on each axis.
type Box struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	Z0 int `json:"z0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	Z1 int `json:"z1"`
}

// Size returns the extent of b in cells along each axis.
func (b Box) Size() (dx, dy, dz int) {
	return b.X1 - b.X0, b.Y1 - b.Y0, b.Z1 - b.Z0
}

// Volume returns the number of cells covered by b.
func (b Box) Volume() int {
	dx, dy, dz := b.Size()
	return dx * dy * dz
}

// Empty reports whether b covers no cells.
func (b Box) Empty() bool {
	return b.X1 <= b.X0 || b.Y1 <= b.Y0 || b.Z1 <= b.Z0
}

// Translate returns b shifted by (dx, dy, dz) cells.
func (b Box) Translate(dx, dy, dz int) Box {
	return Box{b.X0 + dx, b.Y0 + dy, b.Z0 + dz, b.X1 + dx, b.Y1 + dy, b.Z1 + dz}
}

// World returns the world-space bounds of b under f.
func (b Box) World(f grid.Frame) AABB {
	return AABB{
		Min: f.World(b.X0, b.Y0, b.Z0),
		Max: f.World(b.X1, b.Y1, b.Z1),
	}
}

func (b Box) String() string {
	return fmt.Sprintf("(%d, %d, %d) -> (%d, %d, %d)", b.X0, b.Y0, b.Z0, b.X1, b.Y1, b.Z1)
}

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Extent returns the edge lengths of the AABB.
func (a AABB) Extent() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}
