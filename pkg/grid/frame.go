package grid

import "github.com/go-gl/mathgl/mgl64"

// Frame maps grid coordinates to world space. Slice-built grids are offset
// by the polygon bounding-box minimum and the lowest z-index; voxel-built
// grids have a zero origin.
type Frame struct {
	CellSize float64 `json:"cell_size"`
	MinX     float64 `json:"min_x"`
	MinY     float64 `json:"min_y"`
	MinZ     int     `json:"min_z"`
}

// World returns the world position of grid corner (x, y, z).
func (f Frame) World(x, y, z int) mgl64.Vec3 {
	return mgl64.Vec3{
		f.MinX + float64(x)*f.CellSize,
		f.MinY + float64(y)*f.CellSize,
		float64(f.MinZ+z) * f.CellSize,
	}
}
