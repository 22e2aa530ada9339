// Package tessellate turns decomposed boxes into kernel solids and triangle
// meshes in world space. It never mutates the box list.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/boxcloud/pkg/decompose"
	"github.com/chazu/boxcloud/pkg/grid"
	"github.com/chazu/boxcloud/pkg/kernel"
)

// ErrNoBoxes is returned when there is no geometry to build.
var ErrNoBoxes = errors.New("tessellate: no boxes")

// BoxSolid places one box in world space under f.
func BoxSolid(k kernel.Kernel, b decompose.Box, f grid.Frame) kernel.Solid {
	a := b.World(f)
	ext := a.Extent()
	s := k.Box(ext.X(), ext.Y(), ext.Z())
	if a.Min.X() != 0 || a.Min.Y() != 0 || a.Min.Z() != 0 {
		s = k.Translate(s, a.Min.X(), a.Min.Y(), a.Min.Z())
	}
	return s
}

// Solid returns the union of all boxes as one solid.
func Solid(k kernel.Kernel, boxes []decompose.Box, f grid.Frame) (kernel.Solid, error) {
	if len(boxes) == 0 {
		return nil, ErrNoBoxes
	}
	solids := make([]kernel.Solid, len(boxes))
	for i, b := range boxes {
		solids[i] = BoxSolid(k, b, f)
	}
	return k.Union(solids...), nil
}

// Tessellate produces one mesh per box, named "box <index>".
func Tessellate(k kernel.Kernel, boxes []decompose.Box, f grid.Frame) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, 0, len(boxes))
	for i, b := range boxes {
		mesh, err := k.ToMesh(BoxSolid(k, b, f))
		if err != nil {
			return nil, fmt.Errorf("tessellate: box %d %s: %w", i, b, err)
		}
		if mesh.IsEmpty() {
			return nil, fmt.Errorf("tessellate: box %d %s produced no triangles", i, b)
		}
		mesh.Name = fmt.Sprintf("box %d", i)
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// ExportSTL writes the union of all boxes to path as STL.
func ExportSTL(k kernel.Kernel, boxes []decompose.Box, f grid.Frame, path string) error {
	s, err := Solid(k, boxes, f)
	if err != nil {
		return err
	}
	return k.SaveSTL(s, path)
}
