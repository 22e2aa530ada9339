// Package kernel defines the geometry kernel used to turn decomposed boxes
// into solid proxy geometry. Implementations provide box primitives,
// placement, union and triangle meshing behind this interface.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box returns an x×y×z box with its minimum corner at the origin.
	Box(x, y, z float64) Solid

	// Translate moves a solid by (x, y, z).
	Translate(s Solid, x, y, z float64) Solid

	// Union merges any number of solids into one.
	Union(solids ...Solid) Solid

	// ToMesh triangulates a solid.
	ToMesh(s Solid) (*Mesh, error)

	// SaveSTL triangulates a solid and writes it to path as binary STL.
	SaveSTL(s Solid, path string) error
}
