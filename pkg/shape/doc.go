// Package shape holds a parsed input shape, either a stack of polygon slices
// or an explicit voxel list, and validates it before the occupancy grid is
// built.
//
// Validation runs in tiers. Tier 1 reports the same problems the grid
// builders reject (non-positive parameters, short polygons, out-of-range
// voxels) without allocating a grid. Tier 2 reports advisory findings such
// as duplicate z-levels, zero-area or self-intersecting polygons, and
// duplicate voxels. Tier 3 inspects a built grid.
package shape
