package grid

import "fmt"

// MaxCells bounds the number of cells a single grid may hold.
const MaxCells = 1 << 31

// ParameterError reports a non-positive cell size, slice or voxel count, or
// grid dimension, or a grid whose cell count exceeds Limit.
type ParameterError struct {
	Param string  // e.g. "cellSize", "numSlices", "width", "cells"
	Value float64 // offending value
	Limit float64 // upper bound that was exceeded; 0 for positivity checks
}

func (e *ParameterError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("invalid parameter %s = %g: exceeds %g", e.Param, e.Value, e.Limit)
	}
	return fmt.Sprintf("invalid parameter %s = %g: must be positive", e.Param, e.Value)
}

// GeometryError reports a slice whose polygon has fewer than three vertices.
type GeometryError struct {
	Slice  int // index of the slice in input order
	Z      int // z-index of the slice
	Points int // number of vertices supplied
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("slice %d (z=%d): polygon has %d points, need at least 3", e.Slice, e.Z, e.Points)
}

// RangeError reports a voxel coordinate outside [0, Bound) on some axis.
type RangeError struct {
	Voxel int    // index of the voxel in input order
	Axis  string // "x", "y" or "z"
	Value int
	Bound int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("voxel %d: %s = %d out of range [0, %d)", e.Voxel, e.Axis, e.Value, e.Bound)
}

// CheckCellSize returns a ParameterError unless cellSize > 0.
func CheckCellSize(cellSize float64) error {
	if !(cellSize > 0) {
		return &ParameterError{Param: "cellSize", Value: cellSize}
	}
	return nil
}

// CheckDims returns a ParameterError for the first non-positive dimension,
// or for dimensions whose product exceeds MaxCells.
func CheckDims(width, height, depth int) error {
	for _, d := range []struct {
		name string
		v    int
	}{{"width", width}, {"height", height}, {"depth", depth}} {
		if d.v <= 0 {
			return &ParameterError{Param: d.name, Value: float64(d.v)}
		}
	}
	// Divide instead of multiplying so the test itself cannot overflow.
	if width > MaxCells/height || width*height > MaxCells/depth {
		return &ParameterError{
			Param: "cells",
			Value: float64(width) * float64(height) * float64(depth),
			Limit: MaxCells,
		}
	}
	return nil
}

// CheckCount returns a ParameterError unless n > 0. name identifies the
// counted quantity ("numSlices", "numVoxels").
func CheckCount(name string, n int) error {
	if n <= 0 {
		return &ParameterError{Param: name, Value: float64(n)}
	}
	return nil
}

// CheckSlice returns a GeometryError if s has fewer than three vertices.
func CheckSlice(index int, s Slice) error {
	if len(s.Polygon) < 3 {
		return &GeometryError{Slice: index, Z: s.Z, Points: len(s.Polygon)}
	}
	return nil
}

// CheckVoxel returns a RangeError if v lies outside a width×height×depth grid.
func CheckVoxel(index int, v Voxel, width, height, depth int) error {
	switch {
	case v.X < 0 || v.X >= width:
		return &RangeError{Voxel: index, Axis: "x", Value: v.X, Bound: width}
	case v.Y < 0 || v.Y >= height:
		return &RangeError{Voxel: index, Axis: "y", Value: v.Y, Bound: height}
	case v.Z < 0 || v.Z >= depth:
		return &RangeError{Voxel: index, Axis: "z", Value: v.Z, Bound: depth}
	}
	return nil
}
