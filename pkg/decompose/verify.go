package decompose

import (
	"fmt"

	"github.com/chazu/boxcloud/pkg/grid"
)

// Coverage failure kinds reported by Verify.
const (
	FailEmpty     = "empty"     // box has a non-positive extent
	FailBounds    = "bounds"    // box reaches outside the grid
	FailOverlap   = "overlap"   // two boxes share a cell
	FailOverfill  = "overfill"  // box covers an empty cell
	FailUncovered = "uncovered" // filled cell lies in no box
)

// CoverageError describes the first way a box list fails to be an exact
// disjoint cover of a grid.
type CoverageError struct {
	Kind    string
	Box     int // index of the offending box, or -1
	Other   int // second box for overlaps, or -1
	X, Y, Z int // offending cell, when one applies
}

func (e *CoverageError) Error() string {
	switch e.Kind {
	case FailEmpty:
		return fmt.Sprintf("box %d is empty", e.Box)
	case FailBounds:
		return fmt.Sprintf("box %d extends outside the grid", e.Box)
	case FailOverlap:
		return fmt.Sprintf("boxes %d and %d overlap at (%d, %d, %d)", e.Other, e.Box, e.X, e.Y, e.Z)
	case FailOverfill:
		return fmt.Sprintf("box %d covers empty cell (%d, %d, %d)", e.Box, e.X, e.Y, e.Z)
	case FailUncovered:
		return fmt.Sprintf("filled cell (%d, %d, %d) is not covered", e.X, e.Y, e.Z)
	}
	return "coverage check failed: " + e.Kind
}

// Verify checks that boxes are non-empty, lie inside original, are pairwise
// disjoint, and cover exactly its filled cells. original is not modified.
func Verify(original *grid.Grid, boxes []Box) error {
	owner := make([]int, original.Size())
	for i := range owner {
		owner[i] = -1
	}

	for i, b := range boxes {
		if b.Empty() {
			return &CoverageError{Kind: FailEmpty, Box: i, Other: -1}
		}
		if !original.InBounds(b.X0, b.Y0, b.Z0) || !original.InBounds(b.X1-1, b.Y1-1, b.Z1-1) {
			return &CoverageError{Kind: FailBounds, Box: i, Other: -1}
		}
		for z := b.Z0; z < b.Z1; z++ {
			for y := b.Y0; y < b.Y1; y++ {
				for x := b.X0; x < b.X1; x++ {
					idx := original.Index(x, y, z)
					if prev := owner[idx]; prev >= 0 {
						return &CoverageError{Kind: FailOverlap, Box: i, Other: prev, X: x, Y: y, Z: z}
					}
					if !original.At(x, y, z) {
						return &CoverageError{Kind: FailOverfill, Box: i, Other: -1, X: x, Y: y, Z: z}
					}
					owner[idx] = i
				}
			}
		}
	}

	for z := range original.Depth {
		for y := range original.Height {
			for x := range original.Width {
				if original.At(x, y, z) && owner[original.Index(x, y, z)] < 0 {
					return &CoverageError{Kind: FailUncovered, Box: -1, Other: -1, X: x, Y: y, Z: z}
				}
			}
		}
	}
	return nil
}

// FilledVolume returns the total cell count of boxes.
func FilledVolume(boxes []Box) int {
	n := 0
	for _, b := range boxes {
		n += b.Volume()
	}
	return n
}
