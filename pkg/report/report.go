// Package report renders a decomposition for people and machines: the plain
// box listing, a JSON document, summary statistics and a histogram of box
// volumes. Reporting never mutates the box list.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/chazu/boxcloud/pkg/decompose"
	"github.com/chazu/boxcloud/pkg/grid"
	"github.com/chazu/boxcloud/pkg/shape"
)

// Result is everything a report needs about one run.
type Result struct {
	Source string
	Kind   shape.Kind
	Frame  grid.Frame
	Dims   [3]int
	Boxes  []decompose.Box
}

// WriteText writes the box listing:
//
//	Number of boxes: 2
//	Box 0: (0, 0, 0) -> (1, 1, 1)
//	Box 1: (2, 0, 0) -> (3, 1, 1)
//
// Corners are in world coordinates.
func WriteText(w io.Writer, r *Result) error {
	if _, err := fmt.Fprintf(w, "Number of boxes: %d\n", len(r.Boxes)); err != nil {
		return err
	}
	for i, b := range r.Boxes {
		a := b.World(r.Frame)
		_, err := fmt.Fprintf(w, "Box %d: (%s, %s, %s) -> (%s, %s, %s)\n", i,
			num(a.Min.X()), num(a.Min.Y()), num(a.Min.Z()),
			num(a.Max.X()), num(a.Max.Y()), num(a.Max.Z()))
		if err != nil {
			return err
		}
	}
	return nil
}

// num formats a coordinate with at most six significant digits, so grid
// steps such as 3*0.1 print as 0.3.
func num(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
