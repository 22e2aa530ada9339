package report

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chazu/boxcloud/pkg/decompose"
	"github.com/chazu/boxcloud/pkg/shape"
)

// Stats summarizes the box volumes of a decomposition, in cells.
type Stats struct {
	Boxes       int     `json:"boxes"`
	Filled      int     `json:"filled"`
	MinVolume   float64 `json:"min_volume"`
	MaxVolume   float64 `json:"max_volume"`
	MeanVolume  float64 `json:"mean_volume"`
	StdVolume   float64 `json:"std_volume"`
	Compression float64 `json:"compression"` // filled cells per box
}

// Volumes returns the cell volume of each box in order.
func Volumes(boxes []decompose.Box) []float64 {
	vols := make([]float64, len(boxes))
	for i, b := range boxes {
		vols[i] = float64(b.Volume())
	}
	return vols
}

// Compute returns the statistics for boxes. An empty list yields zero Stats.
func Compute(boxes []decompose.Box) Stats {
	if len(boxes) == 0 {
		return Stats{}
	}
	vols := Volumes(boxes)
	s := Stats{
		Boxes:     len(boxes),
		Filled:    int(floats.Sum(vols)),
		MinVolume: floats.Min(vols),
		MaxVolume: floats.Max(vols),
	}
	if len(vols) == 1 {
		s.MeanVolume = vols[0]
	} else {
		s.MeanVolume, s.StdVolume = stat.MeanStdDev(vols, nil)
	}
	s.Compression = float64(s.Filled) / float64(s.Boxes)
	return s
}

// WriteStats writes s as an indented block under a styled heading.
func WriteStats(w io.Writer, s Stats) error {
	_, err := fmt.Fprintf(w, "%s\n"+
		"  boxes:        %d\n"+
		"  filled cells: %d\n"+
		"  volume:       min %g  max %g  mean %.3f  std %.3f\n"+
		"  compression:  %.2f cells/box\n",
		headingStyle.Render("Statistics"),
		s.Boxes, s.Filled, s.MinVolume, s.MaxVolume, s.MeanVolume, s.StdVolume, s.Compression)
	return err
}

// WriteWarnings lists validation warnings under a heading. Nothing is written
// when there are none.
func WriteWarnings(w io.Writer, warnings []shape.ValidationWarning) error {
	if len(warnings) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Warnings (%d)", len(warnings)))); err != nil {
		return err
	}
	for _, wn := range warnings {
		if _, err := fmt.Fprintf(w, "  %s\n", wn); err != nil {
			return err
		}
	}
	return nil
}
