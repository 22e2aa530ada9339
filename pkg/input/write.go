package input

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/chazu/boxcloud/pkg/shape"
)

// Write serializes s in the text format matching its kind, so that a
// scripted shape can be saved and read back with Read.
func Write(w io.Writer, s *shape.Shape) error {
	bw := bufio.NewWriter(w)
	if s.Source != "" {
		fmt.Fprintf(bw, "# generated from %s\n", s.Source)
	}
	switch s.Kind {
	case shape.KindSlices:
		fmt.Fprintf(bw, "%s %d\n", num(s.CellSize), len(s.Slices))
		for _, sl := range s.Slices {
			fmt.Fprintf(bw, "%d %d", sl.Z, len(sl.Polygon))
			for _, p := range sl.Polygon {
				fmt.Fprintf(bw, " %s %s", num(p.X), num(p.Y))
			}
			bw.WriteByte('\n')
		}
	case shape.KindVoxels:
		fmt.Fprintf(bw, "%s %d %d %d %d\n", num(s.CellSize), s.Dims[0], s.Dims[1], s.Dims[2], len(s.Voxels))
		for _, v := range s.Voxels {
			fmt.Fprintf(bw, "%d %d %d\n", v.X, v.Y, v.Z)
		}
	default:
		return fmt.Errorf("write: unknown shape kind %v", s.Kind)
	}
	return bw.Flush()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
