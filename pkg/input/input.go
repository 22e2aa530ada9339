// Package input reads shapes from the plain-text slice and voxel-list
// formats and dispatches script files to an evaluator.
//
// Slice format:
//
//	cellSize numSlices
//	zIndex numPoints x y x y ...   (numSlices times)
//
// Voxel-list format:
//
//	cellSize gridW gridH gridD numVoxels
//	x y z                          (numVoxels times)
//
// Tokens are separated by any whitespace and '#' starts a comment that runs
// to the end of the line.
package input

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/boxcloud/pkg/grid"
	"github.com/chazu/boxcloud/pkg/raster"
	"github.com/chazu/boxcloud/pkg/shape"
)

// Format identifies an input file format.
type Format int

const (
	FormatAuto Format = iota // pick by file extension
	FormatSlices
	FormatVoxels
	FormatScript
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatSlices:
		return "slices"
	case FormatVoxels:
		return "voxels"
	case FormatScript:
		return "lisp"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a -format flag value to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "slices", "slice":
		return FormatSlices, nil
	case "voxels", "voxel":
		return FormatVoxels, nil
	case "lisp", "script":
		return FormatScript, nil
	}
	return FormatAuto, fmt.Errorf("unknown input format %q (want auto, slices, voxels or lisp)", name)
}

// DetectFormat picks a format from the extension of path.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".slices", ".txt":
		return FormatSlices, nil
	case ".voxels":
		return FormatVoxels, nil
	case ".lisp", ".zy":
		return FormatScript, nil
	}
	return FormatAuto, fmt.Errorf("cannot infer format of %s: use -format", path)
}

// ScriptFunc evaluates a shape script. name identifies the script in
// diagnostics.
type ScriptFunc func(src, name string) (*shape.Shape, error)

// Read loads the shape stored at path. FormatAuto picks the format by
// extension. Scripts are passed to script, which may be nil when no
// evaluator is available.
func Read(path string, format Format, script ScriptFunc) (*shape.Shape, error) {
	if format == FormatAuto {
		f, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	var s *shape.Shape
	switch format {
	case FormatSlices:
		s, err = ReadSlices(file)
	case FormatVoxels:
		s, err = ReadVoxels(file)
	case FormatScript:
		if script == nil {
			return nil, fmt.Errorf("%s: no script evaluator configured", path)
		}
		src, rerr := io.ReadAll(file)
		if rerr != nil {
			return nil, fmt.Errorf("read script: %w", rerr)
		}
		s, err = script(string(src), path)
	default:
		return nil, fmt.Errorf("unsupported format %v", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// ReadSlices parses the slice format. Counts that make the rest of the input
// unparseable are reported as grid.ParameterError or grid.GeometryError;
// the remaining semantic checks are left to shape validation.
func ReadSlices(r io.Reader) (*shape.Shape, error) {
	t, err := tokenize(r)
	if err != nil {
		return nil, err
	}
	cs, err := t.float("cellSize")
	if err != nil {
		return nil, err
	}
	n, err := t.int("numSlices")
	if err != nil {
		return nil, err
	}
	if err := grid.CheckCount("numSlices", n); err != nil {
		return nil, err
	}

	slices := make([]grid.Slice, 0, min(n, t.remaining()/2))
	for i := range n {
		z, err := t.int(fmt.Sprintf("zIndex of slice %d", i))
		if err != nil {
			return nil, err
		}
		np, err := t.int(fmt.Sprintf("numPoints of slice %d", i))
		if err != nil {
			return nil, err
		}
		if np < 0 {
			return nil, &grid.GeometryError{Slice: i, Z: z, Points: np}
		}
		poly := make(raster.Polygon, 0, min(np, t.remaining()/2))
		for k := range np {
			var p raster.Point2D
			if p.X, err = t.float(fmt.Sprintf("x of point %d in slice %d", k, i)); err != nil {
				return nil, err
			}
			if p.Y, err = t.float(fmt.Sprintf("y of point %d in slice %d", k, i)); err != nil {
				return nil, err
			}
			poly = append(poly, p)
		}
		slices = append(slices, grid.Slice{Z: z, Polygon: poly})
	}
	if err := t.done(); err != nil {
		return nil, err
	}
	return &shape.Shape{Kind: shape.KindSlices, CellSize: cs, Slices: slices}, nil
}

// ReadVoxels parses the voxel-list format.
func ReadVoxels(r io.Reader) (*shape.Shape, error) {
	t, err := tokenize(r)
	if err != nil {
		return nil, err
	}
	cs, err := t.float("cellSize")
	if err != nil {
		return nil, err
	}
	var dims [3]int
	for i, name := range []string{"gridW", "gridH", "gridD"} {
		if dims[i], err = t.int(name); err != nil {
			return nil, err
		}
	}
	n, err := t.int("numVoxels")
	if err != nil {
		return nil, err
	}
	if err := grid.CheckCount("numVoxels", n); err != nil {
		return nil, err
	}

	voxels := make([]grid.Voxel, 0, min(n, t.remaining()/3))
	for i := range n {
		var v grid.Voxel
		for _, c := range []struct {
			dst  *int
			axis string
		}{{&v.X, "x"}, {&v.Y, "y"}, {&v.Z, "z"}} {
			if *c.dst, err = t.int(fmt.Sprintf("%s of voxel %d", c.axis, i)); err != nil {
				return nil, err
			}
		}
		voxels = append(voxels, v)
	}
	if err := t.done(); err != nil {
		return nil, err
	}
	return &shape.Shape{Kind: shape.KindVoxels, CellSize: cs, Dims: dims, Voxels: voxels}, nil
}
