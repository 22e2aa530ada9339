package shape

import (
	"fmt"

	"github.com/chazu/boxcloud/pkg/grid"
)

// Kind says which builder a Shape feeds.
type Kind int

const (
	KindSlices Kind = iota // stacked polygon cross-sections
	KindVoxels             // explicit voxel coordinates
)

func (k Kind) String() string {
	switch k {
	case KindSlices:
		return "slices"
	case KindVoxels:
		return "voxels"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "slices":
		return KindSlices, nil
	case "voxels":
		return KindVoxels, nil
	}
	return 0, fmt.Errorf("unknown shape kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Shape is an input solid before rasterization. Slices is used for
// KindSlices; Dims and Voxels for KindVoxels.
type Shape struct {
	Kind     Kind         `json:"kind"`
	CellSize float64      `json:"cell_size"`
	Slices   []grid.Slice `json:"slices,omitempty"`
	Dims     [3]int       `json:"dims,omitempty"`
	Voxels   []grid.Voxel `json:"voxels,omitempty"`
	Source   string       `json:"source,omitempty"` // file or script the shape came from
}

// Build assembles the occupancy grid for s. Errors are the grid package's
// typed errors, wrapped.
func (s *Shape) Build(opts ...grid.Option) (*grid.Grid, grid.Frame, error) {
	var (
		g   *grid.Grid
		f   grid.Frame
		err error
	)
	switch s.Kind {
	case KindSlices:
		g, f, err = grid.FromSlices(s.CellSize, s.Slices, opts...)
	case KindVoxels:
		g, f, err = grid.FromVoxels(s.CellSize, s.Dims[0], s.Dims[1], s.Dims[2], s.Voxels)
	default:
		return nil, grid.Frame{}, fmt.Errorf("build: unknown shape kind %v", s.Kind)
	}
	if err != nil {
		return nil, grid.Frame{}, fmt.Errorf("build %s: %w", s.Kind, err)
	}
	return g, f, nil
}

func (s *Shape) String() string {
	name := s.Source
	if name == "" {
		name = "<inline>"
	}
	switch s.Kind {
	case KindVoxels:
		return fmt.Sprintf("%s: %d voxels in %dx%dx%d, cell size %g",
			name, len(s.Voxels), s.Dims[0], s.Dims[1], s.Dims[2], s.CellSize)
	default:
		return fmt.Sprintf("%s: %d slices, cell size %g", name, len(s.Slices), s.CellSize)
	}
}
