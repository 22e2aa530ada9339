package grid

import (
	"math"
	"sort"

	"github.com/chazu/boxcloud/pkg/raster"
	"github.com/chazu/boxcloud/pkg/workers"
)

// Option configures the slice builder.
type Option func(*buildOptions)

type buildOptions struct {
	workers int
}

// WithWorkers rasterizes up to n z-layers concurrently. Each worker owns the
// layers it writes; n <= 1 rasterizes sequentially.
func WithWorkers(n int) Option {
	return func(o *buildOptions) { o.workers = n }
}

// layerJob rasterizes one slice into its own layer.
type layerJob struct {
	layer []uint8
	poly  raster.Polygon
}

// FromSlices stacks rasterized polygon slices into a grid. The grid covers
// the bounding rectangle of all vertices and every z-level between the
// lowest and highest slice; levels without a slice stay empty. When several
// slices share a z-index the last one wins.
func FromSlices(cellSize float64, slices []Slice, opts ...Option) (*Grid, Frame, error) {
	o := buildOptions{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	if err := CheckCellSize(cellSize); err != nil {
		return nil, Frame{}, err
	}
	if err := CheckCount("numSlices", len(slices)); err != nil {
		return nil, Frame{}, err
	}

	polys := make([]raster.Polygon, len(slices))
	minZ, maxZ := math.MaxInt, math.MinInt
	for i, s := range slices {
		if err := CheckSlice(i, s); err != nil {
			return nil, Frame{}, err
		}
		polys[i] = s.Polygon
		minZ = min(minZ, s.Z)
		maxZ = max(maxZ, s.Z)
	}
	bbox, _ := raster.Bounds(polys...)

	width := int(math.Ceil((bbox.URx - bbox.LLx) / cellSize))
	height := int(math.Ceil((bbox.URy - bbox.LLy) / cellSize))
	g, err := New(width, height, maxZ-minZ+1)
	if err != nil {
		return nil, Frame{}, err
	}
	frame := Frame{CellSize: cellSize, MinX: bbox.LLx, MinY: bbox.LLy, MinZ: minZ}

	last := make(map[int]int, len(slices))
	for i, s := range slices {
		last[s.Z] = i
	}
	levels := make([]int, 0, len(last))
	for z := range last {
		levels = append(levels, z)
	}
	sort.Ints(levels)

	jobs := make([]layerJob, len(levels))
	for i, z := range levels {
		jobs[i] = layerJob{layer: g.Layer(z - minZ), poly: slices[last[z]].Polygon}
	}
	workers.Run(o.workers, jobs, func(j layerJob) {
		raster.RasterizeInto(j.layer, j.poly, width, height, frame.MinX, frame.MinY, cellSize)
	})

	return g, frame, nil
}

// FromVoxels allocates a width×height×depth grid and fills every listed
// voxel. Duplicates are harmless.
func FromVoxels(cellSize float64, width, height, depth int, voxels []Voxel) (*Grid, Frame, error) {
	if err := CheckCellSize(cellSize); err != nil {
		return nil, Frame{}, err
	}
	g, err := New(width, height, depth)
	if err != nil {
		return nil, Frame{}, err
	}
	if err := CheckCount("numVoxels", len(voxels)); err != nil {
		return nil, Frame{}, err
	}
	for i, v := range voxels {
		if err := CheckVoxel(i, v, width, height, depth); err != nil {
			return nil, Frame{}, err
		}
		g.Set(v.X, v.Y, v.Z)
	}
	return g, Frame{CellSize: cellSize}, nil
}
