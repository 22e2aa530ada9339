package engine

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/chazu/boxcloud/pkg/grid"
	"github.com/chazu/boxcloud/pkg/raster"
	"github.com/chazu/boxcloud/pkg/shape"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a raster.Point2D returned by `pt`.
type sexpPoint struct {
	p raster.Point2D
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", p.p.X, p.p.Y)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpPolygon wraps a raster.Polygon returned by `polygon`, `rect`
// and `ngon`.
type sexpPolygon struct {
	poly raster.Polygon
}

func (p *sexpPolygon) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(polygon %d points)", len(p.poly))
}
func (p *sexpPolygon) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

// toInt accepts integers and floats with no fractional part.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) && math.Abs(v.Val) < 1<<31 {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %s", describe(s))
}

func toPoint(s zygo.Sexp) (raster.Point2D, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.p, nil
	}
	return raster.Point2D{}, fmt.Errorf("expected point, got %s", describe(s))
}

func toPolygon(s zygo.Sexp) (raster.Polygon, error) {
	if p, ok := s.(*sexpPolygon); ok {
		return p.poly, nil
	}
	return nil, fmt.Errorf("expected polygon, got %s", describe(s))
}

// sexpListToSlice converts a Lisp list or array to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %s", describe(s))
}

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nothing"
	}
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

// floats extracts exactly n numeric arguments.
func floats(form string, args []zygo.Sexp, names ...string) ([]float64, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("%s requires %d arguments (%s), got %d",
			form, len(names), strings.Join(names, " "), len(args))
	}
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", form, names[i], err)
		}
		out[i] = f
	}
	return out, nil
}

// ints extracts exactly n integer arguments.
func ints(form string, args []zygo.Sexp, names ...string) ([]int, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("%s requires %d arguments (%s), got %d",
			form, len(names), strings.Join(names, " "), len(args))
	}
	out := make([]int, len(args))
	for i, a := range args {
		v, err := toInt(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", form, names[i], err)
		}
		out[i] = v
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Shape accumulation
// ---------------------------------------------------------------------------

// Limits on what a single script may describe. Every form is checked
// against them before it expands into slices, voxels or vertices.
const (
	MaxSlices   = 1 << 16
	MaxVoxels   = 1 << 24
	MaxVertices = 1 << 16
)

// builder collects the forms a script evaluates into a single Shape.
type builder struct {
	s       shape.Shape
	kindSet bool
	kindBy  string       // first form that fixed the kind
	stop    *atomic.Bool // set once the caller stops waiting
}

// stopped fails once the evaluation has been abandoned by its caller.
func (b *builder) stopped(form string) error {
	if b.stop != nil && b.stop.Load() {
		return fmt.Errorf("%s: evaluation cancelled", form)
	}
	return nil
}

// reserve fails if the evaluation was abandoned, or if adding n elements to
// the have already collected would pass limit.
func (b *builder) reserve(form, what string, have int, n uint64, limit int) error {
	if err := b.stopped(form); err != nil {
		return err
	}
	if n > uint64(limit-have) {
		return fmt.Errorf("%s: %d more %s would exceed the limit of %d", form, n, what, limit)
	}
	return nil
}

// span returns hi-lo for hi >= lo without overflowing.
func span(lo, hi int) uint64 {
	return uint64(hi) - uint64(lo)
}

// claim fixes the shape kind, failing if an earlier form chose the other
// kind.
func (b *builder) claim(k shape.Kind, form string) error {
	if !b.kindSet {
		b.s.Kind, b.kindSet, b.kindBy = k, true, form
		return nil
	}
	if b.s.Kind != k {
		return fmt.Errorf("%s: cannot mix %s forms with %s forms (first used %s)", form, k, b.s.Kind, b.kindBy)
	}
	return nil
}

func (b *builder) shape() *shape.Shape {
	s := b.s
	return &s
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the shape DSL into env. Every builtin records
// into b. Source must be preprocessed first, so kebab-case names arrive
// with underscores and :keywords as marked strings.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// (cell-size 0.5)
	env.AddFunction("cell_size", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := floats("cell-size", args, "size")
		if err != nil {
			return zygo.SexpNull, err
		}
		b.s.CellSize = v[0]
		return &zygo.SexpFloat{Val: v[0]}, nil
	})

	// (pt 1.5 -2)
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := floats("pt", args, "x", "y")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPoint{p: raster.Point2D{X: v[0], Y: v[1]}}, nil
	})

	// (polygon (pt 0 0) (pt 2 0) (pt 1 2)) or (polygon [(pt 0 0) ...])
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		items := args
		if len(args) == 1 {
			if _, isPt := args[0].(*sexpPoint); !isPt {
				list, err := sexpListToSlice(args[0])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
				}
				items = list
			}
		}
		poly := make(raster.Polygon, len(items))
		for i, it := range items {
			p, err := toPoint(it)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: point %d: %w", i, err)
			}
			poly[i] = p
		}
		return &sexpPolygon{poly: poly}, nil
	})

	// (rect x0 y0 x1 y1)
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := floats("rect", args, "x0", "y0", "x1", "y1")
		if err != nil {
			return zygo.SexpNull, err
		}
		x0, y0, x1, y1 := v[0], v[1], v[2], v[3]
		return &sexpPolygon{poly: raster.Polygon{
			{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
		}}, nil
	})

	// (ngon cx cy r n): regular n-gon with its first vertex on +x.
	env.AddFunction("ngon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("ngon requires 4 arguments (cx cy r n), got %d", len(args))
		}
		v, err := floats("ngon", args[:3], "cx", "cy", "r")
		if err != nil {
			return zygo.SexpNull, err
		}
		n, err := toInt(args[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ngon: n: %w", err)
		}
		if n < 3 {
			return zygo.SexpNull, fmt.Errorf("ngon: n must be at least 3, got %d", n)
		}
		if n > MaxVertices {
			return zygo.SexpNull, fmt.Errorf("ngon: n = %d exceeds the limit of %d", n, MaxVertices)
		}
		poly := make(raster.Polygon, n)
		for i := range n {
			a := 2 * math.Pi * float64(i) / float64(n)
			poly[i] = raster.Point2D{X: v[0] + v[2]*math.Cos(a), Y: v[1] + v[2]*math.Sin(a)}
		}
		return &sexpPolygon{poly: poly}, nil
	})

	// (layer 3 poly)
	env.AddFunction("layer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("layer requires 2 arguments (z polygon), got %d", len(args))
		}
		z, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("layer: z: %w", err)
		}
		poly, err := toPolygon(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("layer: %w", err)
		}
		if err := b.claim(shape.KindSlices, "layer"); err != nil {
			return zygo.SexpNull, err
		}
		if err := b.reserve("layer", "slices", len(b.s.Slices), 1, MaxSlices); err != nil {
			return zygo.SexpNull, err
		}
		b.s.Slices = append(b.s.Slices, grid.Slice{Z: z, Polygon: poly})
		return args[1], nil
	})

	// (extrude :from 0 :to 4 poly): one layer per z in [from, to].
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("extrude requires one polygon, got %d positional arguments", len(pa.positional))
		}
		poly, err := toPolygon(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
		}
		bounds := [2]int{}
		for i, kw := range []string{"from", "to"} {
			v, ok := pa.kw[kw]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("extrude: missing :%s", kw)
			}
			if bounds[i], err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: %s: %w", kw, err)
			}
		}
		if bounds[1] < bounds[0] {
			return zygo.SexpNull, fmt.Errorf("extrude: :to %d is below :from %d", bounds[1], bounds[0])
		}
		if err := b.claim(shape.KindSlices, "extrude"); err != nil {
			return zygo.SexpNull, err
		}
		if err := b.stopped("extrude"); err != nil {
			return zygo.SexpNull, err
		}
		// span+1 wraps to 0 for the full int range, so compare span itself.
		levels := span(bounds[0], bounds[1])
		if levels >= uint64(MaxSlices-len(b.s.Slices)) {
			return zygo.SexpNull, fmt.Errorf("extrude: %d levels from %d to %d would exceed the limit of %d slices",
				levels+1, bounds[0], bounds[1], MaxSlices)
		}
		for i := range int(levels) + 1 {
			b.s.Slices = append(b.s.Slices, grid.Slice{Z: bounds[0] + i, Polygon: poly})
		}
		return pa.positional[0], nil
	})

	// (dims w h d)
	env.AddFunction("dims", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := ints("dims", args, "w", "h", "d")
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := b.claim(shape.KindVoxels, "dims"); err != nil {
			return zygo.SexpNull, err
		}
		b.s.Dims = [3]int{v[0], v[1], v[2]}
		return zygo.SexpNull, nil
	})

	// (voxel x y z)
	env.AddFunction("voxel", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := ints("voxel", args, "x", "y", "z")
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := b.claim(shape.KindVoxels, "voxel"); err != nil {
			return zygo.SexpNull, err
		}
		if err := b.reserve("voxel", "voxels", len(b.s.Voxels), 1, MaxVoxels); err != nil {
			return zygo.SexpNull, err
		}
		b.s.Voxels = append(b.s.Voxels, grid.Voxel{X: v[0], Y: v[1], Z: v[2]})
		return zygo.SexpNull, nil
	})

	// (fill-box x0 y0 z0 x1 y1 z1): every voxel of the half-open block.
	env.AddFunction("fill_box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := ints("fill-box", args, "x0", "y0", "z0", "x1", "y1", "z1")
		if err != nil {
			return zygo.SexpNull, err
		}
		if v[3] < v[0] || v[4] < v[1] || v[5] < v[2] {
			return zygo.SexpNull, fmt.Errorf("fill-box: upper corner (%d %d %d) is below lower corner (%d %d %d)",
				v[3], v[4], v[5], v[0], v[1], v[2])
		}
		if err := b.claim(shape.KindVoxels, "fill-box"); err != nil {
			return zygo.SexpNull, err
		}
		if d := b.s.Dims; d != [3]int{} &&
			(v[0] < 0 || v[1] < 0 || v[2] < 0 || v[3] > d[0] || v[4] > d[1] || v[5] > d[2]) {
			return zygo.SexpNull, fmt.Errorf("fill-box: block (%d %d %d)-(%d %d %d) lies outside dims (%d %d %d)",
				v[0], v[1], v[2], v[3], v[4], v[5], d[0], d[1], d[2])
		}
		sx, sy, sz := span(v[0], v[3]), span(v[1], v[4]), span(v[2], v[5])
		if sx == 0 || sy == 0 || sz == 0 {
			return &zygo.SexpInt{Val: 0}, nil
		}
		budget := uint64(MaxVoxels - len(b.s.Voxels))
		if sx > budget/sy || sx*sy > budget/sz {
			return zygo.SexpNull, fmt.Errorf("fill-box: block of %d x %d x %d voxels would exceed the limit of %d voxels",
				sx, sy, sz, MaxVoxels)
		}
		for z := v[2]; z < v[5]; z++ {
			for y := v[1]; y < v[4]; y++ {
				if err := b.stopped("fill-box"); err != nil {
					return zygo.SexpNull, err
				}
				for x := v[0]; x < v[3]; x++ {
					b.s.Voxels = append(b.s.Voxels, grid.Voxel{X: x, Y: y, Z: z})
				}
			}
		}
		return &zygo.SexpInt{Val: int64(sx * sy * sz)}, nil
	})
}
