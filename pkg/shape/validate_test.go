package shape

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/boxcloud/pkg/grid"
	"github.com/chazu/boxcloud/pkg/raster"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func rect(z int, x0, y0, x1, y1 float64) grid.Slice {
	return grid.Slice{Z: z, Polygon: raster.Polygon{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}}
}

func sliceShape(cs float64, slices ...grid.Slice) *Shape {
	return &Shape{Kind: KindSlices, CellSize: cs, Slices: slices}
}

func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Error(), substr) {
			return true
		}
	}
	return false
}

func hasWarning(ws []ValidationWarning, substr string) bool {
	for _, w := range ws {
		if strings.Contains(w.String(), substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Tier 1
// ---------------------------------------------------------------------------

func TestValidateValidShapes(t *testing.T) {
	if errs := Validate(unitSquareShape()); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
	v := &Shape{Kind: KindVoxels, CellSize: 1, Dims: [3]int{2, 2, 2}, Voxels: []grid.Voxel{{1, 1, 1}}}
	if errs := Validate(v); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestValidateSliceErrors(t *testing.T) {
	tests := []struct {
		name  string
		shape *Shape
		want  string
	}{
		{"zero cell size", sliceShape(0, rect(0, 0, 0, 1, 1)), "cellSize"},
		{"no slices", sliceShape(1), "numSlices"},
		{
			"short polygon",
			sliceShape(1, rect(0, 0, 0, 1, 1), grid.Slice{Z: 4, Polygon: raster.Polygon{{X: 0, Y: 0}}}),
			"slice 1 (z=4)",
		},
		{
			"zero height",
			sliceShape(1, grid.Slice{Z: 0, Polygon: raster.Polygon{{X: 0, Y: 1}, {X: 3, Y: 1}, {X: 5, Y: 1}}}),
			"height",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.shape)
			if !hasError(errs, tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, errs)
			}
		})
	}
}

func TestValidateReportsEveryBadVoxel(t *testing.T) {
	s := &Shape{
		Kind: KindVoxels, CellSize: 1, Dims: [3]int{2, 2, 2},
		Voxels: []grid.Voxel{{0, 0, 0}, {2, 0, 0}, {0, 0, -1}},
	}
	errs := Validate(s)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	var re *grid.RangeError
	if !errors.As(errs[1], &re) || re.Voxel != 2 || re.Axis != "z" {
		t.Errorf("second error does not unwrap to voxel 2 z RangeError: %v", errs[1])
	}
}

func TestValidateMatchesBuilder(t *testing.T) {
	shapes := []*Shape{
		sliceShape(-1, rect(0, 0, 0, 1, 1)),
		sliceShape(1, grid.Slice{Z: 0, Polygon: raster.Polygon{{X: 0, Y: 0}, {X: 1, Y: 1}}}),
		{Kind: KindVoxels, CellSize: 1, Dims: [3]int{1, 0, 1}, Voxels: []grid.Voxel{{0, 0, 0}}},
		{Kind: KindVoxels, CellSize: 1, Dims: [3]int{1, 1, 1}},
		{Kind: KindVoxels, CellSize: 1, Dims: [3]int{1 << 32, 1 << 32, 1}, Voxels: []grid.Voxel{{0, 0, 0}}},
	}
	for i, s := range shapes {
		errs := Validate(s)
		_, _, err := s.Build()
		if len(errs) == 0 || err == nil {
			t.Errorf("shape %d: validate errors %v, build error %v", i, errs, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Tier 2
// ---------------------------------------------------------------------------

func TestValidateAllWarnings(t *testing.T) {
	bowtie := grid.Slice{Z: 5, Polygon: raster.Polygon{{X: 0, Y: 0}, {X: 2, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 3}}}
	flat := grid.Slice{Z: 1, Polygon: raster.Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}}
	s := sliceShape(1, rect(0, 0, 0, 2, 2), rect(1, 0, 0, 2, 2), flat, bowtie)

	res := ValidateAll(s)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	for _, want := range []string{
		"z=1: 2 slices share this level ([1 2]); slice 2 replaces the others",
		"slice 2 (z=1): polygon has zero area",
		"slice 3 (z=5): polygon is self-intersecting",
		"z-levels 2..4 have no slice",
	} {
		if !hasWarning(res.Warnings, want) {
			t.Errorf("missing warning %q in %v", want, res.Warnings)
		}
	}
}

func TestValidateAllSingleGap(t *testing.T) {
	res := ValidateAll(sliceShape(1, rect(0, 0, 0, 1, 1), rect(2, 0, 0, 1, 1)))
	if !hasWarning(res.Warnings, "z-level 1 has no slice") {
		t.Errorf("missing gap warning: %v", res.Warnings)
	}
}

func TestValidateAllDuplicateVoxels(t *testing.T) {
	s := &Shape{
		Kind: KindVoxels, CellSize: 1, Dims: [3]int{2, 1, 1},
		Voxels: []grid.Voxel{{0, 0, 0}, {1, 0, 0}, {0, 0, 0}},
	}
	res := ValidateAll(s)
	if !res.OK() || len(res.Warnings) != 1 {
		t.Fatalf("got %+v", res)
	}
	if !hasWarning(res.Warnings, "voxel 2: (0, 0, 0) duplicates voxel 0") {
		t.Errorf("unexpected warning %v", res.Warnings)
	}
}

func TestValidateAllSeparatesErrors(t *testing.T) {
	res := ValidateAll(sliceShape(0, rect(0, 0, 0, 1, 1)))
	if res.OK() {
		t.Fatal("expected errors")
	}
	if res.Errors[0].Severity != SeverityError {
		t.Errorf("severity = %v", res.Errors[0].Severity)
	}
}

// ---------------------------------------------------------------------------
// Tier 3
// ---------------------------------------------------------------------------

func TestValidateGrid(t *testing.T) {
	g := grid.MustNew(2, 2, 1)
	if ws := ValidateGrid(g); len(ws) != 1 || !strings.Contains(ws[0].Message, "no filled cells") {
		t.Errorf("expected empty-grid warning, got %v", ws)
	}
	g.Set(0, 0, 0)
	if ws := ValidateGrid(g); len(ws) != 0 {
		t.Errorf("unexpected warnings %v", ws)
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityError.String() != "error" || SeverityWarning.String() != "warning" {
		t.Error("unexpected severity names")
	}
	e := ValidationError{Subject: "voxel 1", Message: "bad", Severity: SeverityError}
	if e.Error() != "[error] voxel 1: bad" {
		t.Errorf("Error() = %q", e.Error())
	}
}
