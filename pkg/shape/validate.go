package shape

import (
	"fmt"
	"math"
	"sort"

	"github.com/chazu/boxcloud/pkg/grid"
	"github.com/chazu/boxcloud/pkg/raster"
)

// ValidationSeverity indicates whether a validation finding blocks the build
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks the build
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding. Err holds the
// grid package's typed error when the finding mirrors a builder failure.
type ValidationError struct {
	Subject  string             // e.g. "slice 2 (z=5)", empty if shape-level
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
	Err      error
}

func (e ValidationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Subject, e.Message)
}

func (e ValidationError) Unwrap() error { return e.Err }

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Subject string
	Message string
}

func (w ValidationWarning) String() string {
	if w.Subject == "" {
		return w.Message
	}
	return w.Subject + ": " + w.Message
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the result has no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the Tier 1 checks. An empty slice means the grid builder
// will accept s. Validate never mutates s.
func Validate(s *Shape) []ValidationError {
	switch s.Kind {
	case KindSlices:
		return validateSlices(s)
	case KindVoxels:
		return validateVoxels(s)
	}
	return []ValidationError{{
		Message:  fmt.Sprintf("unknown shape kind %v", s.Kind),
		Severity: SeverityError,
	}}
}

// ValidateAll runs Tier 1 and Tier 2 and returns errors and warnings
// separately.
func ValidateAll(s *Shape) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(s) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{Subject: e.Subject, Message: e.Message})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	switch s.Kind {
	case KindSlices:
		result.Warnings = append(result.Warnings, warnDuplicateLevels(s.Slices)...)
		result.Warnings = append(result.Warnings, warnPolygons(s.Slices)...)
		result.Warnings = append(result.Warnings, warnGaps(s.Slices)...)
	case KindVoxels:
		result.Warnings = append(result.Warnings, warnDuplicateVoxels(s.Voxels)...)
	}
	return result
}

// ValidateGrid runs the Tier 3 checks on a built grid.
func ValidateGrid(g *grid.Grid) []ValidationWarning {
	if g.Count() == 0 {
		return []ValidationWarning{{
			Message: fmt.Sprintf("%s has no filled cells; no boxes will be produced", g),
		}}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tier 1: builder preconditions
// ---------------------------------------------------------------------------

func asError(subject string, err error) ValidationError {
	return ValidationError{Subject: subject, Message: err.Error(), Severity: SeverityError, Err: err}
}

func sliceSubject(i int, sl grid.Slice) string {
	return fmt.Sprintf("slice %d (z=%d)", i, sl.Z)
}

func validateSlices(s *Shape) []ValidationError {
	var errs []ValidationError
	if err := grid.CheckCellSize(s.CellSize); err != nil {
		errs = append(errs, asError("", err))
	}
	if err := grid.CheckCount("numSlices", len(s.Slices)); err != nil {
		errs = append(errs, asError("", err))
	}

	polys := make([]raster.Polygon, 0, len(s.Slices))
	minZ, maxZ := math.MaxInt, math.MinInt
	for i, sl := range s.Slices {
		if err := grid.CheckSlice(i, sl); err != nil {
			errs = append(errs, asError(sliceSubject(i, sl), err))
			continue
		}
		polys = append(polys, sl.Polygon)
		minZ, maxZ = min(minZ, sl.Z), max(maxZ, sl.Z)
	}

	// Dimensions are only meaningful once every slice is well formed.
	if len(errs) == 0 {
		bbox, _ := raster.Bounds(polys...)
		w := int(math.Ceil((bbox.URx - bbox.LLx) / s.CellSize))
		h := int(math.Ceil((bbox.URy - bbox.LLy) / s.CellSize))
		if err := grid.CheckDims(w, h, maxZ-minZ+1); err != nil {
			errs = append(errs, asError("", err))
		}
	}
	return errs
}

func validateVoxels(s *Shape) []ValidationError {
	var errs []ValidationError
	if err := grid.CheckCellSize(s.CellSize); err != nil {
		errs = append(errs, asError("", err))
	}
	w, h, d := s.Dims[0], s.Dims[1], s.Dims[2]
	if err := grid.CheckDims(w, h, d); err != nil {
		errs = append(errs, asError("", err))
	}
	if err := grid.CheckCount("numVoxels", len(s.Voxels)); err != nil {
		errs = append(errs, asError("", err))
	}
	for i, v := range s.Voxels {
		if err := grid.CheckVoxel(i, v, w, h, d); err != nil {
			errs = append(errs, asError(fmt.Sprintf("voxel %d", i), err))
		}
	}
	return errs
}

// ---------------------------------------------------------------------------
// Tier 2: advisory findings
// ---------------------------------------------------------------------------

// zeroArea is the absolute area below which a polygon is considered flat.
const zeroArea = 1e-12

func warnDuplicateLevels(slices []grid.Slice) []ValidationWarning {
	seen := make(map[int][]int)
	for i, sl := range slices {
		seen[sl.Z] = append(seen[sl.Z], i)
	}
	levels := make([]int, 0, len(seen))
	for z, idx := range seen {
		if len(idx) > 1 {
			levels = append(levels, z)
		}
	}
	sort.Ints(levels)

	var warnings []ValidationWarning
	for _, z := range levels {
		idx := seen[z]
		warnings = append(warnings, ValidationWarning{
			Subject: fmt.Sprintf("z=%d", z),
			Message: fmt.Sprintf("%d slices share this level (%v); slice %d replaces the others",
				len(idx), idx, idx[len(idx)-1]),
		})
	}
	return warnings
}

func warnPolygons(slices []grid.Slice) []ValidationWarning {
	var warnings []ValidationWarning
	for i, sl := range slices {
		if len(sl.Polygon) < 3 {
			continue
		}
		if raster.Area(sl.Polygon) < zeroArea {
			warnings = append(warnings, ValidationWarning{
				Subject: sliceSubject(i, sl),
				Message: "polygon has zero area and fills no cells",
			})
			continue
		}
		if raster.SelfIntersects(sl.Polygon) {
			warnings = append(warnings, ValidationWarning{
				Subject: sliceSubject(i, sl),
				Message: "polygon is self-intersecting; even-odd filling applies",
			})
		}
	}
	return warnings
}

func warnGaps(slices []grid.Slice) []ValidationWarning {
	if len(slices) == 0 {
		return nil
	}
	present := make(map[int]bool, len(slices))
	for _, sl := range slices {
		present[sl.Z] = true
	}
	levels := make([]int, 0, len(present))
	for z := range present {
		levels = append(levels, z)
	}
	sort.Ints(levels)

	var warnings []ValidationWarning
	for i := 1; i < len(levels); i++ {
		lo, hi := levels[i-1]+1, levels[i]-1
		if lo > hi {
			continue
		}
		msg := fmt.Sprintf("z-level %d has no slice and stays empty", lo)
		if hi > lo {
			msg = fmt.Sprintf("z-levels %d..%d have no slice and stay empty", lo, hi)
		}
		warnings = append(warnings, ValidationWarning{Message: msg})
	}
	return warnings
}

func warnDuplicateVoxels(voxels []grid.Voxel) []ValidationWarning {
	first := make(map[grid.Voxel]int, len(voxels))
	var warnings []ValidationWarning
	for i, v := range voxels {
		if j, ok := first[v]; ok {
			warnings = append(warnings, ValidationWarning{
				Subject: fmt.Sprintf("voxel %d", i),
				Message: fmt.Sprintf("(%d, %d, %d) duplicates voxel %d", v.X, v.Y, v.Z, j),
			})
			continue
		}
		first[v] = i
	}
	return warnings
}
