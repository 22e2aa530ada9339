package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chazu/boxcloud/pkg/config"
	"github.com/chazu/boxcloud/pkg/decompose"
	"github.com/chazu/boxcloud/pkg/engine"
	"github.com/chazu/boxcloud/pkg/grid"
	"github.com/chazu/boxcloud/pkg/input"
	"github.com/chazu/boxcloud/pkg/kernel"
	"github.com/chazu/boxcloud/pkg/kernel/sdfx"
	"github.com/chazu/boxcloud/pkg/monitoring"
	"github.com/chazu/boxcloud/pkg/report"
	"github.com/chazu/boxcloud/pkg/shape"
	"github.com/chazu/boxcloud/pkg/store"
	"github.com/chazu/boxcloud/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to boxes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the voxel-to-box pipeline: read or evaluate a shape, validate it,
// build the occupancy grid and decompose it into boxes.
type App struct {
	cfg    *config.RunConfig
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON-serializable mesh written by -mesh.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	BoxName  string    `json:"boxName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable script error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the outcome of evaluating a shape script end to end.
type EvalResult struct {
	Boxes    []decompose.Box `json:"boxes"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// Outcome is the product of one pipeline run.
type Outcome struct {
	Shape    *shape.Shape
	Warnings []shape.ValidationWarning
	Frame    grid.Frame
	Dims     [3]int
	Filled   int
	Boxes    []decompose.Box
	Elapsed  time.Duration
}

// Result returns the reporting view of o.
func (o *Outcome) Result() *report.Result {
	return &report.Result{
		Source: o.Shape.Source,
		Kind:   o.Shape.Kind,
		Frame:  o.Frame,
		Dims:   o.Dims,
		Boxes:  o.Boxes,
	}
}

// NewApp creates an App configured by cfg. A nil cfg uses config.Default.
func NewApp(cfg *config.RunConfig) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		cfg:    cfg,
		engine: engine.NewEngine(engine.WithTimeout(cfg.GetEvalTimeout())),
		kernel: sdfx.New(cfg.GetMeshCells()),
	}
}

// Load reads the shape stored at path. Scripts are evaluated by the App's
// engine.
func (a *App) Load(path string, format input.Format) (*shape.Shape, error) {
	return input.Read(path, format, a.engine.Script)
}

// Check validates s. Blocking problems are joined into the returned error,
// which still matches the grid package's typed errors with errors.As.
func (a *App) Check(s *shape.Shape) ([]shape.ValidationWarning, error) {
	res := shape.ValidateAll(s)
	if res.OK() {
		return res.Warnings, nil
	}
	errs := make([]error, len(res.Errors))
	for i, e := range res.Errors {
		errs[i] = e
	}
	return res.Warnings, fmt.Errorf("invalid shape: %w", errors.Join(errs...))
}

// Process validates s, builds its grid and decomposes it. With verification
// enabled the boxes are checked against a copy of the grid taken before the
// decomposer consumed it.
func (a *App) Process(s *shape.Shape) (*Outcome, error) {
	start := time.Now()

	warnings, err := a.Check(s)
	if err != nil {
		return nil, err
	}

	g, f, err := s.Build(grid.WithWorkers(a.cfg.GetWorkers()))
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, shape.ValidateGrid(g)...)

	out := &Outcome{
		Shape:    s,
		Warnings: warnings,
		Frame:    f,
		Dims:     [3]int{g.Width, g.Height, g.Depth},
		Filled:   g.Count(),
	}

	var original *grid.Grid
	if a.cfg.GetVerify() {
		original = g.Clone()
	}

	if a.cfg.Partitioned() {
		out.Boxes = decompose.Partitioned(g, a.cfg.GetChunk(), a.cfg.GetWorkers())
	} else {
		out.Boxes = decompose.Decompose(g)
	}

	if original != nil {
		if err := decompose.Verify(original, out.Boxes); err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
	}

	out.Elapsed = time.Since(start)
	monitoring.Logf("%s: %d filled cells -> %d boxes in %s", s, out.Filled, len(out.Boxes), out.Elapsed)
	return out, nil
}

// Run loads path and processes it.
func (a *App) Run(path string, format input.Format) (*Outcome, error) {
	s, err := a.Load(path, format)
	if err != nil {
		return nil, err
	}
	return a.Process(s)
}

// Meshes tessellates the boxes of o, one colored mesh per box.
func (a *App) Meshes(o *Outcome) ([]MeshData, error) {
	meshes, err := tessellate.Tessellate(a.kernel, o.Boxes, o.Frame)
	if err != nil {
		return nil, err
	}
	out := make([]MeshData, len(meshes))
	for i, m := range meshes {
		out[i] = MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			BoxName:  m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		}
	}
	return out, nil
}

// ExportSTL writes the union of o's boxes as an STL file.
func (a *App) ExportSTL(o *Outcome, path string) error {
	return tessellate.ExportSTL(a.kernel, o.Boxes, o.Frame, path)
}

// Histogram saves a plot of o's box volumes.
func (a *App) Histogram(o *Outcome, path string) error {
	return report.Histogram(o.Boxes, a.cfg.GetHistogramBins(), path)
}

// Save stores o in the result database and returns the run ID.
func (a *App) Save(ctx context.Context, o *Outcome) (string, error) {
	path := a.cfg.GetDBPath()
	if path == "" {
		return "", errors.New("no database path configured")
	}
	db, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer db.Close()

	return db.SaveRun(ctx, &store.Run{
		Source: o.Shape.Source,
		Kind:   o.Shape.Kind,
		Frame:  o.Frame,
		Dims:   o.Dims,
		Boxes:  o.Boxes,
	})
}

// Emit writes o's shape in the plain text format matching its kind.
func (a *App) Emit(o *Outcome, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := input.Write(f, o.Shape); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Evaluate takes shape script source and returns its boxes and meshes.
// Script errors are reported in the result rather than returned.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Boxes:    []decompose.Box{},
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a shape.
	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		monitoring.Logf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Validate, build and decompose.
	out, err := a.Process(s)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, w := range out.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.String()})
	}
	result.Boxes = out.Boxes
	if len(out.Boxes) == 0 {
		return result
	}

	// Step 4: Tessellate the boxes.
	meshes, err := a.Meshes(out)
	if err != nil {
		monitoring.Logf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	result.Meshes = meshes
	return result
}
