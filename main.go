// Command boxcloud decomposes a voxelized solid into axis-aligned boxes.
//
// Usage:
//
//	boxcloud [flags] <input>
//
// The input is a slice file (.slices), a voxel list (.voxels) or a shape
// script (.lisp). The box list is printed to stdout in world coordinates.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/boxcloud/pkg/config"
	"github.com/chazu/boxcloud/pkg/input"
	"github.com/chazu/boxcloud/pkg/monitoring"
	"github.com/chazu/boxcloud/pkg/report"
	"github.com/chazu/boxcloud/pkg/store"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Options holds the parsed command line.
type Options struct {
	Input      string
	Format     input.Format
	ConfigPath string
	JSON       bool
	Stats      bool
	Check      bool
	Quiet      bool
	STLPath    string
	PlotPath   string
	MeshPath   string
	EmitPath   string
	ListRuns   bool
	ShowRun    string

	// Overrides for the run configuration, applied only when the flag was
	// given.
	Verify  *bool
	Workers *int
	Chunk   *[3]int
	DBPath  *string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	prev := monitoring.Logf
	defer monitoring.SetLogger(prev)
	if opts.Quiet {
		monitoring.SetLogger(nil)
	} else {
		monitoring.SetLogger(func(format string, v ...interface{}) {
			fmt.Fprintf(stderr, format+"\n", v...)
		})
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	ctx := context.Background()
	if opts.ListRuns || opts.ShowRun != "" {
		if err := browse(ctx, cfg, opts, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		return exitOK
	}

	app := NewApp(cfg)
	if err := process(ctx, app, cfg, opts, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (*Options, error) {
	opts := &Options{}
	fs := flag.NewFlagSet("boxcloud", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: boxcloud [flags] <input>")
		fs.PrintDefaults()
	}

	format := fs.String("format", "auto", "Input format: auto, slices, voxels or lisp")
	fs.StringVar(&opts.ConfigPath, "config", "", "JSON run configuration file")
	fs.BoolVar(&opts.JSON, "json", false, "Write the box list as JSON")
	fs.BoolVar(&opts.Stats, "stats", false, "Print box volume statistics")
	fs.BoolVar(&opts.Check, "check", false, "Validate the input and exit without decomposing")
	fs.BoolVar(&opts.Quiet, "quiet", false, "Suppress diagnostics on stderr")
	fs.StringVar(&opts.STLPath, "stl", "", "Write the union of the boxes as STL")
	fs.StringVar(&opts.PlotPath, "plot", "", "Save a histogram of box volumes (png, svg or pdf)")
	fs.StringVar(&opts.MeshPath, "mesh", "", "Write per-box triangle meshes as JSON")
	fs.StringVar(&opts.EmitPath, "emit", "", "Write the input shape in plain text form")
	fs.BoolVar(&opts.ListRuns, "list", false, "List runs stored in -db and exit")
	fs.StringVar(&opts.ShowRun, "show", "", "Print a run stored in -db and exit")
	verify := fs.Bool("verify", false, "Check that the boxes exactly cover the grid")
	workers := fs.Int("workers", 0, "Worker goroutines (0 = one per CPU)")
	chunk := fs.String("chunk", "", "Partition size x,y,z for parallel decomposition")
	db := fs.String("db", "", "SQLite database to store the run in")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if opts.Format, err = input.ParseFormat(*format); err != nil {
		return nil, err
	}

	var chunkErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "verify":
			opts.Verify = verify
		case "workers":
			opts.Workers = workers
		case "db":
			opts.DBPath = db
		case "chunk":
			c, err := parseChunk(*chunk)
			if err != nil {
				chunkErr = err
				return
			}
			opts.Chunk = &c
		}
	})
	if chunkErr != nil {
		return nil, chunkErr
	}
	if opts.Workers != nil && *opts.Workers < 0 {
		return nil, fmt.Errorf("-workers must be non-negative, got %d", *opts.Workers)
	}

	browsing := opts.ListRuns || opts.ShowRun != ""
	switch {
	case browsing && fs.NArg() != 0:
		return nil, errors.New("-list and -show take no input file")
	case browsing && (opts.DBPath == nil || *opts.DBPath == "") && opts.ConfigPath == "":
		return nil, errors.New("-list and -show need -db or a config with db_path")
	case !browsing && fs.NArg() != 1:
		fs.Usage()
		return nil, fmt.Errorf("expected exactly one input file, got %d", fs.NArg())
	}
	if !browsing {
		opts.Input = fs.Arg(0)
	}
	return opts, nil
}

// parseChunk accepts "x,y,z" or "XxYxZ". A single value applies to all axes.
func parseChunk(s string) ([3]int, error) {
	var out [3]int
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == 'x' })
	if len(parts) == 1 {
		parts = []string{parts[0], parts[0], parts[0]}
	}
	if len(parts) != 3 {
		return out, fmt.Errorf("invalid -chunk %q: want x,y,z", s)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return out, fmt.Errorf("invalid -chunk %q: %q is not a non-negative integer", s, p)
		}
		out[i] = v
	}
	return out, nil
}

// loadConfig reads -config, if any, and applies command-line overrides.
func loadConfig(opts *Options) (*config.RunConfig, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, err
		}
	}
	if opts.Verify != nil {
		cfg.SetVerify(*opts.Verify)
	}
	if opts.Workers != nil {
		cfg.SetWorkers(*opts.Workers)
	}
	if opts.Chunk != nil {
		cfg.SetChunk(*opts.Chunk)
	}
	if opts.DBPath != nil {
		cfg.SetDBPath(*opts.DBPath)
	}
	return cfg, cfg.Validate()
}

func process(ctx context.Context, app *App, cfg *config.RunConfig, opts *Options, stdout, stderr io.Writer) error {
	s, err := app.Load(opts.Input, opts.Format)
	if err != nil {
		return err
	}

	if opts.Check {
		warnings, err := app.Check(s)
		if !opts.Quiet {
			report.WriteWarnings(stderr, warnings)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: ok\n", s)
		return nil
	}

	out, err := app.Process(s)
	if err != nil {
		return err
	}
	if !opts.Quiet {
		report.WriteWarnings(stderr, out.Warnings)
	}

	res := out.Result()
	if opts.JSON {
		err = report.WriteJSON(stdout, res, opts.Stats)
	} else {
		err = report.WriteText(stdout, res)
		if err == nil && opts.Stats {
			err = report.WriteStats(stdout, report.Compute(out.Boxes))
		}
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if opts.EmitPath != "" {
		if err := app.Emit(out, opts.EmitPath); err != nil {
			return err
		}
	}
	// An empty grid is a valid result, but there is nothing to plot or mesh
	// into a solid.
	if len(out.Boxes) == 0 && (opts.PlotPath != "" || opts.STLPath != "") {
		monitoring.Warnf("%s produced no boxes; skipping histogram and STL output", s)
	}
	if opts.PlotPath != "" && len(out.Boxes) > 0 {
		if err := app.Histogram(out, opts.PlotPath); err != nil {
			return err
		}
		monitoring.Logf("wrote histogram %s", opts.PlotPath)
	}
	if opts.MeshPath != "" {
		if err := writeMeshes(app, out, opts.MeshPath); err != nil {
			return err
		}
		monitoring.Logf("wrote meshes %s", opts.MeshPath)
	}
	if opts.STLPath != "" && len(out.Boxes) > 0 {
		if err := app.ExportSTL(out, opts.STLPath); err != nil {
			return fmt.Errorf("export STL: %w", err)
		}
		monitoring.Logf("wrote %s", opts.STLPath)
	}
	if cfg.GetDBPath() != "" {
		id, err := app.Save(ctx, out)
		if err != nil {
			return fmt.Errorf("store run: %w", err)
		}
		monitoring.Logf("stored run %s in %s", id, cfg.GetDBPath())
	}
	return nil
}

func writeMeshes(app *App, out *Outcome, path string) error {
	meshes, err := app.Meshes(out)
	if err != nil {
		return err
	}
	data, err := json.Marshal(meshes)
	if err != nil {
		return fmt.Errorf("encode meshes: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write meshes: %w", err)
	}
	return nil
}

// browse serves -list and -show from the result database.
func browse(ctx context.Context, cfg *config.RunConfig, opts *Options, stdout io.Writer) error {
	path := cfg.GetDBPath()
	if path == "" {
		return errors.New("no database path configured")
	}
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if opts.ListRuns {
		runs, err := db.ListRuns(ctx, 0)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Fprintf(stdout, "%s  %s  %-6s  %4d boxes  %s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Kind, r.BoxCount, r.Source)
		}
		return nil
	}

	r, err := db.LoadRun(ctx, opts.ShowRun)
	if err != nil {
		return err
	}
	res := &report.Result{Source: r.Source, Kind: r.Kind, Frame: r.Frame, Dims: r.Dims, Boxes: r.Boxes}
	if opts.JSON {
		return report.WriteJSON(stdout, res, opts.Stats)
	}
	if err := report.WriteText(stdout, res); err != nil {
		return err
	}
	if opts.Stats {
		return report.WriteStats(stdout, report.Compute(r.Boxes))
	}
	return nil
}
