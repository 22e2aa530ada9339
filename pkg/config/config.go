// Package config loads the JSON run configuration. Every field is optional;
// the Get* accessors supply defaults for fields a file leaves out, and
// command-line flags override both.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Defaults applied by the Get* accessors.
const (
	DefaultMeshCells     = 64
	DefaultEvalTimeout   = 5 * time.Second
	DefaultHistogramBins = 20
)

// maxFileSize bounds config files.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// RunConfig holds tunables for one pipeline run.
type RunConfig struct {
	// Workers is the number of goroutines used for rasterization and
	// partitioned decomposition. 0 means one per CPU.
	Workers *int `json:"workers,omitempty"`

	// Chunk is the sub-volume size (x, y, z) for partitioned
	// decomposition. Absent or all zero decomposes the whole grid at once.
	Chunk []int `json:"chunk,omitempty"`

	// Verify re-checks the box list against a copy of the grid.
	Verify *bool `json:"verify,omitempty"`

	MeshCells     *int    `json:"mesh_cells,omitempty"`
	EvalTimeout   *string `json:"eval_timeout,omitempty"` // duration string like "2s"
	HistogramBins *int    `json:"histogram_bins,omitempty"`
	DBPath        *string `json:"db_path,omitempty"`
}

// Helper functions to create pointers
func ptrInt(v int) *int          { return &v }
func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }

// Empty returns a RunConfig with every field unset.
func Empty() *RunConfig {
	return &RunConfig{}
}

// Default returns a RunConfig with every field set to its default.
func Default() *RunConfig {
	return &RunConfig{
		Workers:       ptrInt(0),
		Chunk:         []int{0, 0, 0},
		Verify:        ptrBool(false),
		MeshCells:     ptrInt(DefaultMeshCells),
		EvalTimeout:   ptrString(DefaultEvalTimeout.String()),
		HistogramBins: ptrInt(DefaultHistogramBins),
		DBPath:        ptrString(""),
	}
}

// Load reads a RunConfig from a JSON file. The file must have a .json
// extension and be at most 1MB. Unknown keys are rejected.
func Load(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RunConfig) Validate() error {
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.Chunk != nil {
		if len(c.Chunk) != 3 {
			return fmt.Errorf("chunk must have 3 entries (x y z), got %d", len(c.Chunk))
		}
		for i, v := range c.Chunk {
			if v < 0 {
				return fmt.Errorf("chunk[%d] must be non-negative, got %d", i, v)
			}
		}
	}
	if c.MeshCells != nil && *c.MeshCells <= 0 {
		return fmt.Errorf("mesh_cells must be positive, got %d", *c.MeshCells)
	}
	if c.EvalTimeout != nil && *c.EvalTimeout != "" {
		d, err := time.ParseDuration(*c.EvalTimeout)
		if err != nil {
			return fmt.Errorf("invalid eval_timeout '%s': %w", *c.EvalTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("eval_timeout must be positive, got %s", d)
		}
	}
	if c.HistogramBins != nil && *c.HistogramBins <= 0 {
		return fmt.Errorf("histogram_bins must be positive, got %d", *c.HistogramBins)
	}
	return nil
}

// GetWorkers returns the worker count, resolving 0 to the CPU count.
func (c *RunConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers == 0 {
		return runtime.NumCPU()
	}
	return *c.Workers
}

// GetChunk returns the partition size, or all zeros when unset.
func (c *RunConfig) GetChunk() [3]int {
	var out [3]int
	if len(c.Chunk) == 3 {
		copy(out[:], c.Chunk)
	}
	return out
}

// Partitioned reports whether a non-zero chunk size is configured.
func (c *RunConfig) Partitioned() bool {
	return c.GetChunk() != [3]int{}
}

// GetVerify returns the verify flag or the default.
func (c *RunConfig) GetVerify() bool {
	if c.Verify == nil {
		return false
	}
	return *c.Verify
}

// GetMeshCells returns the marching-cubes resolution or the default.
func (c *RunConfig) GetMeshCells() int {
	if c.MeshCells == nil {
		return DefaultMeshCells
	}
	return *c.MeshCells
}

// GetEvalTimeout parses and returns the script evaluation limit.
func (c *RunConfig) GetEvalTimeout() time.Duration {
	if c.EvalTimeout == nil || *c.EvalTimeout == "" {
		return DefaultEvalTimeout
	}
	d, err := time.ParseDuration(*c.EvalTimeout)
	if err != nil || d <= 0 {
		return DefaultEvalTimeout
	}
	return d
}

// GetHistogramBins returns the histogram bin count or the default.
func (c *RunConfig) GetHistogramBins() int {
	if c.HistogramBins == nil {
		return DefaultHistogramBins
	}
	return *c.HistogramBins
}

// GetDBPath returns the result database path, empty when persistence is off.
func (c *RunConfig) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// SetWorkers, SetChunk, SetVerify and SetDBPath apply command-line overrides.

func (c *RunConfig) SetWorkers(n int)      { c.Workers = ptrInt(n) }
func (c *RunConfig) SetChunk(chunk [3]int) { c.Chunk = chunk[:] }
func (c *RunConfig) SetVerify(v bool)      { c.Verify = ptrBool(v) }
func (c *RunConfig) SetDBPath(p string)    { c.DBPath = ptrString(p) }
