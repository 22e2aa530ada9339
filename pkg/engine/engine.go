// Package engine evaluates shape scripts. It wraps zygomys in a sandboxed
// environment and produces a shape.Shape from the layer, extrude, voxel and
// fill-box forms the script evaluates.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chazu/boxcloud/pkg/shape"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ScriptError collects the evaluation errors of one named script.
type ScriptError struct {
	Name   string
	Errors []EvalError
}

func (e *ScriptError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ee := range e.Errors {
		msgs[i] = ee.Error()
	}
	return fmt.Sprintf("evaluate %s: %s", e.Name, strings.Join(msgs, "; "))
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use; each
// call to Evaluate creates a fresh sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the hard limit for one evaluation. Non-positive values
// keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout returns the evaluation limit in effect.
func (e *Engine) Timeout() time.Duration { return e.timeout }

// Evaluate runs a shape script and returns the shape it describes.
//
// Return semantics:
//   - On success: returns shape + nil errors + nil error
//   - On parse/eval failure: returns nil shape + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*shape.Shape, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	stop := new(atomic.Bool)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := e.evaluate(source, stop)
		ch <- evalResult{shape: s, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout, func() { stop.Store(true) })
}

// Script evaluates source and folds evaluation errors into a *ScriptError.
// Its signature matches input.ScriptFunc.
func (e *Engine) Script(source, name string) (*shape.Shape, error) {
	s, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", name, err)
	}
	if len(evalErrs) > 0 {
		return nil, &ScriptError{Name: name, Errors: evalErrs}
	}
	return s, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
// Builtins give up once stop is set.
func (e *Engine) evaluate(source string, stop *atomic.Bool) (*shape.Shape, []EvalError, error) {
	b := &builder{stop: stop}

	// Empty source is a valid program that describes an empty shape.
	if strings.TrimSpace(source) == "" {
		return b.shape(), nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return b.shape(), nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?is)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into an EvalError, extracting
// the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
