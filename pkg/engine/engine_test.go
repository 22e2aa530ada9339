package engine

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEvaluateEmptyString(t *testing.T) {
	for _, src := range []string{"", "   \n\t  \n  "} {
		s, evalErrs, err := NewEngine().Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("unexpected eval errors: %v", evalErrs)
		}
		if s == nil {
			t.Fatal("expected non-nil shape")
		}
		if len(s.Slices)+len(s.Voxels) != 0 || s.CellSize != 0 {
			t.Errorf("expected empty shape, got %+v", s)
		}
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	s, evalErrs, err := NewEngine().Evaluate("(def x 10)\n(def y 20)\n(+ x y)")
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("unexpected errors: %v %v", err, evalErrs)
	}
	if n := len(s.Slices) + len(s.Voxels); n != 0 {
		t.Errorf("expected no slices or voxels, got %d", n)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	s, evalErrs, err := NewEngine().Evaluate("(layer 0 (rect 0 0 1 1)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if s != nil {
		t.Fatal("expected nil shape on syntax error")
	}
	if len(evalErrs) == 0 || evalErrs[0].Message == "" {
		t.Fatalf("expected a populated eval error, got %v", evalErrs)
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	s, evalErrs, err := NewEngine().Evaluate("(layer 0 undefined-polygon)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if s != nil || len(evalErrs) == 0 {
		t.Fatalf("expected eval error, got shape %v errors %v", s, evalErrs)
	}
}

func TestEvaluateIsolatesRuns(t *testing.T) {
	eng := NewEngine()
	for i := 0; i < 3; i++ {
		s, evalErrs, err := eng.Evaluate("(cell-size 1) (layer 0 (rect 0 0 1 1))")
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("iteration %d: %v %v", i, err, evalErrs)
		}
		if len(s.Slices) != 1 {
			t.Errorf("iteration %d: state leaked between runs, %d slices", i, len(s.Slices))
		}
	}
}

func TestScript(t *testing.T) {
	eng := NewEngine()
	s, err := eng.Script("(cell-size 2) (dims 1 1 1) (voxel 0 0 0)", "one.lisp")
	if err != nil {
		t.Fatalf("Script: %v", err)
	}
	if s.CellSize != 2 || len(s.Voxels) != 1 {
		t.Errorf("unexpected shape %+v", s)
	}

	_, err = eng.Script("(pt 1)", "bad.lisp")
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScriptError, got %v", err)
	}
	if se.Name != "bad.lisp" || !strings.HasPrefix(se.Error(), "evaluate bad.lisp: ") {
		t.Errorf("unexpected ScriptError %q", se.Error())
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	if s := e.Error(); s != "line 5: something went wrong" {
		t.Errorf("Error() = %q", s)
	}
	e2 := EvalError{Message: "no location"}
	if s := e2.Error(); strings.Contains(s, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s)
	}
}

func TestTimeoutOption(t *testing.T) {
	if got := NewEngine().Timeout(); got != DefaultTimeout {
		t.Errorf("default timeout = %s", got)
	}
	if got := NewEngine(WithTimeout(time.Second)).Timeout(); got != time.Second {
		t.Errorf("timeout = %s, want 1s", got)
	}
	if got := NewEngine(WithTimeout(-1)).Timeout(); got != DefaultTimeout {
		t.Errorf("negative timeout should keep default, got %s", got)
	}
}

func TestWaitWithTimeoutExpires(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(1)
	ch := make(chan evalResult) // never sends
	cancelled := false

	start := time.Now()
	_, _, err := waitWithTimeout(ch, 1, &mu, &gen, 20*time.Millisecond, func() { cancelled = true })
	if err == nil || !strings.Contains(err.Error(), "timed out after 20ms") {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout took far longer than configured")
	}
	if !cancelled {
		t.Error("timeout did not cancel the evaluation")
	}
}

func TestCancelledEvaluationStopsExpanding(t *testing.T) {
	stop := new(atomic.Bool)
	stop.Store(true)

	for _, src := range []string{
		`(fill-box 0 0 0 2 2 2)`,
		`(voxel 0 0 0)`,
		`(extrude :from 0 :to 2 (rect 0 0 1 1))`,
	} {
		s, evalErrs, err := NewEngine().evaluate(src, stop)
		if err != nil {
			t.Fatalf("%s: unexpected fatal error: %v", src, err)
		}
		if s != nil || len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, "cancelled") {
			t.Errorf("%s: shape %v, errors %v; want a cancellation error", src, s, evalErrs)
		}
	}
}

func TestWaitWithTimeoutDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, _, err := waitWithTimeout(ch, 1, &mu, &gen, time.Second, nil)
	if err == nil || !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"no line info", "some generic error", 0, "some generic error"},
		{"line format lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short form", "line 3: bad form", 3, "bad form"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("expected one error, got %d", len(errs))
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}
