package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/chazu/boxcloud/pkg/shape"
)

// DefaultTimeout is the evaluation limit when none is configured.
const DefaultTimeout = 5 * time.Second

// evalResult passes evaluation results through channels.
type evalResult struct {
	shape  *shape.Shape
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns a timeout error
// if the evaluation exceeds timeout. It uses a generation counter to
// discard stale results from previous evaluations.
//
// On timeout, cancel is called and the goroutine may still be running until
// it next checks for cancellation; the generation check ensures its result
// is discarded when it eventually completes.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
	cancel func(),
) (*shape.Shape, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.shape, res.errors, res.err

	case <-timer.C:
		if cancel != nil {
			cancel()
		}
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
