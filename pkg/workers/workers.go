// Package workers fans a slice of independent jobs out over a fixed number
// of goroutines.
package workers

import "sync"

// Run calls fn once for every element of data, splitting data into
// contiguous chunks handled by up to n goroutines. It returns when all calls
// have finished. fn must be safe to call concurrently for distinct elements.
func Run[T any](n int, data []T, fn func(item T)) {
	size := len(data)
	if size == 0 {
		return
	}
	n = max(1, min(n, size))
	if n == 1 {
		for _, item := range data {
			fn(item)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (size + n - 1) / n
	for w := 0; w < n; w++ {
		start, end := w*chunk, min((w+1)*chunk, size)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(start, end)
	}
	wg.Wait()
}
