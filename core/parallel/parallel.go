// Package parallel splits index ranges across goroutines.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/diagplot/pkg/errors"
)

// Workers returns n clamped to [1, NumCPU]; n <= 0 means NumCPU.
func Workers(n int) int {
	cpu := runtime.NumCPU()
	if n <= 0 || n > cpu {
		return cpu
	}
	return n
}

// Parallelize splits [0, items) into one contiguous chunk per CPU and runs
// fn on each chunk concurrently. A panic in fn is re-raised on the calling
// goroutine once every chunk has finished.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	workers := Workers(0)
	if workers > items {
		workers = items
	}
	chunk := (items + workers - 1) / workers

	var (
		wg       sync.WaitGroup
		once     sync.Once
		panicked any
	)
	for start := 0; start < items; start += chunk {
		end := min(start+chunk, items)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() { panicked = r })
				}
			}()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
	if panicked != nil {
		panic(panicked)
	}
}

// ParallelizeWithThreshold runs fn sequentially when items <= threshold.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ForEach calls fn for every index in [0, n) with at most workers goroutines.
// The first error cancels ctx for the remaining calls and is returned. A
// panic in fn is returned as an *errors.PanicError.
func ForEach(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers(workers))
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer errors.Recover(&err, "parallel.ForEach")
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
