// Package workerpool runs index ranges across a bounded number of goroutines.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	pool.ParallelFor(len(tiles), func(start, end int) {
//	    processTiles(start, end)
//	})
//
// Every call blocks until all of its work has finished, so consecutive calls
// are separated by a full barrier.
package workerpool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Pool bounds the number of goroutines used by each parallel operation.
type Pool struct {
	numWorkers int
	closeOnce  sync.Once
	closed     atomic.Bool
}

// New creates a pool with numWorkers workers. If numWorkers <= 0 it uses
// GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &Pool{numWorkers: numWorkers}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close marks the pool closed; later calls run sequentially on the caller's
// goroutine. Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
	})
}

// chunks splits [0, n) into at most numWorkers contiguous ranges.
func (p *Pool) chunks(n int) (workers, size int) {
	workers = min(p.numWorkers, n)
	if p.closed.Load() {
		workers = 1
	}
	return workers, (n + workers - 1) / workers
}

// ParallelFor executes fn over [0, n) split into contiguous ranges, one per
// worker. Blocks until all work completes.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	_ = p.ParallelForErr(context.Background(), n, func(start, end int) error {
		fn(start, end)
		return nil
	})
}

// ParallelForErr is ParallelFor for work that can fail. The first error is
// returned after every started range has finished; ranges that have not
// started yet are skipped once ctx is cancelled or an error occurs.
func (p *Pool) ParallelForErr(ctx context.Context, n int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	workers, size := p.chunks(n)
	if workers == 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(0, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(start, end)
		})
	}
	return g.Wait()
}

// ParallelForAtomic executes fn for each index in [0, n), handing indices
// out one at a time. This balances load when the cost per index varies.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers, _ := p.chunks(n)
	if workers == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return nil
				}
				fn(i)
			}
		})
	}
	_ = g.Wait()
}
