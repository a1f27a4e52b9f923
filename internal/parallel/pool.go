// Package parallel provides a small bounded worker pool.
//
// A Pool with a single worker runs every job inline on the caller's
// goroutine, so callers can use the same code path for sequential and
// concurrent processing.
package parallel

import (
	"runtime"
	"sync"
)

// Pool runs submitted jobs on a fixed number of goroutines.
type Pool struct {
	size  int
	work  chan func()
	wg    sync.WaitGroup
	close func()
}

// Start launches a pool with numWorkers goroutines. A value below 1 uses
// GOMAXPROCS workers.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		size:  numWorkers,
		close: func() {},
	}
	if numWorkers == 1 {
		return pool
	}

	pool.work = make(chan func(), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			for f := range pool.work {
				f()
			}
		})
	}
	pool.close = sync.OnceFunc(func() { close(pool.work) })

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Do submits f. It blocks while every worker is busy and the queue is full.
// Do must not be called after Wait.
func (p *Pool) Do(f func()) {
	if p.work == nil {
		f()
		return
	}
	p.work <- f
}

// Wait stops accepting jobs and blocks until all submitted jobs finished.
func (p *Pool) Wait() {
	p.close()
	p.wg.Wait()
}
