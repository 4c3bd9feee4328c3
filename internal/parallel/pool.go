package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent pool of worker goroutines for scanline rendering.
//
// The frame compositor splits the pixel grid into row strips and runs them
// through the pool. Strips never read each other's output, so parallel and
// sequential execution produce identical frames.
//
// Thread safety: Pool is safe for concurrent use, though the engine only
// ever drives it from one render goroutine at a time.
type Pool struct {
	workers int
	jobs    chan job
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

type job struct {
	lo, hi int
	fn     func(lo, hi int)
	wg     *sync.WaitGroup
}

// NewPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used. A pool of one worker
// still runs strips inline on the caller, avoiding goroutine overhead.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		jobs:    make(chan job, workers*4),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	if workers > 1 {
		p.wg.Add(workers)
		for i := 0; i < workers; i++ {
			go p.worker()
		}
	}
	return p
}

// worker pulls strips until the pool closes.
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case j := <-p.jobs:
			j.fn(j.lo, j.hi)
			j.wg.Done()
		}
	}
}

// Rows splits [0, n) into strips of at most grain rows and runs fn on each
// strip, returning when every strip has completed. With a single worker or
// a closed pool the strips run inline in order; the results are identical
// either way since strips share no state.
func (p *Pool) Rows(n, grain int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if grain < 1 {
		grain = 1
	}

	if p.workers <= 1 || !p.running.Load() {
		for lo := 0; lo < n; lo += grain {
			hi := lo + grain
			if hi > n {
				hi = n
			}
			fn(lo, hi)
		}
		return
	}

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += grain {
		hi := lo + grain
		if hi > n {
			hi = n
		}
		wg.Add(1)
		select {
		case p.jobs <- job{lo: lo, hi: hi, fn: fn, wg: &wg}:
		case <-p.done:
			// Pool closed mid-frame: finish the strip inline.
			fn(lo, hi)
			wg.Done()
		}
	}
	wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int { return p.workers }

// Close stops the workers. Safe to call more than once; strips submitted
// after Close run inline on the caller.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}
