package sonoscan

import "time"

// Clock abstracts time for the render scheduler so tests can drive frame
// pacing deterministically.
type Clock interface {
	Now() time.Time
}

// systemClock is the default wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// defaultSeed feeds the speckle and jitter hashes when no seed is given.
const defaultSeed uint64 = 0x536f6e6f // "Sono"

// Option configures an Engine during creation.
//
// Example:
//
//	eng, err := sonoscan.New(surf, cfg, model,
//	    sonoscan.WithFrameRate(30),
//	    sonoscan.WithParallelism(4))
type Option func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	clock   Clock
	fps     float64
	workers int
	onFrame func(*Surface)
	seed    uint64
	catalog *Catalog
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		clock:   systemClock{},
		fps:     30,
		workers: 0, // GOMAXPROCS
		seed:    defaultSeed,
	}
}

// WithFrameRate sets the target frame rate of the scheduler. Values at or
// below zero keep the default of 30 FPS.
func WithFrameRate(fps float64) Option {
	return func(o *engineOptions) {
		if fps > 0 {
			o.fps = fps
		}
	}
}

// WithParallelism sets the number of render workers. 1 renders scanlines
// sequentially on the render goroutine; 0 or negative uses GOMAXPROCS.
// Frame content is identical regardless of the worker count.
func WithParallelism(workers int) Option {
	return func(o *engineOptions) {
		o.workers = workers
	}
}

// WithClock injects a clock for the frame-pacing loop. Intended for tests.
func WithClock(c Clock) Option {
	return func(o *engineOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithFrameCallback registers a function invoked after every completed
// frame with the surface the frame was written to. The callback runs on
// the render goroutine; it must not block.
func WithFrameCallback(fn func(*Surface)) Option {
	return func(o *engineOptions) {
		o.onFrame = fn
	}
}

// WithSeed fixes the speckle/jitter seed, making rendered frames
// bit-reproducible for a given time value.
func WithSeed(seed uint64) Option {
	return func(o *engineOptions) {
		o.seed = seed
	}
}

// WithCatalog replaces the built-in acoustic medium catalog.
func WithCatalog(cat *Catalog) Option {
	return func(o *engineOptions) {
		if cat != nil {
			o.catalog = cat
		}
	}
}
