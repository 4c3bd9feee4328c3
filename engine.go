package sonoscan

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sonolab/sonoscan/internal/parallel"
)

// Engine owns the render loop for one surface: frame pacing, lifecycle,
// and hot configuration reload. It holds no global state beyond its own
// instance data; the hosting view supplies the configuration and tissue
// model and reads frames back from the surface.
//
// The configuration and model are read-only snapshots during a frame.
// UpdateConfig and UpdateModel swap a pending reference that the next
// frame adopts wholesale, never partially mid-frame, so no locks guard
// the render path.
type Engine struct {
	surf  *Surface
	cat   *Catalog
	pool  *parallel.Pool
	clock Clock

	interval time.Duration
	onFrame  func(*Surface)
	seed     uint64

	cfg   atomic.Pointer[ScanConfig]
	model atomic.Pointer[TissueModel]

	mu        sync.Mutex // lifecycle transitions only
	running   bool
	stop      chan struct{}
	loopDone  chan struct{}
	destroyed bool

	epoch  time.Time
	frames atomic.Uint64
}

// New creates an engine bound to the surface with an initial configuration
// and tissue model. Both are validated here: an invalid configuration is
// rejected synchronously and can never reach the per-pixel pipeline.
func New(surf *Surface, cfg ScanConfig, model *TissueModel, opts ...Option) (*Engine, error) {
	if surf == nil || surf.Closed() {
		return nil, &ConfigError{Field: "surface", Reason: "surface is nil or already closed"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.catalog == nil {
		o.catalog = DefaultCatalog()
	}

	e := &Engine{
		surf:     surf,
		cat:      o.catalog,
		pool:     parallel.NewPool(o.workers),
		clock:    o.clock,
		interval: time.Duration(float64(time.Second) / o.fps),
		onFrame:  o.onFrame,
		seed:     o.seed,
		epoch:    o.clock.Now(),
	}
	e.cfg.Store(&cfg)
	e.model.Store(model)

	Logger().Info("engine created",
		"width", surf.Width(), "height", surf.Height(),
		"transducer", cfg.Transducer.String(), "mode", cfg.Mode.String(),
		"fps", o.fps, "workers", e.pool.Workers())
	return e, nil
}

// Start begins the frame loop. The first frame renders synchronously so
// the surface holds a valid image when Start returns; subsequent frames
// are paced at the target interval on a dedicated render goroutine.
// Start on a running or destroyed engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running || e.destroyed {
		e.mu.Unlock()
		return
	}
	e.running = true
	stop := make(chan struct{})
	done := make(chan struct{})
	e.stop = stop
	e.loopDone = done
	e.mu.Unlock()

	e.renderAt(e.clock.Now())
	go e.loop(stop, done)
	Logger().Info("engine started")
}

// loop is the frame-pacing loop: it polls at a fraction of the target
// interval and renders only when the elapsed time since the last frame
// meets or exceeds it.
func (e *Engine) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	poll := e.interval / 4
	if poll <= 0 {
		poll = time.Millisecond
	}
	last := e.clock.Now()

	for {
		select {
		case <-stop:
			return
		case <-time.After(poll):
		}
		now := e.clock.Now()
		if now.Sub(last) < e.interval {
			continue
		}
		last = now
		e.renderAt(now)
	}
}

// renderAt renders one frame for the wall time now.
func (e *Engine) renderAt(now time.Time) {
	start := time.Now()
	e.RenderOnce(now.Sub(e.epoch).Seconds())
	elapsed := time.Since(start)
	if elapsed > e.interval*3/2 {
		Logger().Warn("slow frame", "elapsed", elapsed, "target", e.interval)
	} else {
		Logger().Debug("frame rendered", "elapsed", elapsed)
	}
}

// RenderOnce renders a single frame synchronously for animation time t in
// seconds, then draws the enabled overlays and invokes the frame callback.
// Hosts that own their own scheduling (an event loop's update tick) call
// RenderOnce directly instead of Start; the two must not be mixed.
func (e *Engine) RenderOnce(t float64) {
	e.mu.Lock()
	if e.destroyed || e.surf.Closed() {
		e.mu.Unlock()
		Logger().Warn("render attempted on destroyed engine")
		return
	}
	e.mu.Unlock()

	cfg := *e.cfg.Load()
	model := e.model.Load()

	st := newFrameState(cfg, model, e.cat, t, e.seed)
	renderFrame(e.surf, st, e.pool)
	drawOverlays(e.surf, st)

	e.frames.Add(1)
	if e.onFrame != nil {
		e.onFrame(e.surf)
	}
}

// Stop halts the frame loop. After Stop returns, no further frames are
// produced and no scheduled callback remains pending. Safe to call more
// than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	stop := e.stop
	done := e.loopDone
	e.stop = nil
	e.loopDone = nil
	e.mu.Unlock()

	close(stop)
	<-done
	Logger().Info("engine stopped")
}

// Destroy stops the engine and releases the surface, speckle cache and
// worker pool. Destroy implies Stop; both are idempotent.
func (e *Engine) Destroy() {
	e.Stop()

	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	e.mu.Unlock()

	e.pool.Close()
	e.surf.Close()
	Logger().Info("engine destroyed", "frames", e.frames.Load())
}

// UpdateConfig merges a partial configuration into the active one. The
// merged result is validated first: a rejected patch returns the error
// and leaves the active configuration untouched. A valid result becomes
// the pending configuration adopted at the start of the next frame.
func (e *Engine) UpdateConfig(p Patch) error {
	cur := e.cfg.Load()
	next, err := cur.Apply(p)
	if err != nil {
		return err
	}
	e.cfg.Store(&next)
	Logger().Info("config adopted",
		"transducer", next.Transducer.String(), "frequencyMHz", next.FrequencyMHz,
		"depthCm", next.DepthCm, "focusCm", next.FocusCm,
		"gain", next.Gain, "mode", next.Mode.String())
	return nil
}

// UpdateModel validates and swaps the tissue model for the next frame.
// The engine treats the model as immutable; callers must not mutate it
// after handing it over.
func (e *Engine) UpdateModel(model *TissueModel) error {
	if err := model.Validate(); err != nil {
		return err
	}
	e.model.Store(model)
	Logger().Info("model adopted", "name", model.Name,
		"layers", len(model.Layers), "inclusions", len(model.Inclusions))
	return nil
}

// Config returns a copy of the active scan configuration.
func (e *Engine) Config() ScanConfig { return *e.cfg.Load() }

// Model returns the active tissue model snapshot.
func (e *Engine) Model() *TissueModel { return e.model.Load() }

// Surface returns the render surface the engine writes to.
func (e *Engine) Surface() *Surface { return e.surf }

// Frames returns the number of frames rendered so far.
func (e *Engine) Frames() uint64 { return e.frames.Load() }
