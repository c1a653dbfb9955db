// Package engine runs the stage: a single event loop that advances the timeline, renders frames,
// applies resize events and executes posted tasks, next to the window message pump.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/profiler"
	"github.com/Carmen-Shannon/oxy-stage/engine/window"
	"golang.org/x/sync/errgroup"
)

// taskQueueSize is how many posted tasks may wait for the event loop.
const taskQueueSize = 64

// engine implements the Engine interface.
type engine struct {
	window window.Window
	logger *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	tickRate         float64
	renderFrameLimit time.Duration
	policy           FrameErrorPolicy
	ticks            <-chan time.Time

	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32) error
	resizeCallback func(vp common.Viewport)

	tasks  chan func()
	resize chan common.Viewport

	ctx      context.Context
	cancel   context.CancelFunc
	quitOnce sync.Once
	running  atomic.Bool

	lastRender time.Time
	loop       *FrameLoop
}

// Engine is the main entry point: it owns the event loop and the window pump.
type Engine interface {
	// Window returns the window the engine pumps, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickCallback registers the function called first in every frame.
	// Use it to advance the timeline; snapshot callbacks then run on the event loop.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function that draws the frame after the tick callback.
	// Its error is handled by the engine's FrameErrorPolicy.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds since the last render
	SetRenderCallback(callback func(deltaTime float32) error)

	// SetResizeCallback registers the function applying window resizes on the event loop.
	// Resizes arriving faster than the loop consumes them are coalesced to the latest one.
	//
	// Parameters:
	//   - callback: function receiving the new viewport
	SetResizeCallback(callback func(vp common.Viewport))

	// Post queues fn to run on the event loop between frames. It never blocks, so tasks may
	// post follow-up tasks from the loop itself.
	//
	// Parameters:
	//   - fn: the task
	//
	// Returns:
	//   - bool: false if the engine has quit or the task queue is full, and fn will never run
	Post(fn func()) bool

	// Done is closed once Quit has been called.
	//
	// Returns:
	//   - <-chan struct{}: the quit signal
	Done() <-chan struct{}

	// Run starts the event loop and blocks on the window message pump until the window closes
	// or Quit is called. Without a window it blocks until Quit.
	//
	// Returns:
	//   - error: the frame error that stopped the loop, if any
	Run() error

	// Quit stops the event loop and asks the window to close.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (window, tick rate, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &engine{
		logger:   slog.Default(),
		tickRate: 60,
		policy:   SkipFrame,
		tasks:    make(chan func(), taskQueueSize),
		resize:   make(chan common.Viewport, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	if e.window != nil {
		// Called from the window's thread; the loop applies it.
		e.window.SetResizeCallback(e.queueResize)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32) error) {
	e.renderCallback = callback
}

func (e *engine) SetResizeCallback(callback func(vp common.Viewport)) {
	e.resizeCallback = callback
}

func (e *engine) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-e.ctx.Done():
		return false
	default:
	}
	select {
	case e.tasks <- fn:
		return true
	default:
		e.logger.Warn("task queue full, task dropped", "capacity", cap(e.tasks))
		return false
	}
}

func (e *engine) Done() <-chan struct{} {
	return e.ctx.Done()
}

func (e *engine) Run() error {
	if !e.running.CompareAndSwap(false, true) {
		panic("engine: Run called twice")
	}

	e.loop = NewFrameLoop(e.frame,
		WithFrameRate(e.tickRate),
		WithErrorPolicy(e.policy),
		WithLoopLogger(e.logger),
		WithTicks(e.ticks),
		WithTasks(e.tasks),
		WithResizeEvents(e.resize, e.applyResize),
	)

	g, ctx := errgroup.WithContext(e.ctx)
	g.Go(func() error {
		defer e.Quit()
		return e.loop.Run(ctx)
	})

	if e.window != nil {
		e.window.ProcessMessages()
		e.Quit()
	} else {
		<-ctx.Done()
	}
	return g.Wait()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.cancel()
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// frame runs one tick of the event loop: timeline first, then the render, then the profiler.
func (e *engine) frame(now time.Time, dt time.Duration) error {
	if e.tickCallback != nil {
		e.tickCallback(float32(dt.Seconds()))
	}

	if e.renderFrameLimit > 0 && !e.lastRender.IsZero() && now.Sub(e.lastRender) < e.renderFrameLimit {
		return nil
	}
	var renderDt time.Duration
	if !e.lastRender.IsZero() {
		renderDt = now.Sub(e.lastRender)
	}
	e.lastRender = now

	if e.renderCallback != nil {
		if err := e.renderCallback(float32(renderDt.Seconds())); err != nil {
			if e.profilingEnabled.Load() {
				e.profiler.SkipFrame()
			}
			return err
		}
	}

	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	return nil
}

// queueResize keeps only the most recent pending viewport.
func (e *engine) queueResize(vp common.Viewport) {
	for {
		select {
		case e.resize <- vp:
			return
		default:
		}
		select {
		case <-e.resize:
		default:
		}
	}
}

func (e *engine) applyResize(vp common.Viewport) {
	if e.resizeCallback != nil {
		e.resizeCallback(vp)
	}
}
