package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/profiler"
)

// FrameErrorPolicy decides what the FrameLoop does when a frame returns an error.
type FrameErrorPolicy int

const (
	// SkipFrame logs the failure, drops the frame and keeps scheduling. Each distinct error
	// message is logged once.
	SkipFrame FrameErrorPolicy = iota

	// StopOnError stops the loop on the first failing frame.
	StopOnError
)

// String returns the policy name.
func (p FrameErrorPolicy) String() string {
	switch p {
	case StopOnError:
		return "stop-on-error"
	default:
		return "skip-frame"
	}
}

// maxLoggedErrors bounds how many distinct frame error messages the SkipFrame policy remembers.
// Past the limit new messages are counted as skips but no longer logged.
const maxLoggedErrors = 32

// FrameFunc draws one frame.
//
// Parameters:
//   - now: the frame time, never earlier than the previous frame's
//   - dt: the time since the previous frame (zero on the first)
//
// Returns:
//   - error: a frame failure, handled according to the loop's FrameErrorPolicy
type FrameFunc func(now time.Time, dt time.Duration) error

// FrameLoop calls a FrameFunc once per tick from a single goroutine. Posted tasks and resize
// events are handled between frames on the same goroutine, so none of them ever run concurrently.
type FrameLoop struct {
	frame    FrameFunc
	interval time.Duration
	policy   FrameErrorPolicy
	logger   *slog.Logger
	profiler *profiler.Profiler

	ticks    <-chan time.Time
	tasks    <-chan func()
	resize   <-chan common.Viewport
	onResize func(common.Viewport)

	last    time.Time
	frames  int
	skipped int
	logged  map[string]bool
	capped  bool
}

// NewFrameLoop creates a FrameLoop for the given frame function.
// The loop ticks at 60 Hz with the SkipFrame policy unless configured otherwise.
//
// Parameters:
//   - frame: the function to call once per tick
//   - options: variadic list of FrameLoopBuilderOption functions to configure the loop
//
// Returns:
//   - *FrameLoop: the new loop
func NewFrameLoop(frame FrameFunc, options ...FrameLoopBuilderOption) *FrameLoop {
	if frame == nil {
		panic("engine: NewFrameLoop requires a frame function")
	}
	l := &FrameLoop{
		frame:    frame,
		interval: time.Second / 60,
		policy:   SkipFrame,
		logger:   slog.Default(),
		logged:   make(map[string]bool),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Run schedules frames until ctx is cancelled or a frame error stops the loop.
// Errors wrapping common.ErrFatal stop the loop under every policy. A panic in a frame,
// task or resize handler is recovered and stops the loop as a common.ErrFatal error.
//
// Parameters:
//   - ctx: cancels the loop
//
// Returns:
//   - error: the frame error that stopped the loop, or nil when ctx was cancelled
func (l *FrameLoop) Run(ctx context.Context) error {
	ticks := l.ticks
	if ticks == nil {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-l.tasks:
			if task == nil {
				continue
			}
			if err := l.guard("task", func() error { task(); return nil }); err != nil {
				return err
			}
		case vp := <-l.resize:
			if l.onResize == nil {
				continue
			}
			if err := l.guard("resize", func() error { l.onResize(vp); return nil }); err != nil {
				return err
			}
		case now, ok := <-ticks:
			if !ok {
				return nil
			}
			if err := l.step(now); err != nil {
				return err
			}
		}
	}
}

// Frames returns how many frames completed without error.
func (l *FrameLoop) Frames() int {
	return l.frames
}

// Skipped returns how many frames were dropped under the SkipFrame policy.
func (l *FrameLoop) Skipped() int {
	return l.skipped
}

func (l *FrameLoop) step(now time.Time) error {
	if now.Before(l.last) {
		now = l.last
	}
	var dt time.Duration
	if !l.last.IsZero() {
		dt = now.Sub(l.last)
	}
	l.last = now

	err := l.guard("frame", func() error { return l.frame(now, dt) })
	if err == nil {
		l.frames++
		if l.profiler != nil {
			l.profiler.Tick()
		}
		return nil
	}

	if l.policy == StopOnError || errors.Is(err, common.ErrFatal) {
		l.logger.Error("frame loop stopped", "policy", l.policy.String(), "error", err)
		return err
	}

	l.skipped++
	if l.profiler != nil {
		l.profiler.SkipFrame()
	}
	l.logSkip(err)
	return nil
}

// guard calls fn, converting a panic into an error wrapping common.ErrFatal.
// Frame errors are logged by step; task and resize panics are logged here.
func (l *FrameLoop) guard(what string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", common.ErrFatal, what, r)
			if what != "frame" {
				l.logger.Error("frame loop stopped", "policy", l.policy.String(), "error", err)
			}
		}
	}()
	return fn()
}

// logSkip warns once per distinct error message, remembering at most maxLoggedErrors of them.
func (l *FrameLoop) logSkip(err error) {
	msg := err.Error()
	if l.logged[msg] {
		return
	}
	if len(l.logged) >= maxLoggedErrors {
		if !l.capped {
			l.capped = true
			l.logger.Warn("too many distinct frame errors, further ones are not logged", "skipped", l.skipped)
		}
		return
	}
	l.logged[msg] = true
	l.logger.Warn("frame skipped", "error", err, "skipped", l.skipped)
}
