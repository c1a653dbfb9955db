package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/profiler"
)

// FrameLoopBuilderOption is a functional option for configuring a FrameLoop.
type FrameLoopBuilderOption func(*FrameLoop)

// WithFrameRate sets the number of frames per second. Values <= 0 keep the default of 60.
//
// Parameters:
//   - fps: target frames per second
//
// Returns:
//   - FrameLoopBuilderOption: option function to apply
func WithFrameRate(fps float64) FrameLoopBuilderOption {
	return func(l *FrameLoop) {
		if fps > 0 {
			l.interval = time.Duration(float64(time.Second) / fps)
		}
	}
}

// WithErrorPolicy sets how frame errors are handled.
//
// Parameters:
//   - policy: SkipFrame or StopOnError
//
// Returns:
//   - FrameLoopBuilderOption: option function to apply
func WithErrorPolicy(policy FrameErrorPolicy) FrameLoopBuilderOption {
	return func(l *FrameLoop) {
		l.policy = policy
	}
}

// WithLoopLogger sets the logger for frame failures.
func WithLoopLogger(logger *slog.Logger) FrameLoopBuilderOption {
	return func(l *FrameLoop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithLoopProfiler ticks p after every completed frame and records skipped ones.
func WithLoopProfiler(p *profiler.Profiler) FrameLoopBuilderOption {
	return func(l *FrameLoop) {
		l.profiler = p
	}
}

// WithTicks drives the loop from ticks instead of an internal ticker. The loop returns when ticks is closed.
//
// Parameters:
//   - ticks: the frame clock
//
// Returns:
//   - FrameLoopBuilderOption: option function to apply
func WithTicks(ticks <-chan time.Time) FrameLoopBuilderOption {
	return func(l *FrameLoop) {
		l.ticks = ticks
	}
}

// WithTasks runs every function received on tasks between frames.
func WithTasks(tasks <-chan func()) FrameLoopBuilderOption {
	return func(l *FrameLoop) {
		l.tasks = tasks
	}
}

// WithResizeEvents calls handle for every viewport received on events, between frames.
//
// Parameters:
//   - events: the resize events
//   - handle: the function applying a resize
//
// Returns:
//   - FrameLoopBuilderOption: option function to apply
func WithResizeEvents(events <-chan common.Viewport, handle func(common.Viewport)) FrameLoopBuilderOption {
	return func(l *FrameLoop) {
		l.resize = events
		l.onResize = handle
	}
}
