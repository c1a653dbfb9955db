package stage

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/assets"
	"github.com/Carmen-Shannon/oxy-stage/engine/geometry"
)

// StageBuilderOption is a functional option for configuring a Stage.
type StageBuilderOption func(*Stage)

// WithGeometry replaces the default 3x30x15 box of the subject mesh, e.g. with geometry.NewTorusKnot.
//
// Parameters:
//   - geo: the subject geometry
//
// Returns:
//   - StageBuilderOption: option function to apply
func WithGeometry(geo geometry.Geometry) StageBuilderOption {
	return func(s *Stage) {
		s.geometry = geo
	}
}

// WithViewport sets the initial viewport. Defaults to the configured window size at pixel ratio 1.
//
// Parameters:
//   - vp: the initial viewport
//
// Returns:
//   - StageBuilderOption: option function to apply
func WithViewport(vp common.Viewport) StageBuilderOption {
	return func(s *Stage) {
		s.viewport = &vp
	}
}

// WithResolver enables texture parameters. Without one, texture snapshots are ignored.
//
// Parameters:
//   - r: the asset resolver; its poster must run callbacks on the event loop
//
// Returns:
//   - StageBuilderOption: option function to apply
func WithResolver(r assets.Resolver) StageBuilderOption {
	return func(s *Stage) {
		s.resolver = r
	}
}

// WithLogger sets the stage logger.
func WithLogger(logger *slog.Logger) StageBuilderOption {
	return func(s *Stage) {
		if logger != nil {
			s.logger = logger
		}
	}
}
