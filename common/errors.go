package common

import "errors"

var (
	// ErrConfiguration reports a malformed or missing schema, config value or project state.
	// Startup errors wrapping it are fatal.
	ErrConfiguration = errors.New("configuration error")

	// ErrRenderFailure reports that a single frame could not be drawn.
	ErrRenderFailure = errors.New("render failure")

	// ErrAssetResolution reports that an asset reference could not be resolved to a loadable resource.
	ErrAssetResolution = errors.New("asset resolution failure")

	// ErrNotReady is returned when an operation that requires the project readiness signal is called too early.
	ErrNotReady = errors.New("not ready")

	// ErrAlreadyActive is returned when activation is attempted more than once.
	ErrAlreadyActive = errors.New("already active")

	// ErrFatal marks a frame error that must stop the render loop regardless of its error policy.
	ErrFatal = errors.New("fatal")
)
