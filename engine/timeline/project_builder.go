package timeline

import "log/slog"

// ProjectBuilderOption is a function that configures a Project during construction.
type ProjectBuilderOption func(*projectImpl)

// WithLogger sets the structured logger used by the project and its sheets.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - ProjectBuilderOption: a function that applies the logger option to a project
func WithLogger(logger *slog.Logger) ProjectBuilderOption {
	return func(p *projectImpl) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithReadyAfter delays resolution of the project until gate is closed (or receives a value).
// Useful when the saved state depends on something loaded elsewhere.
//
// Parameters:
//   - gate: the channel to wait on
//
// Returns:
//   - ProjectBuilderOption: a function that applies the gate option to a project
func WithReadyAfter(gate <-chan struct{}) ProjectBuilderOption {
	return func(p *projectImpl) {
		p.readyGate = gate
	}
}
