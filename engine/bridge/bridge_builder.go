package bridge

import "log/slog"

// BridgeBuilderOption is a function that configures a Bridge during construction.
type BridgeBuilderOption func(*bridgeImpl)

// WithLogger sets the structured logger used by the bridge.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - BridgeBuilderOption: a function that applies the logger option to a bridge
func WithLogger(logger *slog.Logger) BridgeBuilderOption {
	return func(b *bridgeImpl) {
		if logger != nil {
			b.logger = logger
		}
	}
}
