package renderer

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-stage/engine/light"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count. The default is MSAA4x.
//
// Parameters:
//   - count: MSAAOff or MSAA4x
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		if count == MSAAOff || count == MSAA4x {
			r.msaa = count
		}
	}
}

// WithAntialias is shorthand for WithMSAA(MSAA4x) or WithMSAA(MSAAOff).
//
// Parameters:
//   - enabled: true for 4× MSAA
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithAntialias(enabled bool) RendererBuilderOption {
	if enabled {
		return WithMSAA(MSAA4x)
	}
	return WithMSAA(MSAAOff)
}

// WithShadowMap sets the initial shadow map configuration.
//
// Parameters:
//   - settings: the shadow settings
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadow option to a renderer
func WithShadowMap(settings light.ShadowSettings) RendererBuilderOption {
	return func(r *renderer) {
		if settings.Resolution <= 0 {
			settings.Resolution = light.ShadowMapResolution
		}
		r.shadows = settings
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithLogger sets the structured logger used for recoverable GPU problems.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
