package light

// ShadowMapType selects the shadow filtering used by the lit pass.
type ShadowMapType int

const (
	// ShadowMapBasic takes a single depth comparison per fragment.
	ShadowMapBasic ShadowMapType = iota

	// ShadowMapPCF averages a 3x3 grid of depth comparisons.
	ShadowMapPCF

	// ShadowMapPCFSoft averages a 5x5 grid of depth comparisons for softer edges.
	ShadowMapPCFSoft
)

// PCFKernelRadius returns the half-width of the comparison grid sampled for the type.
//
// Returns:
//   - uint32: 0 for basic, 1 for PCF (3x3), 2 for PCF soft (5x5)
func (t ShadowMapType) PCFKernelRadius() uint32 {
	switch t {
	case ShadowMapPCF:
		return 1
	case ShadowMapPCFSoft:
		return 2
	default:
		return 0
	}
}

// ShadowSettings is the renderer-wide shadow map configuration.
type ShadowSettings struct {
	// Enabled turns the shadow depth pass on.
	Enabled bool
	// Type selects the filtering kernel.
	Type ShadowMapType
	// Resolution is the width and height of the shadow depth texture in texels.
	Resolution int
}

// DefaultShadowSettings returns shadows disabled, PCF soft filtering and ShadowMapResolution texels.
//
// Returns:
//   - ShadowSettings: the defaults
func DefaultShadowSettings() ShadowSettings {
	return ShadowSettings{Type: ShadowMapPCFSoft, Resolution: ShadowMapResolution}
}

// ShadowMapResolution is the default width and height in texels of the shadow
// depth texture.
const ShadowMapResolution = 2048

// DefaultShadowHalfExtent is the default orthographic half-extent (in world units)
// used for the directional light shadow frustum.
const DefaultShadowHalfExtent float32 = 40.0

// DefaultShadowNear is the default near plane for the directional light's
// orthographic shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane for the directional light's
// orthographic shadow projection.
const DefaultShadowFar float32 = 200.0

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.001

// DefaultShadowNormalBiasScale is the multiplier applied to the shadow map
// texel world-size to compute the normal-offset bias. Typical values are 2.0–4.0.
const DefaultShadowNormalBiasScale float32 = 3.0
