package material

import "github.com/Carmen-Shannon/oxy-stage/common"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*materialImpl)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.name = name
	}
}

// WithColor is an option builder that sets the base RGB color of the material.
//
// Parameters:
//   - color: the base color as RGB float32 values in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithColor(color [3]float32) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.color = color
	}
}

// WithOpacity is an option builder that sets the alpha multiplier of the material.
//
// Parameters:
//   - opacity: the opacity in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the opacity option to a material
func WithOpacity(opacity float32) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.opacity = common.Clamp(opacity, 0, 1)
	}
}

// WithRoughness is an option builder that sets the roughness factor of the material.
//
// Parameters:
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.roughness = common.Clamp(roughness, 0, 1)
	}
}

// WithMetalness is an option builder that sets the metalness factor of the material.
//
// Parameters:
//   - metalness: the metalness factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metalness option to a material
func WithMetalness(metalness float32) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.metalness = common.Clamp(metalness, 0, 1)
	}
}

// WithTexture is an option builder that sets the initial color map. Invalid staging data is ignored.
//
// Parameters:
//   - tex: the color map staging data
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithTexture(tex *common.TextureStagingData) MaterialBuilderOption {
	return func(m *materialImpl) {
		if tex.Valid() {
			m.texture = tex
			m.textureRev = 1
			m.textureFrom = tex.Source
		}
	}
}
