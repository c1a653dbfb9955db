package material

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-stage/common"
)

// materialImpl is the implementation of the Material interface.
type materialImpl struct {
	mu          *sync.Mutex
	name        string
	color       [3]float32
	opacity     float32
	roughness   float32
	metalness   float32
	texture     *common.TextureStagingData
	textureRev  uint64
	textureFrom string
}

// Material is a physically-based "standard" surface description: base color, roughness,
// metalness and an optional color map.
//
// Textures are replaced wholesale; every replacement bumps TextureRevision so the renderer
// knows to re-upload. All methods are safe for concurrent use.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Color retrieves the base RGB color of the material.
	//
	// Returns:
	//   - [3]float32: the base color
	Color() [3]float32

	// Opacity retrieves the alpha multiplier applied to the base color.
	//
	// Returns:
	//   - float32: the opacity in [0, 1]
	Opacity() float32

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// Metalness retrieves the metalness factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metalness factor
	Metalness() float32

	// Texture retrieves the color map and its revision. The staging data is nil when the
	// material has no map.
	//
	// Returns:
	//   - *common.TextureStagingData: the color map, or nil
	//   - uint64: the revision, incremented on every SetTexture
	Texture() (*common.TextureStagingData, uint64)

	// TextureRevision retrieves the current color map revision.
	//
	// Returns:
	//   - uint64: the revision
	TextureRevision() uint64

	// TextureSource retrieves the source of the current color map (an asset URL), or "" without a map.
	//
	// Returns:
	//   - string: the texture source
	TextureSource() string

	// SetColor sets the base RGB color.
	//
	// Parameters:
	//   - color: the base color
	SetColor(color [3]float32)

	// SetOpacity sets the alpha multiplier, clamped to [0, 1].
	//
	// Parameters:
	//   - opacity: the opacity
	SetOpacity(opacity float32)

	// SetRoughness sets the roughness factor, clamped to [0, 1].
	//
	// Parameters:
	//   - roughness: the roughness factor
	SetRoughness(roughness float32)

	// SetMetalness sets the metalness factor, clamped to [0, 1].
	//
	// Parameters:
	//   - metalness: the metalness factor
	SetMetalness(metalness float32)

	// SetTexture replaces the color map. Invalid staging data is rejected and the
	// previous map is kept.
	//
	// Parameters:
	//   - tex: the new color map, or nil to clear it
	//
	// Returns:
	//   - bool: true if the map was replaced
	SetTexture(tex *common.TextureStagingData) bool
}

var _ Material = &materialImpl{}

// NewMaterial creates a new standard Material configured with the provided options.
// Defaults: white, opaque, roughness 1, metalness 0, no map.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &materialImpl{
		mu:        &sync.Mutex{},
		color:     [3]float32{1, 1, 1},
		opacity:   1,
		roughness: 1,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *materialImpl) Name() string {
	return m.name
}

func (m *materialImpl) Color() [3]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.color
}

func (m *materialImpl) Opacity() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opacity
}

func (m *materialImpl) Roughness() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roughness
}

func (m *materialImpl) Metalness() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metalness
}

func (m *materialImpl) Texture() (*common.TextureStagingData, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texture, m.textureRev
}

func (m *materialImpl) TextureRevision() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textureRev
}

func (m *materialImpl) TextureSource() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textureFrom
}

func (m *materialImpl) SetColor(color [3]float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.color = color
}

func (m *materialImpl) SetOpacity(opacity float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opacity = common.Clamp(opacity, 0, 1)
}

func (m *materialImpl) SetRoughness(roughness float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roughness = common.Clamp(roughness, 0, 1)
}

func (m *materialImpl) SetMetalness(metalness float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metalness = common.Clamp(metalness, 0, 1)
}

func (m *materialImpl) SetTexture(tex *common.TextureStagingData) bool {
	if tex != nil && !tex.Valid() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texture = tex
	m.textureRev++
	m.textureFrom = ""
	if tex != nil {
		m.textureFrom = tex.Source
	}
	return true
}
