package mesh

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/geometry"
	"github.com/Carmen-Shannon/oxy-stage/engine/material"
)

// Transform is a complete object transform: translation, XYZ Euler rotation in radians and scale.
type Transform struct {
	Position [3]float32
	Rotation [3]float32
	Scale    [3]float32
}

// IdentityTransform returns a transform at the origin with no rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{Scale: [3]float32{1, 1, 1}}
}

type meshImpl struct {
	mu            *sync.Mutex
	id            uint64
	name          string
	enabled       atomic.Bool
	geo           geometry.Geometry
	mat           material.Material
	transform     Transform
	castShadow    bool
	receiveShadow bool
}

// Mesh is a renderable scene object: a geometry drawn with a material under a transform.
//
// Transform state is guarded by a single lock, so a reader always sees position, rotation
// and scale from the same write. All setters take absolute values.
type Mesh interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's display name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Geometry returns the mesh geometry.
	//
	// Returns:
	//   - geometry.Geometry: the geometry
	Geometry() geometry.Geometry

	// Material returns the mesh material.
	//
	// Returns:
	//   - material.Material: the material
	Material() material.Material

	// Position returns the world-space translation.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Rotation returns the XYZ Euler rotation in radians.
	//
	// Returns:
	//   - [3]float32: rotation as (x, y, z)
	Rotation() [3]float32

	// Scale returns the per-axis scale.
	//
	// Returns:
	//   - [3]float32: scale as (x, y, z)
	Scale() [3]float32

	// Transform returns position, rotation and scale read under one lock.
	//
	// Returns:
	//   - Transform: the current transform
	Transform() Transform

	// ModelMatrix computes the column-major model matrix for the current transform.
	//
	// Returns:
	//   - [16]float32: the model matrix
	ModelMatrix() [16]float32

	// CastShadow returns whether the mesh is drawn into shadow maps.
	//
	// Returns:
	//   - bool: true if the mesh casts shadows
	CastShadow() bool

	// ReceiveShadow returns whether the mesh is shaded by shadow maps.
	//
	// Returns:
	//   - bool: true if the mesh receives shadows
	ReceiveShadow() bool

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetPosition sets the world-space translation.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetRotation sets the XYZ Euler rotation in radians.
	//
	// Parameters:
	//   - x, y, z: rotation angles
	SetRotation(x, y, z float32)

	// SetScale sets the per-axis scale.
	//
	// Parameters:
	//   - x, y, z: scale components
	SetScale(x, y, z float32)

	// ApplyTransform replaces position, rotation and scale in one write.
	//
	// Parameters:
	//   - t: the new transform
	ApplyTransform(t Transform)

	// SetCastShadow sets whether the mesh casts shadows.
	//
	// Parameters:
	//   - cast: true to cast shadows
	SetCastShadow(cast bool)

	// SetReceiveShadow sets whether the mesh receives shadows.
	//
	// Parameters:
	//   - receive: true to receive shadows
	SetReceiveShadow(receive bool)
}

var _ Mesh = &meshImpl{}

// NewMesh creates a new Mesh from a geometry and material. Both are required; passing nil
// for either is a programmer error and panics.
//
// Parameters:
//   - geo: the geometry to draw
//   - mat: the material to draw it with
//   - options: variadic list of MeshBuilderOption functions to configure the mesh
//
// Returns:
//   - Mesh: a new Mesh instance
func NewMesh(geo geometry.Geometry, mat material.Material, options ...MeshBuilderOption) Mesh {
	if geo == nil || mat == nil {
		panic("mesh: geometry and material are required")
	}
	m := &meshImpl{
		mu:        &sync.Mutex{},
		geo:       geo,
		mat:       mat,
		transform: IdentityTransform(),
	}
	m.enabled.Store(true)
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *meshImpl) ID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

func (m *meshImpl) Name() string {
	return m.name
}

func (m *meshImpl) Enabled() bool {
	return m.enabled.Load()
}

func (m *meshImpl) Geometry() geometry.Geometry {
	return m.geo
}

func (m *meshImpl) Material() material.Material {
	return m.mat
}

func (m *meshImpl) Position() [3]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transform.Position
}

func (m *meshImpl) Rotation() [3]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transform.Rotation
}

func (m *meshImpl) Scale() [3]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transform.Scale
}

func (m *meshImpl) Transform() Transform {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transform
}

func (m *meshImpl) ModelMatrix() [16]float32 {
	t := m.Transform()
	var out [16]float32
	common.BuildModelMatrix(out[:], t.Position, t.Rotation, t.Scale)
	return out
}

func (m *meshImpl) CastShadow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.castShadow
}

func (m *meshImpl) ReceiveShadow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.receiveShadow
}

func (m *meshImpl) SetID(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
}

func (m *meshImpl) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

func (m *meshImpl) SetPosition(x, y, z float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transform.Position = [3]float32{x, y, z}
}

func (m *meshImpl) SetRotation(x, y, z float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transform.Rotation = [3]float32{x, y, z}
}

func (m *meshImpl) SetScale(x, y, z float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transform.Scale = [3]float32{x, y, z}
}

func (m *meshImpl) ApplyTransform(t Transform) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transform = t
}

func (m *meshImpl) SetCastShadow(cast bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.castShadow = cast
}

func (m *meshImpl) SetReceiveShadow(receive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receiveShadow = receive
}
