package mesh

// MeshBuilderOption is a functional option for configuring a Mesh during construction.
type MeshBuilderOption func(*meshImpl)

// WithName sets the display name of the Mesh.
//
// Parameters:
//   - name: the name
//
// Returns:
//   - MeshBuilderOption: functional option to set the name
func WithName(name string) MeshBuilderOption {
	return func(m *meshImpl) {
		m.name = name
	}
}

// WithID sets the ID of the Mesh.
//
// Parameters:
//   - id: unique identifier for the Mesh
//
// Returns:
//   - MeshBuilderOption: functional option to set the ID
func WithID(id uint64) MeshBuilderOption {
	return func(m *meshImpl) {
		m.id = id
	}
}

// WithEnabled sets whether the Mesh is enabled for rendering.
//
// Parameters:
//   - enabled: true to render the mesh, false to skip it
//
// Returns:
//   - MeshBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) MeshBuilderOption {
	return func(m *meshImpl) {
		m.enabled.Store(enabled)
	}
}

// WithPosition sets the initial world-space position of the Mesh.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - MeshBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) MeshBuilderOption {
	return func(m *meshImpl) {
		m.transform.Position = [3]float32{x, y, z}
	}
}

// WithRotation sets the initial XYZ Euler rotation of the Mesh in radians.
//
// Parameters:
//   - x, y, z: rotation angles
//
// Returns:
//   - MeshBuilderOption: functional option to set the rotation
func WithRotation(x, y, z float32) MeshBuilderOption {
	return func(m *meshImpl) {
		m.transform.Rotation = [3]float32{x, y, z}
	}
}

// WithScale sets the initial per-axis scale of the Mesh.
//
// Parameters:
//   - x, y, z: scale components
//
// Returns:
//   - MeshBuilderOption: functional option to set the scale
func WithScale(x, y, z float32) MeshBuilderOption {
	return func(m *meshImpl) {
		m.transform.Scale = [3]float32{x, y, z}
	}
}

// WithShadows sets whether the Mesh casts and receives shadows.
//
// Parameters:
//   - cast: true to draw the mesh into shadow maps
//   - receive: true to shade the mesh with shadow maps
//
// Returns:
//   - MeshBuilderOption: functional option to set the shadow flags
func WithShadows(cast, receive bool) MeshBuilderOption {
	return func(m *meshImpl) {
		m.castShadow = cast
		m.receiveShadow = receive
	}
}
