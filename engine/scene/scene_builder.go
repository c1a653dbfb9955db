package scene

import (
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/mesh"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithBackground sets the clear color of the scene.
//
// Parameters:
//   - color: the clear color as RGBA
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBackground(color [4]float32) SceneBuilderOption {
	return func(s *scene) {
		s.background = color
	}
}

// WithMeshes adds initial meshes to the scene.
// Meshes without IDs will be assigned new IDs.
//
// Parameters:
//   - meshes: the meshes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMeshes(meshes ...mesh.Mesh) SceneBuilderOption {
	return func(s *scene) {
		for _, m := range meshes {
			s.add(m)
		}
	}
}

// WithLights adds initial lights to the scene.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}
