package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/mesh"
)

// Scene is the graph of renderable meshes and lights drawn each frame.
// Meshes are kept in insertion order and addressed by ID; lights are an ordered list.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Background returns the clear color as RGBA.
	Background() [4]float32

	// SetBackground sets the clear color.
	//
	// Parameters:
	//   - color: the clear color as RGBA
	SetBackground(color [4]float32)

	// Count returns the number of meshes in the scene.
	//
	// Returns:
	//   - int: the mesh count
	Count() int

	// Add adds a mesh to the scene, assigning it an ID if it has none.
	// Adding a mesh that is already present is a no-op.
	//
	// Parameters:
	//   - m: the mesh to add
	//
	// Returns:
	//   - uint64: the mesh ID
	Add(m mesh.Mesh) uint64

	// Get retrieves a mesh by its ID. Returns nil if not found.
	//
	// Parameters:
	//   - id: the mesh ID
	//
	// Returns:
	//   - mesh.Mesh: the mesh or nil
	Get(id uint64) mesh.Mesh

	// Remove removes a mesh by ID.
	//
	// Parameters:
	//   - id: the mesh ID
	Remove(id uint64)

	// Meshes returns a snapshot of the meshes in insertion order.
	//
	// Returns:
	//   - []mesh.Mesh: the meshes
	Meshes() []mesh.Mesh

	// AddLight appends a light to the scene.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// RemoveLight removes a light from the scene.
	//
	// Parameters:
	//   - l: the light to remove
	RemoveLight(l light.Light)

	// Lights returns a snapshot of the scene lights in insertion order.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// ShadowCaster returns the first enabled directional light that casts shadows, or nil.
	//
	// Returns:
	//   - light.Light: the shadow-casting light or nil
	ShadowCaster() light.Light

	// Clear removes all meshes and lights.
	Clear()
}

type scene struct {
	mu         *sync.RWMutex
	name       string
	background [4]float32
	order      []uint64
	registry   map[uint64]mesh.Mesh
	lights     []light.Light
	nextID     uint64
}

var _ Scene = &scene{}

// NewScene creates an empty Scene configured with the provided options.
// The default background is opaque black.
//
// Parameters:
//   - name: the scene identifier
//   - options: variadic list of SceneBuilderOption functions to configure the scene
//
// Returns:
//   - Scene: a new Scene instance
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:         &sync.RWMutex{},
		name:       name,
		background: [4]float32{0, 0, 0, 1},
		registry:   make(map[uint64]mesh.Mesh),
		nextID:     1,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Background() [4]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *scene) SetBackground(color [4]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = color
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *scene) Add(m mesh.Mesh) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(m)
}

// add registers m. Caller must hold s.mu write lock.
func (s *scene) add(m mesh.Mesh) uint64 {
	if m.ID() == 0 {
		m.SetID(s.nextID)
		s.nextID++
	} else if m.ID() >= s.nextID {
		s.nextID = m.ID() + 1
	}
	id := m.ID()
	if _, exists := s.registry[id]; exists {
		return id
	}
	s.registry[id] = m
	s.order = append(s.order, id)
	return id
}

func (s *scene) Get(id uint64) mesh.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.registry[id]; !exists {
		return
	}
	delete(s.registry, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *scene) Meshes() []mesh.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]mesh.Mesh, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.registry[id])
	}
	return out
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]light.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *scene) ShadowCaster() light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lights {
		if l.Type() == light.LightTypeDirectional && l.Enabled() && l.CastsShadows() {
			return l
		}
	}
	return nil
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]mesh.Mesh)
	s.order = nil
	s.lights = nil
}
