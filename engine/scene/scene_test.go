package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-stage/engine/geometry"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/material"
	"github.com/Carmen-Shannon/oxy-stage/engine/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMesh(opts ...mesh.MeshBuilderOption) mesh.Mesh {
	return mesh.NewMesh(geometry.NewBox(1, 1, 1), material.NewMaterial(), opts...)
}

func TestAddAssignsIDsInOrder(t *testing.T) {
	s := NewScene("test")
	a, b := newMesh(), newMesh()

	idA := s.Add(a)
	idB := s.Add(b)

	assert.Equal(t, uint64(1), idA)
	assert.Equal(t, uint64(2), idB)
	assert.Equal(t, []mesh.Mesh{a, b}, s.Meshes())
	assert.Same(t, b, s.Get(idB))
}

func TestAddIsIdempotent(t *testing.T) {
	s := NewScene("test")
	m := newMesh()

	s.Add(m)
	s.Add(m)
	assert.Equal(t, 1, s.Count())
}

func TestAddRespectsExistingIDs(t *testing.T) {
	s := NewScene("test", WithMeshes(newMesh(mesh.WithID(7))))
	id := s.Add(newMesh())

	assert.Equal(t, uint64(8), id)
}

func TestRemove(t *testing.T) {
	s := NewScene("test")
	a, b := newMesh(), newMesh()
	s.Add(a)
	s.Add(b)

	s.Remove(a.ID())
	s.Remove(99)

	assert.Equal(t, []mesh.Mesh{b}, s.Meshes())
	assert.Nil(t, s.Get(a.ID()))
}

func TestLights(t *testing.T) {
	ambient := light.NewLight(light.LightTypeAmbient)
	sun := light.NewLight(light.LightTypeDirectional, light.WithCastsShadows(true))
	s := NewScene("test", WithLights(ambient, sun))

	require.Len(t, s.Lights(), 2)
	assert.Same(t, sun, s.ShadowCaster())

	sun.SetEnabled(false)
	assert.Nil(t, s.ShadowCaster())

	s.RemoveLight(ambient)
	assert.Equal(t, []light.Light{sun}, s.Lights())

	s.Clear()
	assert.Empty(t, s.Lights())
	assert.Zero(t, s.Count())
}
