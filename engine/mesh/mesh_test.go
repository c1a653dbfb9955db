package mesh

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-stage/engine/geometry"
	"github.com/Carmen-Shannon/oxy-stage/engine/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMesh(opts ...MeshBuilderOption) Mesh {
	return NewMesh(geometry.NewBox(1, 1, 1), material.NewMaterial(), opts...)
}

func TestNewMeshDefaults(t *testing.T) {
	m := newTestMesh(WithName("Torus Knot"), WithShadows(true, true))

	assert.Equal(t, "Torus Knot", m.Name())
	assert.True(t, m.Enabled())
	assert.Equal(t, IdentityTransform(), m.Transform())
	assert.True(t, m.CastShadow())
	assert.True(t, m.ReceiveShadow())
}

func TestNewMeshPanicsWithoutGeometry(t *testing.T) {
	assert.Panics(t, func() { NewMesh(nil, material.NewMaterial()) })
}

func TestSettersAreAbsolute(t *testing.T) {
	m := newTestMesh()

	for range 3 {
		m.SetRotation(1, 2, 3)
		m.SetScale(2, 2, 2)
		m.SetPosition(-1, 0, 4)
	}

	assert.Equal(t, [3]float32{1, 2, 3}, m.Rotation())
	assert.Equal(t, [3]float32{2, 2, 2}, m.Scale())
	assert.Equal(t, [3]float32{-1, 0, 4}, m.Position())
}

func TestApplyTransformIsAtomic(t *testing.T) {
	m := newTestMesh()
	a := Transform{Position: [3]float32{1, 1, 1}, Rotation: [3]float32{1, 1, 1}, Scale: [3]float32{1, 1, 1}}
	b := Transform{Position: [3]float32{2, 2, 2}, Rotation: [3]float32{2, 2, 2}, Scale: [3]float32{2, 2, 2}}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 1000 {
			if i%2 == 0 {
				m.ApplyTransform(a)
			} else {
				m.ApplyTransform(b)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range 1000 {
			tr := m.Transform()
			if tr != IdentityTransform() {
				require.True(t, tr == a || tr == b, "torn transform %+v", tr)
			}
		}
	}()
	wg.Wait()
}

func TestUniformTranslation(t *testing.T) {
	m := newTestMesh(WithPosition(1, 2, 3))
	u := Uniform(m)

	assert.Equal(t, float32(1), u.Model[12])
	assert.Equal(t, float32(2), u.Model[13])
	assert.Equal(t, float32(3), u.Model[14])
	assert.Equal(t, float32(1), u.NormalMatrix[0])
	assert.Len(t, u.Marshal(), u.Size())
}

func TestUniformZeroScaleFallsBackToIdentityNormals(t *testing.T) {
	m := newTestMesh(WithScale(0, 0, 0))
	u := Uniform(m)

	assert.Equal(t, float32(1), u.NormalMatrix[0])
	assert.Equal(t, float32(1), u.NormalMatrix[5])
	assert.Equal(t, float32(1), u.NormalMatrix[10])
}
