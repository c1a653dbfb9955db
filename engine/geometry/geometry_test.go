package geometry

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoxCounts(t *testing.T) {
	g := NewBox(3, 30, 15)

	assert.Equal(t, "box", g.Name())
	assert.Len(t, g.Vertices(), 24)
	assert.Len(t, g.Indices(), 36)
	assert.Len(t, g.VertexData(), 24*32)
	assert.Len(t, g.IndexData(), 36*4)
}

func TestNewBoxExtents(t *testing.T) {
	g := NewBox(3, 30, 15)

	for _, v := range g.Vertices() {
		assert.InDelta(t, 1.5, math32.Abs(v.Position[0]), 1e-6)
		assert.InDelta(t, 15, math32.Abs(v.Position[1]), 1e-6)
		assert.InDelta(t, 7.5, math32.Abs(v.Position[2]), 1e-6)
	}
	want := math32.Sqrt(1.5*1.5 + 15*15 + 7.5*7.5)
	assert.InDelta(t, want, g.BoundingRadius(), 1e-4)
}

func TestNewBoxWindingMatchesNormals(t *testing.T) {
	g := NewBox(2, 2, 2)
	verts := g.Vertices()
	idx := g.Indices()

	for i := 0; i < len(idx); i += 3 {
		a, b, c := verts[idx[i]], verts[idx[i+1]], verts[idx[i+2]]
		n := cross(sub(b.Position, a.Position), sub(c.Position, a.Position))
		dot := n[0]*a.Normal[0] + n[1]*a.Normal[1] + n[2]*a.Normal[2]
		assert.Greater(t, dot, float32(0), "triangle %d faces away from its normal", i/3)
	}
}

func TestNewTorusKnot(t *testing.T) {
	g := NewTorusKnot(10, 3, 64, 8, 2, 3)

	require.Equal(t, "torus_knot", g.Name())
	assert.Len(t, g.Vertices(), 65*9)
	assert.Len(t, g.Indices(), 64*8*6)

	n := uint32(len(g.Vertices()))
	for _, i := range g.Indices() {
		assert.Less(t, i, n)
	}
	for _, v := range g.Vertices() {
		l := math32.Sqrt(v.Normal[0]*v.Normal[0] + v.Normal[1]*v.Normal[1] + v.Normal[2]*v.Normal[2])
		assert.InDelta(t, 1, l, 1e-3)
	}
	assert.LessOrEqual(t, g.BoundingRadius(), float32(10*1.5+3+1e-3))
}

func TestNewTorusKnotClampsSegments(t *testing.T) {
	g := NewTorusKnot(1, 0.2, 0, 1, 0, 0)

	assert.Len(t, g.Vertices(), 4*4)
	assert.Len(t, g.Indices(), 3*3*6)
}

func TestGeometryCopiesAreIndependent(t *testing.T) {
	g := NewBox(1, 1, 1)
	v := g.Vertices()
	v[0].Position[0] = 99

	assert.NotEqual(t, float32(99), g.Vertices()[0].Position[0])
}
