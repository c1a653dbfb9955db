package geometry

import (
	"encoding/binary"

	"github.com/chewxy/math32"
)

type geometryImpl struct {
	name     string
	vertices []GPUVertex
	indices  []uint32
	radius   float32
}

// Geometry is an immutable indexed triangle list in model space.
type Geometry interface {
	// Name returns a descriptive name of the generator that produced the geometry (e.g. "box").
	//
	// Returns:
	//   - string: the geometry name
	Name() string

	// Vertices returns a copy of the vertex list.
	//
	// Returns:
	//   - []GPUVertex: the vertices
	Vertices() []GPUVertex

	// Indices returns a copy of the triangle index list (three indices per triangle, counter-clockwise front faces).
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// VertexData returns the vertex list serialized for GPU upload.
	//
	// Returns:
	//   - []byte: little-endian vertex bytes
	VertexData() []byte

	// IndexData returns the index list serialized as little-endian uint32 for GPU upload.
	//
	// Returns:
	//   - []byte: little-endian index bytes
	IndexData() []byte

	// BoundingRadius returns the radius of the smallest origin-centered sphere enclosing every vertex.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Geometry = &geometryImpl{}

func newGeometry(name string, vertices []GPUVertex, indices []uint32) *geometryImpl {
	g := &geometryImpl{name: name, vertices: vertices, indices: indices}
	for _, v := range vertices {
		p := v.Position
		g.radius = max(g.radius, math32.Sqrt(p[0]*p[0]+p[1]*p[1]+p[2]*p[2]))
	}
	return g
}

func (g *geometryImpl) Name() string {
	return g.name
}

func (g *geometryImpl) Vertices() []GPUVertex {
	out := make([]GPUVertex, len(g.vertices))
	copy(out, g.vertices)
	return out
}

func (g *geometryImpl) Indices() []uint32 {
	out := make([]uint32, len(g.indices))
	copy(out, g.indices)
	return out
}

func (g *geometryImpl) VertexData() []byte {
	buf := make([]byte, len(g.vertices)*32)
	for i := range g.vertices {
		g.vertices[i].marshalInto(buf[i*32:])
	}
	return buf
}

func (g *geometryImpl) IndexData() []byte {
	buf := make([]byte, len(g.indices)*4)
	for i, idx := range g.indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func (g *geometryImpl) BoundingRadius() float32 {
	return g.radius
}

// NewBox creates an axis-aligned box centered on the origin. Each face has its own four
// vertices so normals and UVs stay flat per face.
//
// Parameters:
//   - width: extent along X
//   - height: extent along Y
//   - depth: extent along Z
//
// Returns:
//   - Geometry: the box geometry (24 vertices, 36 indices)
func NewBox(width, height, depth float32) Geometry {
	hw, hh, hd := width/2, height/2, depth/2

	// Each face: normal, then corners in counter-clockwise order seen from outside,
	// starting bottom-left in UV space.
	faces := []struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{1, 0, 0}, [4][3]float32{{hw, -hh, hd}, {hw, -hh, -hd}, {hw, hh, -hd}, {hw, hh, hd}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-hw, -hh, -hd}, {-hw, -hh, hd}, {-hw, hh, hd}, {-hw, hh, -hd}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-hw, hh, hd}, {hw, hh, hd}, {hw, hh, -hd}, {-hw, hh, -hd}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-hw, -hh, -hd}, {hw, -hh, -hd}, {hw, -hh, hd}, {-hw, -hh, hd}}},
		{[3]float32{0, 0, 1}, [4][3]float32{{-hw, -hh, hd}, {hw, -hh, hd}, {hw, hh, hd}, {-hw, hh, hd}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{hw, -hh, -hd}, {-hw, -hh, -hd}, {-hw, hh, -hd}, {hw, hh, -hd}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, c := range f.corners {
			vertices = append(vertices, GPUVertex{Position: c, Normal: f.normal, TexCoord: uvs[i]})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return newGeometry("box", vertices, indices)
}

// NewTorusKnot creates a (p, q) torus knot: a tube swept along a curve that winds p times
// around the torus axis and q times through its hole.
//
// Parameters:
//   - radius: radius of the torus
//   - tube: radius of the swept tube
//   - tubularSegments: segments along the curve (minimum 3)
//   - radialSegments: segments around the tube (minimum 3)
//   - p: winds around the axis of rotational symmetry
//   - q: winds around a circle in the interior of the torus
//
// Returns:
//   - Geometry: the torus knot geometry
func NewTorusKnot(radius, tube float32, tubularSegments, radialSegments, p, q int) Geometry {
	tubularSegments = max(tubularSegments, 3)
	radialSegments = max(radialSegments, 3)
	if p == 0 {
		p = 2
	}
	if q == 0 {
		q = 3
	}

	curve := func(u float32) [3]float32 {
		quOverP := float32(q) / float32(p) * u
		cs := math32.Cos(quOverP)
		return [3]float32{
			radius * (2 + cs) * 0.5 * math32.Cos(u),
			radius * (2 + cs) * 0.5 * math32.Sin(u),
			radius * math32.Sin(quOverP) * 0.5,
		}
	}

	vertices := make([]GPUVertex, 0, (tubularSegments+1)*(radialSegments+1))
	for i := 0; i <= tubularSegments; i++ {
		u := float32(i) / float32(tubularSegments) * float32(p) * math32.Pi * 2
		p1 := curve(u)
		p2 := curve(u + 0.01)

		tangent := sub(p2, p1)
		normal := add(p2, p1)
		binormal := normalize(cross(tangent, normal))
		normal = normalize(cross(binormal, tangent))

		for j := 0; j <= radialSegments; j++ {
			v := float32(j) / float32(radialSegments) * math32.Pi * 2
			cx := -tube * math32.Cos(v)
			cy := tube * math32.Sin(v)

			pos := [3]float32{
				p1[0] + cx*normal[0] + cy*binormal[0],
				p1[1] + cx*normal[1] + cy*binormal[1],
				p1[2] + cx*normal[2] + cy*binormal[2],
			}
			vertices = append(vertices, GPUVertex{
				Position: pos,
				Normal:   normalize(sub(pos, p1)),
				TexCoord: [2]float32{float32(i) / float32(tubularSegments), float32(j) / float32(radialSegments)},
			})
		}
	}

	stride := uint32(radialSegments + 1)
	indices := make([]uint32, 0, tubularSegments*radialSegments*6)
	for j := uint32(1); j <= uint32(tubularSegments); j++ {
		for i := uint32(1); i <= uint32(radialSegments); i++ {
			a := stride*(j-1) + (i - 1)
			b := stride*j + (i - 1)
			c := stride*j + i
			d := stride*(j-1) + i
			indices = append(indices, a, b, d, b, c, d)
		}
	}
	return newGeometry("torus_knot", vertices, indices)
}

func add(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func normalize(v [3]float32) [3]float32 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
