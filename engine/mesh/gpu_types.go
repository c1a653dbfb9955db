package mesh

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-stage/common"
)

// GPUMeshUniformSource is the canonical WGSL definition of the MeshUniform struct.
// Matches GPUMeshUniform layout exactly (128 bytes).
//
//go:embed assets/mesh_uniform.wgsl
var GPUMeshUniformSource string

// GPUMeshUniform is the per-mesh uniform: model matrix and its inverse-transpose for normals.
// Size: 128 bytes.
type GPUMeshUniform struct {
	Model        [16]float32 // offset  0
	NormalMatrix [16]float32 // offset 64
}

// Size returns the size of the GPUMeshUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMeshUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMeshUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload.
func (g *GPUMeshUniform) Marshal() []byte {
	buf := make([]byte, 128)
	for i, v := range g.Model {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range g.NormalMatrix {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	return buf
}

// Uniform builds the GPU uniform for a mesh's current transform.
//
// Parameters:
//   - m: the mesh
//
// Returns:
//   - GPUMeshUniform: the uniform values
func Uniform(m Mesh) GPUMeshUniform {
	u := GPUMeshUniform{Model: m.ModelMatrix()}
	common.NormalMatrix(u.NormalMatrix[:], u.Model[:])
	return u
}
