package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialParamsSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialParams layout exactly (32 bytes, uniform aligned).
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParams is the GPU-aligned uniform for the lit fragment shader.
// Size: 32 bytes.
type GPUMaterialParams struct {
	Color         [4]float32 // offset  0: RGB base color + opacity (16 bytes)
	Roughness     float32    // offset 16
	Metalness     float32    // offset 20
	HasMap        uint32     // offset 24: 1 when a color map is bound
	ReceiveShadow uint32     // offset 28: 1 when the drawn mesh samples the shadow map
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Color[3]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Roughness))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Metalness))
	binary.LittleEndian.PutUint32(buf[24:28], g.HasMap)
	binary.LittleEndian.PutUint32(buf[28:32], g.ReceiveShadow)
	return buf
}

// Params builds the GPU uniform for a material's current state.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - GPUMaterialParams: the uniform values
func Params(m Material) GPUMaterialParams {
	c := m.Color()
	tex, _ := m.Texture()
	p := GPUMaterialParams{
		Color:     [4]float32{c[0], c[1], c[2], m.Opacity()},
		Roughness: m.Roughness(),
		Metalness: m.Metalness(),
	}
	if tex != nil {
		p.HasMap = 1
	}
	return p
}
