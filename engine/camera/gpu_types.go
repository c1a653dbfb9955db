package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniformSource is the WGSL CameraUniform struct, laid out like GPUCameraUniform (160 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the camera state uploaded once per frame.
// The clip parameters mirror the projection so shaders can linearise depth.
type GPUCameraUniform struct {
	ViewProj       [16]float32 // offset   0
	View           [16]float32 // offset  64
	CameraPosition [3]float32  // offset 128
	Near           float32     // offset 140
	Far            float32     // offset 144
	Aspect         float32     // offset 148
	Fov            float32     // offset 152, radians
	_pad           float32     // offset 156
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (160)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal packs the uniform little-endian for upload.
//
// Returns:
//   - []byte: the packed bytes
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := putFloats(buf, 0, g.ViewProj[:]...)
	off = putFloats(buf, off, g.View[:]...)
	off = putFloats(buf, off, g.CameraPosition[:]...)
	putFloats(buf, off, g.Near, g.Far, g.Aspect, g.Fov)
	return buf
}

func putFloats(buf []byte, off int, vals ...float32) int {
	for _, v := range vals {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	return off
}
