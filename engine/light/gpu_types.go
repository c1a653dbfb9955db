package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/chewxy/math32"
)

// MaxGPULights is the number of non-ambient light slots in the GPU light uniform.
// Lights beyond the budget are dropped in scene order.
const MaxGPULights = 8

// GPULightSource is the canonical WGSL definition of the Light struct.
// Matches GPULight layout exactly (64 bytes).
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of a single light source.
// Size: 64 bytes.
type GPULight struct {
	Position   [3]float32 // offset  0: world-space position (point/spot/rect area)
	LightType  uint32     // offset 12: LightType value
	Color      [3]float32 // offset 16: RGB color
	Intensity  float32    // offset 28: scalar multiplier
	Direction  [3]float32 // offset 32: normalized travel direction
	LightRange float32    // offset 44: attenuation cutoff distance
	InnerCone  float32    // offset 48: cos(inner half-angle) for spot
	OuterCone  float32    // offset 52: cos(outer half-angle) for spot
	Width      float32    // offset 56: rect area width
	Height     float32    // offset 60: rect area height
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 64)
	putFloats(buf[0:], g.Position[:]...)
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	putFloats(buf[16:], g.Color[0], g.Color[1], g.Color[2], g.Intensity)
	putFloats(buf[32:], g.Direction[0], g.Direction[1], g.Direction[2], g.LightRange)
	putFloats(buf[48:], g.InnerCone, g.OuterCone, g.Width, g.Height)
	return buf
}

// GPULightHeaderSource is the canonical WGSL definition of the LightHeader struct.
// Matches GPULightHeader layout exactly (16 bytes).
//
//go:embed assets/light_header.wgsl
var GPULightHeaderSource string

// GPULightHeader is the header prepended to the light uniform.
// Contains the summed ambient contribution and the active light count.
// Size: 16 bytes.
type GPULightHeader struct {
	AmbientColor [3]float32 // offset 0: sum of ambient color × intensity
	LightCount   uint32     // offset 12: number of active lights following the header
}

// Size returns the size of the GPULightHeader struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (h *GPULightHeader) Size() int {
	return int(unsafe.Sizeof(*h))
}

// Marshal serializes the GPULightHeader struct into a byte buffer suitable for
// GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (h *GPULightHeader) Marshal() []byte {
	buf := make([]byte, 16)
	putFloats(buf, h.AmbientColor[:]...)
	binary.LittleEndian.PutUint32(buf[12:16], h.LightCount)
	return buf
}

// LightBufferSize is the byte size of the fixed light uniform: header plus MaxGPULights slots.
const LightBufferSize = 16 + MaxGPULights*64

// GPUShadowDataSource is the canonical WGSL definition of the ShadowData struct.
// Matches GPUShadowData layout exactly (96 bytes).
//
//go:embed assets/shadow_data.wgsl
var GPUShadowDataSource string

// GPUShadowData is the GPU-aligned representation of directional shadow data.
// Size: 96 bytes.
//
// Layout:
//
//	mat4x4<f32> light_vp       (64 bytes, offset 0)
//	vec2<f32>   texel_size     ( 8 bytes, offset 64)
//	f32         bias           ( 4 bytes, offset 72)
//	f32         normal_bias    ( 4 bytes, offset 76)
//	u32         enabled        ( 4 bytes, offset 80)
//	u32         kernel_radius  ( 4 bytes, offset 84)
//	padding                    ( 8 bytes, offset 88)
type GPUShadowData struct {
	LightVP      [16]float32 // orthographic view-projection from light's perspective
	TexelSize    [2]float32  // 1.0 / shadow_map_resolution for PCF offset calculations
	Bias         float32     // depth comparison bias to reduce shadow acne
	NormalBias   float32     // world-space normal-offset distance for shadow lookup
	Enabled      uint32      // 1 when a shadow map was rendered this frame
	KernelRadius uint32      // PCF half-width, see ShadowMapType.PCFKernelRadius
	_pad         [2]uint32
}

// Size returns the size of the GPUShadowData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (s *GPUShadowData) Size() int {
	return int(unsafe.Sizeof(*s))
}

// ComputeDirectionalLightVP builds an orthographic view-projection matrix for a
// directional light's shadow pass and stores it in the receiver's LightVP field.
// The frustum is centered on center and aligned to look along the light's direction.
//
// Parameters:
//   - lightDir: normalized direction the light points (from light toward scene)
//   - center: world-space center of the shadow frustum
//   - halfExtent: half-size of the orthographic frustum in world units
//   - near: near plane distance
//   - far: far plane distance
func (s *GPUShadowData) ComputeDirectionalLightVP(lightDir, center [3]float32, halfExtent, near, far float32) {
	// Place the eye behind the center, opposite the light direction.
	eye := [3]float32{
		center[0] - lightDir[0]*far*0.5,
		center[1] - lightDir[1]*far*0.5,
		center[2] - lightDir[2]*far*0.5,
	}

	// Up must not be parallel to the light direction.
	up := [3]float32{0, 1, 0}
	if math32.Abs(lightDir[1]) > 0.99 {
		up = [3]float32{1, 0, 0}
	}

	var view [16]float32
	common.LookAt(view[:], eye, center, up)

	var proj [16]float32
	ortho(proj[:], -halfExtent, halfExtent, -halfExtent, halfExtent, near, far)

	common.Mul4(s.LightVP[:], proj[:], view[:])
}

// ComputeNormalBias derives the world-space normal-offset bias from the shadow
// map parameters and stores it in the receiver's NormalBias field.
//
// Parameters:
//   - halfExtent: orthographic frustum half-size in world units
//   - scale: multiplier on the per-texel world size (typically 2.0–4.0)
//   - resolution: shadow map resolution in texels (width and height)
func (s *GPUShadowData) ComputeNormalBias(halfExtent, scale float32, resolution int) {
	texelWorldSize := 2.0 * halfExtent / float32(resolution)
	s.NormalBias = texelWorldSize * scale
}

// Marshal serializes the GPUShadowData struct into a byte buffer suitable for
// GPU uniform upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload
func (s *GPUShadowData) Marshal() []byte {
	buf := make([]byte, 96)
	putFloats(buf, s.LightVP[:]...)
	putFloats(buf[64:], s.TexelSize[0], s.TexelSize[1], s.Bias, s.NormalBias)
	binary.LittleEndian.PutUint32(buf[80:84], s.Enabled)
	binary.LittleEndian.PutUint32(buf[84:88], s.KernelRadius)
	return buf
}

// NewShadowData prepares the shadow uniform for a shadow-casting directional light.
// A nil light or disabled settings produce a zeroed uniform with Enabled unset.
//
// Parameters:
//   - l: the shadow-casting light, or nil
//   - settings: the renderer shadow settings
//
// Returns:
//   - GPUShadowData: the shadow uniform
func NewShadowData(l Light, settings ShadowSettings) GPUShadowData {
	var s GPUShadowData
	common.Identity(s.LightVP[:])
	if l == nil || !settings.Enabled || settings.Resolution <= 0 {
		return s
	}
	center, ok := l.Target()
	if !ok {
		center = [3]float32{}
	}
	s.ComputeDirectionalLightVP(l.Direction(), center, DefaultShadowHalfExtent, DefaultShadowNear, DefaultShadowFar)
	s.ComputeNormalBias(DefaultShadowHalfExtent, DefaultShadowNormalBiasScale, settings.Resolution)
	s.TexelSize = [2]float32{1 / float32(settings.Resolution), 1 / float32(settings.Resolution)}
	s.Bias = DefaultShadowBias
	s.Enabled = 1
	s.KernelRadius = settings.Type.PCFKernelRadius()
	return s
}

// ToGPULight converts a Light into its GPU-aligned representation.
//
// Parameters:
//   - l: the Light to convert
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(l Light) GPULight {
	w, h := l.Size()
	return GPULight{
		Position:   l.Position(),
		LightType:  uint32(l.Type()),
		Color:      l.Color(),
		Intensity:  l.Intensity(),
		Direction:  l.Direction(),
		LightRange: l.Range(),
		InnerCone:  l.InnerCone(),
		OuterCone:  l.OuterCone(),
		Width:      w,
		Height:     h,
	}
}

// MarshalLightBuffer marshals lights into the fixed-size light uniform:
//
//	[GPULightHeader (16 bytes)] [GPULight × MaxGPULights (64 bytes each)]
//
// Ambient lights are folded into the header's ambient color. Disabled lights are skipped;
// non-ambient lights beyond MaxGPULights are dropped.
//
// Parameters:
//   - lights: the scene lights
//
// Returns:
//   - []byte: LightBufferSize bytes ready for GPU upload
func MarshalLightBuffer(lights []Light) []byte {
	buf := make([]byte, LightBufferSize)

	var header GPULightHeader
	offset := header.Size()
	for _, l := range lights {
		if !l.Enabled() {
			continue
		}
		if l.Type() == LightTypeAmbient {
			c, i := l.Color(), l.Intensity()
			header.AmbientColor[0] += c[0] * i
			header.AmbientColor[1] += c[1] * i
			header.AmbientColor[2] += c[2] * i
			continue
		}
		if header.LightCount >= MaxGPULights {
			continue
		}
		gpu := ToGPULight(l)
		copy(buf[offset:offset+64], gpu.Marshal())
		offset += 64
		header.LightCount++
	}
	copy(buf[0:16], header.Marshal())
	return buf
}

// ortho builds an orthographic projection matrix compatible with WebGPU's
// clip-space convention: X/Y in [-1, 1], Z in [0, 1].
// Output is column-major.
func ortho(out []float32, left, right, bottom, top, near, far float32) {
	common.Identity(out)
	rl := right - left
	tb := top - bottom
	fn := far - near

	out[0] = 2.0 / rl
	out[5] = 2.0 / tb
	out[10] = -1.0 / fn // WebGPU Z: [0, 1]
	out[12] = -(right + left) / rl
	out[13] = -(top + bottom) / tb
	out[14] = -near / fn
}

func putFloats(buf []byte, vs ...float32) {
	for i, v := range vs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}
