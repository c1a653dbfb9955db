package renderer

import (
	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/geometry"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped

	// PresentModeMailbox replaces the queued frame with the newest one without tearing.
	PresentModeMailbox
)

// ParsePresentMode maps a configuration name ("fifo", "immediate", "mailbox") to a PresentMode.
// Unknown names select PresentModeVSync.
//
// Parameters:
//   - name: the present mode name
//
// Returns:
//   - PresentMode: the present mode
func ParsePresentMode(name string) PresentMode {
	switch name {
	case "immediate":
		return PresentModeUncapped
	case "mailbox":
		return PresentModeMailbox
	default:
		return PresentModeVSync
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// Frame holds the serialized uniforms for one frame.
type Frame struct {
	// Clear is the background color.
	Clear [4]float32
	// Camera is a marshaled camera.GPUCameraUniform.
	Camera []byte
	// Lights is the output of light.MarshalLightBuffer.
	Lights []byte
	// Shadow is a marshaled light.GPUShadowData.
	Shadow []byte
	// Shadows is true when the depth pass should run.
	Shadows bool
	// Draws lists the enabled meshes in scene order.
	Draws []DrawItem
}

// DrawItem is one mesh draw.
type DrawItem struct {
	ID         uint64
	Mesh       []byte // marshaled mesh.GPUMeshUniform
	Material   []byte // marshaled material.GPUMaterialParams
	CastShadow bool
}

// RendererBackend is the GPU API used by the Renderer. All methods are called from the
// goroutine that calls Renderer.Render.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swapchain and the attachments sized to the drawing buffer.
	//
	// Parameters:
	//   - width: the drawing buffer width in pixels
	//   - height: the drawing buffer height in pixels
	//
	// Returns:
	//   - error: an error if the attachments could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// SetShadowSettings (re)creates the shadow depth texture.
	//
	// Parameters:
	//   - settings: the shadow map configuration
	//
	// Returns:
	//   - error: an error if the texture could not be created
	SetShadowSettings(settings light.ShadowSettings) error

	// EnsureMesh uploads geometry for a mesh id, replacing buffers already held for it.
	//
	// Parameters:
	//   - id: the mesh id
	//   - label: a debug label
	//   - geo: the geometry
	//
	// Returns:
	//   - error: an error if the buffers could not be created
	EnsureMesh(id uint64, label string, geo geometry.Geometry) error

	// UploadTexture replaces the color map bound for a mesh id.
	//
	// Parameters:
	//   - id: the mesh id
	//   - tex: valid RGBA staging data
	//
	// Returns:
	//   - error: an error if the texture could not be created; the previous texture stays bound
	UploadTexture(id uint64, tex *common.TextureStagingData) error

	// ReleaseMesh frees every resource held for a mesh id.
	//
	// Parameters:
	//   - id: the mesh id
	ReleaseMesh(id uint64)

	// DrawFrame writes the frame uniforms, runs the shadow pass when enabled, draws and presents.
	//
	// Parameters:
	//   - f: the frame
	//
	// Returns:
	//   - error: an error if the frame could not be drawn
	DrawFrame(f *Frame) error

	// Release frees the device and surface.
	Release()
}
