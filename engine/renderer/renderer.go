package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/camera"
	"github.com/Carmen-Shannon/oxy-stage/engine/geometry"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/material"
	"github.com/Carmen-Shannon/oxy-stage/engine/mesh"
	"github.com/Carmen-Shannon/oxy-stage/engine/scene"
	"github.com/Carmen-Shannon/oxy-stage/engine/window"
)

// meshState tracks what the backend currently holds for a mesh.
type meshState struct {
	geo         geometry.Geometry
	texRevision uint64
	texUploaded bool
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	logger      *slog.Logger

	width      int
	height     int
	pixelRatio float32
	dirty      bool

	shadows      light.ShadowSettings
	shadowsDirty bool

	meshes map[uint64]*meshState

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
}

// Renderer draws a scene from a camera into the window surface.
//
// Size is in logical window units; the drawing buffer is the size multiplied by the pixel
// ratio. Size, pixel ratio and shadow changes are applied by the next Render call, so every
// GPU call happens on the goroutine that renders.
type Renderer interface {
	// Render draws every enabled mesh of s as seen from cam. Geometry is uploaded on first sight,
	// material textures whenever their revision changes. A zero-sized drawing buffer skips the frame.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the viewpoint
	//
	// Returns:
	//   - error: an error wrapping common.ErrRenderFailure if the frame could not be drawn
	Render(s scene.Scene, cam camera.Camera) error

	// SetSize sets the logical size of the drawing area. Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width: the width in window units
	//   - height: the height in window units
	SetSize(width, height int)

	// Size returns the logical size of the drawing area.
	//
	// Returns:
	//   - int: the width in window units
	//   - int: the height in window units
	Size() (int, int)

	// SetPixelRatio sets the number of drawing buffer pixels per window unit. Non-positive values are ignored.
	//
	// Parameters:
	//   - ratio: the pixel ratio
	SetPixelRatio(ratio float32)

	// PixelRatio returns the current pixel ratio.
	//
	// Returns:
	//   - float32: the pixel ratio
	PixelRatio() float32

	// DrawingBufferSize returns the size of the surface in pixels: the logical size times the pixel ratio.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	DrawingBufferSize() (int, int)

	// ShadowMap returns the shadow map configuration.
	//
	// Returns:
	//   - light.ShadowSettings: the current settings
	ShadowMap() light.ShadowSettings

	// SetShadowMap replaces the shadow map configuration.
	//
	// Parameters:
	//   - settings: the new settings
	//
	// Returns:
	//   - error: an error wrapping common.ErrConfiguration if the resolution is not positive while enabled
	SetShadowMap(settings light.ShadowSettings) error

	// Release frees every GPU resource held by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a WebGPU renderer drawing into the window's surface.
//
// Parameters:
//   - w: the window providing the surface descriptor and initial viewport
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error wrapping common.ErrConfiguration if the GPU could not be initialised
func NewRenderer(w window.Window, options ...RendererBuilderOption) (Renderer, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: renderer requires a window", common.ErrConfiguration)
	}
	r := newRenderer(options...)

	switch r.backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend, err := newWGPURendererBackend(w.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
		}
		r.backend = backend
	}
	r.backend.SetPresentMode(r.presentMode)

	vp := w.Viewport()
	r.SetSize(vp.Width, vp.Height)
	r.SetPixelRatio(vp.DevicePixelRatio)
	return r, nil
}

// NewRendererWithBackend creates a renderer over an already constructed backend.
//
// Parameters:
//   - backend: the GPU backend
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
func NewRendererWithBackend(backend RendererBackend, options ...RendererBuilderOption) Renderer {
	if backend == nil {
		panic("renderer: NewRendererWithBackend requires a non-nil backend")
	}
	r := newRenderer(options...)
	r.backend = backend
	r.backend.SetPresentMode(r.presentMode)
	return r
}

func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: BackendTypeWGPU,
		logger:      slog.Default(),
		pixelRatio:  1,
		shadows:     light.DefaultShadowSettings(),
		meshes:      make(map[uint64]*meshState),
		presentMode: PresentModeVSync,
		msaa:        MSAA4x,
	}
	for _, opt := range options {
		opt(r)
	}
	r.shadowsDirty = true
	return r
}

func (r *renderer) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if width != r.width || height != r.height {
		r.width, r.height = width, height
		r.dirty = true
	}
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ratio != r.pixelRatio {
		r.pixelRatio = ratio
		r.dirty = true
	}
}

func (r *renderer) PixelRatio() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pixelRatio
}

func (r *renderer) DrawingBufferSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return drawingBufferSize(r.width, r.height, r.pixelRatio)
}

func (r *renderer) ShadowMap() light.ShadowSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shadows
}

func (r *renderer) SetShadowMap(settings light.ShadowSettings) error {
	if settings.Enabled && settings.Resolution <= 0 {
		return fmt.Errorf("%w: shadow map resolution %d", common.ErrConfiguration, settings.Resolution)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shadows = settings
	r.shadowsDirty = true
	return nil
}

func (r *renderer) Render(s scene.Scene, cam camera.Camera) error {
	if s == nil || cam == nil {
		return fmt.Errorf("%w: render requires a scene and a camera", common.ErrRenderFailure)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, h := drawingBufferSize(r.width, r.height, r.pixelRatio)
	if w == 0 || h == 0 {
		return nil
	}
	if r.dirty {
		if err := r.backend.ConfigureSurface(w, h); err != nil {
			return fmt.Errorf("%w: configuring surface %dx%d: %v", common.ErrRenderFailure, w, h, err)
		}
		r.dirty = false
	}
	if r.shadowsDirty {
		if err := r.backend.SetShadowSettings(r.shadows); err != nil {
			return fmt.Errorf("%w: shadow map: %v", common.ErrRenderFailure, err)
		}
		r.shadowsDirty = false
	}

	meshes := s.Meshes()
	if err := r.syncMeshes(meshes); err != nil {
		return err
	}

	f := buildFrame(s, cam, meshes, r.shadows)
	if err := r.backend.DrawFrame(f); err != nil {
		if errors.Is(err, common.ErrFatal) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrRenderFailure, err)
	}
	return nil
}

// syncMeshes uploads new geometry and changed textures, and releases meshes no longer in the scene.
func (r *renderer) syncMeshes(meshes []mesh.Mesh) error {
	seen := make(map[uint64]bool, len(meshes))
	for _, m := range meshes {
		id := m.ID()
		seen[id] = true

		st, ok := r.meshes[id]
		if !ok {
			st = &meshState{}
			r.meshes[id] = st
		}
		if geo := m.Geometry(); st.geo != geo {
			if err := r.backend.EnsureMesh(id, m.Name(), geo); err != nil {
				delete(r.meshes, id)
				return fmt.Errorf("%w: uploading mesh %q: %v", common.ErrRenderFailure, m.Name(), err)
			}
			st.geo = geo
		}

		tex, rev := m.Material().Texture()
		if st.texUploaded && st.texRevision == rev {
			continue
		}
		upload := tex
		if upload == nil || !upload.Valid() {
			white := common.WhiteTexture()
			upload = &white
		}
		if err := r.backend.UploadTexture(id, upload); err != nil {
			// keep drawing with the previous texture
			r.logger.Warn("texture upload failed", "mesh", m.Name(), "source", upload.Source, "error", err)
		}
		st.texRevision = rev
		st.texUploaded = true
	}

	for id := range r.meshes {
		if !seen[id] {
			r.backend.ReleaseMesh(id)
			delete(r.meshes, id)
		}
	}
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.meshes {
		r.backend.ReleaseMesh(id)
	}
	r.meshes = make(map[uint64]*meshState)
	r.backend.Release()
}

// buildFrame snapshots the uniforms for one frame.
func buildFrame(s scene.Scene, cam camera.Camera, meshes []mesh.Mesh, shadows light.ShadowSettings) *Frame {
	camUniform := cam.Uniform()
	caster := s.ShadowCaster()
	if !shadows.Enabled {
		caster = nil
	}
	shadowData := light.NewShadowData(caster, shadows)

	f := &Frame{
		Clear:   s.Background(),
		Camera:  camUniform.Marshal(),
		Lights:  light.MarshalLightBuffer(s.Lights()),
		Shadow:  shadowData.Marshal(),
		Shadows: shadowData.Enabled == 1,
		Draws:   make([]DrawItem, 0, len(meshes)),
	}
	for _, m := range meshes {
		if !m.Enabled() {
			continue
		}
		mu := mesh.Uniform(m)
		mp := material.Params(m.Material())
		if m.ReceiveShadow() {
			mp.ReceiveShadow = 1
		}
		f.Draws = append(f.Draws, DrawItem{
			ID:         m.ID(),
			Mesh:       mu.Marshal(),
			Material:   mp.Marshal(),
			CastShadow: m.CastShadow(),
		})
	}
	return f
}

// drawingBufferSize truncates the scaled size the same way a browser canvas does.
func drawingBufferSize(width, height int, ratio float32) (int, int) {
	if width <= 0 || height <= 0 || ratio <= 0 {
		return 0, 0
	}
	return int(float32(width) * ratio), int(float32(height) * ratio)
}
