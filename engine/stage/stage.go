// Package stage builds the animated scene and maps timeline snapshots onto it.
package stage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine"
	"github.com/Carmen-Shannon/oxy-stage/engine/assets"
	"github.com/Carmen-Shannon/oxy-stage/engine/bridge"
	"github.com/Carmen-Shannon/oxy-stage/engine/camera"
	"github.com/Carmen-Shannon/oxy-stage/engine/config"
	"github.com/Carmen-Shannon/oxy-stage/engine/geometry"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/material"
	"github.com/Carmen-Shannon/oxy-stage/engine/mesh"
	"github.com/Carmen-Shannon/oxy-stage/engine/params"
	"github.com/Carmen-Shannon/oxy-stage/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stage/engine/scene"
	"github.com/chewxy/math32"
)

const (
	// SubjectObject is the timeline object driving the textured mesh.
	SubjectObject = "Torus Knot"
	// DirectionalLightObject is the timeline object driving the directional light.
	DirectionalLightObject = "Directional Light"
)

// Stage holds every object of the animated scene. Apply methods and texture completions must
// run on the engine event loop, the same goroutine that renders.
type Stage struct {
	Scene       scene.Scene
	Camera      camera.Camera
	Subject     mesh.Mesh
	Ambient     light.Light
	Directional light.Light
	RectArea    light.Light
	Renderer    renderer.Renderer

	maxPixelRatio float32
	viewport      *common.Viewport
	geometry      geometry.Geometry
	resolver      assets.Resolver
	logger        *slog.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	texturePath string
	cancels     []func()
}

// Build creates the camera, the subject mesh, the three lights and the scene, and sizes the renderer
// to the initial viewport.
//
// Parameters:
//   - cfg: the validated stage configuration
//   - r: the renderer drawing the scene
//   - options: variadic list of StageBuilderOption functions
//
// Returns:
//   - *Stage: the built stage
//   - error: an error wrapping common.ErrConfiguration
func Build(cfg *config.Config, r renderer.Renderer, options ...StageBuilderOption) (*Stage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: stage requires a config", common.ErrConfiguration)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: stage requires a renderer", common.ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Stage{
		Renderer:      r,
		maxPixelRatio: cfg.Renderer.MaxPixelRatio,
		logger:        slog.Default(),
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.geometry == nil {
		s.geometry = geometry.NewBox(3, 30, 15)
	}
	vp := common.Viewport{Width: cfg.Window.Width, Height: cfg.Window.Height, DevicePixelRatio: 1}
	if s.viewport != nil {
		vp = *s.viewport
	}

	s.Camera = camera.NewCamera(
		camera.WithFovDegrees(70),
		camera.WithNear(10),
		camera.WithFar(200),
		camera.WithPosition(0, 0, 50),
		camera.WithTarget(0, 0, 0),
	)

	mat := material.NewMaterial(
		material.WithName("standard"),
		material.WithColor(common.MustParseColor("#049ef4")),
		material.WithRoughness(0.5),
	)
	s.Subject = mesh.NewMesh(s.geometry, mat,
		mesh.WithName(SubjectObject),
		mesh.WithShadows(true, true),
	)

	s.Ambient = light.NewLight(light.LightTypeAmbient,
		light.WithName("ambient"),
		light.WithColor(common.MustParseColor("#ffffff")),
		light.WithIntensity(0.5),
	)
	s.Directional = light.NewLight(light.LightTypeDirectional,
		light.WithName(DirectionalLightObject),
		light.WithColor(common.MustParseColor("#ff0000")),
		light.WithIntensity(30),
		light.WithPosition(0, 20, 20),
		light.WithTarget(0, 0, 0),
		light.WithCastsShadows(true),
	)
	s.RectArea = light.NewLight(light.LightTypeRectArea,
		light.WithName("rect area"),
		light.WithColor(common.MustParseColor("#ff0")),
		light.WithIntensity(1),
		light.WithSize(50, 50),
		light.WithPosition(-20, -40, 10),
	)
	s.RectArea.LookAt(0, 0, 0)

	s.Scene = scene.NewScene(cfg.Project.Sheet,
		scene.WithMeshes(s.Subject),
		scene.WithLights(s.Ambient, s.Directional, s.RectArea),
	)

	err := r.SetShadowMap(light.ShadowSettings{
		Enabled:    cfg.Renderer.Shadows,
		Type:       light.ShadowMapPCFSoft,
		Resolution: int(cfg.Renderer.ShadowMapSize),
	})
	if err != nil {
		cancel()
		return nil, err
	}
	s.Resize(vp)
	return s, nil
}

// Resize applies a window viewport to the camera and renderer. Minimised viewports are ignored.
//
// Parameters:
//   - vp: the new viewport
//
// Returns:
//   - bool: false if the viewport was ignored
func (s *Stage) Resize(vp common.Viewport) bool {
	return engine.SyncViewport(s.Camera, s.Renderer, vp, s.maxPixelRatio)
}

// Render draws the scene from the stage camera.
func (s *Stage) Render() error {
	return s.Renderer.Render(s.Scene, s.Camera)
}

// Bind registers the subject and directional light objects on b and routes their snapshots to
// ApplySubject and ApplyDirectionalLight. Nothing is delivered until b is activated.
//
// Parameters:
//   - b: the parameter bridge
//
// Returns:
//   - error: an error wrapping common.ErrConfiguration
func (s *Stage) Bind(b bridge.Bridge) error {
	bindings := []struct {
		name   string
		schema params.Schema
		apply  func(params.Snapshot)
	}{
		{SubjectObject, SubjectSchema(), s.ApplySubject},
		{DirectionalLightObject, DirectionalLightSchema(), s.ApplyDirectionalLight},
	}
	for _, bd := range bindings {
		h, err := b.Register(bd.name, bd.schema)
		if err != nil {
			return err
		}
		cancel, err := b.OnSnapshot(h, bd.apply)
		if err != nil {
			return err
		}
		s.cancels = append(s.cancels, cancel)
	}
	return nil
}

// ApplySubject writes a subject snapshot onto the mesh. Rotation is in half turns (1 = π radians),
// scale is uniform. Every write is absolute, so applying the same snapshot twice is a no-op.
//
// Parameters:
//   - snap: the subject snapshot
func (s *Stage) ApplySubject(snap params.Snapshot) {
	z := number(snap, 1, "scale", "z_scale")
	s.Subject.ApplyTransform(mesh.Transform{
		Position: [3]float32{
			number(snap, 0, "position", "x_axis"),
			number(snap, 0, "position", "y_axis"),
			number(snap, 0, "position", "z_axis"),
		},
		Rotation: [3]float32{
			number(snap, 0, "rotation", "x") * math32.Pi,
			number(snap, 0, "rotation", "y") * math32.Pi,
			number(snap, 0, "rotation", "z") * math32.Pi,
		},
		Scale: [3]float32{z, z, z},
	})

	if ref, ok := snap.Asset("texture"); ok && !ref.IsZero() {
		s.requestTexture(ref)
	}
}

// ApplyDirectionalLight writes a directional light snapshot onto the light.
//
// Parameters:
//   - snap: the light snapshot
func (s *Stage) ApplyDirectionalLight(snap params.Snapshot) {
	if v, ok := snap.Number("intensity"); ok {
		s.Directional.SetIntensity(float32(v))
	}
}

// Close detaches the snapshot callbacks and abandons pending texture loads.
func (s *Stage) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	s.cancel()
}

// requestTexture loads ref unless it is already the current or pending texture. Only the latest
// request is applied; a failed load keeps the previous texture.
func (s *Stage) requestTexture(ref params.AssetRef) {
	if s.resolver == nil {
		return
	}
	location, err := s.resolver.Resolve(ref)
	if err != nil {
		if s.texturePath != ref.ID {
			s.logger.Warn("texture not resolved", "asset", ref.ID, "error", err)
			s.texturePath = ref.ID
		}
		return
	}
	if location == s.texturePath {
		return
	}
	s.texturePath = location

	s.resolver.Load(s.ctx, ref, func(tex *common.TextureStagingData, err error) {
		if err != nil || s.texturePath != location {
			return
		}
		tex.Source = location
		s.Subject.Material().SetTexture(tex)
	})
}

func number(snap params.Snapshot, def float32, path ...string) float32 {
	if v, ok := snap.Number(path...); ok {
		return float32(v)
	}
	return def
}
