package stage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/bridge"
	"github.com/Carmen-Shannon/oxy-stage/engine/camera"
	"github.com/Carmen-Shannon/oxy-stage/engine/config"
	"github.com/Carmen-Shannon/oxy-stage/engine/geometry"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/params"
	"github.com/Carmen-Shannon/oxy-stage/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stage/engine/scene"
	"github.com/Carmen-Shannon/oxy-stage/engine/timeline"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	width, height int
	ratio         float32
	shadows       light.ShadowSettings
	renders       int
}

var _ renderer.Renderer = &fakeRenderer{}

func (r *fakeRenderer) SetSize(w, h int) { r.width, r.height = w, h }
func (r *fakeRenderer) Size() (int, int) { return r.width, r.height }
func (r *fakeRenderer) SetPixelRatio(ratio float32) { r.ratio = ratio }
func (r *fakeRenderer) PixelRatio() float32 { return r.ratio }
func (r *fakeRenderer) ShadowMap() light.ShadowSettings { return r.shadows }
func (r *fakeRenderer) Release() {}

func (r *fakeRenderer) Render(scene.Scene, camera.Camera) error {
	r.renders++
	return nil
}

func (r *fakeRenderer) DrawingBufferSize() (int, int) {
	return int(float32(r.width) * r.ratio), int(float32(r.height) * r.ratio)
}

func (r *fakeRenderer) SetShadowMap(settings light.ShadowSettings) error {
	r.shadows = settings
	return nil
}

type pendingLoad struct {
	ref  params.AssetRef
	done func(*common.TextureStagingData, error)
}

type fakeResolver struct {
	loads []pendingLoad
}

func (f *fakeResolver) Resolve(ref params.AssetRef) (string, error) {
	if ref.ID == "" {
		return "", common.ErrAssetResolution
	}
	return "assets/" + ref.ID, nil
}

func (f *fakeResolver) Load(_ context.Context, ref params.AssetRef, done func(*common.TextureStagingData, error)) {
	f.loads = append(f.loads, pendingLoad{ref: ref, done: done})
}

func (f *fakeResolver) LoadURL(context.Context, string) (*common.TextureStagingData, error) {
	return nil, errors.New("not used")
}

func pixel(source string) *common.TextureStagingData {
	return &common.TextureStagingData{Pixels: []byte{1, 2, 3, 255}, Width: 1, Height: 1, Source: source}
}

func subjectSnapshot(rx, zScale float64, texture string) params.Snapshot {
	b := params.NewSnapshotBuilder().
		SetNumber([]string{"rotation", "x"}, rx).
		SetNumber([]string{"rotation", "y"}, 0).
		SetNumber([]string{"rotation", "z"}, 0).
		SetNumber([]string{"scale", "z_scale"}, zScale).
		SetNumber([]string{"position", "x_axis"}, 0).
		SetNumber([]string{"position", "y_axis"}, 0).
		SetNumber([]string{"position", "z_axis"}, 0)
	if texture != "" {
		b.SetAsset([]string{"texture"}, params.AssetRef{Type: "image", ID: texture})
	}
	return b.Build()
}

func build(t *testing.T, options ...StageBuilderOption) (*Stage, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	s, err := Build(config.Default(), r, options...)
	require.NoError(t, err)
	return s, r
}

func TestBuildScene(t *testing.T) {
	s, r := build(t, WithViewport(common.Viewport{Width: 800, Height: 600, DevicePixelRatio: 3}))

	assert.InDelta(t, 70*math32.Pi/180, s.Camera.Fov(), 1e-6)
	assert.Equal(t, float32(10), s.Camera.Near())
	assert.Equal(t, float32(200), s.Camera.Far())
	assert.Equal(t, [3]float32{0, 0, 50}, s.Camera.Position())
	assert.Equal(t, float32(800)/float32(600), s.Camera.Aspect())

	assert.Equal(t, SubjectObject, s.Subject.Name())
	assert.True(t, s.Subject.CastShadow())
	assert.True(t, s.Subject.ReceiveShadow())
	assert.Equal(t, float32(0.5), s.Subject.Material().Roughness())
	assert.Equal(t, common.MustParseColor("#049ef4"), s.Subject.Material().Color())

	assert.Equal(t, light.LightTypeAmbient, s.Ambient.Type())
	assert.Equal(t, float32(0.5), s.Ambient.Intensity())
	assert.Equal(t, float32(30), s.Directional.Intensity())
	assert.True(t, s.Directional.CastsShadows())
	assert.Equal(t, [3]float32{1, 1, 0}, s.RectArea.Color())
	w, h := s.RectArea.Size()
	assert.Equal(t, float32(50), w)
	assert.Equal(t, float32(50), h)

	assert.Equal(t, 1, s.Scene.Count())
	assert.Len(t, s.Scene.Lights(), 3)
	assert.Equal(t, s.Directional, s.Scene.ShadowCaster())

	assert.Equal(t, 800, r.width)
	assert.Equal(t, 600, r.height)
	assert.Equal(t, float32(2), r.ratio)
	assert.True(t, r.shadows.Enabled)
	assert.Equal(t, light.ShadowMapPCFSoft, r.shadows.Type)

	require.NoError(t, s.Render())
	assert.Equal(t, 1, r.renders)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(config.Default(), nil)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = Build(nil, &fakeRenderer{})
	assert.ErrorIs(t, err, common.ErrConfiguration)

	cfg := config.Default()
	cfg.Window.Width = 0
	_, err = Build(cfg, &fakeRenderer{})
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestWithGeometry(t *testing.T) {
	knot := geometry.NewTorusKnot(10, 3, 64, 8, 2, 3)
	s, _ := build(t, WithGeometry(knot))
	assert.Equal(t, knot, s.Subject.Geometry())
}

func TestApplySubjectRotationAndScale(t *testing.T) {
	s, _ := build(t)

	s.ApplySubject(subjectSnapshot(1, 2, ""))
	assert.Equal(t, [3]float32{math32.Pi, 0, 0}, s.Subject.Rotation())
	assert.Equal(t, [3]float32{2, 2, 2}, s.Subject.Scale())
	assert.Equal(t, [3]float32{0, 0, 0}, s.Subject.Position())
}

func TestApplySubjectIsIdempotent(t *testing.T) {
	s, _ := build(t)
	snap := params.NewSnapshotBuilder().
		SetNumber([]string{"rotation", "x"}, 0.25).
		SetNumber([]string{"rotation", "y"}, -0.5).
		SetNumber([]string{"rotation", "z"}, 1.5).
		SetNumber([]string{"scale", "z_scale"}, 3).
		SetNumber([]string{"position", "x_axis"}, 1).
		SetNumber([]string{"position", "y_axis"}, -2).
		SetNumber([]string{"position", "z_axis"}, 4).
		Build()

	s.ApplySubject(snap)
	once := s.Subject.Transform()
	s.ApplySubject(snap)
	assert.Equal(t, once, s.Subject.Transform())
	assert.Equal(t, [3]float32{1, -2, 4}, once.Position)
}

func TestApplyDirectionalLight(t *testing.T) {
	s, _ := build(t)
	snap := params.NewSnapshotBuilder().SetNumber([]string{"intensity"}, 15).Build()

	s.ApplyDirectionalLight(snap)
	s.ApplyDirectionalLight(snap)
	assert.Equal(t, float32(15), s.Directional.Intensity())
}

func TestTextureLoadsOnceAndAppliesLatestOnly(t *testing.T) {
	res := &fakeResolver{}
	s, _ := build(t, WithResolver(res))

	s.ApplySubject(subjectSnapshot(0, 1, "1.png"))
	s.ApplySubject(subjectSnapshot(0, 1, "1.png"))
	require.Len(t, res.loads, 1)

	s.ApplySubject(subjectSnapshot(0, 1, "2.png"))
	require.Len(t, res.loads, 2)

	// the superseded load completes late and is dropped
	res.loads[0].done(pixel("assets/1.png"), nil)
	tex, _ := s.Subject.Material().Texture()
	assert.Nil(t, tex)

	res.loads[1].done(pixel("assets/2.png"), nil)
	assert.Equal(t, "assets/2.png", s.Subject.Material().TextureSource())
}

func TestTextureFailureKeepsPreviousTexture(t *testing.T) {
	res := &fakeResolver{}
	s, _ := build(t, WithResolver(res))

	s.ApplySubject(subjectSnapshot(0, 1, "1.png"))
	res.loads[0].done(pixel("assets/1.png"), nil)
	_, rev := s.Subject.Material().Texture()

	s.ApplySubject(subjectSnapshot(0, 1, "missing.png"))
	res.loads[1].done(nil, common.ErrAssetResolution)

	_, after := s.Subject.Material().Texture()
	assert.Equal(t, rev, after)
	assert.Equal(t, "assets/1.png", s.Subject.Material().TextureSource())
}

func TestBindDeliversOnlyAfterActivation(t *testing.T) {
	gate := make(chan struct{})
	project := timeline.NewProject("THREE.js x Theatre.js", timeline.ProjectConfig{}, timeline.WithReadyAfter(gate))
	b := bridge.New(project.Sheet("Animated scene"))

	res := &fakeResolver{}
	s, _ := build(t, WithResolver(res))
	require.NoError(t, s.Bind(b))
	assert.ErrorIs(t, s.Bind(b), common.ErrConfiguration)

	s.Directional.SetIntensity(7)
	assert.ErrorIs(t, b.Activate(bridge.LoopForever), common.ErrNotReady)

	close(gate)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, b.AwaitReady(ctx))
	require.NoError(t, b.Activate(bridge.LoopForever))

	// playback start emits the schema defaults
	assert.Equal(t, float32(30), s.Directional.Intensity())
	assert.Equal(t, [3]float32{1, 1, 1}, s.Subject.Scale())
	require.Len(t, res.loads, 1)
	assert.Equal(t, "1.png", res.loads[0].ref.ID)

	s.Close()
	s.Directional.SetIntensity(7)
	project.Sheet("Animated scene").Sequence().Seek(0)
	assert.Equal(t, float32(7), s.Directional.Intensity())
}

func TestSchemas(t *testing.T) {
	subject := SubjectSchema()
	require.NoError(t, subject.Validate())
	for _, path := range [][]string{
		{"rotation", "x"}, {"rotation", "y"}, {"rotation", "z"},
		{"scale", "z_scale"}, {"texture"},
		{"position", "x_axis"}, {"position", "y_axis"}, {"position", "z_axis"},
	} {
		assert.True(t, subject.Has(path...), path)
	}
	tex, ok := subject.Lookup("texture")
	require.True(t, ok)
	assert.Equal(t, "TEXTURE", tex.Label())
	assert.Equal(t, "1.png", tex.DefaultAsset().ID)

	require.NoError(t, DirectionalLightSchema().Validate())
	assert.True(t, DirectionalLightSchema().Has("intensity"))
}
