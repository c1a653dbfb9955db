package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/camera"
	"github.com/Carmen-Shannon/oxy-stage/engine/geometry"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/material"
	"github.com/Carmen-Shannon/oxy-stage/engine/mesh"
	"github.com/Carmen-Shannon/oxy-stage/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	configured  [][2]int
	presentMode PresentMode
	shadows     []light.ShadowSettings
	ensured     map[uint64]int
	uploads     map[uint64][]string
	released    []uint64
	frames      []*Frame
	drawErr     error
	uploadErr   error
	closed      bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{ensured: map[uint64]int{}, uploads: map[uint64][]string{}}
}

func (f *fakeBackend) ConfigureSurface(width, height int) error {
	f.configured = append(f.configured, [2]int{width, height})
	return nil
}

func (f *fakeBackend) SetPresentMode(mode PresentMode) { f.presentMode = mode }

func (f *fakeBackend) SetShadowSettings(settings light.ShadowSettings) error {
	f.shadows = append(f.shadows, settings)
	return nil
}

func (f *fakeBackend) EnsureMesh(id uint64, _ string, _ geometry.Geometry) error {
	f.ensured[id]++
	return nil
}

func (f *fakeBackend) UploadTexture(id uint64, tex *common.TextureStagingData) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads[id] = append(f.uploads[id], tex.Source)
	return nil
}

func (f *fakeBackend) ReleaseMesh(id uint64) { f.released = append(f.released, id) }

func (f *fakeBackend) DrawFrame(frame *Frame) error {
	if f.drawErr != nil {
		return f.drawErr
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeBackend) Release() { f.closed = true }

func newTestScene() (scene.Scene, mesh.Mesh) {
	m := mesh.NewMesh(geometry.NewBox(1, 1, 1), material.NewMaterial(), mesh.WithName("box"))
	s := scene.NewScene("test", scene.WithMeshes(m))
	return s, m
}

func texture(source string) *common.TextureStagingData {
	return &common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1, Source: source}
}

func TestRenderConfiguresSurfaceWithDrawingBufferSize(t *testing.T) {
	b := newFakeBackend()
	r := NewRendererWithBackend(b, WithPresentMode(PresentModeMailbox))
	r.SetSize(800, 600)
	r.SetPixelRatio(2)

	s, _ := newTestScene()
	cam := camera.NewCamera()
	require.NoError(t, r.Render(s, cam))
	require.NoError(t, r.Render(s, cam))

	assert.Equal(t, [][2]int{{1600, 1200}}, b.configured)
	assert.Equal(t, PresentModeMailbox, b.presentMode)
	assert.Len(t, b.shadows, 1)
	assert.Len(t, b.frames, 2)

	r.SetSize(400, 300)
	require.NoError(t, r.Render(s, cam))
	assert.Equal(t, [2]int{800, 600}, b.configured[1])
}

func TestRenderSkipsZeroSizedBuffer(t *testing.T) {
	b := newFakeBackend()
	r := NewRendererWithBackend(b)

	s, _ := newTestScene()
	require.NoError(t, r.Render(s, camera.NewCamera()))
	assert.Empty(t, b.configured)
	assert.Empty(t, b.frames)
}

func TestSetSizeIgnoresNonPositive(t *testing.T) {
	r := NewRendererWithBackend(newFakeBackend())
	r.SetSize(640, 480)
	r.SetSize(0, 480)
	r.SetSize(640, -1)
	r.SetPixelRatio(0)

	w, h := r.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	assert.Equal(t, float32(1), r.PixelRatio())
}

func TestRenderUploadsGeometryOnceAndTexturesOnRevision(t *testing.T) {
	b := newFakeBackend()
	r := NewRendererWithBackend(b)
	r.SetSize(100, 100)

	s, m := newTestScene()
	cam := camera.NewCamera()
	require.NoError(t, r.Render(s, cam))
	require.NoError(t, r.Render(s, cam))

	id := m.ID()
	assert.Equal(t, 1, b.ensured[id])
	assert.Equal(t, []string{"default"}, b.uploads[id])

	require.True(t, m.Material().SetTexture(texture("1.png")))
	require.NoError(t, r.Render(s, cam))
	require.NoError(t, r.Render(s, cam))
	assert.Equal(t, []string{"default", "1.png"}, b.uploads[id])
}

func TestRenderKeepsDrawingWhenTextureUploadFails(t *testing.T) {
	b := newFakeBackend()
	b.uploadErr = errors.New("out of memory")
	r := NewRendererWithBackend(b)
	r.SetSize(100, 100)

	s, _ := newTestScene()
	require.NoError(t, r.Render(s, camera.NewCamera()))
	assert.Len(t, b.frames, 1)
}

func TestRenderReleasesRemovedMeshes(t *testing.T) {
	b := newFakeBackend()
	r := NewRendererWithBackend(b)
	r.SetSize(100, 100)

	s, m := newTestScene()
	cam := camera.NewCamera()
	require.NoError(t, r.Render(s, cam))

	s.Remove(m.ID())
	require.NoError(t, r.Render(s, cam))
	assert.Equal(t, []uint64{m.ID()}, b.released)
	assert.Empty(t, b.frames[1].Draws)

	r.Release()
	assert.True(t, b.closed)
}

func TestRenderWrapsBackendErrors(t *testing.T) {
	b := newFakeBackend()
	r := NewRendererWithBackend(b)
	r.SetSize(100, 100)
	s, _ := newTestScene()
	cam := camera.NewCamera()

	b.drawErr = errors.New("surface lost")
	err := r.Render(s, cam)
	assert.ErrorIs(t, err, common.ErrRenderFailure)

	b.drawErr = fmt.Errorf("%w: device lost", common.ErrFatal)
	err = r.Render(s, cam)
	assert.ErrorIs(t, err, common.ErrFatal)
	assert.NotErrorIs(t, err, common.ErrRenderFailure)

	assert.ErrorIs(t, r.Render(nil, cam), common.ErrRenderFailure)
}

func TestSetShadowMapRejectsZeroResolution(t *testing.T) {
	r := NewRendererWithBackend(newFakeBackend())
	err := r.SetShadowMap(light.ShadowSettings{Enabled: true, Resolution: 0})
	assert.ErrorIs(t, err, common.ErrConfiguration)

	settings := light.ShadowSettings{Enabled: true, Type: light.ShadowMapPCF, Resolution: 1024}
	require.NoError(t, r.SetShadowMap(settings))
	assert.Equal(t, settings, r.ShadowMap())
}

func TestBuildFrameShadows(t *testing.T) {
	s, m := newTestScene()
	m.SetCastShadow(true)
	m.SetReceiveShadow(true)
	sun := light.NewLight(light.LightTypeDirectional,
		light.WithPosition(0, 20, 20), light.WithTarget(0, 0, 0), light.WithCastsShadows(true))
	s.AddLight(sun)
	cam := camera.NewCamera()

	enabled := light.ShadowSettings{Enabled: true, Type: light.ShadowMapPCFSoft, Resolution: 2048}
	f := buildFrame(s, cam, s.Meshes(), enabled)
	require.Len(t, f.Draws, 1)
	assert.True(t, f.Shadows)
	assert.True(t, f.Draws[0].CastShadow)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(f.Draws[0].Material[28:32]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(f.Shadow[84:88]))

	f = buildFrame(s, cam, s.Meshes(), light.ShadowSettings{Resolution: 2048})
	assert.False(t, f.Shadows)

	m.SetEnabled(false)
	f = buildFrame(s, cam, s.Meshes(), enabled)
	assert.Empty(t, f.Draws)
}

func TestDrawingBufferSize(t *testing.T) {
	w, h := drawingBufferSize(800, 600, 2)
	assert.Equal(t, 1600, w)
	assert.Equal(t, 1200, h)

	w, h = drawingBufferSize(101, 51, 1.5)
	assert.Equal(t, 151, w)
	assert.Equal(t, 76, h)

	w, h = drawingBufferSize(0, 600, 2)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestParsePresentMode(t *testing.T) {
	assert.Equal(t, PresentModeVSync, ParsePresentMode("fifo"))
	assert.Equal(t, PresentModeUncapped, ParsePresentMode("immediate"))
	assert.Equal(t, PresentModeMailbox, ParsePresentMode("mailbox"))
	assert.Equal(t, PresentModeVSync, ParsePresentMode(""))
}

func TestShaderSources(t *testing.T) {
	lit, err := litShaderSource()
	require.NoError(t, err)
	for _, want := range []string{"struct CameraUniform", "struct Light", "struct ShadowData", "struct MeshUniform",
		"struct MaterialParams", "fn " + litVertexEntry, "fn " + litFragmentEntry} {
		assert.True(t, strings.Contains(lit, want), want)
	}

	shadow, err := shadowShaderSource()
	require.NoError(t, err)
	assert.True(t, strings.Contains(shadow, "fn "+shadowVertexEntry))
	assert.False(t, strings.Contains(shadow, "fn "+litFragmentEntry))
	assert.False(t, strings.Contains(shadow, includePrefix))
}

func TestPreProcessIncludesOnce(t *testing.T) {
	out, err := preProcess("//@oxy:include camera\n// @oxy:include camera\nfn main() {}")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "struct CameraUniform"))
	assert.True(t, strings.HasSuffix(out, "fn main() {}"))
}

func TestPreProcessErrors(t *testing.T) {
	_, err := preProcess("//@oxy:include nope")
	assert.ErrorContains(t, err, "line 1: unknown")

	_, err = preProcess("\n//@oxy:include")
	assert.ErrorContains(t, err, "line 2")

	out, err := preProcess("// plain comment")
	require.NoError(t, err)
	assert.Equal(t, "// plain comment", out)
}
