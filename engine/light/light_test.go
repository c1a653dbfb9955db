package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight(LightTypePoint)

	assert.Equal(t, LightTypePoint, l.Type())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Color())
	assert.Equal(t, float32(1), l.Intensity())
	assert.True(t, l.Enabled())
	assert.False(t, l.CastsShadows())
	_, ok := l.Target()
	assert.False(t, ok)
}

func TestLookAtTracksPosition(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithPosition(0, 20, 0), WithTarget(0, 0, 0))
	d := l.Direction()
	assert.InDeltaSlice(t, []float32{0, -1, 0}, d[:], 1e-6)

	l.SetPosition(20, 0, 0)
	d = l.Direction()
	assert.InDeltaSlice(t, []float32{-1, 0, 0}, d[:], 1e-6)

	l.SetDirection(0, 0, -5)
	d = l.Direction()
	assert.InDeltaSlice(t, []float32{0, 0, -1}, d[:], 1e-6)
	_, ok := l.Target()
	assert.False(t, ok)
}

func TestLookAtDegenerateTargetKeepsDirection(t *testing.T) {
	l := NewLight(LightTypeSpot, WithDirection(1, 0, 0))
	l.LookAt(0, 0, 0)

	assert.Equal(t, [3]float32{1, 0, 0}, l.Direction())
}

func TestRectAreaLight(t *testing.T) {
	l := NewLight(LightTypeRectArea, WithSize(50, 50), WithPosition(-20, -40, 10), WithTarget(0, 0, 0))

	w, h := l.Size()
	assert.Equal(t, float32(50), w)
	assert.Equal(t, float32(50), h)
	d := l.Direction()
	assert.Greater(t, d[0], float32(0))
	assert.Greater(t, d[1], float32(0))
	assert.Less(t, d[2], float32(0))
}

func TestSetIntensityIsAbsoluteAndNonNegative(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithIntensity(30))

	l.SetIntensity(15)
	l.SetIntensity(15)
	assert.Equal(t, float32(15), l.Intensity())

	l.SetIntensity(-1)
	assert.Equal(t, float32(0), l.Intensity())
}

func TestAmbientNeverCastsShadows(t *testing.T) {
	l := NewLight(LightTypeAmbient, WithCastsShadows(true))
	assert.False(t, l.CastsShadows())
}

func TestMarshalLightBuffer(t *testing.T) {
	lights := []Light{
		NewLight(LightTypeAmbient, WithColor([3]float32{1, 1, 1}), WithIntensity(0.5)),
		NewLight(LightTypeDirectional, WithColor([3]float32{1, 0, 0}), WithIntensity(30)),
		NewLight(LightTypePoint, WithEnabled(false)),
	}

	buf := MarshalLightBuffer(lights)
	require.Len(t, buf, LightBufferSize)

	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[12:16]))
	assert.Equal(t, uint32(LightTypeDirectional), binary.LittleEndian.Uint32(buf[16+12:16+16]))
	assert.Equal(t, float32(30), math.Float32frombits(binary.LittleEndian.Uint32(buf[16+28:16+32])))
}

func TestMarshalLightBufferDropsOverflow(t *testing.T) {
	var lights []Light
	for range MaxGPULights + 3 {
		lights = append(lights, NewLight(LightTypePoint))
	}

	buf := MarshalLightBuffer(lights)
	assert.Equal(t, uint32(MaxGPULights), binary.LittleEndian.Uint32(buf[12:16]))
}

func TestNewShadowData(t *testing.T) {
	sun := NewLight(LightTypeDirectional, WithPosition(0, 20, 20), WithTarget(0, 0, 0), WithCastsShadows(true))

	off := NewShadowData(sun, ShadowSettings{})
	assert.Zero(t, off.Enabled)

	s := NewShadowData(sun, ShadowSettings{Enabled: true, Type: ShadowMapPCFSoft, Resolution: 1024})
	assert.Equal(t, uint32(1), s.Enabled)
	assert.Equal(t, uint32(2), s.KernelRadius)
	assert.InDelta(t, 1.0/1024, s.TexelSize[0], 1e-9)
	assert.Greater(t, s.NormalBias, float32(0))
	assert.Len(t, s.Marshal(), s.Size())

	// The frustum center projects to the middle of the shadow map.
	m := s.LightVP
	x := m[12]
	y := m[13]
	assert.InDelta(t, 0, x, 1e-4)
	assert.InDelta(t, 0, y, 1e-4)
}
