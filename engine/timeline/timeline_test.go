package timeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knotSchema() params.Schema {
	return params.NewSchema(map[string]params.Prop{
		"rotation": params.Compound(map[string]params.Prop{
			"x": params.Number(0, params.Range{Min: -2, Max: 2}),
			"y": params.Number(0, params.Range{Min: -2, Max: 2}),
			"z": params.Number(0, params.Range{Min: -2, Max: 2}),
		}),
		"scale":   params.Compound(map[string]params.Prop{"z_scale": params.Number(1, params.Range{Min: 0, Max: 4})}),
		"texture": params.Image("1.png", "TEXTURE"),
	})
}

func lightSchema() params.Schema {
	return params.NewSchema(map[string]params.Prop{
		"intensity": params.Number(30, params.Range{Min: 0, Max: 30}),
	})
}

func waitReady(t *testing.T, p Project) {
	t.Helper()
	select {
	case <-p.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("project never became ready")
	}
}

func loadFixture(t *testing.T) Project {
	t.Helper()
	state, err := LoadProjectState(filepath.Join("testdata", "state.json"))
	require.NoError(t, err)
	p := NewProject("THREE.js x Theatre.js", ProjectConfig{State: state, Assets: Assets{BaseURL: "/theatrejs-assets/"}})
	waitReady(t, p)
	require.NoError(t, p.Err())
	return p
}

func TestProjectReadyWithoutState(t *testing.T) {
	p := NewProject("empty", ProjectConfig{})
	waitReady(t, p)

	assert.True(t, p.IsReady())
	assert.NoError(t, p.Err())
	assert.Equal(t, DefaultSequenceLength, p.Sheet("s").Sequence().Length())
}

func TestProjectInvalidState(t *testing.T) {
	p := NewProject("broken", ProjectConfig{State: ProjectState(`{"sheetsById": 4}`)})
	waitReady(t, p)

	assert.False(t, p.IsReady())
	assert.ErrorIs(t, p.Err(), common.ErrConfiguration)
}

func TestProjectEmptyName(t *testing.T) {
	p := NewProject("", ProjectConfig{})
	waitReady(t, p)

	assert.ErrorIs(t, p.Err(), common.ErrConfiguration)
}

func TestLoadProjectStateErrors(t *testing.T) {
	_, err := LoadProjectState(filepath.Join("testdata", "missing.json"))
	assert.ErrorIs(t, err, common.ErrConfiguration)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	_, err = LoadProjectState(bad)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestSheetObjectErrors(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	sheet := p.Sheet("s")

	_, err := sheet.Object("", knotSchema())
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = sheet.Object("a", params.NewSchema(nil))
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = sheet.Object("a", knotSchema())
	require.NoError(t, err)
	_, err = sheet.Object("a", knotSchema())
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestSheetIsShared(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	assert.Same(t, p.Sheet("s"), p.Sheet("s"))
}

func TestObjectValueMergesOverridesAndDefaults(t *testing.T) {
	p := loadFixture(t)
	sheet := p.Sheet("Animated scene")
	knot, err := sheet.Object("Torus Knot", knotSchema())
	require.NoError(t, err)

	assert.Equal(t, 10.0, sheet.Sequence().Length())

	v := knot.Value()
	z, _ := v.Number("scale", "z_scale")
	assert.Equal(t, 2.0, z)
	y, _ := v.Number("rotation", "y")
	assert.Equal(t, 0.0, y)
	tex, _ := v.Asset("texture")
	assert.Equal(t, params.AssetRef{Type: "image", ID: "2.png"}, tex)
}

func TestSeekSamplesLinearBezierAndClamps(t *testing.T) {
	p := loadFixture(t)
	sheet := p.Sheet("Animated scene")
	knot, err := sheet.Object("Torus Knot", knotSchema())
	require.NoError(t, err)

	var got []float64
	knot.OnValuesChange(func(s params.Snapshot) {
		x, _ := s.Number("rotation", "x")
		got = append(got, x)
	})

	sheet.Sequence().Seek(2)
	sheet.Sequence().Seek(8)
	sheet.Sequence().Seek(100)

	require.Len(t, got, 3)
	assert.InDelta(t, 0.6, got[0], 1e-6)
	assert.Equal(t, 2.0, got[1], "2.4 clamps to the range max")
	assert.Equal(t, 2.0, got[2])
	assert.Equal(t, 10.0, sheet.Sequence().Position())
}

func TestHoldKeyframes(t *testing.T) {
	p := loadFixture(t)
	sheet := p.Sheet("Animated scene")
	dl, err := sheet.Object("Directional Light", lightSchema())
	require.NoError(t, err)

	sheet.Sequence().Seek(4.9)
	v, _ := dl.Value().Number("intensity")
	assert.Equal(t, 30.0, v)

	sheet.Sequence().Seek(5)
	v, _ = dl.Value().Number("intensity")
	assert.Equal(t, 15.0, v)
}

func TestPlayBeforeReady(t *testing.T) {
	gate := make(chan struct{})
	p := NewProject("p", ProjectConfig{}, WithReadyAfter(gate))
	sheet := p.Sheet("s")
	obj, err := sheet.Object("o", lightSchema())
	require.NoError(t, err)

	calls := 0
	obj.OnValuesChange(func(params.Snapshot) { calls++ })

	assert.ErrorIs(t, sheet.Sequence().Play(PlayOptions{}), common.ErrNotReady)
	sheet.Sequence().Seek(1)
	assert.Zero(t, calls)

	close(gate)
	waitReady(t, p)
	require.NoError(t, sheet.Sequence().Play(PlayOptions{}))
	assert.Equal(t, 1, calls)
}

func TestPlayRejectsInvalidOptions(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	waitReady(t, p)
	seq := p.Sheet("s").Sequence()

	assert.ErrorIs(t, seq.Play(PlayOptions{Rate: -1}), common.ErrConfiguration)
	assert.ErrorIs(t, seq.Play(PlayOptions{IterationCount: -5}), common.ErrConfiguration)
	assert.ErrorIs(t, seq.Play(PlayOptions{Direction: Direction(9)}), common.ErrConfiguration)
}

func TestTickPlaysOnceAndStops(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	waitReady(t, p)
	seq := p.Sheet("s").Sequence()

	require.NoError(t, seq.Play(PlayOptions{}))
	seq.Tick(4)
	assert.Equal(t, 4.0, seq.Position())
	seq.Tick(7)
	assert.Equal(t, 10.0, seq.Position())
	assert.False(t, seq.Playing())
	assert.Equal(t, 1, seq.Iteration())

	seq.Tick(1)
	assert.Equal(t, 10.0, seq.Position())
}

func TestTickInfiniteWraps(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	waitReady(t, p)
	seq := p.Sheet("s").Sequence()

	require.NoError(t, seq.Play(PlayOptions{IterationCount: Infinite, Rate: 2}))
	seq.Tick(6)
	assert.InDelta(t, 2.0, seq.Position(), 1e-9)
	assert.Equal(t, 1, seq.Iteration())
	assert.True(t, seq.Playing())
}

func TestTickDirections(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		ticks     []float64
		want      float64
	}{
		{"reverse starts at end", DirectionReverse, []float64{3}, 7},
		{"alternate bounces", DirectionAlternate, []float64{8, 4}, 8},
		{"alternate reverse bounces", DirectionAlternateReverse, []float64{8, 4}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProject("p", ProjectConfig{})
			waitReady(t, p)
			seq := p.Sheet("s").Sequence()

			require.NoError(t, seq.Play(PlayOptions{IterationCount: Infinite, Direction: tt.direction}))
			for _, dt := range tt.ticks {
				seq.Tick(dt)
			}
			assert.InDelta(t, tt.want, seq.Position(), 1e-9)
		})
	}
}

func TestPauseIgnoresTicks(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	waitReady(t, p)
	seq := p.Sheet("s").Sequence()

	require.NoError(t, seq.Play(PlayOptions{}))
	seq.Tick(1)
	seq.Pause()
	seq.Tick(1)

	assert.Equal(t, 1.0, seq.Position())
}

func TestListenerCountStableAcrossIterations(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	waitReady(t, p)
	sheet := p.Sheet("s")
	obj, err := sheet.Object("o", lightSchema())
	require.NoError(t, err)

	calls := 0
	obj.OnValuesChange(func(params.Snapshot) { calls++ })
	require.NoError(t, sheet.Sequence().Play(PlayOptions{IterationCount: Infinite}))

	for range 50 {
		sheet.Sequence().Tick(0.75)
		assert.Equal(t, 1, sheet.ListenerCount())
	}
	assert.Greater(t, sheet.Sequence().Iteration(), 2)
	assert.Equal(t, 51, calls)
}

func TestUnsubscribe(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	waitReady(t, p)
	sheet := p.Sheet("s")
	obj, err := sheet.Object("o", lightSchema())
	require.NoError(t, err)

	calls := 0
	cancel := obj.OnValuesChange(func(params.Snapshot) { calls++ })
	sheet.Sequence().Seek(1)
	cancel()
	cancel()
	sheet.Sequence().Seek(2)

	assert.Equal(t, 1, calls)
	assert.Zero(t, obj.ListenerCount())
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	waitReady(t, p)
	sheet := p.Sheet("s")
	obj, err := sheet.Object("o", lightSchema())
	require.NoError(t, err)

	calls := 0
	obj.OnValuesChange(func(params.Snapshot) { panic("boom") })
	obj.OnValuesChange(func(params.Snapshot) { calls++ })

	sheet.Sequence().Seek(1)
	sheet.Sequence().Seek(2)
	assert.Equal(t, 2, calls)
}

func TestAssetURL(t *testing.T) {
	p := NewProject("p", ProjectConfig{Assets: Assets{BaseURL: "/theatrejs-assets/"}})

	url, err := p.AssetURL(params.AssetRef{Type: "image", ID: "1.png"})
	require.NoError(t, err)
	assert.Equal(t, "/theatrejs-assets/1.png", url)

	_, err = p.AssetURL(params.AssetRef{})
	assert.ErrorIs(t, err, common.ErrAssetResolution)

	_, err = p.AssetURL(params.AssetRef{ID: "../secret.png"})
	assert.ErrorIs(t, err, common.ErrAssetResolution)
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{DirectionNormal, DirectionReverse, DirectionAlternate, DirectionAlternateReverse} {
		got, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDirection("sideways")
	assert.ErrorIs(t, err, common.ErrConfiguration)
}
