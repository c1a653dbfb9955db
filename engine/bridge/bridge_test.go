package bridge

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/params"
	"github.com/Carmen-Shannon/oxy-stage/engine/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intensitySchema() params.Schema {
	return params.NewSchema(map[string]params.Prop{
		"intensity": params.Number(30, params.Range{Min: 0, Max: 30}),
	})
}

func readySheet(t *testing.T) timeline.Sheet {
	t.Helper()
	p := timeline.NewProject("p", timeline.ProjectConfig{})
	select {
	case <-p.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("project never became ready")
	}
	return p.Sheet("Animated scene")
}

func TestRegisterErrors(t *testing.T) {
	b := New(readySheet(t))

	_, err := b.Register("", intensitySchema())
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = b.Register("empty", params.NewSchema(nil))
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = b.Register("bad", params.NewSchema(map[string]params.Prop{
		"x": params.Number(0, params.Range{Min: 1, Max: -1}),
	}))
	assert.ErrorIs(t, err, common.ErrConfiguration)

	h, err := b.Register("Directional Light", intensitySchema())
	require.NoError(t, err)
	assert.Equal(t, "Directional Light", h.Name())

	_, err = b.Register("Directional Light", intensitySchema())
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestOnSnapshotErrors(t *testing.T) {
	b := New(readySheet(t))
	h, err := b.Register("a", intensitySchema())
	require.NoError(t, err)

	_, err = b.OnSnapshot(Handle{name: "missing"}, func(params.Snapshot) {})
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = b.OnSnapshot(h, nil)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestLastRegistrationWins(t *testing.T) {
	sheet := readySheet(t)
	b := New(sheet)
	h, err := b.Register("a", intensitySchema())
	require.NoError(t, err)

	var first, second int
	cancelFirst, err := b.OnSnapshot(h, func(params.Snapshot) { first++ })
	require.NoError(t, err)
	_, err = b.OnSnapshot(h, func(params.Snapshot) { second++ })
	require.NoError(t, err)

	// Cancelling a superseded callback must not remove the current one.
	cancelFirst()

	require.NoError(t, b.Activate(PlayPolicy{}))
	sheet.Sequence().Seek(1)

	assert.Zero(t, first)
	assert.Equal(t, 2, second)
}

func TestCancelRemovesCurrentCallback(t *testing.T) {
	sheet := readySheet(t)
	b := New(sheet)
	h, err := b.Register("a", intensitySchema())
	require.NoError(t, err)

	calls := 0
	cancel, err := b.OnSnapshot(h, func(params.Snapshot) { calls++ })
	require.NoError(t, err)
	require.NoError(t, b.Activate(PlayPolicy{}))

	cancel()
	sheet.Sequence().Seek(2)
	assert.Equal(t, 1, calls)
}

func TestNoSnapshotBeforeReadiness(t *testing.T) {
	gate := make(chan struct{})
	p := timeline.NewProject("p", timeline.ProjectConfig{}, timeline.WithReadyAfter(gate))
	sheet := p.Sheet("s")
	b := New(sheet)
	h, err := b.Register("a", intensitySchema())
	require.NoError(t, err)

	calls := 0
	_, err = b.OnSnapshot(h, func(params.Snapshot) { calls++ })
	require.NoError(t, err)

	assert.ErrorIs(t, b.Activate(LoopForever), common.ErrNotReady)
	sheet.Sequence().Seek(3)
	sheet.Sequence().Tick(1)
	assert.Zero(t, calls)
	assert.False(t, b.Active())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.AwaitReady(ctx), context.DeadlineExceeded)

	close(gate)
	require.NoError(t, b.AwaitReady(context.Background()))
	require.NoError(t, b.Activate(LoopForever))
	assert.Equal(t, 1, calls)
	assert.True(t, b.Active())
}

func TestReadinessResolvedOutOfOrder(t *testing.T) {
	// Readiness resolving before any subscription still delivers nothing until activation.
	sheet := readySheet(t)
	b := New(sheet)
	h, err := b.Register("a", intensitySchema())
	require.NoError(t, err)

	calls := 0
	_, err = b.OnSnapshot(h, func(params.Snapshot) { calls++ })
	require.NoError(t, err)
	sheet.Sequence().Seek(4)
	assert.Zero(t, calls)

	require.NoError(t, b.Activate(LoopForever))
	assert.Equal(t, 1, calls)
}

func TestAwaitReadyReportsProjectError(t *testing.T) {
	p := timeline.NewProject("p", timeline.ProjectConfig{State: timeline.ProjectState(`[]`)})
	b := New(p.Sheet("s"))

	err := b.AwaitReady(context.Background())
	assert.ErrorIs(t, err, common.ErrConfiguration)
	assert.ErrorIs(t, b.Activate(LoopForever), common.ErrNotReady)
}

func TestActivateTwice(t *testing.T) {
	b := New(readySheet(t))

	require.NoError(t, b.Activate(LoopForever))
	assert.ErrorIs(t, b.Activate(LoopForever), common.ErrAlreadyActive)
}

func TestActivateInvalidPolicy(t *testing.T) {
	b := New(readySheet(t))

	assert.ErrorIs(t, b.Activate(PlayPolicy{Rate: -1}), common.ErrConfiguration)
	assert.False(t, b.Active())
	assert.NoError(t, b.Activate(LoopForever))
}

func TestRegisterAfterActivation(t *testing.T) {
	sheet := readySheet(t)
	b := New(sheet)
	require.NoError(t, b.Activate(LoopForever))

	h, err := b.Register("late", intensitySchema())
	require.NoError(t, err)
	calls := 0
	_, err = b.OnSnapshot(h, func(params.Snapshot) { calls++ })
	require.NoError(t, err)

	sheet.Sequence().Tick(0.1)
	assert.Equal(t, 1, calls)
}

func TestListenerCountConstantWhileLooping(t *testing.T) {
	sheet := readySheet(t)
	b := New(sheet)
	for _, name := range []string{"a", "b", "c"} {
		h, err := b.Register(name, intensitySchema())
		require.NoError(t, err)
		_, err = b.OnSnapshot(h, func(params.Snapshot) {})
		require.NoError(t, err)
	}
	require.NoError(t, b.Activate(LoopForever))

	for range 100 {
		sheet.Sequence().Tick(0.5)
		require.Equal(t, 3, sheet.ListenerCount())
	}
	assert.GreaterOrEqual(t, sheet.Sequence().Iteration(), 4)

	b.Close()
	assert.Zero(t, sheet.ListenerCount())
	assert.False(t, sheet.Sequence().Playing())
}

func TestPanickingCallbackIsIsolated(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	sheet := readySheet(t)
	b := New(sheet, WithLogger(logger))

	bad, err := b.Register("bad", intensitySchema())
	require.NoError(t, err)
	good, err := b.Register("good", intensitySchema())
	require.NoError(t, err)

	_, err = b.OnSnapshot(bad, func(params.Snapshot) { panic("broken callback") })
	require.NoError(t, err)
	var mu sync.Mutex
	calls := 0
	_, err = b.OnSnapshot(good, func(params.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})
	require.NoError(t, err)

	require.NoError(t, b.Activate(LoopForever))
	for range 5 {
		sheet.Sequence().Tick(0.1)
	}

	assert.Equal(t, 6, calls)
	assert.Equal(t, 1, strings.Count(logs.String(), "snapshot callback panicked"))
}

func TestSnapshotValues(t *testing.T) {
	sheet := readySheet(t)
	b := New(sheet)
	h, err := b.Register("Directional Light", intensitySchema())
	require.NoError(t, err)

	var got float64
	_, err = b.OnSnapshot(h, func(s params.Snapshot) {
		got, _ = s.Number("intensity")
	})
	require.NoError(t, err)
	require.NoError(t, b.Activate(LoopForever))

	assert.Equal(t, 30.0, got)
}
