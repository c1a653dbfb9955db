package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickLogsAfterInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(WithInterval(time.Hour), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	assert.False(t, p.Tick())
	assert.Empty(t, buf.String())
}

func TestTickReportsFrames(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(WithInterval(time.Millisecond), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	p.SkipFrame()
	p.SkipFrame()
	time.Sleep(5 * time.Millisecond)
	assert.True(t, p.Tick())

	s := p.Last()
	assert.Greater(t, s.FPS, 0.0)
	assert.Equal(t, 2, s.SkippedFrame)
	assert.Greater(t, s.HeapMB, 0.0)
	assert.Contains(t, buf.String(), "profiler")
	assert.Contains(t, buf.String(), "skipped=2")

	// counters reset after each report
	time.Sleep(5 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.Equal(t, 0, p.Last().SkippedFrame)
}
