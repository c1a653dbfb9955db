package timeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportTogglesAndScrubs(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	waitReady(t, p)
	seq := p.Sheet("s").Sequence()
	tr := NewTransport(seq, PlayOptions{IterationCount: Infinite}, 0)

	ok, err := tr.HandleKey(common.KeySpace)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, seq.Playing())

	seq.Tick(2)
	_, err = tr.HandleKey(common.KeySpace)
	require.NoError(t, err)
	assert.False(t, seq.Playing())

	_, _ = tr.HandleKey(common.KeyRight)
	assert.InDelta(t, 2.5, seq.Position(), 1e-9)
	_, _ = tr.HandleKey(common.KeyLeft)
	_, _ = tr.HandleKey(common.KeyLeft)
	assert.InDelta(t, 1.5, seq.Position(), 1e-9)
	assert.False(t, seq.Playing())

	_, _ = tr.HandleKey(common.KeyHome)
	assert.Equal(t, 0.0, seq.Position())
}

func TestTransportRestartAndUnbound(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	waitReady(t, p)
	seq := p.Sheet("s").Sequence()
	tr := NewTransport(seq, PlayOptions{}, 1)

	seq.Seek(6)
	ok, err := tr.HandleKey(common.KeyR)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.0, seq.Position())
	assert.True(t, seq.Playing())

	ok, err = tr.HandleKey('Q')
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestTransportScrubClampsToSequence(t *testing.T) {
	p := NewProject("p", ProjectConfig{})
	waitReady(t, p)
	seq := p.Sheet("s").Sequence()
	tr := NewTransport(seq, PlayOptions{}, 4)

	_, _ = tr.HandleKey(common.KeyLeft)
	assert.Equal(t, 0.0, seq.Position())
	for range 4 {
		_, _ = tr.HandleKey(common.KeyRight)
	}
	assert.Equal(t, seq.Length(), seq.Position())
}
