package timeline

import "github.com/Carmen-Shannon/oxy-stage/common"

// DefaultScrubStep is the playhead distance, in sequence units, moved by one arrow key press.
const DefaultScrubStep = 0.5

// Transport maps keyboard input onto playback controls for one sequence:
//   - common.KeySpace toggles between pause and play
//   - common.KeyR restarts playback from the start
//   - common.KeyLeft / common.KeyRight scrub backwards / forwards by the scrub step
//   - common.KeyHome seeks to the start without changing the play state
//
// Like Sequence, it must be driven from the goroutine that ticks the sequence.
type Transport struct {
	seq  Sequence
	opts PlayOptions
	step float64
}

// NewTransport creates a Transport that resumes and restarts seq with opts.
//
// Parameters:
//   - seq: the sequence to control
//   - opts: the play options used when resuming or restarting
//   - step: the scrub distance per key press; non-positive values use DefaultScrubStep
//
// Returns:
//   - *Transport: the transport
func NewTransport(seq Sequence, opts PlayOptions, step float64) *Transport {
	if step <= 0 {
		step = DefaultScrubStep
	}
	return &Transport{seq: seq, opts: opts, step: step}
}

// HandleKey applies the control bound to keyCode. Unbound keys are ignored.
//
// Parameters:
//   - keyCode: the key code reported by the window
//
// Returns:
//   - bool: true if the key is bound to a control
//   - error: the error from resuming or restarting playback (e.g. common.ErrNotReady)
func (t *Transport) HandleKey(keyCode uint32) (bool, error) {
	switch keyCode {
	case common.KeySpace:
		if t.seq.Playing() {
			t.seq.Pause()
			return true, nil
		}
		return true, t.seq.Play(t.opts)
	case common.KeyR:
		t.seq.Seek(0)
		return true, t.seq.Play(t.opts)
	case common.KeyLeft:
		t.seq.Seek(t.seq.Position() - t.step)
	case common.KeyRight:
		t.seq.Seek(t.seq.Position() + t.step)
	case common.KeyHome:
		t.seq.Seek(0)
	default:
		return false, nil
	}
	return true, nil
}
