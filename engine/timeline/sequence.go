package timeline

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-stage/common"
)

// Infinite is the PlayOptions.IterationCount that repeats playback forever.
const Infinite = -1

// maxBoundariesPerTick bounds how many iteration boundaries a single Tick may cross.
const maxBoundariesPerTick = 1024

// Direction is the playback direction policy.
type Direction int

const (
	// DirectionNormal plays every iteration forward.
	DirectionNormal Direction = iota
	// DirectionReverse plays every iteration backward.
	DirectionReverse
	// DirectionAlternate plays forward, then backward, and so on.
	DirectionAlternate
	// DirectionAlternateReverse plays backward, then forward, and so on.
	DirectionAlternateReverse
)

// String returns the camelCase name of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionNormal:
		return "normal"
	case DirectionReverse:
		return "reverse"
	case DirectionAlternate:
		return "alternate"
	case DirectionAlternateReverse:
		return "alternateReverse"
	default:
		return "unknown"
	}
}

// ParseDirection converts a direction name (as produced by Direction.String) back into a Direction.
//
// Parameters:
//   - s: the direction name; empty means normal
//
// Returns:
//   - Direction: the direction
//   - error: an error wrapping common.ErrConfiguration for unknown names
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "normal":
		return DirectionNormal, nil
	case "reverse":
		return DirectionReverse, nil
	case "alternate":
		return DirectionAlternate, nil
	case "alternateReverse":
		return DirectionAlternateReverse, nil
	}
	return DirectionNormal, fmt.Errorf("%w: unknown playback direction %q", common.ErrConfiguration, s)
}

// PlayOptions controls sequence playback.
type PlayOptions struct {
	// IterationCount is the number of passes to play; 0 means 1 and Infinite repeats forever.
	IterationCount int
	// Rate multiplies the playback speed; 0 means 1.
	Rate float64
	// Direction selects the playback direction policy.
	Direction Direction
}

func (o PlayOptions) normalized() (PlayOptions, error) {
	if o.IterationCount == 0 {
		o.IterationCount = 1
	}
	if o.IterationCount < 0 && o.IterationCount != Infinite {
		return o, fmt.Errorf("%w: iteration count %d", common.ErrConfiguration, o.IterationCount)
	}
	if o.Rate == 0 {
		o.Rate = 1
	}
	if o.Rate < 0 {
		return o, fmt.Errorf("%w: negative playback rate %g", common.ErrConfiguration, o.Rate)
	}
	if o.Direction < DirectionNormal || o.Direction > DirectionAlternateReverse {
		return o, fmt.Errorf("%w: unknown playback direction %d", common.ErrConfiguration, o.Direction)
	}
	return o, nil
}

type sequenceImpl struct {
	mu        *sync.Mutex
	sheet     *sheetImpl
	length    float64
	position  float64
	playing   bool
	forward   bool
	iteration int
	opts      PlayOptions
}

// Sequence is a sheet's playhead. Its methods are meant to be driven from a single
// goroutine (the render loop); listeners are called synchronously from Tick and Seek.
type Sequence interface {
	// Play starts or restarts playback with the given options from the current position.
	// A forward pass starting at the end rewinds to 0; a backward pass starting at 0 jumps
	// to the end. Values at the starting position are emitted immediately.
	//
	// Parameters:
	//   - opts: the playback options
	//
	// Returns:
	//   - error: common.ErrNotReady before the project is ready, or an error wrapping
	//     common.ErrConfiguration for invalid options
	Play(opts PlayOptions) error

	// Pause stops playback, keeping the position.
	Pause()

	// Playing reports whether playback is running.
	//
	// Returns:
	//   - bool: true while playing
	Playing() bool

	// Seek moves the playhead to pos, clamped to [0, Length], and emits values.
	//
	// Parameters:
	//   - pos: the target position in seconds
	Seek(pos float64)

	// Position returns the playhead position in seconds.
	//
	// Returns:
	//   - float64: the position
	Position() float64

	// Length returns the sequence length in seconds.
	//
	// Returns:
	//   - float64: the length
	Length() float64

	// Iteration returns the number of completed passes since the last Play.
	//
	// Returns:
	//   - int: the completed iteration count
	Iteration() int

	// Tick advances playback by dt seconds and emits values. A paused sequence ignores ticks.
	//
	// Parameters:
	//   - dt: elapsed wall time in seconds
	Tick(dt float64)
}

var _ Sequence = &sequenceImpl{}

func newSequence(s *sheetImpl, length float64) *sequenceImpl {
	return &sequenceImpl{
		mu:      &sync.Mutex{},
		sheet:   s,
		length:  length,
		forward: true,
		opts:    PlayOptions{IterationCount: 1, Rate: 1},
	}
}

func (q *sequenceImpl) Play(opts PlayOptions) error {
	if !q.sheet.project.IsReady() {
		return common.ErrNotReady
	}
	opts, err := opts.normalized()
	if err != nil {
		return err
	}

	q.mu.Lock()
	q.opts = opts
	q.iteration = 0
	q.forward = opts.Direction == DirectionNormal || opts.Direction == DirectionAlternate
	if q.forward && q.position >= q.length {
		q.position = 0
	} else if !q.forward && q.position <= 0 {
		q.position = q.length
	}
	q.playing = true
	pos := q.position
	q.mu.Unlock()

	q.sheet.advance(pos)
	return nil
}

func (q *sequenceImpl) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.playing = false
}

func (q *sequenceImpl) Playing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

func (q *sequenceImpl) Seek(pos float64) {
	q.mu.Lock()
	q.position = common.Clamp(pos, 0, q.length)
	pos = q.position
	q.mu.Unlock()

	q.sheet.advance(pos)
}

func (q *sequenceImpl) Position() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.position
}

func (q *sequenceImpl) Length() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.length
}

func (q *sequenceImpl) Iteration() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.iteration
}

func (q *sequenceImpl) Tick(dt float64) {
	q.mu.Lock()
	if !q.playing || dt <= 0 {
		q.mu.Unlock()
		return
	}

	advance := dt * q.opts.Rate
	if q.length <= 0 {
		q.position = 0
		q.iteration++
		if q.opts.IterationCount != Infinite && q.iteration >= q.opts.IterationCount {
			q.playing = false
		}
	} else {
		for crossed := 0; advance > 0 && q.playing && crossed < maxBoundariesPerTick; crossed++ {
			room := q.position
			if q.forward {
				room = q.length - q.position
			}
			if advance < room {
				if q.forward {
					q.position += advance
				} else {
					q.position -= advance
				}
				break
			}
			advance -= room
			q.completeIteration()
		}
	}
	pos := q.position
	q.mu.Unlock()

	q.sheet.advance(pos)
}

// completeIteration moves the playhead to the start of the next pass, or parks it at the
// end of the final one. Caller must hold q.mu.
func (q *sequenceImpl) completeIteration() {
	end := 0.0
	if q.forward {
		end = q.length
	}
	q.iteration++
	if q.opts.IterationCount != Infinite && q.iteration >= q.opts.IterationCount {
		q.position = end
		q.playing = false
		return
	}
	switch q.opts.Direction {
	case DirectionAlternate, DirectionAlternateReverse:
		q.forward = !q.forward
		q.position = end
	default:
		q.position = q.length - end
	}
}

func (q *sequenceImpl) setLength(length float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.length = length
	q.position = common.Clamp(q.position, 0, length)
}
