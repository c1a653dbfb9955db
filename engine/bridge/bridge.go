// Package bridge connects timeline objects to scene mutations.
//
// Each scene object is registered under a name with a parameter schema, and receives one
// snapshot callback. Callbacks are attached to the timeline only when the bridge is
// activated, which in turn requires the project to be ready, so no snapshot is ever
// delivered to a half-built scene.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/params"
	"github.com/Carmen-Shannon/oxy-stage/engine/timeline"
)

// Handle identifies a registered object.
type Handle struct {
	name string
}

// Name returns the object name the handle was registered under.
func (h Handle) Name() string {
	return h.name
}

// PlayPolicy is the repeat policy playback starts with on activation.
type PlayPolicy struct {
	// IterationCount is the number of passes; timeline.Infinite repeats forever.
	IterationCount int
	// Rate multiplies the playback speed; 0 means 1.
	Rate float64
	// Direction selects the playback direction policy.
	Direction timeline.Direction
}

// LoopForever plays forward at normal speed with no end.
var LoopForever = PlayPolicy{IterationCount: timeline.Infinite, Rate: 1}

type entry struct {
	handle      Handle
	obj         timeline.Object
	cb          func(params.Snapshot)
	gen         uint64
	unsubscribe func()
	panicked    bool
}

type bridgeImpl struct {
	mu      *sync.Mutex
	sheet   timeline.Sheet
	logger  *slog.Logger
	order   []string
	entries map[string]*entry
	active  bool
}

// Bridge routes timeline value snapshots to per-object callbacks.
type Bridge interface {
	// Register declares an object on the sheet.
	//
	// Parameters:
	//   - name: the object name, unique per bridge
	//   - schema: the object's parameters
	//
	// Returns:
	//   - Handle: the handle used to subscribe
	//   - error: an error wrapping common.ErrConfiguration for empty or duplicate names and
	//     empty or invalid schemas
	Register(name string, schema params.Schema) (Handle, error)

	// OnSnapshot sets the callback for a handle. There is exactly one callback per handle:
	// a later registration replaces the earlier one. Callbacks run on the goroutine driving
	// the timeline and must apply absolute values so that repeated snapshots are harmless.
	//
	// Parameters:
	//   - h: the handle
	//   - cb: the callback
	//
	// Returns:
	//   - func(): removes cb, but only while it is still the current callback
	//   - error: an error wrapping common.ErrConfiguration for unknown handles or a nil callback
	OnSnapshot(h Handle, cb func(params.Snapshot)) (cancel func(), err error)

	// AwaitReady blocks until the project has resolved or ctx is done.
	//
	// Parameters:
	//   - ctx: the context bounding the wait
	//
	// Returns:
	//   - error: the project's resolution error, or ctx.Err()
	AwaitReady(ctx context.Context) error

	// Activate attaches every handle to the timeline and starts playback with policy.
	//
	// Parameters:
	//   - policy: the playback policy
	//
	// Returns:
	//   - error: common.ErrNotReady before the project is ready, common.ErrAlreadyActive on
	//     repeat calls, or an error wrapping common.ErrConfiguration for an invalid policy
	Activate(policy PlayPolicy) error

	// Active reports whether Activate has succeeded.
	//
	// Returns:
	//   - bool: true once active
	Active() bool

	// Close pauses playback and detaches every handle from the timeline.
	Close()
}

var _ Bridge = &bridgeImpl{}

// New creates a Bridge over a timeline sheet. Passing a nil sheet is a programmer error and panics.
//
// Parameters:
//   - sheet: the timeline sheet whose objects and sequence the bridge drives
//   - options: variadic list of BridgeBuilderOption functions to configure the bridge
//
// Returns:
//   - Bridge: the new bridge
func New(sheet timeline.Sheet, options ...BridgeBuilderOption) Bridge {
	if sheet == nil {
		panic("bridge: New requires a non-nil sheet")
	}
	b := &bridgeImpl{
		mu:      &sync.Mutex{},
		sheet:   sheet,
		logger:  slog.Default(),
		entries: make(map[string]*entry),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *bridgeImpl) Register(name string, schema params.Schema) (Handle, error) {
	if name == "" {
		return Handle{}, fmt.Errorf("%w: object name is empty", common.ErrConfiguration)
	}
	if len(schema.Leaves()) == 0 {
		return Handle{}, fmt.Errorf("%w: object %q declares no parameters", common.ErrConfiguration, name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.entries[name]; exists {
		return Handle{}, fmt.Errorf("%w: object %q already registered", common.ErrConfiguration, name)
	}
	obj, err := b.sheet.Object(name, schema)
	if err != nil {
		return Handle{}, err
	}
	e := &entry{handle: Handle{name: name}, obj: obj}
	b.entries[name] = e
	b.order = append(b.order, name)
	if b.active {
		b.attach(e)
	}
	return e.handle, nil
}

func (b *bridgeImpl) OnSnapshot(h Handle, cb func(params.Snapshot)) (func(), error) {
	if cb == nil {
		return nil, fmt.Errorf("%w: nil snapshot callback for %q", common.ErrConfiguration, h.name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[h.name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown handle %q", common.ErrConfiguration, h.name)
	}
	e.gen++
	gen := e.gen
	e.cb = cb

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if e.gen == gen {
			e.cb = nil
		}
	}, nil
}

func (b *bridgeImpl) AwaitReady(ctx context.Context) error {
	project := b.sheet.Project()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-project.Ready():
		return project.Err()
	}
}

func (b *bridgeImpl) Activate(policy PlayPolicy) error {
	project := b.sheet.Project()
	if !project.IsReady() {
		if err := project.Err(); err != nil {
			return fmt.Errorf("%w: %v", common.ErrNotReady, err)
		}
		return common.ErrNotReady
	}

	b.mu.Lock()
	if b.active {
		b.mu.Unlock()
		return common.ErrAlreadyActive
	}
	b.active = true
	for _, name := range b.order {
		b.attach(b.entries[name])
	}
	handles := len(b.order)
	b.mu.Unlock()

	err := b.sheet.Sequence().Play(timeline.PlayOptions{
		IterationCount: policy.IterationCount,
		Rate:           policy.Rate,
		Direction:      policy.Direction,
	})
	if err != nil {
		b.detachAll()
		return fmt.Errorf("starting playback: %w", err)
	}
	b.logger.Info("parameter bridge active",
		"sheet", b.sheet.Name(),
		"handles", handles,
		"iterations", policy.IterationCount,
		"direction", policy.Direction.String(),
	)
	return nil
}

func (b *bridgeImpl) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *bridgeImpl) Close() {
	b.sheet.Sequence().Pause()
	b.detachAll()
}

// attach subscribes e to its timeline object. Caller must hold b.mu.
func (b *bridgeImpl) attach(e *entry) {
	if e.unsubscribe != nil {
		return
	}
	e.unsubscribe = e.obj.OnValuesChange(func(s params.Snapshot) {
		b.deliver(e, s)
	})
}

func (b *bridgeImpl) detachAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.entries {
		if e.unsubscribe != nil {
			e.unsubscribe()
			e.unsubscribe = nil
		}
	}
	b.active = false
}

// deliver hands a snapshot to the current callback. A panic is recovered and logged the
// first time it happens for a handle.
func (b *bridgeImpl) deliver(e *entry, s params.Snapshot) {
	b.mu.Lock()
	cb := e.cb
	b.mu.Unlock()
	if cb == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.mu.Lock()
			first := !e.panicked
			e.panicked = true
			b.mu.Unlock()
			if first {
				b.logger.Error("snapshot callback panicked", "handle", e.handle.name, "panic", r)
			}
		}
	}()
	cb(s)
}
