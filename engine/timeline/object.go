package timeline

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-stage/engine/params"
)

type objectImpl struct {
	mu           *sync.Mutex
	sheet        *sheetImpl
	name         string
	schema       params.Schema
	tracks       map[string]*track
	overrides    map[string]any
	listeners    map[uint64]func(params.Snapshot)
	nextListener uint64
	panicked     bool
}

// Object is one animated entity on a sheet.
type Object interface {
	// Name returns the object name.
	//
	// Returns:
	//   - string: the object name
	Name() string

	// Schema returns the object's parameter declarations.
	//
	// Returns:
	//   - params.Schema: the schema
	Schema() params.Schema

	// Value samples the object's parameters at the current playhead.
	//
	// Returns:
	//   - params.Snapshot: the current values
	Value() params.Snapshot

	// OnValuesChange registers a listener called with a fresh snapshot every time the
	// sequence advances or seeks. Listeners run synchronously on the goroutine driving
	// the sequence.
	//
	// Parameters:
	//   - cb: the listener
	//
	// Returns:
	//   - func(): removes the listener; safe to call more than once
	OnValuesChange(cb func(params.Snapshot)) func()

	// ListenerCount returns the number of registered listeners.
	//
	// Returns:
	//   - int: the listener count
	ListenerCount() int
}

var _ Object = &objectImpl{}

func newObject(s *sheetImpl, name string, schema params.Schema) *objectImpl {
	return &objectImpl{
		mu:        &sync.Mutex{},
		sheet:     s,
		name:      name,
		schema:    schema,
		listeners: make(map[uint64]func(params.Snapshot)),
	}
}

func (o *objectImpl) Name() string {
	return o.name
}

func (o *objectImpl) Schema() params.Schema {
	return o.schema
}

func (o *objectImpl) Value() params.Snapshot {
	return o.valueAt(o.sheet.seq.Position())
}

func (o *objectImpl) OnValuesChange(cb func(params.Snapshot)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextListener
	o.nextListener++
	o.listeners[id] = cb

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.listeners, id)
		})
	}
}

func (o *objectImpl) ListenerCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.listeners)
}

// bind attaches the object's tracks and static overrides from the saved sheet state.
func (o *objectImpl) bind(doc *sheetDoc) {
	tracks := make(map[string]*track)
	if doc.Sequence != nil {
		if objTracks, ok := doc.Sequence.TracksByObject[o.name]; ok {
			for key, trackID := range objTracks.TrackIDByPropPath {
				path, err := parsePropPath(key)
				if err != nil {
					continue
				}
				prop, ok := o.schema.Lookup(path...)
				if !ok || prop.Kind() == params.KindCompound {
					continue
				}
				td, ok := objTracks.TrackData[trackID]
				if !ok {
					continue
				}
				tracks[pathKey(path)] = newTrack(prop.Kind(), td)
			}
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.tracks = tracks
	o.overrides = doc.StaticOverrides.ByObject[o.name]
}

// valueAt samples every leaf: keyframed track first, then static override, then the schema
// default. Numbers are clamped to their declared range.
func (o *objectImpl) valueAt(pos float64) params.Snapshot {
	o.mu.Lock()
	tracks := o.tracks
	overrides := o.overrides
	o.mu.Unlock()

	b := params.NewSnapshotBuilder()
	for _, leaf := range o.schema.Leaves() {
		raw, ok := any(nil), false
		if t, exists := tracks[pathKey(leaf.Path)]; exists {
			raw, ok = t.sample(pos)
		}
		if !ok {
			raw, ok = lookupOverride(overrides, leaf.Path)
		}

		switch leaf.Prop.Kind() {
		case params.KindNumber:
			v, isNum := raw.(float64)
			if !ok || !isNum {
				v = leaf.Prop.Default()
			}
			b.SetNumber(leaf.Path, leaf.Prop.Range().Clamp(v))
		case params.KindImage:
			a, isAsset := toAssetRef(raw)
			if !ok || !isAsset {
				a = leaf.Prop.DefaultAsset()
			}
			b.SetAsset(leaf.Path, a)
		}
	}
	return b.Build()
}

// notify delivers snap to every listener in registration order. A panicking listener is
// recovered so the remaining listeners still run.
func (o *objectImpl) notify(snap params.Snapshot) {
	o.mu.Lock()
	ids := slices.Sorted(maps.Keys(o.listeners))
	cbs := make([]func(params.Snapshot), 0, len(ids))
	for _, id := range ids {
		cbs = append(cbs, o.listeners[id])
	}
	o.mu.Unlock()

	for _, cb := range cbs {
		o.call(cb, snap)
	}
}

func (o *objectImpl) call(cb func(params.Snapshot), snap params.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			o.mu.Lock()
			first := !o.panicked
			o.panicked = true
			o.mu.Unlock()
			if first {
				o.sheet.project.logger.Error("timeline listener panicked", "sheet", o.sheet.name, "object", o.name, "panic", r)
			}
		}
	}()
	cb(snap)
}

func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}

func lookupOverride(overrides map[string]any, path []string) (any, bool) {
	var cur any = overrides
	for _, name := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[name]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func toAssetRef(v any) (params.AssetRef, bool) {
	switch a := v.(type) {
	case params.AssetRef:
		return a, !a.IsZero()
	case map[string]any:
		id, _ := a["id"].(string)
		typ, _ := a["type"].(string)
		if id == "" {
			return params.AssetRef{}, false
		}
		return params.AssetRef{Type: typ, ID: id}, true
	}
	return params.AssetRef{}, false
}
