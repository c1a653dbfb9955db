package params

import (
	"maps"
	"slices"
)

// AssetTypeImage is the AssetRef type of image assets.
const AssetTypeImage = "image"

// AssetRef identifies a project asset by type and ID. The ID is resolved against the
// project's asset base URL by the timeline project.
type AssetRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// IsZero reports whether the reference is empty.
func (a AssetRef) IsZero() bool {
	return a.ID == ""
}

// Snapshot is an immutable view of one object's parameter values at a point in time.
// Leaves hold either a float64 or an AssetRef; compounds nest further snapshots.
type Snapshot struct {
	values map[string]any
}

// Keys returns the sorted top-level names present in the snapshot.
func (s Snapshot) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Len returns the number of top-level entries.
func (s Snapshot) Len() int {
	return len(s.values)
}

// Number returns the numeric leaf at path.
//
// Parameters:
//   - path: names from the root, e.g. "rotation", "x"
//
// Returns:
//   - float64: the value
//   - bool: false if path is absent or not a number
func (s Snapshot) Number(path ...string) (float64, bool) {
	v, ok := s.lookup(path)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// Asset returns the asset leaf at path.
//
// Parameters:
//   - path: names from the root
//
// Returns:
//   - AssetRef: the reference
//   - bool: false if path is absent or not an asset
func (s Snapshot) Asset(path ...string) (AssetRef, bool) {
	v, ok := s.lookup(path)
	if !ok {
		return AssetRef{}, false
	}
	a, ok := v.(AssetRef)
	return a, ok
}

// Compound returns the nested snapshot named name.
//
// Parameters:
//   - name: the top-level compound name
//
// Returns:
//   - Snapshot: the nested snapshot
//   - bool: false if absent or not a compound
func (s Snapshot) Compound(name string) (Snapshot, bool) {
	v, ok := s.values[name]
	if !ok {
		return Snapshot{}, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{values: m}, true
}

// Equal reports whether both snapshots hold the same paths and values.
func (s Snapshot) Equal(other Snapshot) bool {
	return equalValues(s.values, other.values)
}

func (s Snapshot) lookup(path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur := s.values
	for i, name := range path {
		v, ok := cur[name]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		if cur, ok = v.(map[string]any); !ok {
			return nil, false
		}
	}
	return nil, false
}

func equalValues(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		switch at := av.(type) {
		case map[string]any:
			bt, ok := bv.(map[string]any)
			if !ok || !equalValues(at, bt) {
				return false
			}
		default:
			if av != bv {
				return false
			}
		}
	}
	return true
}

// SnapshotBuilder assembles a Snapshot leaf by leaf. A builder is single-use: Build hands
// its values to the snapshot.
type SnapshotBuilder struct {
	values map[string]any
}

// NewSnapshotBuilder creates an empty builder.
func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{values: map[string]any{}}
}

// SetNumber stores a numeric leaf, creating intermediate compounds.
func (b *SnapshotBuilder) SetNumber(path []string, v float64) *SnapshotBuilder {
	b.set(path, v)
	return b
}

// SetAsset stores an asset leaf, creating intermediate compounds.
func (b *SnapshotBuilder) SetAsset(path []string, a AssetRef) *SnapshotBuilder {
	b.set(path, a)
	return b
}

// Build returns the snapshot and resets the builder.
func (b *SnapshotBuilder) Build() Snapshot {
	s := Snapshot{values: b.values}
	b.values = map[string]any{}
	return s
}

func (b *SnapshotBuilder) set(path []string, v any) {
	if len(path) == 0 {
		return
	}
	cur := b.values
	for _, name := range path[:len(path)-1] {
		next, ok := cur[name].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[name] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = v
}
