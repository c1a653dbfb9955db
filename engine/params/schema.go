// Package params describes the animatable parameters an object exposes to the timeline
// and the immutable value snapshots the timeline emits for them.
package params

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-stage/common"
)

// Kind identifies the shape of a parameter.
type Kind int

const (
	// KindNumber is a scalar with a default and an inclusive range.
	KindNumber Kind = iota
	// KindCompound groups named child parameters.
	KindCompound
	// KindImage is a reference to an image asset.
	KindImage
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindCompound:
		return "compound"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp limits v to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	return common.Clamp(v, r.Min, r.Max)
}

// Prop is one parameter declaration. Props are values; constructors copy their inputs.
type Prop struct {
	kind     Kind
	def      float64
	rng      Range
	asset    AssetRef
	label    string
	children map[string]Prop
}

// Number declares a numeric parameter.
//
// Parameters:
//   - def: the default value
//   - rng: the inclusive range values are clamped to
//
// Returns:
//   - Prop: the declaration
func Number(def float64, rng Range) Prop {
	return Prop{kind: KindNumber, def: def, rng: rng}
}

// Compound declares a group of named child parameters.
//
// Parameters:
//   - props: the children, keyed by name
//
// Returns:
//   - Prop: the declaration
func Compound(props map[string]Prop) Prop {
	return Prop{kind: KindCompound, children: maps.Clone(props)}
}

// Image declares an image asset parameter.
//
// Parameters:
//   - def: the default asset ID (a file name under the project's asset base)
//   - label: the display label shown by authoring tools
//
// Returns:
//   - Prop: the declaration
func Image(def string, label string) Prop {
	return Prop{kind: KindImage, asset: AssetRef{Type: AssetTypeImage, ID: def}, label: label}
}

// Kind returns the shape of the parameter.
func (p Prop) Kind() Kind { return p.kind }

// Default returns the default of a number parameter.
func (p Prop) Default() float64 { return p.def }

// Range returns the range of a number parameter.
func (p Prop) Range() Range { return p.rng }

// DefaultAsset returns the default of an image parameter.
func (p Prop) DefaultAsset() AssetRef { return p.asset }

// Label returns the display label of an image parameter.
func (p Prop) Label() string { return p.label }

// Names returns the sorted child names of a compound parameter.
func (p Prop) Names() []string {
	return slices.Sorted(maps.Keys(p.children))
}

// Child returns the named child of a compound parameter.
func (p Prop) Child(name string) (Prop, bool) {
	c, ok := p.children[name]
	return c, ok
}

func (p Prop) validate(path string) error {
	switch p.kind {
	case KindNumber:
		if p.rng.Min > p.rng.Max {
			return fmt.Errorf("%w: %s: inverted range [%g, %g]", common.ErrConfiguration, path, p.rng.Min, p.rng.Max)
		}
		if !p.rng.Contains(p.def) {
			return fmt.Errorf("%w: %s: default %g outside range [%g, %g]", common.ErrConfiguration, path, p.def, p.rng.Min, p.rng.Max)
		}
	case KindImage:
		if p.asset.ID == "" {
			return fmt.Errorf("%w: %s: image parameter without a default asset", common.ErrConfiguration, path)
		}
	case KindCompound:
		if len(p.children) == 0 {
			return fmt.Errorf("%w: %s: compound parameter has no children", common.ErrConfiguration, path)
		}
		for _, name := range p.Names() {
			if name == "" {
				return fmt.Errorf("%w: %s: empty parameter name", common.ErrConfiguration, path)
			}
			if err := p.children[name].validate(path + "." + name); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %s: unknown parameter kind %d", common.ErrConfiguration, path, p.kind)
	}
	return nil
}

// Leaf is a non-compound parameter together with its path from the schema root.
type Leaf struct {
	Path []string
	Prop Prop
}

// Schema is the root of an object's parameter declarations. It is immutable.
type Schema struct {
	root Prop
}

// NewSchema creates a Schema from its top-level parameters.
//
// Parameters:
//   - props: the top-level parameters keyed by name
//
// Returns:
//   - Schema: the schema; call Validate before use
func NewSchema(props map[string]Prop) Schema {
	return Schema{root: Compound(props)}
}

// Validate checks that the schema declares at least one parameter, every name is non-empty,
// every compound has children, and every number default lies inside its range.
//
// Returns:
//   - error: nil, or an error wrapping common.ErrConfiguration
func (s Schema) Validate() error {
	if len(s.root.children) == 0 {
		return fmt.Errorf("%w: schema declares no parameters", common.ErrConfiguration)
	}
	return s.root.validate("$")
}

// Names returns the sorted top-level parameter names.
func (s Schema) Names() []string {
	return s.root.Names()
}

// Lookup returns the parameter at path.
//
// Parameters:
//   - path: names from the root, e.g. "rotation", "x"
//
// Returns:
//   - Prop: the parameter
//   - bool: false if no parameter exists at path
func (s Schema) Lookup(path ...string) (Prop, bool) {
	if len(path) == 0 {
		return Prop{}, false
	}
	p := s.root
	for _, name := range path {
		c, ok := p.Child(name)
		if !ok {
			return Prop{}, false
		}
		p = c
	}
	return p, true
}

// Has reports whether a leaf (number or image) parameter exists at path.
func (s Schema) Has(path ...string) bool {
	p, ok := s.Lookup(path...)
	return ok && p.kind != KindCompound
}

// Leaves returns every leaf parameter in lexical path order.
//
// Returns:
//   - []Leaf: the leaves
func (s Schema) Leaves() []Leaf {
	var out []Leaf
	var walk func(prefix []string, p Prop)
	walk = func(prefix []string, p Prop) {
		for _, name := range p.Names() {
			c := p.children[name]
			path := append(slices.Clone(prefix), name)
			if c.kind == KindCompound {
				walk(path, c)
				continue
			}
			out = append(out, Leaf{Path: path, Prop: c})
		}
	}
	walk(nil, s.root)
	return out
}

// Defaults returns a snapshot holding every leaf's default value.
//
// Returns:
//   - Snapshot: the default snapshot
func (s Schema) Defaults() Snapshot {
	b := NewSnapshotBuilder()
	for _, leaf := range s.Leaves() {
		switch leaf.Prop.kind {
		case KindNumber:
			b.SetNumber(leaf.Path, leaf.Prop.def)
		case KindImage:
			b.SetAsset(leaf.Path, leaf.Prop.asset)
		}
	}
	return b.Build()
}
