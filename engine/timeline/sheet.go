package timeline

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/params"
)

// DefaultSequenceLength is the sequence length in seconds used when no saved state sets one.
const DefaultSequenceLength = 10.0

type sheetImpl struct {
	mu      *sync.Mutex
	project *projectImpl
	name    string
	doc     *sheetDoc
	order   []string
	objects map[string]*objectImpl
	seq     *sequenceImpl
}

// Sheet groups the objects animated by one sequence.
type Sheet interface {
	// Name returns the sheet name.
	//
	// Returns:
	//   - string: the sheet name
	Name() string

	// Project returns the project that owns the sheet.
	//
	// Returns:
	//   - Project: the owning project
	Project() Project

	// Object declares an animated object. Each name may be declared once per sheet.
	//
	// Parameters:
	//   - name: the object name, matching the saved state
	//   - schema: the object's parameters
	//
	// Returns:
	//   - Object: the object
	//   - error: an error wrapping common.ErrConfiguration for empty or duplicate names or invalid schemas
	Object(name string, schema params.Schema) (Object, error)

	// Objects returns the declared objects in declaration order.
	//
	// Returns:
	//   - []Object: the objects
	Objects() []Object

	// Sequence returns the sheet's playhead.
	//
	// Returns:
	//   - Sequence: the sequence
	Sequence() Sequence

	// ListenerCount returns the total number of value listeners across all objects.
	//
	// Returns:
	//   - int: the listener count
	ListenerCount() int
}

var _ Sheet = &sheetImpl{}

func newSheet(p *projectImpl, name string) *sheetImpl {
	s := &sheetImpl{
		mu:      &sync.Mutex{},
		project: p,
		name:    name,
		objects: make(map[string]*objectImpl),
	}
	s.seq = newSequence(s, DefaultSequenceLength)
	return s
}

func (s *sheetImpl) Name() string {
	return s.name
}

func (s *sheetImpl) Project() Project {
	return s.project
}

func (s *sheetImpl) Object(name string, schema params.Schema) (Object, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: object name is empty", common.ErrConfiguration)
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("object %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[name]; exists {
		return nil, fmt.Errorf("%w: object %q already declared on sheet %q", common.ErrConfiguration, name, s.name)
	}
	o := newObject(s, name, schema)
	if s.doc != nil {
		o.bind(s.doc)
	}
	s.objects[name] = o
	s.order = append(s.order, name)
	return o, nil
}

func (s *sheetImpl) Objects() []Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Object, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.objects[name])
	}
	return out
}

func (s *sheetImpl) Sequence() Sequence {
	return s.seq
}

func (s *sheetImpl) ListenerCount() int {
	n := 0
	for _, o := range s.Objects() {
		n += o.ListenerCount()
	}
	return n
}

// applyState binds the saved sheet state once the project resolves. A nil doc leaves
// objects on their static defaults.
func (s *sheetImpl) applyState(doc *sheetDoc) {
	if doc == nil {
		doc = &sheetDoc{}
	}
	s.mu.Lock()
	s.doc = doc
	objects := make([]*objectImpl, 0, len(s.order))
	for _, name := range s.order {
		objects = append(objects, s.objects[name])
	}
	s.mu.Unlock()

	for _, o := range objects {
		o.bind(doc)
	}
	if doc.Sequence != nil && doc.Sequence.Length > 0 {
		s.seq.setLength(doc.Sequence.Length)
	}
}

// advance samples every object at pos and notifies listeners. Nothing is emitted before
// the project is ready.
func (s *sheetImpl) advance(pos float64) {
	if !s.project.IsReady() {
		return
	}
	s.mu.Lock()
	objects := make([]*objectImpl, 0, len(s.order))
	for _, name := range s.order {
		objects = append(objects, s.objects[name])
	}
	s.mu.Unlock()

	for _, o := range objects {
		o.notify(o.valueAt(pos))
	}
}
