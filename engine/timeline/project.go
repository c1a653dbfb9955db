// Package timeline is a keyframe animation engine that plays back saved project documents.
//
// A Project owns named Sheets. Each Sheet has one Sequence (a playhead over a fixed length
// in seconds) and any number of Objects, each described by a params.Schema. When the
// sequence advances, every Object's values are sampled at the playhead from its keyframed
// tracks, static overrides and schema defaults, and delivered to its listeners as an
// immutable params.Snapshot.
package timeline

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/params"
)

// Assets configures where project assets are served from.
type Assets struct {
	// BaseURL is prefixed to asset IDs: a directory path, a file:// URL or an http(s):// URL.
	BaseURL string
}

// ProjectConfig configures a Project.
type ProjectConfig struct {
	// State is a previously saved project document. Nil starts from schema defaults.
	State ProjectState
	// Assets configures asset resolution.
	Assets Assets
}

type projectImpl struct {
	mu        *sync.RWMutex
	name      string
	cfg       ProjectConfig
	logger    *slog.Logger
	ready     chan struct{}
	readyGate <-chan struct{}
	resolved  bool
	err       error
	doc       *stateDoc
	sheets    map[string]*sheetImpl
}

// Project is the root of a timeline: a named set of sheets plus the saved state they play back.
//
// The saved state is parsed asynchronously after construction. Ready is closed once that
// completes, successfully or not; Err reports the outcome. Sequences refuse to play before
// the project is ready.
type Project interface {
	// Name returns the project identifier.
	//
	// Returns:
	//   - string: the project name
	Name() string

	// Ready returns a channel that is closed once the saved state has been processed.
	//
	// Returns:
	//   - <-chan struct{}: the readiness channel
	Ready() <-chan struct{}

	// IsReady reports whether the project resolved without error.
	//
	// Returns:
	//   - bool: true once ready and error-free
	IsReady() bool

	// Err returns the error the project resolved with, or nil (also nil while pending).
	//
	// Returns:
	//   - error: the resolution error
	Err() error

	// Sheet returns the named sheet, creating it on first use.
	//
	// Parameters:
	//   - name: the sheet name
	//
	// Returns:
	//   - Sheet: the sheet
	Sheet(name string) Sheet

	// Assets returns the asset configuration.
	//
	// Returns:
	//   - Assets: the asset configuration
	Assets() Assets

	// AssetURL resolves an asset reference against the asset base URL.
	//
	// Parameters:
	//   - ref: the asset reference
	//
	// Returns:
	//   - string: the asset location
	//   - error: an error wrapping common.ErrAssetResolution for empty or escaping IDs
	AssetURL(ref params.AssetRef) (string, error)
}

var _ Project = &projectImpl{}

// NewProject creates a Project and starts resolving its saved state in the background.
//
// Parameters:
//   - name: the project identifier; empty names resolve with common.ErrConfiguration
//   - cfg: the project configuration
//   - options: variadic list of ProjectBuilderOption functions to configure the project
//
// Returns:
//   - Project: the new project
func NewProject(name string, cfg ProjectConfig, options ...ProjectBuilderOption) Project {
	p := &projectImpl{
		mu:     &sync.RWMutex{},
		name:   name,
		cfg:    cfg,
		logger: slog.Default(),
		ready:  make(chan struct{}),
		sheets: make(map[string]*sheetImpl),
	}
	for _, opt := range options {
		opt(p)
	}
	go p.resolve()
	return p
}

func (p *projectImpl) resolve() {
	if p.readyGate != nil {
		<-p.readyGate
	}

	var doc *stateDoc
	var err error
	if p.name == "" {
		err = fmt.Errorf("%w: project name is empty", common.ErrConfiguration)
	} else {
		doc, err = parseState(p.cfg.State)
	}

	p.mu.Lock()
	p.resolved = true
	p.err = err
	p.doc = doc
	sheets := make([]*sheetImpl, 0, len(p.sheets))
	for _, s := range p.sheets {
		sheets = append(sheets, s)
	}
	p.mu.Unlock()

	for _, s := range sheets {
		s.applyState(p.sheetDoc(s.name))
	}

	if err != nil {
		p.logger.Error("timeline project failed to load", "project", p.name, "error", err)
	} else {
		p.logger.Info("timeline project ready", "project", p.name, "sheets", len(doc.SheetsByID), "version", doc.DefinitionVersion)
	}
	close(p.ready)
}

func (p *projectImpl) Name() string {
	return p.name
}

func (p *projectImpl) Ready() <-chan struct{} {
	return p.ready
}

func (p *projectImpl) IsReady() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resolved && p.err == nil
}

func (p *projectImpl) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

func (p *projectImpl) Sheet(name string) Sheet {
	p.mu.Lock()
	s, ok := p.sheets[name]
	if !ok {
		s = newSheet(p, name)
		p.sheets[name] = s
	}
	resolved := p.resolved && p.err == nil
	p.mu.Unlock()

	if !ok && resolved {
		s.applyState(p.sheetDoc(name))
	}
	return s
}

func (p *projectImpl) Assets() Assets {
	return p.cfg.Assets
}

func (p *projectImpl) AssetURL(ref params.AssetRef) (string, error) {
	id := strings.TrimLeft(ref.ID, "/")
	if id == "" {
		return "", fmt.Errorf("%w: empty asset id", common.ErrAssetResolution)
	}
	for _, seg := range strings.Split(id, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: asset id %q escapes the asset base", common.ErrAssetResolution, ref.ID)
		}
	}
	base := strings.TrimRight(p.cfg.Assets.BaseURL, "/")
	if base == "" {
		return id, nil
	}
	return base + "/" + id, nil
}

// sheetDoc returns the saved state for a sheet, or nil.
func (p *projectImpl) sheetDoc(name string) *sheetDoc {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.doc == nil {
		return nil
	}
	doc, ok := p.doc.SheetsByID[name]
	if !ok {
		return nil
	}
	return &doc
}
