// Package config loads the stage configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/bridge"
	"github.com/Carmen-Shannon/oxy-stage/engine/timeline"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Present modes accepted by Renderer.PresentMode.
const (
	PresentModeFifo      = "fifo"
	PresentModeMailbox   = "mailbox"
	PresentModeImmediate = "immediate"
)

// Config is the top-level stage configuration.
type Config struct {
	Window   Window   `yaml:"window"`
	Engine   Engine   `yaml:"engine"`
	Renderer Renderer `yaml:"renderer"`
	Project  Project  `yaml:"project"`
	Playback Playback `yaml:"playback"`
	Assets   Assets   `yaml:"assets"`
}

// Window describes the initial window.
type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Engine holds loop timing and profiling settings.
type Engine struct {
	TickRate         float64 `yaml:"tick_rate"`
	RenderFrameLimit float64 `yaml:"render_frame_limit"`
	Profiling        bool    `yaml:"profiling"`
}

// Renderer holds drawing-buffer settings.
type Renderer struct {
	MaxPixelRatio float32 `yaml:"max_pixel_ratio"`
	MSAA          uint32  `yaml:"msaa"`
	PresentMode   string  `yaml:"present_mode"`
	Shadows       bool    `yaml:"shadows"`
	ShadowMapSize uint32  `yaml:"shadow_map_size"`
}

// Project names the timeline project and where its saved state and assets live.
type Project struct {
	Name          string `yaml:"name"`
	Sheet         string `yaml:"sheet"`
	StatePath     string `yaml:"state_path"`
	AssetsBaseURL string `yaml:"assets_base_url"`
}

// Playback is the repeat policy applied when the timeline becomes ready.
// IterationCount 0 or less plays forever.
type Playback struct {
	IterationCount int     `yaml:"iteration_count"`
	Rate           float64 `yaml:"rate"`
	Direction      string  `yaml:"direction"`
}

// Assets configures the texture loader.
type Assets struct {
	Workers      int   `yaml:"workers"`
	MaxBytes     int64 `yaml:"max_bytes"`
	MaxDimension int   `yaml:"max_dimension"`
}

// Default returns the configuration of the animated scene demo.
func Default() *Config {
	return &Config{
		Window: Window{
			Title:  "oxy-stage",
			Width:  1280,
			Height: 720,
		},
		Engine: Engine{
			TickRate: 60,
		},
		Renderer: Renderer{
			MaxPixelRatio: 2,
			MSAA:          4,
			PresentMode:   PresentModeFifo,
			Shadows:       true,
			ShadowMapSize: 2048,
		},
		Project: Project{
			Name:          "THREE.js x Theatre.js",
			Sheet:         "Animated scene",
			AssetsBaseURL: "theatrejs-assets",
		},
		Playback: Playback{
			Rate:      1,
			Direction: "normal",
		},
		Assets: Assets{
			Workers:      2,
			MaxBytes:     64 << 20,
			MaxDimension: 4096,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result. The path may start with "~".
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - *Config: the merged configuration
//   - error: an error wrapping common.ErrConfiguration
func Load(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("%w: config path %q: %v", common.ErrConfiguration, path, err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("%w: opening config: %v", common.ErrConfiguration, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
//
// Parameters:
//   - r: the YAML source
//
// Returns:
//   - *Config: the merged configuration
//   - error: an error wrapping common.ErrConfiguration
func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading config: %v", common.ErrConfiguration, err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing config: %v", common.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: an encoding error
func (c *Config) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks value ranges and expands "~" in paths.
//
// Returns:
//   - error: an error wrapping common.ErrConfiguration describing the first problem found
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", common.ErrConfiguration, c.Window.Width, c.Window.Height)
	case c.Engine.TickRate < 0:
		return fmt.Errorf("%w: negative tick rate", common.ErrConfiguration)
	case c.Engine.RenderFrameLimit < 0:
		return fmt.Errorf("%w: negative render frame limit", common.ErrConfiguration)
	case c.Renderer.MaxPixelRatio <= 0:
		return fmt.Errorf("%w: max pixel ratio must be positive", common.ErrConfiguration)
	case c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4:
		return fmt.Errorf("%w: msaa must be 1 or 4, got %d", common.ErrConfiguration, c.Renderer.MSAA)
	case c.Renderer.Shadows && c.Renderer.ShadowMapSize == 0:
		return fmt.Errorf("%w: shadow map size must be positive", common.ErrConfiguration)
	case c.Project.Name == "":
		return fmt.Errorf("%w: project name is required", common.ErrConfiguration)
	case c.Project.Sheet == "":
		return fmt.Errorf("%w: sheet name is required", common.ErrConfiguration)
	case c.Playback.Rate < 0:
		return fmt.Errorf("%w: negative playback rate", common.ErrConfiguration)
	case c.Assets.Workers < 1:
		return fmt.Errorf("%w: asset workers must be at least 1", common.ErrConfiguration)
	}

	switch c.Renderer.PresentMode {
	case PresentModeFifo, PresentModeMailbox, PresentModeImmediate:
	default:
		return fmt.Errorf("%w: unknown present mode %q", common.ErrConfiguration, c.Renderer.PresentMode)
	}
	if _, err := timeline.ParseDirection(c.Playback.Direction); err != nil {
		return err
	}

	if c.Project.StatePath != "" {
		p, err := homedir.Expand(c.Project.StatePath)
		if err != nil {
			return fmt.Errorf("%w: state path: %v", common.ErrConfiguration, err)
		}
		c.Project.StatePath = p
	}
	return nil
}

// PlayPolicy converts the playback section into a bridge policy.
//
// Returns:
//   - bridge.PlayPolicy: the policy
//   - error: an error wrapping common.ErrConfiguration for an unknown direction
func (p Playback) PlayPolicy() (bridge.PlayPolicy, error) {
	dir, err := timeline.ParseDirection(p.Direction)
	if err != nil {
		return bridge.PlayPolicy{}, err
	}
	count := p.IterationCount
	if count <= 0 {
		count = timeline.Infinite
	}
	return bridge.PlayPolicy{IterationCount: count, Rate: p.Rate, Direction: dir}, nil
}
