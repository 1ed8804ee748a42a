// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/user/motionset/pkg/dataset"
	"github.com/user/motionset/pkg/features"
	"github.com/user/motionset/pkg/ports"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MOTIONSET_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config represents the full configuration for motionset.
type Config struct {
	// Corpus
	Root       string         `yaml:"root" env:"ROOT"`
	OutputDir  string         `yaml:"output" env:"OUTPUT"`
	Labels     map[string]int `yaml:"labels" env:"LABELS"`
	Extensions []string       `yaml:"extensions" env:"EXTENSIONS" envSeparator:","`

	// Processing
	Workers    int  `yaml:"workers" env:"WORKERS"`
	TimeoutSec int  `yaml:"timeout_sec" env:"TIMEOUT_SEC"`
	Force      bool `yaml:"force" env:"FORCE"`
	MaxFrames  int  `yaml:"max_frames" env:"MAX_FRAMES"`

	Flow   FlowConfig   `yaml:"flow" envPrefix:"FLOW_"`
	Frames FramesConfig `yaml:"frames" envPrefix:"FRAMES_"`

	// Decoder
	FFmpegPath  string `yaml:"ffmpeg_path" env:"FFMPEG_PATH"`
	FFprobePath string `yaml:"ffprobe_path" env:"FFPROBE_PATH"`

	// Observability
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat   string `yaml:"log_format" env:"LOG_FORMAT"`
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`

	// Debug
	Debug    bool   `yaml:"debug" env:"DEBUG"`
	DebugDir string `yaml:"debug_dir" env:"DEBUG_DIR"`
}

// FlowConfig selects a flow engine and preset and optionally overrides the
// preset's fields. Zero fields keep the preset value.
type FlowConfig struct {
	// Engine is native, farneback or auto.
	Engine     string `yaml:"engine" env:"ENGINE"`
	Preset     string `yaml:"preset" env:"PRESET"`
	Levels     int    `yaml:"levels" env:"LEVELS"`
	WinSize    int    `yaml:"win_size" env:"WIN_SIZE"`
	Iterations int    `yaml:"iterations" env:"ITERATIONS"`
	Downscale  int    `yaml:"downscale" env:"DOWNSCALE"`
	Stride     int    `yaml:"stride" env:"STRIDE"`
}

// FramesConfig controls frame export.
type FramesConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	Width   int  `yaml:"width" env:"WIDTH"`
	Height  int  `yaml:"height" env:"HEIGHT"`
	Quality int  `yaml:"quality" env:"QUALITY"`
	Every   int  `yaml:"every" env:"EVERY"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	d := dataset.DefaultConfig()
	return Config{
		Labels:     d.Labels,
		Extensions: d.Extensions,

		Workers:    0,
		TimeoutSec: int(d.Timeout.Seconds()),

		Flow: FlowConfig{
			Engine: "native",
			Preset: "standard",
		},
		Frames: FramesConfig{
			Width:   d.Frames.Width,
			Height:  d.Frames.Height,
			Quality: d.Frames.Quality,
			Every:   d.Frames.Every,
		},

		LogLevel:  "info",
		LogFormat: "console",

		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
// Labels and extensions in the file replace the defaults rather than
// extending them.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	cfg.Labels = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Labels == nil {
		cfg.Labels = dataset.DefaultLabels()
	}
	return cfg, nil
}

// Load reads path (if not empty) and then applies MOTIONSET_* environment
// overrides from the process environment.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, env.ToMap(os.Environ()))
}

// LoadWithEnv is Load with an explicit environment.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg, environ); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from MOTIONSET_* variables in environ.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the settings shared by every command.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(c.Labels) == 0 {
		add("at least one category label is required")
	}
	names := make([]string, 0, len(c.Labels))
	for name := range c.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if l := c.Labels[name]; l != 0 && l != 1 {
			add("label of %q must be 0 or 1, got %d", name, l)
		}
	}
	if len(c.Extensions) == 0 {
		add("at least one video extension is required")
	}
	if c.Workers < 0 {
		add("workers must not be negative")
	}
	if c.TimeoutSec < 0 {
		add("timeout_sec must not be negative")
	}
	if c.MaxFrames < 0 {
		add("max_frames must not be negative")
	}
	if _, err := c.FlowParams(); err != nil {
		add("%v", err)
	}
	switch c.Flow.Engine {
	case "", "native", "farneback", "auto":
	default:
		add("flow.engine must be native, farneback or auto, got %q", c.Flow.Engine)
	}
	if c.Frames.Enabled {
		if c.Frames.Width <= 0 || c.Frames.Height <= 0 {
			add("frame size must be positive, got %dx%d", c.Frames.Width, c.Frames.Height)
		}
		if c.Frames.Quality < 1 || c.Frames.Quality > 100 {
			add("frame quality must be within 1-100, got %d", c.Frames.Quality)
		}
		if c.Frames.Every < 1 {
			add("frames.every must be at least 1")
		}
	}
	if _, err := ports.ParseLogLevel(c.LogLevel); err != nil {
		add("%v", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		add("log_format must be console or json, got %q", c.LogFormat)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateBuild additionally checks the settings a dataset build needs.
func (c Config) ValidateBuild() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Root == "" {
		return fmt.Errorf("%w: root is required", ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output is required", ErrInvalidConfig)
	}
	return nil
}

// FlowParams resolves the flow preset and applies field overrides.
func (c Config) FlowParams() (features.FlowParams, error) {
	preset := c.Flow.Preset
	if preset == "" {
		preset = "standard"
	}
	p, err := features.FlowPreset(preset)
	if err != nil {
		return p, err
	}
	if c.Flow.Levels > 0 {
		p.Levels = c.Flow.Levels
	}
	if c.Flow.WinSize > 0 {
		p.WinSize = c.Flow.WinSize
	}
	if c.Flow.Iterations > 0 {
		p.Iterations = c.Flow.Iterations
	}
	if c.Flow.Downscale > 0 {
		p.Downscale = c.Flow.Downscale
	}
	if c.Flow.Stride > 0 {
		p.Stride = c.Flow.Stride
	}
	return p, nil
}

// ExtractOptions returns the options of the fused extraction pass.
func (c Config) ExtractOptions() features.Options {
	flow, err := c.FlowParams()
	if err != nil {
		flow = features.DefaultFlowParams()
	}
	return features.Options{Flow: flow, MaxFrames: c.MaxFrames}
}

// Timeout returns the per-video timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// ToBuilderConfig converts Config to dataset.Config.
func (c Config) ToBuilderConfig() dataset.Config {
	labels := make(map[string]int, len(c.Labels))
	for k, v := range c.Labels {
		labels[k] = v
	}
	return dataset.Config{
		Root:       c.Root,
		OutputDir:  c.OutputDir,
		Labels:     labels,
		Extensions: append([]string(nil), c.Extensions...),
		Schema:     features.Default,
		Workers:    c.Workers,
		Timeout:    c.Timeout(),
		Force:      c.Force,
		FlowPreset: c.Flow.Preset,
		FlowEngine: c.Flow.Engine,
		Frames: dataset.FrameOptions{
			Enabled: c.Frames.Enabled,
			Width:   c.Frames.Width,
			Height:  c.Frames.Height,
			Quality: c.Frames.Quality,
			Every:   c.Frames.Every,
		},
	}
}
