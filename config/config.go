// Package config loads the YAML configuration of the demo runtime.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	yaml "go.yaml.in/yaml/v3"

	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/sim"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

const (
	ModelLegacy     = "legacy"
	ModelRegionized = "regionized"
)

type Config struct {
	Runtime RuntimeConfig `yaml:"runtime"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Host    HostConfig    `yaml:"host"`
}

// RuntimeConfig names the plugin that owns scheduled tasks.
type RuntimeConfig struct {
	Owner   string   `yaml:"owner"`
	Package string   `yaml:"package"`
	Authors []string `yaml:"authors,omitempty"`

	// RelocationCheck is a pointer so an omitted key keeps the default (on).
	RelocationCheck *bool `yaml:"relocation_check,omitempty"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
	File    string `yaml:"file,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint. Durations are Go duration
// strings.
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Addr         string `yaml:"addr"`
	Namespace    string `yaml:"namespace"`
	PollInterval string `yaml:"poll_interval"`
}

// HostConfig describes the simulated host.
//
// Defaults (when fields are omitted or zero):
//   - model: regionized
//   - tick: "50ms"
//   - region_shift: 3
//   - async_workers: 4
type HostConfig struct {
	Model           string `yaml:"model"`
	Name            string `yaml:"name"`
	Tick            string `yaml:"tick"`
	RegionShift     int    `yaml:"region_shift"`
	AsyncWorkers    int    `yaml:"async_workers"`
	HistoryCapacity int    `yaml:"history_capacity"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{Owner: "regiondemo", Package: "example.com/regiondemo"},
		Log:     LogConfig{Level: "info", Console: true},
		Metrics: MetricsConfig{Addr: ":9090", Namespace: "regionrunner", PollInterval: "5s"},
		Host: HostConfig{
			Model:        ModelRegionized,
			Name:         "sim",
			Tick:         core.TickDuration.String(),
			RegionShift:  sim.DefaultRegionShift,
			AsyncWorkers: sim.DefaultAsyncWorkers,
		},
	}
}

// Load reads and validates a YAML file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yaml decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if strings.TrimSpace(c.Runtime.Owner) == "" {
		add("runtime.owner must be set")
	}
	switch c.Host.Model {
	case ModelLegacy, ModelRegionized:
	default:
		add("host.model must be %q or %q, got %q", ModelLegacy, ModelRegionized, c.Host.Model)
	}
	if _, err := ParseDurationField("host.tick", c.Host.Tick); err != nil {
		add("%v", err)
	}
	if c.Host.RegionShift < 0 || c.Host.RegionShift > 16 {
		add("host.region_shift must be within [0, 16], got %d", c.Host.RegionShift)
	}
	if c.Host.AsyncWorkers < 0 {
		add("host.async_workers must be >= 0, got %d", c.Host.AsyncWorkers)
	}
	if c.Host.HistoryCapacity < 0 {
		add("host.history_capacity must be >= 0, got %d", c.Host.HistoryCapacity)
	}
	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Addr) == "" {
		add("metrics.addr must be set when metrics are enabled")
	}
	if _, err := ParseDurationField("metrics.poll_interval", c.Metrics.PollInterval); err != nil {
		add("%v", err)
	}
	return errors.Join(errs...)
}

// CheckRelocation reports whether the relocation diagnostic should run.
func (r RuntimeConfig) CheckRelocation() bool {
	return r.RelocationCheck == nil || *r.RelocationCheck
}
