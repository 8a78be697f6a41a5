package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/logging"
	"github.com/Swind/go-region-runner/sim"
)

// ParseDurationField parses a Go duration string. An empty string is zero.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with def for zero values.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// Logging returns the logging sinks described by the log section.
func (l LogConfig) Logging() logging.Config {
	file := strings.TrimSpace(l.File)
	return logging.Config{
		Level:   l.Level,
		Console: l.Console || file == "",
		File:    logging.FileConfig{Enabled: file != "", Path: file},
	}
}

// PollEvery returns the snapshot poll interval, five seconds by default.
func (m MetricsConfig) PollEvery() time.Duration {
	d, err := ParseDurationOrDefault("metrics.poll_interval", m.PollInterval, 5*time.Second)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// Options converts the host section into simulated-host options. A tick of
// "0s" selects manual stepping.
func (h HostConfig) Options(logger core.Logger) (sim.Options, error) {
	tick, err := ParseDurationField("host.tick", h.Tick)
	if err != nil {
		return sim.Options{}, err
	}
	return sim.Options{
		Name:            h.Name,
		Tick:            tick,
		RegionShift:     h.RegionShift,
		AsyncWorkers:    h.AsyncWorkers,
		Logger:          logger,
		HistoryCapacity: h.HistoryCapacity,
	}, nil
}
