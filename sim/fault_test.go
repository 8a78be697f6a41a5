package sim

import (
	"testing"

	"github.com/Swind/go-region-runner/core"
)

type capturingLogger struct {
	core.NoOpLogger
	errors, warns int
}

func (l *capturingLogger) Error(msg string, fields ...core.Field) { l.errors++ }
func (l *capturingLogger) Warn(msg string, fields ...core.Field)  { l.warns++ }

// TestFaultReporter_RateLimited verifies bursts are suppressed
// Given: A reporter logging to a capturing logger
// When: Far more faults than the burst arrive at once
// Then: Only the burst is logged and the rest are counted
func TestFaultReporter_RateLimited(t *testing.T) {
	// Arrange
	logger := &capturingLogger{}
	r := newFaultReporter(Options{Logger: logger})

	// Act
	for i := range faultBurst + 5 {
		r.Report("main", i, "boom", nil)
	}

	// Assert
	if logger.errors != faultBurst {
		t.Fatalf("logged %d faults, want %d", logger.errors, faultBurst)
	}
	if r.Suppressed() != 5 {
		t.Fatalf("Suppressed() = %d, want 5", r.Suppressed())
	}
}

// TestFaultReporter_Handler verifies a handler replaces logging
func TestFaultReporter_Handler(t *testing.T) {
	logger := &capturingLogger{}
	calls := 0
	r := newFaultReporter(Options{Logger: logger, FaultHandler: func(string, int, any, []byte) { calls++ }})

	r.Report("global", 1, "boom", nil)

	if calls != 1 || logger.errors != 0 {
		t.Fatalf("handler calls=%d logged=%d", calls, logger.errors)
	}
}
