package core

import (
	"context"
	"time"
)

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting task metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods are called on host threads; they should be non-blocking and fast
// to avoid stretching a tick.
type Metrics interface {
	// RecordTaskSubmitted records that the host accepted a task.
	//
	// Parameters:
	// - scope: The scope the task was submitted to
	// - repeating: Whether the task runs at a fixed rate
	RecordTaskSubmitted(scope ScopeKind, repeating bool)

	// RecordTaskRefused records that a submission did not produce a task,
	// either because the entity was already retired or the host refused it.
	RecordTaskRefused(scope ScopeKind)

	// RecordTaskRetired records that a retirement fallback ran.
	RecordTaskRetired(scope ScopeKind)

	// RecordTaskCancelled records the first cancellation of a task.
	RecordTaskCancelled(scope ScopeKind)

	// RecordTaskDuration records how long one execution of caller work took.
	//
	// Parameters:
	// - scope: The scope the work ran in
	// - duration: How long the work took to execute
	RecordTaskDuration(scope ScopeKind, duration time.Duration)

	// RecordTaskPanic records that caller work panicked. The panic keeps
	// propagating to the host after this returns.
	RecordTaskPanic(scope ScopeKind, panicInfo any)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskSubmitted(scope ScopeKind, repeating bool)        {}
func (m *NilMetrics) RecordTaskRefused(scope ScopeKind)                          {}
func (m *NilMetrics) RecordTaskRetired(scope ScopeKind)                          {}
func (m *NilMetrics) RecordTaskCancelled(scope ScopeKind)                        {}
func (m *NilMetrics) RecordTaskDuration(scope ScopeKind, duration time.Duration) {}
func (m *NilMetrics) RecordTaskPanic(scope ScopeKind, panicInfo any)             {}

// =============================================================================
// Interceptor: Hook around every execution of caller work
// =============================================================================

// TaskInfo describes the execution an Interceptor is wrapping.
type TaskInfo struct {
	// ID is zero for fire-and-forget Execute actions, which have no handle.
	ID        TaskID
	Owner     string
	Scope     ScopeKind
	Backend   string
	Repeating bool
}

// Interceptor wraps one execution of caller work. It must call next exactly
// once on the same goroutine. It must not recover panics raised by next, or
// it must re-panic after observing them.
type Interceptor func(ctx context.Context, info TaskInfo, next func(ctx context.Context))

// =============================================================================
// Config
// =============================================================================

// Config holds the handlers shared by every scope scheduler of a runtime.
// All handlers are optional; if not provided, default implementations will be used.
type Config struct {
	// Logger receives diagnostics. Defaults to NoOpLogger.
	Logger Logger

	// Metrics records task events. Defaults to NilMetrics.
	Metrics Metrics

	// Interceptor wraps every execution of caller work. Optional.
	Interceptor Interceptor
}

// DefaultConfig returns a config with default handlers.
func DefaultConfig() *Config {
	return &Config{
		Logger:  NewNoOpLogger(),
		Metrics: &NilMetrics{},
	}
}

// Normalize returns a copy of c with nil handlers replaced by defaults.
// A nil receiver yields DefaultConfig.
func (c *Config) Normalize() *Config {
	if c == nil {
		return DefaultConfig()
	}
	out := *c
	if out.Logger == nil {
		out.Logger = NewNoOpLogger()
	}
	if out.Metrics == nil {
		out.Metrics = &NilMetrics{}
	}
	return &out
}
