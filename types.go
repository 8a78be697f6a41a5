package regionrunner

import (
	"context"

	"github.com/Swind/go-region-runner/core"
)

// Re-export commonly used types from core package for convenience.
// This allows users to import only the regionrunner package for most use cases.

// Task is the handle of one submission
type Task = core.Task

// Work is caller work that may produce a result
type Work = core.Work

// Action is side-effecting caller work
type Action = core.Action

// Ticks counts host ticks
type Ticks = core.Ticks

// Model is the host threading model
type Model = core.Model

// ScopeKind is the kind of scope a task is bound to
type ScopeKind = core.ScopeKind

// ScopeScheduler schedules on the global or a region scope
type ScopeScheduler = core.ScopeScheduler

// AsyncScheduler schedules off the tick threads
type AsyncScheduler = core.AsyncScheduler

// EntityScheduler schedules work that follows an entity
type EntityScheduler = core.EntityScheduler

// Future is a single-completion value
type Future[T any] = core.Future[T]

// Logger, Metrics and Interceptor are the pluggable handlers of a runtime
type (
	Logger      = core.Logger
	Metrics     = core.Metrics
	Interceptor = core.Interceptor
	TaskInfo    = core.TaskInfo
)

const (
	ModelLegacy     = core.ModelLegacy
	ModelRegionized = core.ModelRegionized

	TickDuration   = core.TickDuration
	TicksPerSecond = core.TicksPerSecond
)

// Adapters for caller work
var (
	Do          = core.Do
	TicksOf     = core.TicksOf
	CurrentTask = core.CurrentTask
)

// Func adapts a typed function to Work.
func Func[T any](fn func(ctx context.Context, task *Task) T) Work {
	return core.Func(fn)
}

// CallbackAs returns the result of the most recent execution of t as T.
func CallbackAs[T any](t *Task) (T, bool) {
	return core.CallbackAs[T](t)
}
