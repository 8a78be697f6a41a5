package core

import (
	"context"
	"time"
)

// Work is a unit of work that can observe its own handle and produce a
// result. The result of the most recent execution is available through
// Task.Callback.
type Work func(ctx context.Context, task *Task) any

// Action is side-effecting work with no result.
type Action func(ctx context.Context)

// Do adapts an Action to Work. The produced result is always nil.
func Do(action Action) Work {
	if action == nil {
		return nil
	}
	return func(ctx context.Context, _ *Task) any {
		action(ctx)
		return nil
	}
}

// Func adapts a typed function to Work. Use CallbackAs to read the result
// back with its type.
func Func[T any](fn func(ctx context.Context, task *Task) T) Work {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, task *Task) any {
		return fn(ctx, task)
	}
}

// =============================================================================
// Scope
// =============================================================================

// ScopeKind is the kind of execution context a task is bound to.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeRegion
	ScopeAsync
	ScopeEntity
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeRegion:
		return "region"
	case ScopeAsync:
		return "async"
	case ScopeEntity:
		return "entity"
	default:
		return "unknown"
	}
}

// =============================================================================
// Request: the canonical submission shared by every scope
// =============================================================================

// RequestKind selects how a Request is handed to the host.
type RequestKind int

const (
	// KindNext runs at the next opportunity of the scope's executor.
	KindNext RequestKind = iota
	// KindDelayed runs once after Delay.
	KindDelayed
	// KindFixedRate runs after Delay, then every Period.
	KindFixedRate
)

// Guard is evaluated on the executing thread right before caller work. When
// it returns false the cycle is skipped: no result is stored and the future
// is not completed.
type Guard func(ctx context.Context, task *Task) bool

// Request is the full parameter set of one submission. Scope schedulers
// build it; families translate it into one native scheduling call.
type Request struct {
	Kind    RequestKind
	Work    Work
	Delay   time.Duration
	Period  time.Duration
	Guard   Guard
	Retired func()
}

// IsRepeating reports whether the request asks for a fixed-rate task.
func (r Request) IsRepeating() bool { return r.Kind == KindFixedRate }

// DelayTicks returns Delay in ticks, at least one tick.
func (r Request) DelayTicks() Ticks { return atLeastOneTick(TicksOf(r.Delay)) }

// PeriodTicks returns Period in ticks, at least one tick.
func (r Request) PeriodTicks() Ticks { return atLeastOneTick(TicksOf(r.Period)) }

// =============================================================================
// Context Helper
// =============================================================================

type currentTaskKeyType struct{}

var currentTaskKey currentTaskKeyType

// CurrentTask returns the task whose work is running with ctx, or nil.
func CurrentTask(ctx context.Context) *Task {
	if v := ctx.Value(currentTaskKey); v != nil {
		return v.(*Task)
	}
	return nil
}

func withTask(ctx context.Context, t *Task) context.Context {
	return context.WithValue(ctx, currentTaskKey, t)
}
