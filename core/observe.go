package core

import (
	"context"
	"time"
)

// Observe runs fn through the configured interceptor and records its
// duration. A panic in fn is recorded and then keeps propagating; Observe
// never recovers it.
func (c *Config) Observe(ctx context.Context, info TaskInfo, fn func(ctx context.Context)) {
	startedAt := time.Now()
	completed := false

	defer func() {
		if completed {
			c.Metrics.RecordTaskDuration(info.Scope, time.Since(startedAt))
			return
		}
		// recover() would stop the unwind; re-panic with the same value.
		if rec := recover(); rec != nil {
			c.Metrics.RecordTaskPanic(info.Scope, rec)
			panic(rec)
		}
	}()

	if c.Interceptor != nil {
		c.Interceptor(ctx, info, fn)
	} else {
		fn(ctx)
	}
	completed = true
}

// WrapAction returns action decorated with observation, for fire-and-forget
// submissions that have no task handle.
func (c *Config) WrapAction(owner string, scope ScopeKind, backend string, action Action) Action {
	info := TaskInfo{Owner: owner, Scope: scope, Backend: backend}
	return func(ctx context.Context) {
		c.Observe(ctx, info, action)
	}
}
