package core

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Swind/go-region-runner/host"
)

// NativeHandle is the host's own handle for a scheduled task.
type NativeHandle interface {
	Cancel()
	IsCancelled() bool
	IsRunning() bool
	IsRepeating() bool
}

type nativeCell struct {
	handle NativeHandle
}

// Task is the uniform handle returned by every scope scheduler, whatever
// the active model.
//
// The native handle is published once, by whichever comes first: the
// submitting goroutine after the host accepts, or the first execution.
type Task struct {
	id        TaskID
	owner     host.Plugin
	scope     ScopeKind
	backend   string
	repeating bool
	work      Work
	guard     Guard
	config    *Config

	native          atomic.Pointer[nativeCell]
	cancelRequested atomic.Bool

	mu       sync.Mutex
	callback any
	runs     int64

	future *Future[*Task]
}

// NewTask creates the handle for a submission. Families call it before
// handing the request to the host.
func NewTask(owner host.Plugin, scope ScopeKind, backend string, req Request, config *Config) *Task {
	if req.Work == nil {
		panic("core: nil work")
	}
	return &Task{
		id:        GenerateTaskID(),
		owner:     owner,
		scope:     scope,
		backend:   backend,
		repeating: req.IsRepeating(),
		work:      req.Work,
		guard:     req.Guard,
		config:    config.Normalize(),
		future:    NewFuture[*Task](),
	}
}

func (t *Task) ID() TaskID             { return t.id }
func (t *Task) Owner() host.Plugin     { return t.owner }
func (t *Task) Scope() ScopeKind       { return t.scope }
func (t *Task) Backend() string        { return t.backend }
func (t *Task) Future() *Future[*Task] { return t.future }

// Bind publishes the native handle. Only the first non-nil handle is kept.
// A cancel requested before binding is forwarded to the handle.
func (t *Task) Bind(handle NativeHandle) {
	if handle == nil {
		return
	}
	if !t.native.CompareAndSwap(nil, &nativeCell{handle: handle}) {
		return
	}
	if t.cancelRequested.Load() {
		handle.Cancel()
	}
}

// Accept binds the handle returned by the host and records the submission.
// A nil handle means the host refused; Accept then returns nil.
func (t *Task) Accept(handle NativeHandle) *Task {
	if handle == nil {
		t.config.Metrics.RecordTaskRefused(t.scope)
		return nil
	}
	t.Bind(handle)
	t.config.Metrics.RecordTaskSubmitted(t.scope, t.repeating)
	return t
}

// Execute runs one cycle. Hosts whose callbacks carry a native handle pass
// it; others pass nil. Nothing runs once a cancel has been requested or the
// guard refuses the cycle.
func (t *Task) Execute(ctx context.Context, handle NativeHandle) {
	t.Bind(handle)
	if t.cancelRequested.Load() {
		return
	}
	if t.guard != nil && !t.guard(ctx, t) {
		return
	}

	info := TaskInfo{
		ID:        t.id,
		Owner:     ownerName(t.owner),
		Scope:     t.scope,
		Backend:   t.backend,
		Repeating: t.repeating,
	}
	t.config.Observe(ctx, info, func(ctx context.Context) {
		result := t.work(withTask(ctx, t), t)

		t.mu.Lock()
		t.callback = result
		t.runs++
		t.mu.Unlock()

		t.future.Complete(t)
	})
}

// Cancel stops future executions. Before the native handle is bound the
// request is remembered and forwarded on bind. Calling it again is a no-op.
func (t *Task) Cancel() {
	if t.cancelRequested.CompareAndSwap(false, true) {
		t.config.Metrics.RecordTaskCancelled(t.scope)
	}
	if cell := t.native.Load(); cell != nil {
		cell.handle.Cancel()
	}
}

// IsCancelled reports the native cancelled state, or whether a cancel is
// pending when no native handle is bound yet.
func (t *Task) IsCancelled() bool {
	if cell := t.native.Load(); cell != nil {
		return cell.handle.IsCancelled()
	}
	return t.cancelRequested.Load()
}

// IsRunning reports whether the host is currently executing the task.
func (t *Task) IsRunning() bool {
	if cell := t.native.Load(); cell != nil {
		return cell.handle.IsRunning()
	}
	return false
}

// IsRepeating reports whether the task runs at a fixed rate.
func (t *Task) IsRepeating() bool {
	if cell := t.native.Load(); cell != nil {
		return cell.handle.IsRepeating()
	}
	return t.repeating
}

// Callback returns the result of the most recent execution, or nil.
func (t *Task) Callback() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.callback
}

// Executions returns how many times caller work has completed.
func (t *Task) Executions() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}

// CallbackAs returns the most recent result converted to T. It reports false
// before the first execution or when the result has another type.
func CallbackAs[T any](t *Task) (T, bool) {
	v, ok := t.Callback().(T)
	return v, ok
}

func ownerName(p host.Plugin) string {
	if p == nil {
		return ""
	}
	return p.Name()
}
