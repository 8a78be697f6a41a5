package sim

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Swind/go-region-runner/host"
)

var nextTaskID atomic.Int64

// task is the simulated host's scheduled task. It implements
// host.ScheduledTask; legacyTask adapts it to host.LegacyTask.
type task struct {
	id        int
	owner     host.Plugin
	fn        func(ctx context.Context, t *task)
	repeating bool
	sync      bool

	// Tick threads use period; the async pool uses every.
	period int64
	every  time.Duration

	state atomic.Int32

	// gate runs on the executing thread before each cycle. Returning false
	// skips the cycle without touching the task state.
	gate func(ctx context.Context, t *task) bool

	// heap bookkeeping, guarded by the owning thread's lock
	due   int64
	seq   uint64
	index int
}

func newTask(owner host.Plugin, fn func(ctx context.Context, t *task)) *task {
	return &task{
		id:    int(nextTaskID.Add(1)),
		owner: owner,
		fn:    fn,
		index: -1,
	}
}

func (t *task) Owner() host.Plugin { return t.owner }
func (t *task) IsRepeating() bool  { return t.repeating }

func (t *task) ExecutionState() host.ExecutionState {
	return host.ExecutionState(t.state.Load())
}

func (t *task) IsCancelled() bool {
	s := t.ExecutionState()
	return s == host.StateCancelled || s == host.StateCancelledRunning
}

func (t *task) Cancel() host.CancelledState {
	for {
		s := t.ExecutionState()
		switch s {
		case host.StateIdle:
			if t.cas(s, host.StateCancelled) {
				return host.CancelledByCaller
			}
		case host.StateRunning:
			if !t.repeating {
				return host.StillRunning
			}
			if t.cas(s, host.StateCancelledRunning) {
				return host.NextRunsCancelled
			}
		case host.StateCancelledRunning:
			return host.NextRunsCancelledAlready
		case host.StateFinished:
			return host.AlreadyExecuted
		default:
			return host.CancelledAlready
		}
	}
}

func (t *task) isRunning() bool {
	s := t.ExecutionState()
	return s == host.StateRunning || s == host.StateCancelledRunning
}

func (t *task) cas(from, to host.ExecutionState) bool {
	return t.state.CompareAndSwap(int32(from), int32(to))
}

// run executes one cycle unless the task was cancelled, and reports whether
// it started. A panic in fn still leaves the task in a consistent state.
func (t *task) run(ctx context.Context) bool {
	if !t.cas(host.StateIdle, host.StateRunning) {
		return false
	}
	defer func() {
		if t.repeating {
			if !t.cas(host.StateRunning, host.StateIdle) {
				t.cas(host.StateCancelledRunning, host.StateCancelled)
			}
			return
		}
		t.cas(host.StateRunning, host.StateFinished)
	}()
	t.fn(ctx, t)
	return true
}

// rearm reports whether a repeating task should be scheduled again.
func (t *task) rearm() bool {
	return t.repeating && t.ExecutionState() == host.StateIdle
}

// retire moves an idle task to cancelled without running it. It reports
// whether this call did so.
func (t *task) retire() bool {
	return t.cas(host.StateIdle, host.StateCancelled)
}

func (t *task) isTerminal() bool {
	s := t.ExecutionState()
	return s == host.StateFinished || s == host.StateCancelled
}

// legacyTask is the host.LegacyTask view of a task.
type legacyTask struct {
	*task
}

func (t legacyTask) TaskID() int  { return t.id }
func (t legacyTask) IsSync() bool { return t.sync }
func (t legacyTask) Cancel()      { t.task.Cancel() }
