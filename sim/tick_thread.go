package sim

import (
	"container/heap"
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// ErrThreadClosed is returned when scheduling on a stopped thread or pool.
var ErrThreadClosed = errors.New("sim: thread closed")

type threadKeyType struct{}

var threadKey threadKeyType

// CurrentThread returns the tick thread executing the callback that received
// ctx, or nil off the tick threads.
func CurrentThread(ctx context.Context) *TickThread {
	if v := ctx.Value(threadKey); v != nil {
		return v.(*TickThread)
	}
	return nil
}

// TickThread runs scheduled tasks one tick at a time on a single goroutine.
// Tasks due on the same tick run in the order they were scheduled.
//
// Pending tasks live in a heap keyed by due tick. Cancelled tasks are
// dropped lazily when they come due.
type TickThread struct {
	name    string
	tick    time.Duration
	faults  *faultReporter
	history *executionHistory
	tasks   *registry

	// region threads only
	isRegion bool
	key      regionKey

	mu      sync.Mutex
	pending taskHeap
	seq     uint64
	current atomic.Int64

	stepMu sync.Mutex
	runCtx context.Context

	// Lifecycle control
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
	closed  atomic.Bool

	executed atomic.Int64
	panics   atomic.Int64
}

// NewTickThread creates and starts a standalone tick thread. With a zero
// opts.Tick the thread only advances when Step is called.
func NewTickThread(name string, opts Options) *TickThread {
	opts = opts.withDefaults()
	return newTickThread(name, opts, newRegistry(), newFaultReporter(opts))
}

func newTickThread(name string, opts Options, tasks *registry, faults *faultReporter) *TickThread {
	ctx, cancel := context.WithCancel(context.Background())
	th := &TickThread{
		name:    name,
		tick:    opts.Tick,
		faults:  faults,
		history: newExecutionHistory(opts.HistoryCapacity),
		tasks:   tasks,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	th.runCtx = context.WithValue(ctx, threadKey, th)
	heap.Init(&th.pending)

	if th.tick > 0 {
		go th.loop()
	} else {
		close(th.stopped)
	}
	return th
}

// Name returns the name of the thread
func (th *TickThread) Name() string { return th.name }

// CurrentTick returns the number of ticks run so far.
func (th *TickThread) CurrentTick() int64 { return th.current.Load() }

// IsClosed returns true if the thread has been stopped
func (th *TickThread) IsClosed() bool { return th.closed.Load() }

// schedule queues t to run delay ticks from now. A delay below one tick
// means the next tick.
func (th *TickThread) schedule(t *task, delay int64) error {
	if th.closed.Load() {
		return ErrThreadClosed
	}
	if delay < 1 {
		delay = 1
	}

	th.mu.Lock()
	t.due = th.current.Load() + delay
	t.seq = th.seq
	th.seq++
	heap.Push(&th.pending, t)
	th.mu.Unlock()

	th.tasks.add(t)
	return nil
}

// Step runs one tick on the calling goroutine. Threads created with a
// positive tick interval call it from their own loop.
func (th *TickThread) Step() {
	th.stepMu.Lock()
	defer th.stepMu.Unlock()

	if th.closed.Load() {
		return
	}

	th.mu.Lock()
	tick := th.current.Add(1)
	due := th.pending.popDue(tick)
	th.mu.Unlock()

	for _, t := range due {
		th.runTask(tick, t)
	}
}

func (th *TickThread) runTask(tick int64, t *task) {
	if t.isTerminal() {
		th.tasks.remove(t)
		return
	}

	if !th.execute(tick, t) {
		// gated or cancelled; a gate may have moved t to another thread
		if t.isTerminal() {
			th.tasks.remove(t)
		}
		return
	}

	switch {
	case t.rearm():
		if err := th.schedule(t, t.period); err != nil {
			th.tasks.remove(t)
		}
	case t.isTerminal():
		th.tasks.remove(t)
	}
}

func (th *TickThread) execute(tick int64, t *task) bool {
	startedAt := time.Now()
	ran, panicked := false, false

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				ran, panicked = true, true
				th.panics.Add(1)
				th.faults.Report(th.name, t.id, rec, debug.Stack())
			}
		}()
		if t.gate != nil && !t.gate(th.runCtx, t) {
			return
		}
		ran = t.run(th.runCtx)
	}()

	if !ran {
		return false
	}
	th.executed.Add(1)
	finishedAt := time.Now()
	th.history.Add(ExecutionRecord{
		TaskID:     t.id,
		Owner:      ownerName(t),
		Thread:     th.name,
		Tick:       tick,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Duration:   finishedAt.Sub(startedAt),
		Panicked:   panicked,
	})
	return true
}

// loop occupies the thread's dedicated goroutine
func (th *TickThread) loop() {
	defer close(th.stopped)

	ticker := time.NewTicker(th.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			th.Step()
		case <-th.ctx.Done():
			return
		}
	}
}

// Stop stops the thread, waits for the tick in progress and drops every
// pending task. It must not be called from a task running on this thread.
func (th *TickThread) Stop() {
	th.once.Do(func() {
		th.closed.Store(true)
		th.cancel()
		<-th.stopped

		th.stepMu.Lock()
		th.mu.Lock()
		for _, t := range th.pending {
			th.tasks.remove(t)
		}
		th.pending = nil
		th.mu.Unlock()
		th.stepMu.Unlock()
	})
}

// Stats returns a snapshot of the thread.
func (th *TickThread) Stats() ThreadStats {
	th.mu.Lock()
	pending := len(th.pending)
	th.mu.Unlock()

	return ThreadStats{
		Name:     th.name,
		Tick:     th.current.Load(),
		Pending:  pending,
		Executed: th.executed.Load(),
		Panics:   th.panics.Load(),
		Running:  !th.closed.Load(),
	}
}

// RecentExecutions returns up to limit execution records, newest first.
func (th *TickThread) RecentExecutions(limit int) []ExecutionRecord {
	return th.history.Recent(limit)
}
