package sim

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// minAsyncPeriod keeps a zero period from spinning a worker.
const minAsyncPeriod = time.Millisecond

// AsyncPool runs tasks on a fixed set of worker goroutines in wall-clock
// time, off the tick threads. Delayed and fixed-rate tasks wait in a
// delay heap and are queued FIFO when they expire.
type AsyncPool struct {
	id      string
	workers int
	queue   *fifoQueue
	signal  chan struct{}
	delays  *delayManager
	tasks   *registry
	faults  *faultReporter
	history *executionHistory

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool

	queued   atomic.Int32 // Waiting in queue
	active   atomic.Int32 // Executing in worker
	executed atomic.Int64
	panics   atomic.Int64
}

// NewAsyncPool creates and starts a standalone pool.
func NewAsyncPool(id string, opts Options) *AsyncPool {
	opts = opts.withDefaults()
	return newAsyncPool(id, opts, newRegistry(), newFaultReporter(opts))
}

func newAsyncPool(id string, opts Options, tasks *registry, faults *faultReporter) *AsyncPool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &AsyncPool{
		id:      id,
		workers: opts.AsyncWorkers,
		queue:   newFIFOQueue(),
		signal:  make(chan struct{}, opts.AsyncWorkers*2),
		tasks:   tasks,
		faults:  faults,
		history: newExecutionHistory(opts.HistoryCapacity),
		ctx:     ctx,
		cancel:  cancel,
	}
	p.delays = newDelayManager(p.post)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.workerLoop()
	}
	return p
}

// ID returns the ID of the pool
func (p *AsyncPool) ID() string { return p.id }

// WorkerCount returns the number of workers
func (p *AsyncPool) WorkerCount() int { return p.workers }

// submit queues t after delay. A non-positive delay queues it immediately.
func (p *AsyncPool) submit(t *task, delay time.Duration) error {
	if p.closed.Load() {
		return ErrThreadClosed
	}
	p.tasks.add(t)
	if delay <= 0 {
		p.post(t)
		return nil
	}
	p.delays.Add(t, delay)
	return nil
}

func (p *AsyncPool) post(t *task) {
	if p.closed.Load() {
		p.tasks.remove(t)
		return
	}
	p.queue.Push(t)
	p.queued.Add(1)

	select {
	case p.signal <- struct{}{}:
	default:
		// Signal channel full, but task is already queued
	}
}

func (p *AsyncPool) getWork() (*task, bool) {
	for {
		if t, ok := p.queue.Pop(); ok {
			p.queued.Add(-1)
			return t, true
		}

		select {
		case <-p.signal:
			continue
		case <-p.ctx.Done():
			return nil, false
		}
	}
}

// workerLoop is the main loop for each worker
func (p *AsyncPool) workerLoop() {
	defer p.wg.Done()

	for {
		t, ok := p.getWork()
		if !ok {
			return
		}

		p.active.Add(1)
		ran := p.execute(t)
		p.active.Add(-1)

		switch {
		case ran && t.rearm():
			if p.closed.Load() {
				p.tasks.remove(t)
				continue
			}
			p.delays.Add(t, max(t.every, minAsyncPeriod))
		case t.isTerminal():
			p.tasks.remove(t)
		}
	}
}

func (p *AsyncPool) execute(t *task) bool {
	startedAt := time.Now()
	ran, panicked := false, false

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				ran, panicked = true, true
				p.panics.Add(1)
				p.faults.Report(p.id, t.id, rec, debug.Stack())
			}
		}()
		ran = t.run(p.ctx)
	}()

	if !ran {
		return false
	}
	p.executed.Add(1)
	finishedAt := time.Now()
	p.history.Add(ExecutionRecord{
		TaskID:     t.id,
		Owner:      ownerName(t),
		Thread:     p.id,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Duration:   finishedAt.Sub(startedAt),
		Panicked:   panicked,
	})
	return true
}

// Stop stops the pool, waits for running tasks and drops queued and delayed
// tasks.
func (p *AsyncPool) Stop() {
	p.once.Do(func() {
		p.closed.Store(true)
		dropped := p.delays.Stop()
		p.cancel()
		p.wg.Wait()

		dropped = append(dropped, p.queue.Clear()...)
		p.queued.Store(0)
		for _, t := range dropped {
			p.tasks.remove(t)
		}
	})
}

// IsRunning returns whether the pool accepts tasks
func (p *AsyncPool) IsRunning() bool { return !p.closed.Load() }

// Stats returns a snapshot of the pool.
func (p *AsyncPool) Stats() PoolStats {
	return PoolStats{
		ID:       p.id,
		Workers:  p.workers,
		Queued:   int(p.queued.Load()),
		Active:   int(p.active.Load()),
		Delayed:  p.delays.Len(),
		Executed: p.executed.Load(),
		Panics:   p.panics.Load(),
		Running:  !p.closed.Load(),
	}
}

// RecentExecutions returns up to limit execution records, newest first.
func (p *AsyncPool) RecentExecutions(limit int) []ExecutionRecord {
	return p.history.Recent(limit)
}
