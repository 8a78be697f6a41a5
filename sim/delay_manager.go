package sim

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

type delayedTask struct {
	runAt time.Time
	seq   uint64
	task  *task
	index int // for heap interface
}

// delayedTaskHeap implements heap.Interface
type delayedTaskHeap []*delayedTask

func (h delayedTaskHeap) Len() int { return len(h) }
func (h delayedTaskHeap) Less(i, j int) bool {
	if !h[i].runAt.Equal(h[j].runAt) {
		return h[i].runAt.Before(h[j].runAt)
	}
	return h[i].seq < h[j].seq
}
func (h delayedTaskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *delayedTaskHeap) Push(x any) {
	n := len(*h)
	item := x.(*delayedTask)
	item.index = n
	*h = append(*h, item)
}

func (h *delayedTaskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *delayedTaskHeap) Peek() *delayedTask {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// delayManager holds wall-clock delayed tasks and hands each to post when
// it expires.
type delayManager struct {
	pq     delayedTaskHeap
	seq    uint64
	mu     sync.Mutex
	wakeup chan struct{}
	post   func(*task)
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newDelayManager(post func(*task)) *delayManager {
	ctx, cancel := context.WithCancel(context.Background())
	dm := &delayManager{
		pq:     make(delayedTaskHeap, 0),
		wakeup: make(chan struct{}, 1),
		post:   post,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	heap.Init(&dm.pq)
	go dm.loop()
	return dm
}

func (dm *delayManager) Add(t *task, delay time.Duration) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	item := &delayedTask{
		runAt: time.Now().Add(delay),
		seq:   dm.seq,
		task:  t,
	}
	dm.seq++
	heap.Push(&dm.pq, item)

	if item.index == 0 {
		select {
		case dm.wakeup <- struct{}{}:
		default:
		}
	}
}

func (dm *delayManager) loop() {
	defer close(dm.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		// Calculate next run time
		nextRun, ok := dm.calculateNextRun()
		if !ok {
			// No tasks, wait indefinitely
			nextRun = 1000 * time.Hour
		}

		timer.Reset(nextRun)

		select {
		case <-dm.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			dm.processExpiredTasks()
		case <-dm.wakeup:
			// New head task, recalculate
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
	}
}

// calculateNextRun reports how long to wait until the head task expires.
func (dm *delayManager) calculateNextRun() (time.Duration, bool) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	item := dm.pq.Peek()
	if item == nil {
		return 0, false
	}

	wait := time.Until(item.runAt)
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

func (dm *delayManager) processExpiredTasks() {
	dm.mu.Lock()

	now := time.Now()
	// Collect all expired tasks to avoid holding lock while posting
	var expired []*delayedTask

	for dm.pq.Len() > 0 {
		item := dm.pq.Peek()
		if item.runAt.After(now) {
			break
		}
		heap.Pop(&dm.pq)
		expired = append(expired, item)
	}

	dm.mu.Unlock()

	for _, item := range expired {
		dm.post(item.task)
	}
}

// Stop stops the loop and returns the tasks that never expired.
func (dm *delayManager) Stop() []*task {
	dm.cancel()
	<-dm.done

	dm.mu.Lock()
	defer dm.mu.Unlock()
	out := make([]*task, 0, len(dm.pq))
	for _, item := range dm.pq {
		out = append(out, item.task)
	}
	dm.pq = make(delayedTaskHeap, 0)
	return out
}

func (dm *delayManager) Len() int {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return len(dm.pq)
}
