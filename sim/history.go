package sim

import (
	"sync"
	"time"
)

// ExecutionRecord captures one completed task execution.
type ExecutionRecord struct {
	TaskID     int
	Owner      string
	Thread     string
	Tick       int64
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Panicked   bool
}

type executionHistory struct {
	mu    sync.Mutex
	items []ExecutionRecord
	head  int
	count int
}

func newExecutionHistory(capacity int) *executionHistory {
	if capacity < 1 {
		capacity = defaultHistoryCapacity
	}
	return &executionHistory{items: make([]ExecutionRecord, capacity)}
}

func (h *executionHistory) Add(record ExecutionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit records, newest first. A non-positive limit
// returns everything retained.
func (h *executionHistory) Recent(limit int) []ExecutionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}

	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]ExecutionRecord, 0, limit)
	for i := range limit {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

func ownerName(t *task) string {
	if t.owner == nil {
		return ""
	}
	return t.owner.Name()
}
