package sim

import (
	"context"
	"sync"
	"testing"
	"time"
)

var testOwner = NewPlugin("test-plugin", "example.com/test")

func noopTask() *task {
	return newTask(testOwner, func(ctx context.Context, _ *task) {})
}

// recorder collects labels from concurrently running tasks.
type recorder struct {
	mu     sync.Mutex
	labels []string
}

func (r *recorder) add(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, label)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.labels...)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.labels)
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func stepN(s interface{ Step() }, n int) {
	for range n {
		s.Step()
	}
}
