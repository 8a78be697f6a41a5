package sim

import "testing"

// TestFIFOQueue_FIFO verifies insertion order
// Given: A queue with three tasks
// When: Tasks are popped
// Then: They come out in insertion order
func TestFIFOQueue_FIFO(t *testing.T) {
	// Arrange
	q := newFIFOQueue()
	tasks := []*task{noopTask(), noopTask(), noopTask()}

	// Act
	for _, tk := range tasks {
		q.Push(tk)
	}

	// Assert
	for i, want := range tasks {
		got, ok := q.Pop()
		if !ok {
			t.Fatalf("Step %d: queue is empty", i)
		}
		if got != want {
			t.Errorf("Step %d: popped task %d, want %d", i, got.id, want.id)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop() on empty queue should report false")
	}
}

// TestFIFOQueue_Compaction verifies memory is released after draining
// Given: A queue that grew past the compaction threshold
// When: It is drained and reused
// Then: Capacity shrinks and the queue stays functional
func TestFIFOQueue_Compaction(t *testing.T) {
	// Arrange
	q := newFIFOQueue()
	for range 200 {
		q.Push(noopTask())
	}

	// Act
	for range 200 {
		q.Pop()
	}
	last := noopTask()
	q.Push(last)

	// Assert
	if c := cap(q.tasks); c > 64 {
		t.Errorf("cap after drain = %d, want <= 64", c)
	}
	if got, ok := q.Pop(); !ok || got != last {
		t.Fatal("queue not functional after compaction")
	}
}

// TestFIFOQueue_Clear verifies Clear returns everything queued
func TestFIFOQueue_Clear(t *testing.T) {
	q := newFIFOQueue()
	q.Push(noopTask())
	q.Push(noopTask())

	if got := q.Clear(); len(got) != 2 {
		t.Fatalf("Clear() returned %d tasks, want 2", len(got))
	}
	if q.Len() != 0 {
		t.Fatalf("Len() after Clear = %d", q.Len())
	}
}
