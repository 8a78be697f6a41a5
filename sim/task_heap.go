package sim

import "container/heap"

// taskHeap orders tasks by due tick, then by submission sequence so tasks
// due on the same tick run in the order they were scheduled.
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	n := len(*h)
	item := x.(*task)
	item.index = n
	*h = append(*h, item)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *taskHeap) Peek() *task {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// popDue removes every task due at or before tick, in execution order.
func (h *taskHeap) popDue(tick int64) []*task {
	var due []*task
	for h.Len() > 0 && h.Peek().due <= tick {
		due = append(due, heap.Pop(h).(*task))
	}
	return due
}
