package sim

import (
	"sync"

	"github.com/Swind/go-region-runner/host"
)

// registry tracks live tasks for owner-wide cancellation and id lookups.
type registry struct {
	mu    sync.Mutex
	tasks map[int]*task
}

func newRegistry() *registry {
	return &registry{tasks: make(map[int]*task)}
}

func (r *registry) add(t *task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.id] = t
}

func (r *registry) remove(t *task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, t.id)
}

func (r *registry) get(id int) (*task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	return t, ok
}

// cancelOwner cancels every live task scheduled by owner.
func (r *registry) cancelOwner(owner host.Plugin) int {
	r.mu.Lock()
	var matched []*task
	for _, t := range r.tasks {
		if t.owner == owner {
			matched = append(matched, t)
		}
	}
	r.mu.Unlock()

	for _, t := range matched {
		t.Cancel()
	}
	return len(matched)
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}
