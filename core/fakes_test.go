package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Swind/go-region-runner/host"
	"github.com/google/uuid"
)

type testPlugin struct{ name string }

func (p testPlugin) Name() string { return p.name }

type fakeNative struct {
	cancels   atomic.Int32
	running   atomic.Bool
	repeating bool
}

func (h *fakeNative) Cancel()           { h.cancels.Add(1) }
func (h *fakeNative) IsCancelled() bool { return h.cancels.Load() > 0 }
func (h *fakeNative) IsRunning() bool   { return h.running.Load() }
func (h *fakeNative) IsRepeating() bool { return h.repeating }

// fakeSubmitter records submissions and lets tests fire them by hand.
type fakeSubmitter struct {
	scope   ScopeKind
	config  *Config
	refuse  bool
	mu      sync.Mutex
	reqs    []Request
	tasks   []*Task
	natives []*fakeNative
	actions []Action
}

func newFakeSubmitter(scope ScopeKind) *fakeSubmitter {
	return &fakeSubmitter{scope: scope, config: DefaultConfig()}
}

func (s *fakeSubmitter) Backend() string  { return "fake." + s.scope.String() }
func (s *fakeSubmitter) Scope() ScopeKind { return s.scope }

func (s *fakeSubmitter) Execute(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
}

func (s *fakeSubmitter) Submit(req Request) *Task {
	task := NewTask(testPlugin{"test"}, s.scope, s.Backend(), req, s.config)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	if s.refuse {
		return task.Accept(nil)
	}
	native := &fakeNative{repeating: req.IsRepeating()}
	s.tasks = append(s.tasks, task)
	s.natives = append(s.natives, native)
	return task.Accept(native)
}

func (s *fakeSubmitter) last() (Request, *Task, *fakeNative) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.tasks) - 1
	return s.reqs[len(s.reqs)-1], s.tasks[i], s.natives[i]
}

// fire runs one cycle of the most recent task, honouring native cancellation
// the way a host would.
func (s *fakeSubmitter) fire() {
	_, task, native := s.last()
	if native.IsCancelled() {
		return
	}
	task.Execute(context.Background(), native)
}

type fakeEntity struct {
	id    uuid.UUID
	valid atomic.Bool
}

func newFakeEntity() *fakeEntity {
	e := &fakeEntity{id: uuid.New()}
	e.valid.Store(true)
	return e
}

func (e *fakeEntity) UniqueID() uuid.UUID            { return e.id }
func (e *fakeEntity) IsValid() bool                  { return e.valid.Load() }
func (e *fakeEntity) Location() host.Location        { return host.Location{} }
func (e *fakeEntity) Teleport(to host.Location) bool { return e.IsValid() }

// fakeEntitySubmitter mirrors a region-parallel entity scheduler: it refuses
// when the entity is gone and calls retired instead of work when the entity
// is gone at run time.
type fakeEntitySubmitter struct {
	*fakeSubmitter
	entity        *fakeEntity
	hostRefuses   bool
	executeQueue  []func()
	retiredByHost atomic.Int32
}

func newFakeEntitySubmitter(e *fakeEntity, config *Config) *fakeEntitySubmitter {
	fs := newFakeSubmitter(ScopeEntity)
	fs.config = config
	return &fakeEntitySubmitter{fakeSubmitter: fs, entity: e}
}

func (s *fakeEntitySubmitter) Entity() host.Entity { return s.entity }

func (s *fakeEntitySubmitter) Execute(action Action, retired func(), delay Ticks) bool {
	if s.hostRefuses {
		return false
	}
	s.executeQueue = append(s.executeQueue, func() {
		if !s.entity.IsValid() {
			s.retiredByHost.Add(1)
			retired()
			return
		}
		action(context.Background())
	})
	return true
}

func (s *fakeEntitySubmitter) Submit(req Request) *Task {
	if s.hostRefuses {
		s.reqs = append(s.reqs, req)
		return nil
	}
	return s.fakeSubmitter.Submit(req)
}

// fireHost runs the most recent task the way the host does: a retired
// entity gets the retired callback instead of the task.
func (s *fakeEntitySubmitter) fireHost() {
	req, task, native := s.last()
	if native.IsCancelled() {
		return
	}
	if !s.entity.IsValid() {
		s.retiredByHost.Add(1)
		req.Retired()
		return
	}
	task.Execute(context.Background(), native)
}

// countingMetrics counts every event.
type countingMetrics struct {
	submitted atomic.Int32
	refused   atomic.Int32
	retired   atomic.Int32
	cancelled atomic.Int32
	durations atomic.Int32
	panics    atomic.Int32
}

func (m *countingMetrics) RecordTaskSubmitted(scope ScopeKind, repeating bool) { m.submitted.Add(1) }
func (m *countingMetrics) RecordTaskRefused(scope ScopeKind)                   { m.refused.Add(1) }
func (m *countingMetrics) RecordTaskRetired(scope ScopeKind)                   { m.retired.Add(1) }
func (m *countingMetrics) RecordTaskCancelled(scope ScopeKind)                 { m.cancelled.Add(1) }
func (m *countingMetrics) RecordTaskDuration(scope ScopeKind, d time.Duration) {
	m.durations.Add(1)
}
func (m *countingMetrics) RecordTaskPanic(scope ScopeKind, panicInfo any) { m.panics.Add(1) }
