package sim

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Swind/go-region-runner/host"
)

type regionKey struct {
	world string
	x, z  int
}

// RegionizedServer partitions every world into square regions of
// 2^RegionShift chunks, each ticked by its own TickThread. Region threads
// are created on first use.
type RegionizedServer struct {
	opts   Options
	faults *faultReporter

	global      *TickThread
	globalTasks *registry
	pool        *AsyncPool
	asyncTasks  *registry
	regionTasks *registry

	mu      sync.Mutex
	regions map[regionKey]*TickThread
	closed  bool
}

// NewRegionizedServer creates and starts a region-parallel server.
func NewRegionizedServer(opts Options) *RegionizedServer {
	opts = opts.withDefaults()
	faults := newFaultReporter(opts)

	s := &RegionizedServer{
		opts:        opts,
		faults:      faults,
		globalTasks: newRegistry(),
		asyncTasks:  newRegistry(),
		regionTasks: newRegistry(),
		regions:     make(map[regionKey]*TickThread),
	}
	s.global = newTickThread("global", opts, s.globalTasks, faults)
	s.pool = newAsyncPool("async", opts, s.asyncTasks, faults)
	return s
}

func (s *RegionizedServer) Name() string    { return s.opts.Name }
func (s *RegionizedServer) Version() string { return "sim-regionized" }

func (s *RegionizedServer) keyOf(world host.World, chunkX, chunkZ int) regionKey {
	if world == nil {
		panic("sim: nil world")
	}
	return regionKey{
		world: world.Name(),
		x:     chunkX >> s.opts.RegionShift,
		z:     chunkZ >> s.opts.RegionShift,
	}
}

// region returns the thread owning the chunk, creating it if needed.
func (s *RegionizedServer) region(world host.World, chunkX, chunkZ int) (*TickThread, error) {
	key := s.keyOf(world, chunkX, chunkZ)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrThreadClosed
	}
	if th, ok := s.regions[key]; ok {
		return th, nil
	}
	name := fmt.Sprintf("region[%s %d,%d]", key.world, key.x, key.z)
	th := newTickThread(name, s.opts, s.regionTasks, s.faults)
	th.isRegion = true
	th.key = key
	s.regions[key] = th
	return th, nil
}

// Region returns the thread owning the chunk if it exists.
func (s *RegionizedServer) Region(world host.World, chunkX, chunkZ int) (*TickThread, bool) {
	key := s.keyOf(world, chunkX, chunkZ)
	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.regions[key]
	return th, ok
}

// Global returns the global region thread.
func (s *RegionizedServer) Global() *TickThread { return s.global }

// Async returns the async pool.
func (s *RegionizedServer) Async() *AsyncPool { return s.pool }

func (s *RegionizedServer) regionThreads() []*TickThread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*TickThread, 0, len(s.regions))
	for _, th := range s.regions {
		out = append(out, th)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Step runs one tick on the global thread and then on every region thread.
func (s *RegionizedServer) Step() {
	s.global.Step()
	for _, th := range s.regionThreads() {
		th.Step()
	}
}

// Stop stops every thread and the pool.
func (s *RegionizedServer) Stop() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.global.Stop()
	for _, th := range s.regionThreads() {
		th.Stop()
	}
	s.pool.Stop()
}

func (s *RegionizedServer) ThreadStats() []ThreadStats {
	out := []ThreadStats{s.global.Stats()}
	for _, th := range s.regionThreads() {
		out = append(out, th.Stats())
	}
	return out
}

func (s *RegionizedServer) PoolStats() PoolStats { return s.pool.Stats() }

// =============================================================================
// Ownership
// =============================================================================

func (s *RegionizedServer) IsOwnedByCurrentRegion(ctx context.Context, loc host.Location) bool {
	return s.IsChunkOwnedByCurrentRegion(ctx, loc.World, loc.ChunkX(), loc.ChunkZ())
}

func (s *RegionizedServer) IsOwnedByCurrentRegionRadius(ctx context.Context, loc host.Location, squareRadiusChunks int) bool {
	return s.IsChunkOwnedByCurrentRegionRadius(ctx, loc.World, loc.ChunkX(), loc.ChunkZ(), squareRadiusChunks)
}

func (s *RegionizedServer) IsChunkOwnedByCurrentRegion(ctx context.Context, world host.World, chunkX, chunkZ int) bool {
	return s.IsChunkOwnedByCurrentRegionRadius(ctx, world, chunkX, chunkZ, 0)
}

func (s *RegionizedServer) IsChunkOwnedByCurrentRegionRadius(ctx context.Context, world host.World, chunkX, chunkZ, squareRadiusChunks int) bool {
	cur := CurrentThread(ctx)
	if cur == nil || !cur.isRegion {
		return false
	}
	r := max(squareRadiusChunks, 0)
	for x := chunkX - r; x <= chunkX+r; x++ {
		for z := chunkZ - r; z <= chunkZ+r; z++ {
			if s.keyOf(world, x, z) != cur.key {
				return false
			}
		}
	}
	return true
}

func (s *RegionizedServer) IsEntityOwnedByCurrentRegion(ctx context.Context, e host.Entity) bool {
	return s.IsOwnedByCurrentRegion(ctx, e.Location())
}

// =============================================================================
// Schedulers
// =============================================================================

func (s *RegionizedServer) GlobalRegionScheduler() host.GlobalRegionScheduler {
	return globalRegionScheduler{server: s}
}

func (s *RegionizedServer) RegionScheduler() host.RegionScheduler {
	return regionScheduler{server: s}
}

func (s *RegionizedServer) AsyncScheduler() host.AsyncScheduler {
	return asyncScheduler{server: s}
}

func (s *RegionizedServer) EntityScheduler(e host.Entity) host.EntityScheduler {
	return entityScheduler{server: s, entity: e}
}

// TeleportAsync teleports e on the thread that owns it.
func (s *RegionizedServer) TeleportAsync(e host.Entity, to host.Location, done func(ok bool)) {
	ok := s.EntityScheduler(e).Execute(nil, func(ctx context.Context) {
		done(e.Teleport(to))
	}, func() {
		done(false)
	}, 1)
	if !ok {
		done(false)
	}
}

func taskFunc(fn host.TaskFunc) func(ctx context.Context, t *task) {
	return func(ctx context.Context, t *task) { fn(ctx, t) }
}

func scheduleOn(th *TickThread, t *task, delay int64) host.ScheduledTask {
	if err := th.schedule(t, delay); err != nil {
		return nil
	}
	return t
}

type globalRegionScheduler struct {
	server *RegionizedServer
}

func (g globalRegionScheduler) Execute(owner host.Plugin, fn func(ctx context.Context)) {
	g.Run(owner, func(ctx context.Context, _ host.ScheduledTask) { fn(ctx) })
}

func (g globalRegionScheduler) Run(owner host.Plugin, fn host.TaskFunc) host.ScheduledTask {
	return g.RunDelayed(owner, fn, 1)
}

func (g globalRegionScheduler) RunDelayed(owner host.Plugin, fn host.TaskFunc, delay int64) host.ScheduledTask {
	checkDelay(delay)
	return scheduleOn(g.server.global, newTask(owner, taskFunc(fn)), delay)
}

func (g globalRegionScheduler) RunAtFixedRate(owner host.Plugin, fn host.TaskFunc, delay, period int64) host.ScheduledTask {
	checkDelay(delay)
	checkPeriod(period)
	t := newTask(owner, taskFunc(fn))
	t.repeating, t.period = true, period
	return scheduleOn(g.server.global, t, delay)
}

func (g globalRegionScheduler) CancelTasks(owner host.Plugin) {
	g.server.globalTasks.cancelOwner(owner)
}

type regionScheduler struct {
	server *RegionizedServer
}

func (r regionScheduler) Execute(owner host.Plugin, world host.World, chunkX, chunkZ int, fn func(ctx context.Context)) {
	r.Run(owner, world, chunkX, chunkZ, func(ctx context.Context, _ host.ScheduledTask) { fn(ctx) })
}

func (r regionScheduler) Run(owner host.Plugin, world host.World, chunkX, chunkZ int, fn host.TaskFunc) host.ScheduledTask {
	return r.RunDelayed(owner, world, chunkX, chunkZ, fn, 1)
}

func (r regionScheduler) RunDelayed(owner host.Plugin, world host.World, chunkX, chunkZ int, fn host.TaskFunc, delay int64) host.ScheduledTask {
	checkDelay(delay)
	th, err := r.server.region(world, chunkX, chunkZ)
	if err != nil {
		return nil
	}
	return scheduleOn(th, newTask(owner, taskFunc(fn)), delay)
}

func (r regionScheduler) RunAtFixedRate(owner host.Plugin, world host.World, chunkX, chunkZ int, fn host.TaskFunc, delay, period int64) host.ScheduledTask {
	checkDelay(delay)
	checkPeriod(period)
	th, err := r.server.region(world, chunkX, chunkZ)
	if err != nil {
		return nil
	}
	t := newTask(owner, taskFunc(fn))
	t.repeating, t.period = true, period
	return scheduleOn(th, t, delay)
}

type asyncScheduler struct {
	server *RegionizedServer
}

func (a asyncScheduler) submit(t *task, delay time.Duration) host.ScheduledTask {
	if err := a.server.pool.submit(t, delay); err != nil {
		return nil
	}
	return t
}

func (a asyncScheduler) RunNow(owner host.Plugin, fn host.TaskFunc) host.ScheduledTask {
	return a.submit(newTask(owner, taskFunc(fn)), 0)
}

func (a asyncScheduler) RunDelayed(owner host.Plugin, fn host.TaskFunc, delay time.Duration) host.ScheduledTask {
	return a.submit(newTask(owner, taskFunc(fn)), delay)
}

func (a asyncScheduler) RunAtFixedRate(owner host.Plugin, fn host.TaskFunc, delay, period time.Duration) host.ScheduledTask {
	if period <= 0 {
		panic("sim: async period must be positive")
	}
	t := newTask(owner, taskFunc(fn))
	t.repeating, t.every = true, period
	return a.submit(t, delay)
}

func (a asyncScheduler) CancelTasks(owner host.Plugin) {
	a.server.asyncTasks.cancelOwner(owner)
}

// entityScheduler schedules on the region that owns the entity when the task
// comes due. A task whose entity moved hops to the new region's next tick;
// a task whose entity was removed is cancelled and its retired callback runs
// instead.
type entityScheduler struct {
	server *RegionizedServer
	entity host.Entity
}

func (es entityScheduler) gate(retired func()) func(ctx context.Context, t *task) bool {
	return func(ctx context.Context, t *task) bool {
		if !es.entity.IsValid() {
			if t.retire() && retired != nil {
				retired()
			}
			return false
		}
		loc := es.entity.Location()
		target, err := es.server.region(loc.World, loc.ChunkX(), loc.ChunkZ())
		if err != nil {
			t.retire()
			return false
		}
		if CurrentThread(ctx) != target {
			if target.schedule(t, 1) != nil {
				t.retire()
			}
			return false
		}
		return true
	}
}

func (es entityScheduler) schedule(t *task, retired func(), delay int64) host.ScheduledTask {
	if !es.entity.IsValid() {
		return nil
	}
	loc := es.entity.Location()
	th, err := es.server.region(loc.World, loc.ChunkX(), loc.ChunkZ())
	if err != nil {
		return nil
	}
	t.gate = es.gate(retired)
	return scheduleOn(th, t, delay)
}

func (es entityScheduler) Execute(owner host.Plugin, fn func(ctx context.Context), retired func(), delay int64) bool {
	checkDelay(delay)
	t := newTask(owner, func(ctx context.Context, _ *task) { fn(ctx) })
	return es.schedule(t, retired, delay) != nil
}

func (es entityScheduler) Run(owner host.Plugin, fn host.TaskFunc, retired func()) host.ScheduledTask {
	return es.RunDelayed(owner, fn, retired, 1)
}

func (es entityScheduler) RunDelayed(owner host.Plugin, fn host.TaskFunc, retired func(), delay int64) host.ScheduledTask {
	checkDelay(delay)
	return es.schedule(newTask(owner, taskFunc(fn)), retired, delay)
}

func (es entityScheduler) RunAtFixedRate(owner host.Plugin, fn host.TaskFunc, retired func(), delay, period int64) host.ScheduledTask {
	checkDelay(delay)
	checkPeriod(period)
	t := newTask(owner, taskFunc(fn))
	t.repeating, t.period = true, period
	return es.schedule(t, retired, delay)
}

func checkDelay(delay int64) {
	if delay < 1 {
		panic("sim: delay ticks must be at least 1")
	}
}

func checkPeriod(period int64) {
	if period < 1 {
		panic("sim: period ticks must be at least 1")
	}
}
