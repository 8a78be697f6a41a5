package main

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	regionrunner "github.com/Swind/go-region-runner"
	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/cron"
	"github.com/Swind/go-region-runner/host"
	"github.com/Swind/go-region-runner/sim"
)

const (
	spawnRadius    = 2000.0
	wanderStep     = 24.0
	wanderPeriod   = regionrunner.Ticks(10)
	leapChance     = 0.02
	despawnChance  = 0.005
	heartbeatEvery = regionrunner.TicksPerSecond
)

// workload is the synthetic load of a demo run.
type workload struct {
	Duration time.Duration
	Entities int
	Report   string
}

// workloadState holds the counters of a running workload.
type workloadState struct {
	d     *demo
	world *sim.World

	heartbeat *regionrunner.Task
	report    *cron.Job

	mu       sync.Mutex
	entities map[*sim.Entity]struct{}

	beats      atomic.Int64
	moves      atomic.Int64
	leaps      atomic.Int64
	leapFailed atomic.Int64
	retired    atomic.Int64
	foreign    atomic.Int64
	stopping   atomic.Bool
}

func (w workload) start(d *demo) (*workloadState, error) {
	s := &workloadState{
		d:        d,
		world:    sim.NewWorld("world"),
		entities: make(map[*sim.Entity]struct{}),
	}

	s.heartbeat = d.rt.Global().RunAtFixedRate(regionrunner.Do(func(context.Context) {
		s.beats.Add(1)
	}), 1, heartbeatEvery)

	for range w.Entities {
		s.spawn()
	}

	job, err := cron.Schedule(d.rt.Async(), w.Report, regionrunner.Do(s.reportStatus),
		cron.WithLogger(d.logger.With(core.F("component", "report"))),
	)
	if err != nil {
		s.stop()
		return nil, err
	}
	s.report = job
	return s, nil
}

// spawn places a new entity and starts its wander loop. The region that
// receives it first checks it really owns the spawn point.
func (s *workloadState) spawn() {
	loc := host.Location{
		World: s.world,
		X:     (rand.Float64()*2 - 1) * spawnRadius,
		Z:     (rand.Float64()*2 - 1) * spawnRadius,
	}
	e := sim.NewEntity(loc)

	s.mu.Lock()
	s.entities[e] = struct{}{}
	s.mu.Unlock()

	s.d.rt.RegionAt(loc).Run(regionrunner.Do(func(ctx context.Context) {
		if !s.d.rt.IsOwnedByCurrentRegion(ctx, loc) {
			s.foreign.Add(1)
		}
	}))

	s.d.rt.Entity(e).RunAtFixedRate(regionrunner.Do(func(ctx context.Context) {
		s.wander(ctx, e)
	}), func() {
		s.onRetired(e)
	}, 1, wanderPeriod)
}

func (s *workloadState) wander(ctx context.Context, e *sim.Entity) {
	if !s.d.rt.IsEntityOwnedByCurrentRegion(ctx, e) {
		s.foreign.Add(1)
	}

	switch r := rand.Float64(); {
	case r < despawnChance:
		e.Remove()
	case r < despawnChance+leapChance:
		to := e.Location()
		to.X = (rand.Float64()*2 - 1) * spawnRadius
		to.Z = (rand.Float64()*2 - 1) * spawnRadius
		s.d.rt.TeleportAsync(e, to).Then(func(ok bool) {
			if ok {
				s.leaps.Add(1)
			} else {
				s.leapFailed.Add(1)
			}
		})
	default:
		to := e.Location()
		to.X += (rand.Float64()*2 - 1) * wanderStep
		to.Z += (rand.Float64()*2 - 1) * wanderStep
		if e.Teleport(to) {
			s.moves.Add(1)
		}
	}
}

// onRetired replaces a removed entity from the global scope.
func (s *workloadState) onRetired(e *sim.Entity) {
	s.retired.Add(1)
	s.mu.Lock()
	delete(s.entities, e)
	s.mu.Unlock()

	if s.stopping.Load() {
		return
	}
	s.d.rt.Global().Run(regionrunner.Do(func(context.Context) {
		s.spawn()
	}))
}

func (s *workloadState) reportStatus(context.Context) {
	s.mu.Lock()
	alive := len(s.entities)
	s.mu.Unlock()

	var threads int
	var executed int64
	for _, ts := range s.d.server.ThreadStats() {
		threads++
		executed += ts.Executed
	}
	pool := s.d.server.PoolStats()

	s.d.logger.Info("status",
		core.F("entities", alive),
		core.F("heartbeats", s.beats.Load()),
		core.F("moves", s.moves.Load()),
		core.F("leaps", s.leaps.Load()),
		core.F("leaps_failed", s.leapFailed.Load()),
		core.F("retired", s.retired.Load()),
		core.F("foreign", s.foreign.Load()),
		core.F("threads", threads),
		core.F("tick_executed", executed),
		core.F("async_executed", pool.Executed),
		core.F("spans", s.d.spans.ended.Load()),
		core.F("spans_failed", s.d.spans.failed.Load()),
	)
}

func (s *workloadState) stop() {
	s.stopping.Store(true)
	if s.report != nil {
		s.report.Stop()
	}
	if s.heartbeat != nil {
		s.heartbeat.Cancel()
	}

	s.mu.Lock()
	live := make([]*sim.Entity, 0, len(s.entities))
	for e := range s.entities {
		live = append(live, e)
	}
	s.mu.Unlock()
	for _, e := range live {
		e.Remove()
	}
}
