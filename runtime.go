package regionrunner

import (
	"context"
	"errors"
	"fmt"

	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/host"
	"github.com/Swind/go-region-runner/legacy"
	"github.com/Swind/go-region-runner/regionized"
)

// ErrInitialization is wrapped by every error New returns.
var ErrInitialization = errors.New("regionrunner: failed to initialize scheduler")

// regionMarker is the capability that identifies a region-parallel host.
type regionMarker interface {
	IsOwnedByCurrentRegion(ctx context.Context, loc host.Location) bool
}

// Detect reports the threading model of server.
func Detect(server host.Server) Model {
	if _, ok := server.(regionMarker); ok {
		return ModelRegionized
	}
	return ModelLegacy
}

// Runtime is the entry point of the library: one owner bound to one host.
// It is safe for concurrent use.
type Runtime struct {
	owner  host.Plugin
	server host.Server
	family core.Family
	config *core.Config
}

// New probes server and binds the scheduler family for its model. There is
// no fallback: a server that looks region-parallel but lacks part of that
// surface is an error.
func New(owner host.Plugin, server host.Server, opts ...Option) (*Runtime, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: nil owner", ErrInitialization)
	}
	if server == nil {
		return nil, fmt.Errorf("%w: nil server", ErrInitialization)
	}

	config := o.config()
	if o.relocationCheck {
		checkRelocation(owner, config.Logger, compiledPath())
	}

	family, err := bind(owner, server, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	config.Logger.Info("scheduler family selected",
		core.F("owner", owner.Name()),
		core.F("server", server.Name()),
		core.F("version", server.Version()),
		core.F("model", family.Model().String()),
	)
	return &Runtime{owner: owner, server: server, family: family, config: config}, nil
}

func bind(owner host.Plugin, server host.Server, config *core.Config) (core.Family, error) {
	if Detect(server) == ModelRegionized {
		rs, ok := server.(host.RegionizedServer)
		if !ok {
			return nil, fmt.Errorf("server %q reports region ownership but lacks the region schedulers", server.Name())
		}
		f, err := regionized.New(owner, rs, config)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	ls, ok := server.(host.LegacyServer)
	if !ok {
		return nil, fmt.Errorf("server %q exposes neither a legacy nor a region-parallel scheduler", server.Name())
	}
	f, err := legacy.New(owner, ls, config)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *Runtime) Model() Model        { return r.family.Model() }
func (r *Runtime) Owner() host.Plugin  { return r.owner }
func (r *Runtime) Server() host.Server { return r.server }

// Config returns the handlers shared by the runtime's schedulers.
func (r *Runtime) Config() *core.Config { return r.config }

// Global returns the scheduler of the global scope.
func (r *Runtime) Global() *ScopeScheduler { return r.family.Global() }

// Async returns the scheduler of the off-tick pool.
func (r *Runtime) Async() *AsyncScheduler { return r.family.Async() }

// Entity returns a scheduler whose tasks follow e and retire with it.
func (r *Runtime) Entity(e host.Entity) *EntityScheduler { return r.family.Entity(e) }

// Region returns the scheduler of the region owning the chunk. A nil world
// panics.
func (r *Runtime) Region(world host.World, chunkX, chunkZ int) *ScopeScheduler {
	mustWorld(world)
	return r.family.Region(world, chunkX, chunkZ)
}

// RegionAt returns the scheduler of the region owning loc.
func (r *Runtime) RegionAt(loc host.Location) *ScopeScheduler {
	return r.Region(loc.World, loc.ChunkX(), loc.ChunkZ())
}

// RegionOfBlock returns the scheduler of the region owning b.
func (r *Runtime) RegionOfBlock(b host.Block) *ScopeScheduler {
	return r.Region(b.World, b.ChunkX(), b.ChunkZ())
}

// RegionOfChunk returns the scheduler of the region owning c.
func (r *Runtime) RegionOfChunk(c host.Chunk) *ScopeScheduler {
	return r.Region(c.World, c.X, c.Z)
}

// IsOwnedByCurrentRegion reports whether the thread identified by ctx owns loc.
func (r *Runtime) IsOwnedByCurrentRegion(ctx context.Context, loc host.Location) bool {
	mustWorld(loc.World)
	return r.family.IsOwnedByCurrentRegion(ctx, loc)
}

// IsOwnedByCurrentRegionRadius also requires every chunk within
// squareRadiusChunks of loc to be owned.
func (r *Runtime) IsOwnedByCurrentRegionRadius(ctx context.Context, loc host.Location, squareRadiusChunks int) bool {
	mustWorld(loc.World)
	return r.family.IsOwnedByCurrentRegionRadius(ctx, loc, squareRadiusChunks)
}

func (r *Runtime) IsBlockOwnedByCurrentRegion(ctx context.Context, b host.Block) bool {
	return r.IsChunkOwnedByCurrentRegion(ctx, b.World, b.ChunkX(), b.ChunkZ())
}

func (r *Runtime) IsChunkOwnedByCurrentRegion(ctx context.Context, world host.World, chunkX, chunkZ int) bool {
	mustWorld(world)
	return r.family.IsChunkOwnedByCurrentRegion(ctx, world, chunkX, chunkZ)
}

func (r *Runtime) IsChunkOwnedByCurrentRegionRadius(ctx context.Context, world host.World, chunkX, chunkZ, squareRadiusChunks int) bool {
	mustWorld(world)
	return r.family.IsChunkOwnedByCurrentRegionRadius(ctx, world, chunkX, chunkZ, squareRadiusChunks)
}

func (r *Runtime) IsEntityOwnedByCurrentRegion(ctx context.Context, e host.Entity) bool {
	return r.family.IsEntityOwnedByCurrentRegion(ctx, e)
}

// CancelTasks cancels the owner's tasks. On a region-parallel host only
// global and async tasks can be cancelled in bulk.
func (r *Runtime) CancelTasks() { r.family.CancelTasks() }

// TeleportAsync moves e to the target and completes with whether it
// succeeded.
func (r *Runtime) TeleportAsync(e host.Entity, to host.Location) *Future[bool] {
	mustWorld(to.World)
	return r.family.TeleportAsync(e, to)
}

func mustWorld(w host.World) {
	if w == nil {
		panic("regionrunner: nil world")
	}
}
