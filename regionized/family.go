package regionized

import (
	"context"
	"errors"

	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/host"
)

var (
	errNilOwner      = errors.New("regionized: nil owner")
	errNilServer     = errors.New("regionized: nil server")
	errMissingGlobal = errors.New("regionized: server has no global region scheduler")
	errMissingRegion = errors.New("regionized: server has no region scheduler")
	errMissingAsync  = errors.New("regionized: server has no async scheduler")
)

// Family is the scope-scheduler family of a region-parallel server.
type Family struct {
	owner     host.Plugin
	ownerName string
	server    host.RegionizedServer
	regions   host.RegionScheduler
	config    *core.Config

	globalNative host.GlobalRegionScheduler
	asyncNative  host.AsyncScheduler

	global *core.ScopeScheduler
	async  *core.AsyncScheduler
}

var _ core.Family = (*Family)(nil)

// New binds a family to server on behalf of owner. Every sub-scheduler must
// be present.
func New(owner host.Plugin, server host.RegionizedServer, config *core.Config) (*Family, error) {
	if owner == nil {
		return nil, errNilOwner
	}
	if server == nil {
		return nil, errNilServer
	}

	f := &Family{
		owner:        owner,
		ownerName:    owner.Name(),
		server:       server,
		regions:      server.RegionScheduler(),
		config:       config.Normalize(),
		globalNative: server.GlobalRegionScheduler(),
		asyncNative:  server.AsyncScheduler(),
	}
	switch {
	case f.globalNative == nil:
		return nil, errMissingGlobal
	case f.regions == nil:
		return nil, errMissingRegion
	case f.asyncNative == nil:
		return nil, errMissingAsync
	}

	f.global = core.NewScopeScheduler(&globalSubmitter{family: f, scheduler: f.globalNative})
	f.async = core.NewAsyncScheduler(&asyncSubmitter{family: f, scheduler: f.asyncNative})
	return f, nil
}

func (f *Family) Model() core.Model            { return core.ModelRegionized }
func (f *Family) Owner() host.Plugin           { return f.owner }
func (f *Family) Global() *core.ScopeScheduler { return f.global }
func (f *Family) Async() *core.AsyncScheduler  { return f.async }

// Region returns a scheduler bound to the region owning the chunk.
func (f *Family) Region(world host.World, chunkX, chunkZ int) *core.ScopeScheduler {
	if world == nil {
		panic("regionized: nil world")
	}
	return core.NewScopeScheduler(&regionSubmitter{
		family:    f,
		scheduler: f.regions,
		world:     world,
		chunkX:    chunkX,
		chunkZ:    chunkZ,
	})
}

// Entity returns a scheduler for tasks that follow e across regions.
func (f *Family) Entity(e host.Entity) *core.EntityScheduler {
	if e == nil {
		panic("regionized: nil entity")
	}
	return core.NewEntityScheduler(&entitySubmitter{
		family:    f,
		entity:    e,
		scheduler: f.server.EntityScheduler(e),
	}, f.config)
}

func (f *Family) IsOwnedByCurrentRegion(ctx context.Context, loc host.Location) bool {
	return f.server.IsOwnedByCurrentRegion(ctx, loc)
}

func (f *Family) IsOwnedByCurrentRegionRadius(ctx context.Context, loc host.Location, squareRadiusChunks int) bool {
	return f.server.IsOwnedByCurrentRegionRadius(ctx, loc, squareRadiusChunks)
}

func (f *Family) IsChunkOwnedByCurrentRegion(ctx context.Context, world host.World, chunkX, chunkZ int) bool {
	return f.server.IsChunkOwnedByCurrentRegion(ctx, world, chunkX, chunkZ)
}

func (f *Family) IsChunkOwnedByCurrentRegionRadius(ctx context.Context, world host.World, chunkX, chunkZ, squareRadiusChunks int) bool {
	return f.server.IsChunkOwnedByCurrentRegionRadius(ctx, world, chunkX, chunkZ, squareRadiusChunks)
}

func (f *Family) IsEntityOwnedByCurrentRegion(ctx context.Context, e host.Entity) bool {
	return f.server.IsEntityOwnedByCurrentRegion(ctx, e)
}

// CancelTasks cancels the owner's global and async tasks. Region and entity
// tasks have no bulk cancel on this host.
func (f *Family) CancelTasks() {
	f.globalNative.CancelTasks(f.owner)
	f.asyncNative.CancelTasks(f.owner)
}

// TeleportAsync delegates to the host's cross-region teleport.
func (f *Family) TeleportAsync(e host.Entity, to host.Location) *core.Future[bool] {
	future := core.NewFuture[bool]()
	f.server.TeleportAsync(e, to, func(ok bool) { future.Complete(ok) })
	return future
}
