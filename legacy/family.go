package legacy

import (
	"context"
	"errors"

	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/host"
)

var (
	errNilOwner     = errors.New("legacy: nil owner")
	errNilServer    = errors.New("legacy: nil server")
	errNilScheduler = errors.New("legacy: server has no scheduler")
)

// Family is the scope-scheduler family of a legacy server.
type Family struct {
	owner     host.Plugin
	ownerName string
	server    host.LegacyServer
	scheduler host.LegacyScheduler
	config    *core.Config

	global *core.ScopeScheduler
	async  *core.AsyncScheduler
}

var _ core.Family = (*Family)(nil)

// New binds a family to server on behalf of owner.
func New(owner host.Plugin, server host.LegacyServer, config *core.Config) (*Family, error) {
	if owner == nil {
		return nil, errNilOwner
	}
	if server == nil {
		return nil, errNilServer
	}
	scheduler := server.Scheduler()
	if scheduler == nil {
		return nil, errNilScheduler
	}

	f := &Family{
		owner:     owner,
		ownerName: owner.Name(),
		server:    server,
		scheduler: scheduler,
		config:    config.Normalize(),
	}
	f.global = core.NewScopeScheduler(&syncSubmitter{family: f, scope: core.ScopeGlobal})
	f.async = core.NewAsyncScheduler(&asyncSubmitter{family: f})
	return f, nil
}

func (f *Family) Model() core.Model            { return core.ModelLegacy }
func (f *Family) Owner() host.Plugin           { return f.owner }
func (f *Family) Global() *core.ScopeScheduler { return f.global }
func (f *Family) Async() *core.AsyncScheduler  { return f.async }

// Region returns the global scheduler: the primary thread owns every region.
func (f *Family) Region(world host.World, chunkX, chunkZ int) *core.ScopeScheduler {
	if world == nil {
		panic("legacy: nil world")
	}
	return f.global
}

// Entity returns a scheduler for tasks that follow e.
func (f *Family) Entity(e host.Entity) *core.EntityScheduler {
	if e == nil {
		panic("legacy: nil entity")
	}
	return core.NewEntityScheduler(&entitySubmitter{family: f, entity: e}, f.config)
}

func (f *Family) IsOwnedByCurrentRegion(ctx context.Context, loc host.Location) bool {
	return f.server.IsPrimaryThread(ctx)
}

func (f *Family) IsOwnedByCurrentRegionRadius(ctx context.Context, loc host.Location, squareRadiusChunks int) bool {
	return f.server.IsPrimaryThread(ctx)
}

func (f *Family) IsChunkOwnedByCurrentRegion(ctx context.Context, world host.World, chunkX, chunkZ int) bool {
	return f.server.IsPrimaryThread(ctx)
}

func (f *Family) IsChunkOwnedByCurrentRegionRadius(ctx context.Context, world host.World, chunkX, chunkZ, squareRadiusChunks int) bool {
	return f.server.IsPrimaryThread(ctx)
}

func (f *Family) IsEntityOwnedByCurrentRegion(ctx context.Context, e host.Entity) bool {
	return f.server.IsPrimaryThread(ctx)
}

// CancelTasks cancels every task the owner scheduled.
func (f *Family) CancelTasks() {
	f.scheduler.CancelTasks(f.owner)
}

// TeleportAsync uses the server's async teleport when it has one. Otherwise
// it teleports on the primary thread next tick; the future completes with
// false if the entity is retired first or the teleport panics.
func (f *Family) TeleportAsync(e host.Entity, to host.Location) *core.Future[bool] {
	future := core.NewFuture[bool]()

	if tp, ok := f.server.(host.AsyncTeleporter); ok {
		tp.TeleportAsync(e, to, func(ok bool) { future.Complete(ok) })
		return future
	}

	f.Entity(e).Execute(func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				future.Complete(false)
				panic(r)
			}
		}()
		future.Complete(e.Teleport(to))
	}, func() {
		future.Complete(false)
	}, 1)
	return future
}
