package core

import (
	"context"

	"github.com/Swind/go-region-runner/host"
)

// Model is the host's threading model.
type Model int

const (
	// ModelLegacy is one global main thread ticking the whole world.
	ModelLegacy Model = iota
	// ModelRegionized partitions the world into concurrently ticking regions.
	ModelRegionized
)

func (m Model) String() string {
	switch m {
	case ModelLegacy:
		return "legacy"
	case ModelRegionized:
		return "regionized"
	default:
		return "unknown"
	}
}

// Family is the set of scope schedulers and queries for one model. The
// runtime binds exactly one family at construction.
type Family interface {
	Model() Model
	Owner() host.Plugin

	Global() *ScopeScheduler
	Async() *AsyncScheduler
	Entity(e host.Entity) *EntityScheduler
	Region(world host.World, chunkX, chunkZ int) *ScopeScheduler

	// IsOwnedByCurrentRegion reports whether the thread identified by ctx
	// owns the location.
	IsOwnedByCurrentRegion(ctx context.Context, loc host.Location) bool
	IsOwnedByCurrentRegionRadius(ctx context.Context, loc host.Location, squareRadiusChunks int) bool
	IsChunkOwnedByCurrentRegion(ctx context.Context, world host.World, chunkX, chunkZ int) bool
	IsChunkOwnedByCurrentRegionRadius(ctx context.Context, world host.World, chunkX, chunkZ, squareRadiusChunks int) bool
	IsEntityOwnedByCurrentRegion(ctx context.Context, e host.Entity) bool

	// CancelTasks cancels every task the owner scheduled.
	CancelTasks()

	// TeleportAsync moves e and completes with whether it succeeded.
	TeleportAsync(e host.Entity, to host.Location) *Future[bool]
}
