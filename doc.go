// Package regionrunner schedules plugin work on game-server hosts without
// caring how the host threads its world.
//
// A host either ticks the whole world on one primary thread (the legacy
// model) or splits it into regions that tick concurrently (the
// region-parallel model). New probes the server once, binds the matching
// scheduler family and hands out scope schedulers that behave the same on
// both:
//
//	rt, err := regionrunner.New(plugin, server)
//	if err != nil {
//		return err
//	}
//
//	// next tick, on the thread owning the chunk at loc
//	rt.RegionAt(loc).Run(regionrunner.Do(func(ctx context.Context) {
//		// ...
//	}))
//
//	// every second, following the entity across regions
//	rt.Entity(e).RunAtFixedRate(work, onRemoved, 0, regionrunner.TicksPerSecond)
//
// # Scopes
//
// Global work runs on the primary thread (legacy) or the global region
// thread (region-parallel). Region work runs on the thread owning a chunk;
// on a legacy host that is the primary thread again, and Region returns the
// global scheduler. Async work runs off the tick threads. Entity work runs
// on whichever thread owns the entity when the task comes due, and is
// replaced by its retired callback once the entity is removed.
//
// # Timing
//
// Delays and periods are counted in ticks of 50ms. Duration variants round
// up to whole ticks, and tick-bound scopes never run sooner than the next
// tick.
//
// # Ownership
//
// Host callbacks receive a context identifying the executing thread.
// Ownership queries take that context; a plain context owns nothing.
package regionrunner
