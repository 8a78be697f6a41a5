// Package sim is an in-process host for the region runner. It implements
// both host surfaces on goroutines:
//
//   - LegacyServer: one primary TickThread plus an AsyncPool.
//   - RegionizedServer: a global TickThread, one TickThread per region
//     (created on first use) and an AsyncPool. Entity tasks follow the
//     entity's current region.
//
// A zero Options.Tick creates threads that only advance when Step is called,
// which makes tick-level behaviour deterministic in tests:
//
//	srv := sim.NewRegionizedServer(sim.Options{})
//	defer srv.Stop()
//	...
//	srv.Step() // every thread runs one tick
//
// Like a real host, the simulated threads recover panics raised by tasks and
// report them to Options.FaultHandler, so one failing task never stops a
// tick loop.
package sim
