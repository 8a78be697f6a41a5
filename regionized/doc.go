// Package regionized binds the scope schedulers to a host whose world is
// split into regions that tick concurrently.
//
// Each scope maps to one native sub-scheduler: the global region scheduler,
// the region scheduler for a chunk, the async scheduler and the entity
// scheduler of one entity. Tick-bound scopes never receive a delay or period
// below one tick.
package regionized
