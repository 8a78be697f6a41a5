// Package host describes the surface an embedding server exposes to the
// scheduling layer.
//
// Nothing in this package executes work. It only names the primitives the
// scheduling layer delegates to: a legacy server with a single primary tick
// thread (LegacyServer) and a region-parallel server whose world is split
// into independently ticking regions (RegionizedServer). Both share the
// world model types defined here (World, Location, Block, Chunk, Entity).
//
// Every callback a host invokes receives a context.Context. Hosts attach the
// identity of the executing thread to that context, which is how ownership
// queries such as IsPrimaryThread and IsOwnedByCurrentRegion answer "is the
// caller running on the right thread".
package host
