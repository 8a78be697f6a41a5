package sim

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Swind/go-region-runner/host"
)

// World is a named world.
type World struct {
	name string
}

// NewWorld creates a world.
func NewWorld(name string) *World {
	return &World{name: name}
}

func (w *World) Name() string { return w.name }

// Entity is a movable entity. It stays valid until Remove is called.
type Entity struct {
	id      uuid.UUID
	loc     atomic.Pointer[host.Location]
	removed atomic.Bool
}

// NewEntity spawns an entity at loc.
func NewEntity(loc host.Location) *Entity {
	if loc.World == nil {
		panic("sim: entity location without world")
	}
	e := &Entity{id: uuid.New()}
	e.loc.Store(&loc)
	return e
}

func (e *Entity) UniqueID() uuid.UUID { return e.id }
func (e *Entity) IsValid() bool       { return !e.removed.Load() }

func (e *Entity) Location() host.Location {
	return *e.loc.Load()
}

// Teleport moves the entity. It fails for a removed entity or a location
// without a world.
func (e *Entity) Teleport(to host.Location) bool {
	if !e.IsValid() || to.World == nil {
		return false
	}
	e.loc.Store(&to)
	return true
}

// Remove retires the entity. Pending entity tasks get their retired
// callback instead of running.
func (e *Entity) Remove() {
	e.removed.Store(true)
}

// Plugin is a named task owner with an optional description.
type Plugin struct {
	name    string
	authors []string
	pkg     string
}

// NewPlugin creates a plugin. pkg is the import path of the plugin's code.
func NewPlugin(name, pkg string, authors ...string) *Plugin {
	return &Plugin{name: name, pkg: pkg, authors: authors}
}

func (p *Plugin) Name() string      { return p.name }
func (p *Plugin) Package() string   { return p.pkg }
func (p *Plugin) Authors() []string { return append([]string(nil), p.authors...) }
