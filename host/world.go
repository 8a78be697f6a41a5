package host

import (
	"math"

	"github.com/google/uuid"
)

// ChunkShift converts block coordinates to chunk coordinates (16 blocks per chunk).
const ChunkShift = 4

// World is a named dimension owned by the host.
type World interface {
	Name() string
}

// Location is a point in a world.
type Location struct {
	World World
	X     float64
	Y     float64
	Z     float64
}

// BlockX returns the block column containing X.
func (l Location) BlockX() int { return int(math.Floor(l.X)) }

// BlockZ returns the block row containing Z.
func (l Location) BlockZ() int { return int(math.Floor(l.Z)) }

// ChunkX returns the chunk column containing the location.
func (l Location) ChunkX() int { return l.BlockX() >> ChunkShift }

// ChunkZ returns the chunk row containing the location.
func (l Location) ChunkZ() int { return l.BlockZ() >> ChunkShift }

// Block is a single block position in a world.
type Block struct {
	World World
	X     int
	Y     int
	Z     int
}

// ChunkX returns the chunk column containing the block.
func (b Block) ChunkX() int { return b.X >> ChunkShift }

// ChunkZ returns the chunk row containing the block.
func (b Block) ChunkZ() int { return b.Z >> ChunkShift }

// Chunk is a 16x16 column of blocks, addressed in chunk coordinates.
type Chunk struct {
	World World
	X     int
	Z     int
}

// Entity is a mobile object that can be removed from the world at any time.
//
// Once IsValid reports false it never reports true again.
type Entity interface {
	UniqueID() uuid.UUID
	IsValid() bool
	Location() Location

	// Teleport moves the entity synchronously. Hosts require it to be called
	// from the thread that owns the entity.
	Teleport(to Location) bool
}
