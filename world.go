package main

import (
	"math"
	"math/rand"
)

// LoadDistance is the Chebyshev radius, in chunks, kept loaded around the
// focus chunk.
const LoadDistance = 2

// World streams fixed-size chunks around a moving focus point and exposes
// aggregate views over every live chunk's geometry and loot. The aggregates
// always equal the union of the live chunks; they are rebuilt in the same
// Update call that changes the chunk set.
type World struct {
	rng    *rand.Rand
	chunks map[ChunkCoord]*Chunk

	grounds     []Box
	obstacles   []Obstacle
	healthPacks []*Pickup
	ammoPacks   []*Pickup
}

// NewWorld creates an empty world. Chunk generation draws from rng, so a
// seeded source makes the layout reproducible.
func NewWorld(rng *rand.Rand) *World {
	return &World{
		rng:    rng,
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// chunkCoordAt returns the grid coordinate of the chunk containing p.
func chunkCoordAt(p Vec3) ChunkCoord {
	return ChunkCoord{
		X: int(math.Round(p.X / ChunkSize)),
		Z: int(math.Round(p.Z / ChunkSize)),
	}
}

// Update recentres the loaded neighborhood on the focus position: every
// missing chunk within LoadDistance is created, every chunk outside it is
// torn down. Calling Update twice with the same focus is a no-op.
func (w *World) Update(focus Vec3) {
	center := chunkCoordAt(focus)
	changed := false

	for x := center.X - LoadDistance; x <= center.X+LoadDistance; x++ {
		for z := center.Z - LoadDistance; z <= center.Z+LoadDistance; z++ {
			coord := ChunkCoord{x, z}
			if _, ok := w.chunks[coord]; !ok {
				w.chunks[coord] = GenerateChunk(coord, w.rng)
				changed = true
			}
		}
	}

	for coord, ch := range w.chunks {
		if abs(coord.X-center.X) > LoadDistance || abs(coord.Z-center.Z) > LoadDistance {
			ch.dispose()
			delete(w.chunks, coord)
			changed = true
		}
	}

	if changed {
		w.rebuildAggregates()
	}
}

func (w *World) rebuildAggregates() {
	w.grounds = w.grounds[:0]
	w.obstacles = w.obstacles[:0]
	w.healthPacks = w.healthPacks[:0]
	w.ammoPacks = w.ammoPacks[:0]
	for _, ch := range w.chunks {
		w.grounds = append(w.grounds, ch.Ground)
		w.obstacles = append(w.obstacles, ch.Obstacles...)
		w.healthPacks = append(w.healthPacks, ch.HealthPacks...)
		w.ammoPacks = append(w.ammoPacks, ch.AmmoPacks...)
	}
}

// Grounds returns the ground patches of all live chunks.
func (w *World) Grounds() []Box { return w.grounds }

// Obstacles returns the collidable volumes of all live chunks.
func (w *World) Obstacles() []Obstacle { return w.obstacles }

// HealthPacks returns all live health packs.
func (w *World) HealthPacks() []*Pickup { return w.healthPacks }

// AmmoPacks returns all live ammo packs.
func (w *World) AmmoPacks() []*Pickup { return w.ammoPacks }

// ChunkCount returns the number of loaded chunks.
func (w *World) ChunkCount() int { return len(w.chunks) }

// HasChunk reports whether the chunk at coord is loaded.
func (w *World) HasChunk(coord ChunkCoord) bool {
	_, ok := w.chunks[coord]
	return ok
}

// ChunkAt returns the loaded chunk at coord, or nil.
func (w *World) ChunkAt(coord ChunkCoord) *Chunk {
	return w.chunks[coord]
}

// Consume removes a pickup from its owning chunk and the aggregate views.
// Returns false if the pickup was already taken.
func (w *World) Consume(p *Pickup) bool {
	if p.Taken {
		return false
	}
	p.Taken = true
	for _, ch := range w.chunks {
		switch p.Kind {
		case PickupHealth:
			ch.HealthPacks = removePickup(ch.HealthPacks, p)
		case PickupAmmo:
			ch.AmmoPacks = removePickup(ch.AmmoPacks, p)
		}
	}
	switch p.Kind {
	case PickupHealth:
		w.healthPacks = removePickup(w.healthPacks, p)
	case PickupAmmo:
		w.ammoPacks = removePickup(w.ammoPacks, p)
	}
	return true
}

// GroundHeightAt probes the ground patches below p. ok is false when p is
// outside every loaded chunk.
func (w *World) GroundHeightAt(p Vec3) (float64, bool) {
	return GroundHeightUnder(p, w.grounds)
}

// InsideObstacle reports whether p lies inside any obstacle volume.
func (w *World) InsideObstacle(p Vec3) bool {
	for _, o := range w.obstacles {
		if o.Bounds.Contains(p) {
			return true
		}
	}
	return false
}

func removePickup(list []*Pickup, p *Pickup) []*Pickup {
	for i, e := range list {
		if e == p {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
