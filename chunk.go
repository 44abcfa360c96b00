package main

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	ChunkSize    = 60.0
	GroundDepth  = 1.0 // thickness of the ground slab below y=0
	MinBuildings = 2
	MaxBuildings = 5

	BuildingMinWidth  = 4.0
	BuildingMaxWidth  = 12.0
	BuildingMinHeight = 5.0
	BuildingMaxHeight = 20.0

	DebrisChance   = 0.5 // per building
	DebrisMinCount = 2
	DebrisMaxCount = 4

	HealthPackChance = 0.3 // per chunk
	AmmoPackChance   = 0.4 // per chunk
)

// Obstacle kinds
const (
	ObstacleBuilding = 0
	ObstacleDebris   = 1
)

// ChunkCoord addresses a chunk on the integer grid.
type ChunkCoord struct {
	X, Z int
}

// Obstacle is a collidable volume placed in a chunk. Yaw is a render hint;
// collision uses the axis-aligned bounds enclosing the rotated footprint.
type Obstacle struct {
	ID     string
	Kind   int
	Bounds Box
	Yaw    float64
}

// Chunk is one streamed cell of the world: a ground patch, collidable
// obstacles and loose pickups. Chunks are owned exclusively by the World.
type Chunk struct {
	Coord       ChunkCoord
	Ground      Box
	Obstacles   []Obstacle
	HealthPacks []*Pickup
	AmmoPacks   []*Pickup
}

// rotatedFootprintBox returns the AABB enclosing a yaw-rotated box footprint.
func rotatedFootprintBox(center Vec3, halfW, halfD, height, yaw float64) Box {
	c := math.Abs(math.Cos(yaw))
	s := math.Abs(math.Sin(yaw))
	return NewBox(center, halfW*c+halfD*s, halfW*s+halfD*c, height)
}

// GenerateChunk procedurally fills a chunk at the given grid coordinate.
// Generation never fails: all parameter ranges are unconstrained draws.
func GenerateChunk(coord ChunkCoord, rng *rand.Rand) *Chunk {
	originX := float64(coord.X) * ChunkSize
	originZ := float64(coord.Z) * ChunkSize
	half := ChunkSize / 2

	ch := &Chunk{
		Coord: coord,
		Ground: Box{
			Min: Vec3{originX - half, -GroundDepth, originZ - half},
			Max: Vec3{originX + half, 0, originZ + half},
		},
	}

	randInChunk := func(margin float64) Vec3 {
		return Vec3{
			X: originX - half + margin + rng.Float64()*(ChunkSize-2*margin),
			Z: originZ - half + margin + rng.Float64()*(ChunkSize-2*margin),
		}
	}

	n := MinBuildings + rng.Intn(MaxBuildings-MinBuildings+1)
	for i := 0; i < n; i++ {
		halfW := (BuildingMinWidth + rng.Float64()*(BuildingMaxWidth-BuildingMinWidth)) / 2
		halfD := (BuildingMinWidth + rng.Float64()*(BuildingMaxWidth-BuildingMinWidth)) / 2
		height := BuildingMinHeight + rng.Float64()*(BuildingMaxHeight-BuildingMinHeight)
		yaw := rng.Float64() * math.Pi * 2
		center := randInChunk(BuildingMaxWidth)

		ch.Obstacles = append(ch.Obstacles, Obstacle{
			ID:     GenerateID(4),
			Kind:   ObstacleBuilding,
			Bounds: rotatedFootprintBox(center, halfW, halfD, height, yaw),
			Yaw:    yaw,
		})

		// Small debris cluster scattered near some buildings
		if rng.Float64() < DebrisChance {
			count := DebrisMinCount + rng.Intn(DebrisMaxCount-DebrisMinCount+1)
			for j := 0; j < count; j++ {
				size := 0.5 + rng.Float64()
				off := Vec3{
					X: center.X + (rng.Float64()*2-1)*halfW*3,
					Z: center.Z + (rng.Float64()*2-1)*halfD*3,
				}
				ch.Obstacles = append(ch.Obstacles, Obstacle{
					ID:     GenerateID(4),
					Kind:   ObstacleDebris,
					Bounds: NewBox(off, size/2, size/2, size),
					Yaw:    rng.Float64() * math.Pi * 2,
				})
			}
		}
	}

	if rng.Float64() < HealthPackChance {
		pos := randInChunk(2)
		pos.Y = PickupHeight
		ch.HealthPacks = append(ch.HealthPacks, NewHealthPack(pos))
	}
	if rng.Float64() < AmmoPackChance {
		pos := randInChunk(2)
		pos.Y = PickupHeight
		ch.AmmoPacks = append(ch.AmmoPacks, NewAmmoPack(pos))
	}

	return ch
}

// dispose releases everything the chunk owns.
func (c *Chunk) dispose() {
	c.Obstacles = nil
	c.HealthPacks = nil
	c.AmmoPacks = nil
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}
