package main

import (
	"math"
	"math/rand"
)

const (
	SpawnIntervalStart = 3.0
	SpawnIntervalFloor = 0.5
	SpawnIntervalDecay = 0.99 // multiplicative, per spawn attempt
	ZombieCap          = 30
	SpawnInnerRadius   = 20.0
	SpawnOuterRadius   = 40.0
	SpawnAttempts      = 10
	SpawnProbeHeight   = 50.0

	FastChance = 0.20
	TankChance = 0.10
)

// ZombieManager owns the active hostile set: a spawn timer with ramping
// difficulty, validated annulus placement around the player, and the
// per-tick AI pass. Dead zombies leave the set the tick they die.
type ZombieManager struct {
	rng      *rand.Rand
	Zombies  []*Zombie
	timer    float64
	interval float64
}

// NewZombieManager creates a manager drawing spawn randomness from rng.
func NewZombieManager(rng *rand.Rand) *ZombieManager {
	return &ZombieManager{
		rng:      rng,
		interval: SpawnIntervalStart,
	}
}

// Interval returns the current spawn interval (HUD difficulty readout).
func (m *ZombieManager) Interval() float64 { return m.interval }

// Update advances the spawn timer and every live zombie, then drops dead
// zombies from the active set.
func (m *ZombieManager) Update(dt float64, player *Player, world *World) {
	m.timer += dt
	if m.timer >= m.interval && len(m.Zombies) < ZombieCap {
		// The timer resets and the interval decays whether or not
		// placement succeeds; a failed attempt just spawns nothing.
		m.timer = 0
		m.interval = math.Max(m.interval*SpawnIntervalDecay, SpawnIntervalFloor)
		if z := m.trySpawn(player.Pos, world); z != nil {
			m.Zombies = append(m.Zombies, z)
		}
	}

	for _, z := range m.Zombies {
		z.Update(dt, player.Pos, world)
	}

	live := m.Zombies[:0]
	for _, z := range m.Zombies {
		if !z.Dead {
			live = append(live, z)
		}
	}
	m.Zombies = live
}

// trySpawn picks up to SpawnAttempts random points on the annulus around
// the player and validates each with a downward probe: the point must land
// on live ground and not inside an obstacle. First valid point wins; if all
// attempts fail no zombie spawns this round.
func (m *ZombieManager) trySpawn(center Vec3, world *World) *Zombie {
	for i := 0; i < SpawnAttempts; i++ {
		angle := m.rng.Float64() * 2 * math.Pi
		radius := SpawnInnerRadius + m.rng.Float64()*(SpawnOuterRadius-SpawnInnerRadius)
		probe := Vec3{
			X: center.X + math.Cos(angle)*radius,
			Y: SpawnProbeHeight,
			Z: center.Z + math.Sin(angle)*radius,
		}

		gy, ok := world.GroundHeightAt(probe)
		if !ok {
			continue
		}
		pos := Vec3{probe.X, gy, probe.Z}
		if world.InsideObstacle(Vec3{pos.X, gy + 0.5, pos.Z}) {
			continue
		}
		return NewZombie(m.rollType(), pos)
	}
	return nil
}

// rollType partitions a uniform draw into TANK (10%), FAST (20%) and
// STANDARD (the rest).
func (m *ZombieManager) rollType() ZombieType {
	r := m.rng.Float64()
	switch {
	case r < TankChance:
		return ZombieTank
	case r < TankChance+FastChance:
		return ZombieFast
	default:
		return ZombieStandard
	}
}
