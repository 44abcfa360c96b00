package main

import "math"

// ZombieType tags the closed set of hostile variants.
type ZombieType int

const (
	ZombieStandard ZombieType = 0
	ZombieFast     ZombieType = 1
	ZombieTank     ZombieType = 2
)

const (
	ZombieBaseRadius = 0.6
	ZombieBaseHeight = 1.8
	ZombieStopRange  = 1.0  // planar distance at which pursuit halts
	ZombieFallSpeed  = 20.0 // constant downward displacement, units/s
	FlashDuration    = 0.15 // hit-feedback flash, seconds
	ZombieTouchDPS   = 10.0 // damage per second per overlapping zombie
)

// ZombieDef holds the per-type stats. Adding a variant means adding a row
// here, nowhere else.
type ZombieDef struct {
	Health int
	Speed  float64
	Scale  float64
	Color  string
}

var ZombieDefs = [3]ZombieDef{
	ZombieStandard: {Health: 3, Speed: 4.0, Scale: 1.0, Color: "#4a7023"},
	ZombieFast:     {Health: 2, Speed: 7.0, Scale: 0.8, Color: "#8fbc3f"},
	ZombieTank:     {Health: 10, Speed: 2.0, Scale: 1.5, Color: "#2d4016"},
}

// GetZombieDef returns the stat row for a type, defaulting to standard.
func GetZombieDef(t ZombieType) ZombieDef {
	if t < 0 || int(t) >= len(ZombieDefs) {
		return ZombieDefs[ZombieStandard]
	}
	return ZombieDefs[t]
}

// Zombie is a single hostile: pursuit movement toward the player and a
// damage/death state machine. Health only ever decreases.
type Zombie struct {
	ID      string
	Type    ZombieType
	Pos     Vec3
	Yaw     float64
	Health  int
	MaxHP   int
	Speed   float64
	Scale   float64
	Dead    bool
	Flashed bool
}

// NewZombie creates a zombie of the given type at a ground position.
func NewZombie(t ZombieType, pos Vec3) *Zombie {
	def := GetZombieDef(t)
	return &Zombie{
		ID:     GenerateID(4),
		Type:   t,
		Pos:    pos,
		Health: def.Health,
		MaxHP:  def.Health,
		Speed:  def.Speed,
		Scale:  def.Scale,
	}
}

// Bounds returns the zombie's collision volume.
func (z *Zombie) Bounds() Box {
	return NewBox(z.Pos, ZombieBaseRadius*z.Scale, ZombieBaseRadius*z.Scale, ZombieBaseHeight*z.Scale)
}

// Update runs one tick of pursuit AI: walk the planar vector toward the
// player, face them, and apply the constant downward displacement. Hostiles
// carry no grounded flag; the ground plane simply stops the fall.
func (z *Zombie) Update(dt float64, target Vec3, world *World) {
	if z.Dead {
		return
	}

	to := z.Pos.PlanarTo(target)
	if to.Len() > ZombieStopRange {
		step := to.Normalized().Scale(z.Speed * dt)
		next := z.Pos
		next.X += step.X
		if !z.collidesAt(next, world) {
			z.Pos.X = next.X
		}
		next = z.Pos
		next.Z += step.Z
		if !z.collidesAt(next, world) {
			z.Pos.Z = next.Z
		}
		z.Yaw = math.Atan2(to.Z, to.X)
	}

	z.Pos.Y -= ZombieFallSpeed * dt
	if gy, ok := world.GroundHeightAt(Vec3{z.Pos.X, z.Pos.Y + ZombieBaseHeight, z.Pos.Z}); ok && z.Pos.Y < gy {
		z.Pos.Y = gy
	}
}

func (z *Zombie) collidesAt(pos Vec3, world *World) bool {
	r := ZombieBaseRadius * z.Scale
	body := NewBox(pos, r, r, ZombieBaseHeight*z.Scale)
	for _, o := range world.Obstacles() {
		if body.Intersects(o.Bounds) {
			return true
		}
	}
	return false
}

// TakeDamage subtracts health, arms the transient hit flash and returns
// true when the hit was lethal. The flash clear lands on the scheduler and
// no-ops if the zombie died in the interim.
func (z *Zombie) TakeDamage(dmg int, sched Scheduler) bool {
	if z.Dead {
		return false
	}
	z.Health -= dmg
	if z.Health <= 0 {
		z.Dead = true
		return true
	}
	z.Flashed = true
	sched.After(FlashDuration, func() {
		if !z.Dead {
			z.Flashed = false
		}
	})
	return false
}

// ToState converts to protocol state
func (z *Zombie) ToState() ZombieState {
	return ZombieState{
		ID:    z.ID,
		Type:  int(z.Type),
		X:     round2(z.Pos.X),
		Y:     round2(z.Pos.Y),
		Z:     round2(z.Pos.Z),
		Yaw:   round2(z.Yaw),
		HP:    z.Health,
		Flash: z.Flashed,
	}
}
