package main

const (
	BulletSpeed    = 150.0 // units/s
	BulletLifetime = 2.0   // seconds
	BulletOffset   = 2.0   // spawn distance along the aim direction
)

// Bullet is a short-lived straight-line projectile. Prev always holds the
// position from the previous tick, so Prev→Pos is the swept segment used for
// continuous hit testing.
type Bullet struct {
	ID   string
	Pos  Vec3
	Prev Vec3
	Dir  Vec3 // unit
	Life float64
	Dead bool
}

// NewBullet spawns a bullet offset along the aim direction so it never
// intersects the shooter.
func NewBullet(origin, dir Vec3) *Bullet {
	d := dir.Normalized()
	start := origin.Add(d.Scale(BulletOffset))
	return &Bullet{
		ID:   GenerateID(3),
		Pos:  start,
		Prev: start,
		Dir:  d,
		Life: BulletLifetime,
	}
}

// Update advances the bullet one tick
func (b *Bullet) Update(dt float64) {
	if b.Dead {
		return
	}
	b.Prev = b.Pos
	b.Pos = b.Pos.Add(b.Dir.Scale(BulletSpeed * dt))
	b.Life -= dt
	if b.Life <= 0 {
		b.Dead = true
	}
}

// Segment returns the swept segment covered this tick.
func (b *Bullet) Segment() (Vec3, Vec3) {
	return b.Prev, b.Pos
}

// ToState converts to protocol state
func (b *Bullet) ToState() BulletState {
	return BulletState{
		ID: b.ID,
		X:  round2(b.Pos.X),
		Y:  round2(b.Pos.Y),
		Z:  round2(b.Pos.Z),
	}
}
