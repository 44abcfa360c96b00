package main

import "math"

const (
	PlayerMaxHealth  = 100.0
	PlayerSpeed      = 10.0 // units/s walking
	SprintMultiplier = 1.5
	PlayerRadius     = 0.5
	PlayerHeight     = 1.8
	PlayerEyeHeight  = 1.7
	PlayerSpawnY     = 2.0

	Gravity         = 20.0 // units/s²
	JumpImpulse     = 8.0
	GroundStick     = -0.5 // small downward velocity held while grounded
	PitchLimit      = 1.5  // radians, ~±85°
	RecoilPitch     = 0.015
	LookSensitivity = 0.002

	MagazineSize   = 30
	StartReserve   = 90
	FireRate       = 0.1 // seconds between shots
	ReloadDuration = 1.5 // seconds
)

// Input intent names delivered by the input collaborator.
const (
	IntentForward = "w"
	IntentLeft    = "a"
	IntentBack    = "s"
	IntentRight   = "d"
	IntentSprint  = "shift"
	IntentJump    = " "
	IntentReload  = "r"
	IntentFire    = "mouseLeft"
)

// Scheduler defers a callback onto the simulation tick after a delay in
// simulation seconds. All scheduled work runs at the start of a tick.
type Scheduler interface {
	After(delay float64, fn func())
}

// Player is the first-person actor: movement, aim, firing cadence, reload
// and ammo/health bookkeeping. The player owns its bullet list exclusively;
// the orchestrator only marks bullets dead and the player's per-tick sweep
// removes them.
type Player struct {
	Pos      Vec3 // feet position
	Yaw      float64
	Pitch    float64
	VelY     float64
	Grounded bool

	Health    float64
	Ammo      int // rounds in magazine
	Reserve   int
	Reloading bool
	fireCD    float64

	Held    map[string]bool
	Bullets []*Bullet
}

// NewPlayer creates a player at the fixed spawn height
func NewPlayer() *Player {
	return &Player{
		Pos:     Vec3{0, PlayerSpawnY, 0},
		Health:  PlayerMaxHealth,
		Ammo:    MagazineSize,
		Reserve: StartReserve,
		Held:    make(map[string]bool),
	}
}

// SetIntent records a named boolean input intent.
func (p *Player) SetIntent(name string, held bool) {
	p.Held[name] = held
}

// ApplyLook folds a look delta into body yaw (unbounded) and camera pitch
// (clamped).
func (p *Player) ApplyLook(dx, dy float64) {
	p.Yaw += dx * LookSensitivity
	p.Pitch = Clamp(p.Pitch-dy*LookSensitivity, -PitchLimit, PitchLimit)
}

// AimDir returns the unit view direction from yaw and pitch.
func (p *Player) AimDir() Vec3 {
	cp := math.Cos(p.Pitch)
	return Vec3{
		X: cp * math.Cos(p.Yaw),
		Y: math.Sin(p.Pitch),
		Z: cp * math.Sin(p.Yaw),
	}
}

// EyePos returns the aim origin.
func (p *Player) EyePos() Vec3 {
	return Vec3{p.Pos.X, p.Pos.Y + PlayerEyeHeight, p.Pos.Z}
}

// Bounds returns the player's collision volume.
func (p *Player) Bounds() Box {
	return NewBox(p.Pos, PlayerRadius, PlayerRadius, PlayerHeight)
}

// Update advances movement, firing and the bullet list one tick. Returns
// true when a shot was fired this tick (muzzle-effect event for the
// presentation layer).
func (p *Player) Update(dt float64, world *World, sched Scheduler) bool {
	if p.fireCD > 0 {
		p.fireCD -= dt
	}

	p.move(dt, world)
	p.fall(dt, world)

	if p.Held[IntentJump] && p.Grounded {
		p.VelY = JumpImpulse
		p.Grounded = false
	}
	if p.Held[IntentReload] {
		p.StartReload(sched)
	}

	fired := false
	if p.Held[IntentFire] && p.CanFire() {
		p.fire()
		fired = true
	}

	// Integrate bullets, then sweep out the dead ones. This is the single
	// removal pass for bullets; everyone else only flips Dead.
	for _, b := range p.Bullets {
		b.Update(dt)
	}
	live := p.Bullets[:0]
	for _, b := range p.Bullets {
		if !b.Dead {
			live = append(live, b)
		}
	}
	p.Bullets = live

	return fired
}

// move applies the held movement intents as a collision-aware horizontal
// displacement, resolved per axis so the player slides along obstacles.
func (p *Player) move(dt float64, world *World) {
	forward := Vec3{math.Cos(p.Yaw), 0, math.Sin(p.Yaw)}
	right := Vec3{-math.Sin(p.Yaw), 0, math.Cos(p.Yaw)}

	var intent Vec3
	if p.Held[IntentForward] {
		intent = intent.Add(forward)
	}
	if p.Held[IntentBack] {
		intent = intent.Sub(forward)
	}
	if p.Held[IntentRight] {
		intent = intent.Add(right)
	}
	if p.Held[IntentLeft] {
		intent = intent.Sub(right)
	}
	if intent.LenSq() == 0 {
		return
	}

	speed := PlayerSpeed
	if p.Held[IntentSprint] {
		speed *= SprintMultiplier
	}
	step := intent.Normalized().Scale(speed * dt)

	next := p.Pos
	next.X += step.X
	if !collidesAt(next, world) {
		p.Pos.X = next.X
	}
	next = p.Pos
	next.Z += step.Z
	if !collidesAt(next, world) {
		p.Pos.Z = next.Z
	}
}

// fall integrates vertical motion and recomputes Grounded from a downward
// probe against ground patches and obstacle tops. Grounded is never carried
// over from the previous tick.
func (p *Player) fall(dt float64, world *World) {
	p.VelY -= Gravity * dt
	newY := p.Pos.Y + p.VelY*dt

	supports := world.Grounds()
	probe := Vec3{p.Pos.X, p.Pos.Y + 0.1, p.Pos.Z}
	supportY, ok := GroundHeightUnder(probe, supports)
	for _, o := range world.Obstacles() {
		if o.Bounds.ContainsXZ(probe) && o.Bounds.Max.Y <= probe.Y && (!ok || o.Bounds.Max.Y > supportY) {
			supportY = o.Bounds.Max.Y
			ok = true
		}
	}

	p.Grounded = false
	if ok && newY <= supportY {
		p.Pos.Y = supportY
		p.VelY = GroundStick
		p.Grounded = true
		return
	}
	p.Pos.Y = newY
}

func collidesAt(pos Vec3, world *World) bool {
	body := NewBox(pos, PlayerRadius, PlayerRadius, PlayerHeight)
	for _, o := range world.Obstacles() {
		if body.Intersects(o.Bounds) {
			return true
		}
	}
	return false
}

// CanFire reports whether the firing state machine may transition to Fire.
func (p *Player) CanFire() bool {
	return p.Ammo > 0 && !p.Reloading && p.fireCD <= 0
}

// fire decrements the magazine, spawns a bullet from the aim origin and
// kicks the camera pitch up slightly.
func (p *Player) fire() {
	p.Ammo--
	p.Bullets = append(p.Bullets, NewBullet(p.EyePos(), p.AimDir()))
	p.Pitch = Clamp(p.Pitch+RecoilPitch, -PitchLimit, PitchLimit)
	p.fireCD = FireRate
}

// StartReload begins a reload unless one is already running, the magazine is
// full, or the reserve is empty. Completion lands on the tick scheduler.
func (p *Player) StartReload(sched Scheduler) {
	if p.Reloading || p.Ammo >= MagazineSize || p.Reserve <= 0 {
		return
	}
	p.Reloading = true
	sched.After(ReloadDuration, p.finishReload)
}

// finishReload moves rounds from reserve into the magazine. No-ops if the
// reload was invalidated in the meantime (session reset).
func (p *Player) finishReload() {
	if !p.Reloading {
		return
	}
	p.Reloading = false
	need := ClampInt(MagazineSize-p.Ammo, 0, p.Reserve)
	p.Ammo += need
	p.Reserve -= need
}

// TakeDamage reduces health and returns true when it drops to zero.
func (p *Player) TakeDamage(amount float64) bool {
	if p.Health <= 0 {
		return false
	}
	p.Health -= amount
	if p.Health <= 0 {
		p.Health = 0
		return true
	}
	return false
}

// Heal restores health up to the display cap.
func (p *Player) Heal(amount float64) {
	p.Health = math.Min(p.Health+amount, PlayerMaxHealth)
}

// AddReserve adds rounds to the reserve pool.
func (p *Player) AddReserve(rounds int) {
	p.Reserve += rounds
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		X:        round2(p.Pos.X),
		Y:        round2(p.Pos.Y),
		Z:        round2(p.Pos.Z),
		Yaw:      round2(p.Yaw),
		Pitch:    round2(p.Pitch),
		Health:   math.Round(p.Health),
		Ammo:     p.Ammo,
		Reserve:  p.Reserve,
		Reload:   p.Reloading,
		Grounded: p.Grounded,
	}
}
