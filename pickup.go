package main

// Pickup kinds
const (
	PickupHealth = 0
	PickupAmmo   = 1
)

const (
	PickupRadius     = 1.2  // consumption distance from player center
	HealthPackAmount = 25   // HP restored, capped at PlayerMaxHealth
	AmmoPackAmount   = 20   // rounds added to reserve
	PickupHeight     = 0.75 // render height above ground
)

// Pickup is a health or ammo pack lying in a chunk. It is consumed at most
// once; Taken guards against double-consumption when several overlap checks
// run in the same tick.
type Pickup struct {
	ID    string
	Kind  int
	Pos   Vec3
	Taken bool
}

// NewHealthPack creates a health pack at the given position
func NewHealthPack(pos Vec3) *Pickup {
	return &Pickup{ID: GenerateID(4), Kind: PickupHealth, Pos: pos}
}

// NewAmmoPack creates an ammo pack at the given position
func NewAmmoPack(pos Vec3) *Pickup {
	return &Pickup{ID: GenerateID(4), Kind: PickupAmmo, Pos: pos}
}

// ToState converts to protocol state
func (p *Pickup) ToState() PickupState {
	return PickupState{
		ID:   p.ID,
		Kind: p.Kind,
		X:    round2(p.Pos.X),
		Y:    round2(p.Pos.Y),
		Z:    round2(p.Pos.Z),
	}
}
