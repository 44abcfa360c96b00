package main

import (
	"math"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

// fakeClient records everything a game sends to it.
type fakeClient struct {
	jsons []Envelope
	bins  [][]byte
}

func (f *fakeClient) SendJSON(msg interface{}) {
	if env, ok := msg.(Envelope); ok {
		f.jsons = append(f.jsons, env)
	}
}

func (f *fakeClient) SendBinary(data []byte) {
	f.bins = append(f.bins, data)
}

func (f *fakeClient) eventsOf(t string) []Envelope {
	var out []Envelope
	for _, env := range f.jsons {
		if env.T == t {
			out = append(out, env)
		}
	}
	return out
}

func newTestGame(seed int64) (*Game, *fakeClient) {
	g := NewGame(seed)
	g.world = newFlatWorld(2)
	fc := &fakeClient{}
	g.owner = fc
	return g, fc
}

func sweepBullet(from, to Vec3) *Bullet {
	b := NewBullet(from, to.Sub(from))
	b.Prev = from
	b.Pos = to
	return b
}

func TestResolveBulletsFirstZombieWins(t *testing.T) {
	g, fc := newTestGame(1)

	// Two zombies on the bullet's path; list order decides the victim
	z1 := NewZombie(ZombieStandard, Vec3{2, 0, 0})
	z2 := NewZombie(ZombieStandard, Vec3{4, 0, 0})
	g.zombies.Zombies = []*Zombie{z1, z2}

	g.player.Bullets = []*Bullet{sweepBullet(Vec3{-2, 1, 0}, Vec3{8, 1, 0})}
	g.resolveBullets()

	if z1.Health != 2 {
		t.Errorf("first zombie should take exactly 1 damage, HP=%d", z1.Health)
	}
	if z2.Health != 3 {
		t.Errorf("second zombie must be untouched, HP=%d", z2.Health)
	}
	if !g.player.Bullets[0].Dead {
		t.Error("bullet should die on the hit")
	}
	if len(fc.eventsOf(MsgHit)) != 1 {
		t.Errorf("expected one hit event, got %d", len(fc.eventsOf(MsgHit)))
	}
	if len(fc.eventsOf(MsgKill)) != 0 {
		t.Error("non-lethal hit must not emit a kill event")
	}
}

func TestResolveBulletsKillScoring(t *testing.T) {
	g, fc := newTestGame(2)

	z := NewZombie(ZombieFast, Vec3{2, 0, 0})
	z.Health = 1
	g.zombies.Zombies = []*Zombie{z}
	g.player.Bullets = []*Bullet{sweepBullet(Vec3{-2, 1, 0}, Vec3{8, 1, 0})}

	g.resolveBullets()

	if !z.Dead {
		t.Fatal("zombie should be dead")
	}
	if g.kills != 1 || g.score != 15 {
		t.Errorf("expected kills=1 score=15, got kills=%d score=%d", g.kills, g.score)
	}
	if len(fc.eventsOf(MsgKill)) != 1 {
		t.Error("lethal hit must emit a kill event")
	}
}

func TestKillScorePerType(t *testing.T) {
	if killScore(ZombieStandard) != 10 {
		t.Error("standard kill should score 10")
	}
	if killScore(ZombieFast) != 15 {
		t.Error("fast kill should score 15")
	}
	if killScore(ZombieTank) != 50 {
		t.Error("tank kill should score 50")
	}
}

func TestResolveBulletsWorldStops(t *testing.T) {
	g, _ := newTestGame(3)

	// Downward sweep into the ground, no zombies anywhere
	g.player.Bullets = []*Bullet{sweepBullet(Vec3{0, 5, 0}, Vec3{0, -1, 0})}
	g.resolveBullets()

	if !g.player.Bullets[0].Dead {
		t.Error("bullet should die against the ground")
	}
}

func TestResolveBulletsZombieShieldsWorld(t *testing.T) {
	g, _ := newTestGame(4)

	// Zombie stands in front of the wall; the bullet must stop at the zombie
	ch := g.world.ChunkAt(ChunkCoord{0, 0})
	ch.Obstacles = append(ch.Obstacles, Obstacle{
		ID:     "wall",
		Kind:   ObstacleBuilding,
		Bounds: NewBox(Vec3{6, 0, 0}, 0.5, 10, 5),
	})
	g.world.rebuildAggregates()

	z := NewZombie(ZombieStandard, Vec3{2, 0, 0})
	g.zombies.Zombies = []*Zombie{z}
	g.player.Bullets = []*Bullet{sweepBullet(Vec3{-2, 1, 0}, Vec3{10, 1, 0})}

	g.resolveBullets()

	if z.Health != 2 {
		t.Errorf("zombie in front should absorb the hit, HP=%d", z.Health)
	}
}

func TestDeadBulletRemovedByOwner(t *testing.T) {
	g, _ := newTestGame(5)

	g.player.Bullets = []*Bullet{sweepBullet(Vec3{0, 5, 0}, Vec3{0, -1, 0})}
	g.resolveBullets()
	if !g.player.Bullets[0].Dead {
		t.Fatal("expected dead bullet")
	}

	// The player's own sweep prunes it on the next tick
	g.player.Update(1.0/60.0, g.world, g)
	if len(g.player.Bullets) != 0 {
		t.Error("dead bullet should leave the set on the owner's sweep")
	}
}

func TestZombieContactStacks(t *testing.T) {
	g, _ := newTestGame(6)
	g.player.Pos = Vec3{0, 0, 0}

	g.zombies.Zombies = []*Zombie{
		NewZombie(ZombieStandard, Vec3{0.3, 0, 0}),
		NewZombie(ZombieStandard, Vec3{-0.3, 0, 0}),
	}

	dt := 0.5
	g.resolveZombieContact(dt)

	want := PlayerMaxHealth - 2*ZombieTouchDPS*dt
	if math.Abs(g.player.Health-want) > 1e-9 {
		t.Errorf("two overlapping zombies should stack damage: want %f, got %f", want, g.player.Health)
	}
}

func TestZombieContactKillsEndsGame(t *testing.T) {
	g, fc := newTestGame(7)
	g.player.Pos = Vec3{0, 0, 0}
	g.player.Health = 1
	g.zombies.Zombies = []*Zombie{NewZombie(ZombieStandard, Vec3{0.3, 0, 0})}

	g.resolveZombieContact(0.5)

	if !g.gameOver {
		t.Fatal("expected game over")
	}
	if len(fc.eventsOf(MsgGameOver)) != 1 {
		t.Error("expected a game-over event")
	}
}

func TestGameOverFreezesSimulation(t *testing.T) {
	g, _ := newTestGame(8)
	g.gameOver = true

	simTime := g.simTime
	pos := g.player.Pos
	g.update()

	if g.simTime != simTime {
		t.Error("simulation time must not advance after game over")
	}
	if g.player.Pos != pos {
		t.Error("entities must not move after game over")
	}
}

func TestPauseGatesWholeUpdate(t *testing.T) {
	g, _ := newTestGame(9)
	g.SetPaused(true)
	g.HandleIntent(IntentForward, true)

	simTime := g.simTime
	pos := g.player.Pos
	tick := g.tick
	g.update()

	if g.tick != tick+1 {
		t.Error("tick counter still advances while paused")
	}
	if g.simTime != simTime || g.player.Pos != pos {
		t.Error("paused update must not touch simulation state")
	}

	g.SetPaused(false)
	g.update()
	if g.simTime == simTime {
		t.Error("unpausing should resume the simulation")
	}
}

func TestLookIgnoredWhilePaused(t *testing.T) {
	g, _ := newTestGame(10)
	g.SetPaused(true)
	g.HandleLook(100, 50)
	if g.player.Yaw != 0 || g.player.Pitch != 0 {
		t.Error("look input must be ignored while paused")
	}
}

func TestResolvePickups(t *testing.T) {
	g, fc := newTestGame(11)
	g.player.Pos = Vec3{0, 0, 0}
	g.player.Health = 90
	g.player.Reserve = 10

	ch := g.world.ChunkAt(ChunkCoord{0, 0})
	hp := NewHealthPack(Vec3{0.5, PickupHeight, 0})
	ap := NewAmmoPack(Vec3{-0.5, PickupHeight, 0})
	ch.HealthPacks = append(ch.HealthPacks, hp)
	ch.AmmoPacks = append(ch.AmmoPacks, ap)
	g.world.rebuildAggregates()

	g.resolvePickups()

	if g.player.Health != PlayerMaxHealth {
		t.Errorf("health pack should cap at %f, got %f", PlayerMaxHealth, g.player.Health)
	}
	if g.player.Reserve != 10+AmmoPackAmount {
		t.Errorf("expected reserve %d, got %d", 10+AmmoPackAmount, g.player.Reserve)
	}
	if len(fc.eventsOf(MsgPickup)) != 2 {
		t.Errorf("expected two pickup events, got %d", len(fc.eventsOf(MsgPickup)))
	}

	// Second pass finds nothing
	g.resolvePickups()
	if len(fc.eventsOf(MsgPickup)) != 2 {
		t.Error("pickups must be consumed exactly once")
	}
}

func TestPickupOutOfRangeIgnored(t *testing.T) {
	g, _ := newTestGame(12)
	g.player.Pos = Vec3{0, 0, 0}
	g.player.Health = 50

	ch := g.world.ChunkAt(ChunkCoord{0, 0})
	ch.HealthPacks = append(ch.HealthPacks, NewHealthPack(Vec3{PickupRadius + 1, PickupHeight, 0}))
	g.world.rebuildAggregates()

	g.resolvePickups()
	if g.player.Health != 50 {
		t.Error("pack outside pickup radius must stay on the ground")
	}
}

func TestScheduledEventsRunInDueOrder(t *testing.T) {
	g, _ := newTestGame(13)

	var order []int
	g.After(0.3, func() { order = append(order, 3) })
	g.After(0.1, func() { order = append(order, 1) })
	g.After(0.2, func() { order = append(order, 2) })
	g.After(5.0, func() { order = append(order, 99) })

	g.simTime += 0.4
	g.drainEvents()

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("events ran out of order: %v", order)
	}
	if len(g.events) != 1 {
		t.Errorf("undue event must stay queued, have %d", len(g.events))
	}
}

func TestReloadThroughTicks(t *testing.T) {
	g, _ := newTestGame(14)
	g.player.Ammo = 0
	g.player.Reserve = 30
	g.HandleIntent(IntentReload, true)

	// A bit more than ReloadDuration worth of ticks
	n := int(ReloadDuration*TickRate) + 5
	for i := 0; i < n; i++ {
		g.update()
	}

	if g.player.Reloading {
		t.Error("reload should have completed")
	}
	if g.player.Ammo != MagazineSize || g.player.Reserve != 0 {
		t.Errorf("expected %d/0 after reload, got %d/%d", MagazineSize, g.player.Ammo, g.player.Reserve)
	}
}

func TestRestartResetsSession(t *testing.T) {
	g, _ := newTestGame(15)
	g.score = 120
	g.kills = 9
	g.gameOver = true
	g.player.Health = 0
	g.After(0.1, func() { t.Error("stale event survived a restart") })

	g.Restart()

	if g.gameOver || g.score != 0 || g.kills != 0 {
		t.Error("restart must clear score, kills and the game-over flag")
	}
	if g.player.Health != PlayerMaxHealth {
		t.Error("restart must hand out a fresh player")
	}
	if len(g.events) != 0 {
		t.Error("restart must drop in-flight scheduled events")
	}

	g.simTime += 1
	g.drainEvents()
}

func TestBroadcastCadence(t *testing.T) {
	g, fc := newTestGame(16)
	g.SetPaused(true) // freeze the sim, keep the broadcast clock

	for i := 0; i < TickRate; i++ {
		g.update()
	}
	if len(fc.bins) != BroadcastRate {
		t.Errorf("expected %d snapshots over one second, got %d", BroadcastRate, len(fc.bins))
	}
}

func TestBroadcastExcludesDeadEntities(t *testing.T) {
	g, fc := newTestGame(18)

	// Lethal shot: the collision pass marks both the bullet and the zombie
	// dead, but neither owner has swept its list yet
	z := NewZombie(ZombieStandard, Vec3{2, 0, 0})
	z.Health = 1
	survivor := NewZombie(ZombieTank, Vec3{0, 0, 20})
	g.zombies.Zombies = []*Zombie{z, survivor}
	g.player.Bullets = []*Bullet{sweepBullet(Vec3{-2, 1, 0}, Vec3{8, 1, 0})}

	g.resolveBullets()
	if !z.Dead || !g.player.Bullets[0].Dead {
		t.Fatal("expected a lethal hit")
	}

	g.broadcastState()
	if len(fc.bins) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(fc.bins))
	}

	var state GameState
	if err := msgpack.Unmarshal(fc.bins[0], &state); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(state.Bullets) != 0 {
		t.Errorf("dead bullet leaked into the snapshot: %+v", state.Bullets)
	}
	if len(state.Zombies) != 1 || state.Zombies[0].ID != survivor.ID {
		t.Errorf("snapshot should hold only the surviving zombie: %+v", state.Zombies)
	}
}

func TestControllerReceivesEvents(t *testing.T) {
	g, fc := newTestGame(17)
	ctrl := &fakeClient{}
	g.SetController(ctrl)

	if len(fc.eventsOf(MsgCtrlOn)) != 1 {
		t.Error("owner should hear about the controller attaching")
	}

	g.sendEvent(Envelope{T: MsgFire})
	if len(ctrl.eventsOf(MsgFire)) != 1 {
		t.Error("controller should receive game events")
	}

	g.RemoveController()
	if len(fc.eventsOf(MsgCtrlOff)) != 1 {
		t.Error("owner should hear about the controller detaching")
	}
	if g.controller != nil {
		t.Error("controller must be cleared")
	}
}
