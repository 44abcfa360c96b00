package main

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // simulation ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// timedEvent is a deferred callback ordered by due simulation time. Reload
// completion and zombie flash clears go through this queue so every state
// mutation happens at the start of a tick, on the tick goroutine.
type timedEvent struct {
	due float64
	fn  func()
}

// Game holds the state for one survival session and runs its tick loop.
// All simulation state is touched only inside update(), single-writer.
type Game struct {
	mu      sync.RWMutex
	rng     *rand.Rand
	player  *Player
	world   *World
	zombies *ZombieManager

	simTime  float64
	tick     uint64
	score    int
	kills    int
	paused   bool
	gameOver bool

	events []timedEvent

	owner      Broadcaster // the playing client
	controller Broadcaster // optional touch-controller attachment

	stopped bool
	stop    chan struct{}
}

// NewGame creates a session with a fresh player and a world already
// streamed in around the spawn point.
func NewGame(seed int64) *Game {
	g := &Game{stop: make(chan struct{})}
	g.reset(seed)
	return g
}

// reset rebuilds the whole session state. In-flight scheduled events are
// dropped with it, so a reload or flash clear from the previous run can
// never touch the new state.
func (g *Game) reset(seed int64) {
	g.rng = rand.New(rand.NewSource(seed))
	g.player = NewPlayer()
	g.world = NewWorld(g.rng)
	g.zombies = NewZombieManager(g.rng)
	g.simTime = 0
	g.score = 0
	g.kills = 0
	g.paused = false
	g.gameOver = false
	g.events = nil
	g.world.Update(g.player.Pos)
}

// Run starts the game loop
func (g *Game) Run() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop. Safe to call at any time, including before
// Run has started.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.stopped {
		g.stopped = true
		close(g.stop)
	}
}

// After schedules fn onto the tick queue. Only call from within a tick or
// under the game lock.
func (g *Game) After(delay float64, fn func()) {
	g.events = append(g.events, timedEvent{due: g.simTime + delay, fn: fn})
}

// drainEvents runs every event that has come due, in due order.
func (g *Game) drainEvents() {
	for {
		best := -1
		for i, ev := range g.events {
			if ev.due <= g.simTime && (best < 0 || ev.due < g.events[best].due) {
				best = i
			}
		}
		if best < 0 {
			return
		}
		ev := g.events[best]
		g.events = append(g.events[:best], g.events[best+1:]...)
		ev.fn()
	}
}

// HandleIntent records a named boolean input intent for the player.
func (g *Game) HandleIntent(name string, held bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.player.SetIntent(name, held)
}

// HandleLook applies an accumulated look delta.
func (g *Game) HandleLook(dx, dy float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gameOver || g.paused {
		return
	}
	g.player.ApplyLook(dx, dy)
}

// SetPaused toggles the coarse pause switch. The whole update is gated, so
// no partial-tick state is ever left behind.
func (g *Game) SetPaused(paused bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = paused
}

// Restart fully reconstructs the session after game-over.
func (g *Game) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset(RandomSeed())
}

// SetOwner attaches the playing client.
func (g *Game) SetOwner(b Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.owner = b
}

// SetController attaches a touch controller, replacing any previous one.
func (g *Game) SetController(b Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.controller = b
	if g.owner != nil {
		g.owner.SendJSON(Envelope{T: MsgCtrlOn})
	}
}

// RemoveController detaches the touch controller.
func (g *Game) RemoveController() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.controller = nil
	if g.owner != nil {
		g.owner.SendJSON(Envelope{T: MsgCtrlOff})
	}
}

// Score returns the current score.
func (g *Game) Score() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.score
}

// GameOver reports whether the session has ended.
func (g *Game) GameOver() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.gameOver
}

// update runs one tick: scheduled events, player, world streaming, zombies,
// then the cross-entity collision pass and the state broadcast.
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tick++
	if !g.paused && !g.gameOver {
		dt := 1.0 / float64(TickRate)
		g.simTime += dt
		g.drainEvents()

		fired := g.player.Update(dt, g.world, g)
		g.world.Update(g.player.Pos)
		g.zombies.Update(dt, g.player, g.world)

		g.resolveBullets()
		g.resolveZombieContact(dt)
		g.resolvePickups()

		if fired {
			g.sendEvent(Envelope{T: MsgFire})
		}
	}

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
}

// resolveBullets runs the swept-segment pass: each live bullet is tested
// against zombies in list order (earliest index wins on overlap), then, only
// if no zombie was hit, against ground patches and obstacles. Bullets are
// only marked dead here; the player's own sweep removes them.
func (g *Game) resolveBullets() {
	for _, b := range g.player.Bullets {
		if b.Dead {
			continue
		}
		from, to := b.Segment()

		hitZombie := false
		for _, z := range g.zombies.Zombies {
			if z.Dead {
				continue
			}
			if _, hit := SegmentBox(from, to, z.Bounds()); hit {
				b.Dead = true
				hitZombie = true
				lethal := z.TakeDamage(1, g)
				g.sendEvent(Envelope{T: MsgHit, Data: HitMsg{ZombieID: z.ID, Lethal: lethal}})
				if lethal {
					g.kills++
					g.score += killScore(z.Type)
					g.sendEvent(Envelope{T: MsgKill, Data: KillMsg{ZombieID: z.ID, Type: int(z.Type), Score: g.score}})
				}
				break
			}
		}
		if hitZombie {
			continue
		}

		for _, ground := range g.world.Grounds() {
			if _, hit := SegmentBox(from, to, ground); hit {
				b.Dead = true
				break
			}
		}
		if b.Dead {
			continue
		}
		for _, o := range g.world.Obstacles() {
			if _, hit := SegmentBox(from, to, o.Bounds); hit {
				b.Dead = true
				break
			}
		}
	}
}

// resolveZombieContact applies stacking damage-over-time for every zombie
// overlapping the player, and flips to game-over when health runs out.
func (g *Game) resolveZombieContact(dt float64) {
	body := g.player.Bounds()
	for _, z := range g.zombies.Zombies {
		if z.Dead || !z.Bounds().Intersects(body) {
			continue
		}
		if g.player.TakeDamage(ZombieTouchDPS * dt) {
			g.gameOver = true
			g.sendEvent(Envelope{T: MsgGameOver, Data: GameOverMsg{Score: g.score, Kills: g.kills}})
			log.Printf("game over: score=%d kills=%d time=%.1fs", g.score, g.kills, g.simTime)
			return
		}
	}
}

// resolvePickups consumes every pack overlapping the player exactly once.
func (g *Game) resolvePickups() {
	pos := g.player.Pos
	health := append([]*Pickup(nil), g.world.HealthPacks()...)
	for _, p := range health {
		if pos.PlanarDistance(p.Pos) > PickupRadius {
			continue
		}
		if g.world.Consume(p) {
			g.player.Heal(HealthPackAmount)
			g.sendEvent(Envelope{T: MsgPickup, Data: PickupMsg{Kind: p.Kind, ID: p.ID}})
		}
	}
	ammo := append([]*Pickup(nil), g.world.AmmoPacks()...)
	for _, p := range ammo {
		if pos.PlanarDistance(p.Pos) > PickupRadius {
			continue
		}
		if g.world.Consume(p) {
			g.player.AddReserve(AmmoPackAmount)
			g.sendEvent(Envelope{T: MsgPickup, Data: PickupMsg{Kind: p.Kind, ID: p.ID}})
		}
	}
}

// killScore maps a zombie type to the points a kill is worth.
func killScore(t ZombieType) int {
	switch t {
	case ZombieFast:
		return 15
	case ZombieTank:
		return 50
	default:
		return 10
	}
}

// broadcastState sends the current snapshot to the owner (and controller).
func (g *Game) broadcastState() {
	if g.owner == nil && g.controller == nil {
		return
	}

	state := GameState{
		Tick:     g.tick,
		Player:   g.player.ToState(),
		Score:    g.score,
		Kills:    g.kills,
		Paused:   g.paused,
		GameOver: g.gameOver,
		Interval: round2(g.zombies.Interval()),
	}
	// The collision pass runs before the owners' removal sweeps, so entities
	// it killed this tick are still in the lists. Snapshots carry live ones only.
	for _, b := range g.player.Bullets {
		if b.Dead {
			continue
		}
		state.Bullets = append(state.Bullets, b.ToState())
	}
	for _, z := range g.zombies.Zombies {
		if z.Dead {
			continue
		}
		state.Zombies = append(state.Zombies, z.ToState())
	}
	for _, o := range g.world.Obstacles() {
		state.Obstacles = append(state.Obstacles, ObstacleState{
			ID: o.ID, Kind: o.Kind, Yaw: round2(o.Yaw),
			MinX: round2(o.Bounds.Min.X), MinY: round2(o.Bounds.Min.Y), MinZ: round2(o.Bounds.Min.Z),
			MaxX: round2(o.Bounds.Max.X), MaxY: round2(o.Bounds.Max.Y), MaxZ: round2(o.Bounds.Max.Z),
		})
	}
	for _, p := range g.world.HealthPacks() {
		state.Pickups = append(state.Pickups, p.ToState())
	}
	for _, p := range g.world.AmmoPacks() {
		state.Pickups = append(state.Pickups, p.ToState())
	}

	data, err := msgpack.Marshal(&state)
	if err != nil {
		log.Printf("state marshal error: %v", err)
		return
	}
	if g.owner != nil {
		g.owner.SendBinary(data)
	}
	if g.controller != nil {
		g.controller.SendBinary(data)
	}
}

// sendEvent delivers a discrete game event to the attached clients.
func (g *Game) sendEvent(msg Envelope) {
	if g.owner != nil {
		g.owner.SendJSON(msg)
	}
	if g.controller != nil {
		g.controller.SendJSON(msg)
	}
}
