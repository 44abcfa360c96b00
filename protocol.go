package main

import "encoding/json"

// Client -> Server message types
const (
	MsgCreate     = "create"  // start a new survival session
	MsgResume     = "resume"  // reclaim a running session with a token
	MsgIntent     = "intent"  // named boolean input intent
	MsgLook       = "look"    // look delta pair
	MsgPause      = "pause"
	MsgRestart    = "restart"
	MsgLeave      = "leave"
	MsgControl    = "control" // phone controller attach
	MsgLayoutGet  = "layout_get"
	MsgLayoutSave = "layout_save"
)

// Server -> Client message types
const (
	MsgWelcome     = "welcome"
	MsgFire        = "fire" // muzzle-effect event
	MsgHit         = "hit"
	MsgKill        = "kill"
	MsgPickup      = "pickup"
	MsgGameOver    = "gameover"
	MsgLayout      = "layout"
	MsgLayoutSaved = "layout_saved"
	MsgError       = "error"
	MsgControlOK   = "control_ok"
	MsgCtrlOn      = "ctrl_on"  // notify desktop: controller attached
	MsgCtrlOff     = "ctrl_off" // notify desktop: controller detached
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// CreateMsg starts a session; an optional passcode locks controller attach
type CreateMsg struct {
	Passcode string `json:"pass,omitempty"`
}

// ResumeMsg reclaims a session using the token from the welcome message
type ResumeMsg struct {
	Token string `json:"tok"`
}

// IntentMsg updates one named boolean intent
type IntentMsg struct {
	Name string `json:"n"`
	Held bool   `json:"h"`
}

// LookMsg carries an accumulated look delta pair
type LookMsg struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// PauseMsg toggles the coarse pause switch
type PauseMsg struct {
	Paused bool `json:"p"`
}

// ControlMsg attaches a phone controller to a session
type ControlMsg struct {
	SID      string `json:"sid"`
	Passcode string `json:"pass,omitempty"`
}

// WelcomeMsg is sent after create/resume
type WelcomeMsg struct {
	SID   string `json:"sid"`
	Token string `json:"tok"`
}

// HitMsg reports a bullet striking a zombie
type HitMsg struct {
	ZombieID string `json:"zid"`
	Lethal   bool   `json:"k"`
}

// KillMsg reports a lethal hit and the updated score
type KillMsg struct {
	ZombieID string `json:"zid"`
	Type     int    `json:"zt"`
	Score    int    `json:"sc"`
}

// PickupMsg reports a consumed pack
type PickupMsg struct {
	Kind int    `json:"k"`
	ID   string `json:"id"`
}

// GameOverMsg reports the terminal session state
type GameOverMsg struct {
	Score int `json:"sc"`
	Kills int `json:"kl"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// PlayerState is part of every snapshot
type PlayerState struct {
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Z        float64 `json:"z" msgpack:"z"`
	Yaw      float64 `json:"yw" msgpack:"yw"`
	Pitch    float64 `json:"pt" msgpack:"pt"`
	Health   float64 `json:"hp" msgpack:"hp"`
	Ammo     int     `json:"am" msgpack:"am"`
	Reserve  int     `json:"rs" msgpack:"rs"`
	Reload   bool    `json:"rl" msgpack:"rl"`
	Grounded bool    `json:"g" msgpack:"g"`
}

// BulletState is broadcast per live bullet
type BulletState struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
	Z  float64 `json:"z" msgpack:"z"`
}

// ZombieState is broadcast per live zombie
type ZombieState struct {
	ID    string  `json:"id" msgpack:"id"`
	Type  int     `json:"t" msgpack:"t"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Z     float64 `json:"z" msgpack:"z"`
	Yaw   float64 `json:"yw" msgpack:"yw"`
	HP    int     `json:"hp" msgpack:"hp"`
	Flash bool    `json:"f" msgpack:"f"`
}

// ObstacleState is broadcast per obstacle volume
type ObstacleState struct {
	ID   string  `json:"id" msgpack:"id"`
	Kind int     `json:"k" msgpack:"k"`
	Yaw  float64 `json:"yw" msgpack:"yw"`
	MinX float64 `json:"ax" msgpack:"ax"`
	MinY float64 `json:"ay" msgpack:"ay"`
	MinZ float64 `json:"az" msgpack:"az"`
	MaxX float64 `json:"bx" msgpack:"bx"`
	MaxY float64 `json:"by" msgpack:"by"`
	MaxZ float64 `json:"bz" msgpack:"bz"`
}

// PickupState is broadcast per live pickup
type PickupState struct {
	ID   string  `json:"id" msgpack:"id"`
	Kind int     `json:"k" msgpack:"k"`
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
	Z    float64 `json:"z" msgpack:"z"`
}

// GameState is the full snapshot, msgpack-encoded into binary frames
type GameState struct {
	Tick      uint64          `json:"tick" msgpack:"tick"`
	Player    PlayerState     `json:"p" msgpack:"p"`
	Bullets   []BulletState   `json:"b" msgpack:"b"`
	Zombies   []ZombieState   `json:"z" msgpack:"z"`
	Obstacles []ObstacleState `json:"o" msgpack:"o"`
	Pickups   []PickupState   `json:"pk" msgpack:"pk"`
	Score     int             `json:"sc" msgpack:"sc"`
	Kills     int             `json:"kl" msgpack:"kl"`
	Interval  float64         `json:"iv" msgpack:"iv"`
	Paused    bool            `json:"ps" msgpack:"ps"`
	GameOver  bool            `json:"go" msgpack:"go"`
}
