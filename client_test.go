package main

import (
	"encoding/json"
	"math"
	"testing"
)

// newTestClient wires a client to a hub-backed session whose tick loop is
// stopped, so handler effects can be inspected without racing the game.
func newTestClient(t *testing.T) (*Client, *Session) {
	t.Helper()
	hub := NewHub(nil)
	t.Cleanup(func() { hub.sessions.Stop() })

	sess := hub.sessions.CreateSession("")
	if sess == nil {
		t.Fatal("session creation failed")
	}
	sess.Game.Stop()

	c := NewClient(hub, nil, "203.0.113.1")
	c.sessionID = sess.ID
	return c, sess
}

func inputFrame(flags byte, dx, dy int16) []byte {
	return []byte{
		inputFrameTag, flags,
		byte(uint16(dx) >> 8), byte(uint16(dx)),
		byte(uint16(dy) >> 8), byte(uint16(dy)),
	}
}

func TestBinaryInputFlags(t *testing.T) {
	c, sess := newTestClient(t)
	held := sess.Game.player.Held

	c.handleBinaryInput(inputFrame(0xFF, 0, 0))
	for _, intent := range []string{
		IntentForward, IntentLeft, IntentBack, IntentRight,
		IntentSprint, IntentJump, IntentReload, IntentFire,
	} {
		if !held[intent] {
			t.Errorf("intent %q should be held with all flags set", intent)
		}
	}

	// Clearing the flags releases every intent
	c.handleBinaryInput(inputFrame(0x00, 0, 0))
	for intent, h := range held {
		if h {
			t.Errorf("intent %q should be released with no flags set", intent)
		}
	}
}

func TestBinaryInputFlagMapping(t *testing.T) {
	c, sess := newTestClient(t)
	held := sess.Game.player.Held

	cases := []struct {
		flag   byte
		intent string
	}{
		{flagForward, IntentForward},
		{flagLeft, IntentLeft},
		{flagBack, IntentBack},
		{flagRight, IntentRight},
		{flagSprint, IntentSprint},
		{flagJump, IntentJump},
		{flagReload, IntentReload},
		{flagFire, IntentFire},
	}
	for _, tc := range cases {
		c.handleBinaryInput(inputFrame(tc.flag, 0, 0))
		if !held[tc.intent] {
			t.Errorf("flag %#02x should hold intent %q", tc.flag, tc.intent)
		}
		for _, other := range cases {
			if other.intent != tc.intent && held[other.intent] {
				t.Errorf("flag %#02x leaked into intent %q", tc.flag, other.intent)
			}
		}
		c.handleBinaryInput(inputFrame(0x00, 0, 0))
	}
}

func TestBinaryInputLookDeltas(t *testing.T) {
	c, sess := newTestClient(t)
	p := sess.Game.player

	// Negative deltas must survive the 16-bit reassembly
	c.handleBinaryInput(inputFrame(0x00, -300, 100))
	if want := -300 * LookSensitivity; math.Abs(p.Yaw-want) > 1e-12 {
		t.Errorf("expected yaw %f, got %f", want, p.Yaw)
	}
	if want := -100 * LookSensitivity; math.Abs(p.Pitch-want) > 1e-12 {
		t.Errorf("expected pitch %f, got %f", want, p.Pitch)
	}

	// A zero delta pair leaves the view untouched
	yaw, pitch := p.Yaw, p.Pitch
	c.handleBinaryInput(inputFrame(0x00, 0, 0))
	if p.Yaw != yaw || p.Pitch != pitch {
		t.Error("zero look delta must not move the view")
	}
}

func TestBinaryInputWithoutSession(t *testing.T) {
	hub := NewHub(nil)
	defer hub.sessions.Stop()
	c := NewClient(hub, nil, "203.0.113.1")

	// No session attached: the frame is dropped, not crashed on
	c.handleBinaryInput(inputFrame(0xFF, 50, 50))
}

func TestMessageRoutingIntentAndLook(t *testing.T) {
	c, sess := newTestClient(t)
	p := sess.Game.player

	c.handleMessage([]byte(`{"t":"intent","d":{"n":"w","h":true}}`))
	if !p.Held[IntentForward] {
		t.Error("intent envelope should set the held flag")
	}
	c.handleMessage([]byte(`{"t":"intent","d":{"n":"w","h":false}}`))
	if p.Held[IntentForward] {
		t.Error("intent envelope should clear the held flag")
	}

	c.handleMessage([]byte(`{"t":"look","d":{"dx":500,"dy":0}}`))
	if want := 500 * LookSensitivity; math.Abs(p.Yaw-want) > 1e-12 {
		t.Errorf("expected yaw %f after look envelope, got %f", want, p.Yaw)
	}

	// Garbage neither routes nor panics
	c.handleMessage([]byte(`not json`))
	c.handleMessage([]byte(`{"t":"no_such_type"}`))
}

func TestCreateHandshake(t *testing.T) {
	hub := NewHub(nil)
	defer hub.sessions.Stop()
	c := NewClient(hub, nil, "203.0.113.1")

	c.handleMessage([]byte(`{"t":"create"}`))

	if c.sessionID == "" {
		t.Fatal("create should bind the client to a session")
	}
	sess := hub.sessions.GetSession(c.sessionID)
	if sess == nil {
		t.Fatal("created session not registered")
	}
	defer sess.Game.Stop()

	var raw []byte
	select {
	case raw = <-c.send:
	default:
		t.Fatal("no welcome message queued")
	}
	var env struct {
		T string     `json:"t"`
		D WelcomeMsg `json:"d"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if env.T != MsgWelcome || env.D.SID != sess.ID {
		t.Errorf("unexpected welcome: %+v", env)
	}

	// The issued token must reclaim exactly this session
	sid, err := hub.auth.ValidateSessionToken(env.D.Token)
	if err != nil || sid != sess.ID {
		t.Errorf("welcome token invalid: sid=%q err=%v", sid, err)
	}
}

func TestPauseRejectedFromController(t *testing.T) {
	c, sess := newTestClient(t)
	c.isController = true

	c.handleMessage([]byte(`{"t":"pause","d":{"p":true}}`))
	if sess.Game.paused {
		t.Error("a controller must not be able to pause the game")
	}

	c.isController = false
	c.handleMessage([]byte(`{"t":"pause","d":{"p":true}}`))
	if !sess.Game.paused {
		t.Error("the owner should be able to pause the game")
	}
}
