package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120 // binary input frames arrive at tick-ish rates
)

// Binary input frame: [0x01, flags, dxHi, dxLo, dyHi, dyLo]
// flags bit per intent, look delta as signed 16-bit pixel pairs.
const (
	inputFrameLen  = 6
	inputFrameTag  = 0x01
	flagForward    = 0x01
	flagLeft       = 0x02
	flagBack       = 0x04
	flagRight      = 0x08
	flagSprint     = 0x10
	flagJump       = 0x20
	flagReload     = 0x40
	flagFire       = 0x80
)

// Client represents a WebSocket connection
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	sessionID    string
	remoteAddr   string
	isController bool
	msgCount     int
	msgResetAt   time.Time
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		if msgType == websocket.BinaryMessage && len(message) == inputFrameLen && message[0] == inputFrameTag {
			c.handleBinaryInput(message)
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with 0xFF marker byte so WritePump can distinguish from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// session returns the client's session, or nil.
func (c *Client) session() *Session {
	if c.sessionID == "" {
		return nil
	}
	return c.hub.sessions.GetSession(c.sessionID)
}

// handleBinaryInput decodes a compact intent+look frame.
func (c *Client) handleBinaryInput(msg []byte) {
	sess := c.session()
	if sess == nil {
		return
	}
	flags := msg[1]
	g := sess.Game
	g.HandleIntent(IntentForward, flags&flagForward != 0)
	g.HandleIntent(IntentLeft, flags&flagLeft != 0)
	g.HandleIntent(IntentBack, flags&flagBack != 0)
	g.HandleIntent(IntentRight, flags&flagRight != 0)
	g.HandleIntent(IntentSprint, flags&flagSprint != 0)
	g.HandleIntent(IntentJump, flags&flagJump != 0)
	g.HandleIntent(IntentReload, flags&flagReload != 0)
	g.HandleIntent(IntentFire, flags&flagFire != 0)

	dx := int16(uint16(msg[2])<<8 | uint16(msg[3]))
	dy := int16(uint16(msg[4])<<8 | uint16(msg[5]))
	if dx != 0 || dy != 0 {
		g.HandleLook(float64(dx), float64(dy))
	}
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgResume:
		c.handleResume(env.D)
	case MsgIntent:
		c.handleIntent(env.D)
	case MsgLook:
		c.handleLook(env.D)
	case MsgPause:
		c.handlePause(env.D)
	case MsgRestart:
		c.handleRestart()
	case MsgLeave:
		c.handleLeave()
	case MsgControl:
		c.handleControl(env.D)
	case MsgLayoutGet:
		c.handleLayoutGet()
	case MsgLayoutSave:
		c.handleLayoutSave(env.D)
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
	}

	passHash := ""
	if msg.Passcode != "" {
		h, err := c.hub.auth.HashPasscode(msg.Passcode)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		passHash = h
	}

	sess := c.hub.sessions.CreateSession(passHash)
	if sess == nil {
		c.sendError("server full")
		return
	}

	c.sessionID = sess.ID
	c.isController = false
	sess.Game.SetOwner(c)
	sess.MarkAttached()

	token, err := c.hub.auth.IssueSessionToken(sess.ID)
	if err != nil {
		log.Printf("token issue error: %v", err)
	}
	c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{SID: sess.ID, Token: token}})
}

func (c *Client) handleResume(data json.RawMessage) {
	var msg ResumeMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sid, err := c.hub.auth.ValidateSessionToken(msg.Token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	sess := c.hub.sessions.GetSession(sid)
	if sess == nil {
		c.sendError("session expired")
		return
	}

	c.sessionID = sess.ID
	c.isController = false
	sess.Game.SetOwner(c)
	sess.MarkAttached()
	c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{SID: sess.ID, Token: msg.Token}})
}

func (c *Client) handleIntent(data json.RawMessage) {
	var msg IntentMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if sess := c.session(); sess != nil {
		sess.Game.HandleIntent(msg.Name, msg.Held)
	}
}

func (c *Client) handleLook(data json.RawMessage) {
	var msg LookMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if sess := c.session(); sess != nil {
		sess.Game.HandleLook(msg.DX, msg.DY)
	}
}

func (c *Client) handlePause(data json.RawMessage) {
	var msg PauseMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if sess := c.session(); sess != nil && !c.isController {
		sess.Game.SetPaused(msg.Paused)
	}
}

func (c *Client) handleRestart() {
	if sess := c.session(); sess != nil && !c.isController {
		sess.Game.Restart()
	}
}

func (c *Client) handleLeave() {
	if c.sessionID == "" {
		return
	}
	if c.isController {
		if sess := c.session(); sess != nil {
			sess.Game.RemoveController()
		}
	} else {
		c.hub.sessions.RemoveSession(c.sessionID)
	}
	c.sessionID = ""
	c.isController = false
}

func (c *Client) handleControl(data json.RawMessage) {
	var msg ControlMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(msg.SID)
	if sess == nil {
		c.sendError("session not found")
		return
	}
	if sess.PassHash != "" {
		if err := c.hub.auth.CheckPasscode(sess.PassHash, msg.Passcode, c.remoteAddr); err != nil {
			c.sendError(err.Error())
			return
		}
	}

	c.sessionID = sess.ID
	c.isController = true
	sess.Game.SetController(c)
	c.SendJSON(Envelope{T: MsgControlOK, Data: map[string]string{"sid": sess.ID}})
}

func (c *Client) handleLayoutGet() {
	c.SendJSON(Envelope{T: MsgLayout, Data: LoadLayout(c.hub.db)})
}

func (c *Client) handleLayoutSave(data json.RawMessage) {
	var layout ControlLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		c.sendError("bad layout")
		return
	}
	if !layout.Complete() {
		c.sendError("layout missing controls")
		return
	}
	if c.hub.db == nil {
		c.sendError("no settings store")
		return
	}
	if err := SaveLayout(c.hub.db, layout); err != nil {
		log.Printf("layout save error: %v", err)
		c.sendError("save failed")
		return
	}
	c.SendJSON(Envelope{T: MsgLayoutSaved})
}
