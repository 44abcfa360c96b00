package main

import (
	"sync"
	"time"
)

const (
	maxSessions    = 100
	orphanLifetime = 5 * time.Minute // detached sessions are reaped after this
	reapInterval   = time.Minute
)

// Session is one running survival game plus its attach secret.
type Session struct {
	ID       string
	Game     *Game
	PassHash string // bcrypt hash, "" when the session is open

	mu         sync.Mutex
	detachedAt time.Time // zero while an owner is attached
}

// MarkDetached records that the owning client went away.
func (s *Session) MarkDetached() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachedAt = time.Now()
}

// MarkAttached clears the detach timestamp.
func (s *Session) MarkAttached() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachedAt = time.Time{}
}

func (s *Session) orphanedSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.detachedAt.IsZero() && s.detachedAt.Before(cutoff)
}

// SessionManager handles creation, lookup and reaping of sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	stop     chan struct{}
}

// NewSessionManager creates a manager and starts its reaper.
func NewSessionManager() *SessionManager {
	sm := &SessionManager{
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go sm.reapLoop()
	return sm
}

// CreateSession starts a new game session. Returns nil if limit reached.
func (sm *SessionManager) CreateSession(passHash string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}

	sess := &Session{
		ID:       GenerateUUID(),
		Game:     NewGame(RandomSeed()),
		PassHash: passHash,
	}
	sm.sessions[sess.ID] = sess
	go sess.Game.Run()
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// RemoveSession stops and deletes a session.
func (sm *SessionManager) RemoveSession(id string) {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()
	if ok {
		sess.Game.Stop()
	}
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Stop shuts down the reaper and every session.
func (sm *SessionManager) Stop() {
	close(sm.stop)
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for id, sess := range sm.sessions {
		sess.Game.Stop()
		delete(sm.sessions, id)
	}
}

// reapLoop tears down sessions whose owner never came back. A resume token
// only reclaims a session that is still alive.
func (sm *SessionManager) reapLoop() {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-orphanLifetime)
			sm.mu.Lock()
			for id, sess := range sm.sessions {
				if sess.orphanedSince(cutoff) {
					sess.Game.Stop()
					delete(sm.sessions, id)
				}
			}
			sm.mu.Unlock()
		case <-sm.stop:
			return
		}
	}
}
