package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenExpiry       = 24 * time.Hour
	bcryptCost        = 12
	maxPasscodeLen    = 32
	attemptRateWindow = 60 * time.Second
	maxAttachAttempts = 10
)

// Auth issues session-resume tokens and verifies controller passcodes.
type Auth struct {
	jwtSecret []byte

	// Rate limiting for passcode attempts (IP -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAuth creates an Auth handler, loading the signing secret from the
// settings store or generating and persisting a fresh one.
func NewAuth(db *DB) *Auth {
	return &Auth{
		jwtSecret: loadOrCreateSecret(db),
		rateMap:   make(map[string]*rateEntry),
	}
}

func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("warning: could not persist JWT secret: %v", err)
		}
	}
	return secret
}

// IssueSessionToken signs a token binding the given session id, so a
// reconnecting browser can reclaim its running session.
func (a *Auth) IssueSessionToken(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": time.Now().Add(tokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateSessionToken returns the session id a token was issued for.
func (a *Auth) ValidateSessionToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid claims")
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", fmt.Errorf("invalid claims")
	}
	return sid, nil
}

// HashPasscode hashes a session passcode for storage.
func (a *Auth) HashPasscode(pass string) (string, error) {
	if len(pass) > maxPasscodeLen {
		return "", fmt.Errorf("passcode too long")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasscode verifies an attach attempt, rate limited per IP.
func (a *Auth) CheckPasscode(hash, pass, ip string) error {
	if !a.allowAttempt(ip) {
		return fmt.Errorf("too many attempts, try again later")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)); err != nil {
		return fmt.Errorf("wrong passcode")
	}
	return nil
}

func (a *Auth) allowAttempt(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()
	now := time.Now()
	e := a.rateMap[ip]
	if e == nil || now.After(e.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(attemptRateWindow)}
		return true
	}
	e.Count++
	return e.Count <= maxAttachAttempts
}
