// Package session holds per-conversation state: the order ledger and the message history.
package session

import (
	"sync"
	"time"

	"maitred/internal/catalog"
	"maitred/internal/models"
	"maitred/internal/ordering"

	"go.uber.org/zap"
)

// Greeting opens every conversation
const Greeting = "¡Hola! Bienvenido a nuestro restaurante. ¿En qué puedo ayudarte hoy? Si quieres ver nuestro menú, solo pídemelo."

// Session is one customer conversation. Callers hold the session lock for
// the duration of a turn so that turns of a session never interleave.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	ledger     *ordering.Ledger
	history    []models.Message
	lastActive time.Time
	now        func() time.Time
}

// New creates a session whose history starts with the greeting
func New(id string, cat *catalog.Catalog, logger *zap.Logger) *Session {
	return newSession(id, cat, logger, time.Now)
}

func newSession(id string, cat *catalog.Catalog, logger *zap.Logger, now func() time.Time) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	created := now()
	s := &Session{
		ID:         id,
		CreatedAt:  created,
		ledger:     ordering.NewLedger(cat, logger.With(zap.String("session", id))),
		lastActive: created,
		now:        now,
	}
	s.history = append(s.history, models.Message{Role: models.RoleAssistant, Content: Greeting, Timestamp: created})
	return s
}

// Lock acquires the turn lock
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the turn lock
func (s *Session) Unlock() { s.mu.Unlock() }

// Ledger returns the session's order. The caller must hold the lock.
func (s *Session) Ledger() *ordering.Ledger {
	return s.ledger
}

// Append adds a message to the history and marks the session active.
// The caller must hold the lock.
func (s *Session) Append(role models.Role, content string) models.Message {
	msg := models.Message{Role: role, Content: content, Timestamp: s.now()}
	s.history = append(s.history, msg)
	s.lastActive = msg.Timestamp
	return msg
}

// History returns a copy of the conversation. The caller must hold the lock.
func (s *Session) History() []models.Message {
	return append([]models.Message(nil), s.history...)
}

// LastActive returns when the session last received a message. The caller
// must hold the lock.
func (s *Session) LastActive() time.Time {
	return s.lastActive
}

// idleSince reports whether the session has been idle since cutoff. A
// session in the middle of a turn is never idle.
func (s *Session) idleSince(cutoff time.Time) bool {
	if !s.mu.TryLock() {
		return false
	}
	defer s.mu.Unlock()
	return s.lastActive.Before(cutoff)
}
