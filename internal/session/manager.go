package session

import (
	"context"
	"sync"
	"time"

	"maitred/internal/catalog"
	"maitred/internal/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager tracks live sessions
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	catalog  *catalog.Catalog
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager creates a manager whose sessions price orders against cat
func NewManager(cat *catalog.Catalog, metrics *monitoring.Metrics, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		catalog:  cat,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a new session with a random ID
func (m *Manager) Create() *Session {
	s := newSession(uuid.New().String(), m.catalog, m.logger, m.now)

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetActiveSessions(n)
	m.logger.Info("Session created", zap.String("session", s.ID))
	return s
}

// Get returns a session by ID
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete ends a session. It reports whether the session existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if ok {
		m.metrics.SetActiveSessions(n)
		m.logger.Info("Session deleted", zap.String("session", id))
	}
	return ok
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than maxIdle and returns how many were removed
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if removed > 0 {
		m.metrics.SetActiveSessions(n)
		m.logger.Info("Idle sessions expired", zap.Int("removed", removed), zap.Int("active", n))
	}
	return removed
}

// RunSweeper sweeps idle sessions every interval until ctx is cancelled
func (m *Manager) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(maxIdle)
		}
	}
}
