package chat

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Sanket3212/LLM-food-order/internal/metrics"
)

// Manager owns the live sessions, one controller per browser session.
// Idle sessions are evicted after the configured TTL; nothing is persisted
// across restarts.
type Manager struct {
	backend     OrderBackend
	sink        TicketSink
	ticketDelay time.Duration
	ttl         time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager
func NewManager(backend OrderBackend, sink TicketSink, ticketDelay, ttl time.Duration) *Manager {
	return &Manager{
		backend:     backend,
		sink:        sink,
		ticketDelay: ticketDelay,
		ttl:         ttl,
		sessions:    make(map[string]*Session),
	}
}

// Get returns the session for the given ID if it exists
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// GetOrCreate returns the session for the given ID, bootstrapping a fresh
// one (health probe, menu and cart fetch) on first sight.
func (m *Manager) GetOrCreate(ctx context.Context, id string) *Session {
	if s, ok := m.Get(id); ok {
		return s
	}

	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		s.touch()
		return s
	}
	s := NewSession(id, m.backend, m.sink, m.ticketDelay)
	m.sessions[id] = s
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(m.Len()))
	log.WithFields(log.Fields{"session": id}).Info("New chat session")

	s.Bootstrap(ctx)
	return s
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle longer than the TTL and returns how many
// were removed
func (m *Manager) Sweep() int {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	evicted := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	if evicted > 0 {
		metrics.ActiveSessions.Set(float64(remaining))
		log.WithFields(log.Fields{"evicted": evicted, "remaining": remaining}).Info("Swept idle sessions")
	}
	return evicted
}

// StartSweeper runs Sweep periodically until the context is cancelled
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

// Drain waits for the detached ticket tasks of every live session. Called
// on shutdown so in-flight ticket creations are not cut off.
func (m *Manager) Drain() {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.WaitTickets()
	}
}
