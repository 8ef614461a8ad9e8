package detection

import (
	"context"
	"sync"
)

// Manager owns the single detection session a deployment runs. One camera,
// one loop; starting while a session is live is refused rather than queued.
type Manager struct {
	mu      sync.Mutex
	session *Session
	build   func() *Session
}

func NewManager(build func() *Session) *Manager {
	return &Manager{build: build}
}

// Start creates and starts a session if none is running.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.session != nil {
		state := m.session.Status().State
		if state != STATE_IDLE && state != STATE_ERROR {
			m.mu.Unlock()
			return nil, ErrSessionActive
		}
	}
	session := m.build()
	m.session = session
	m.mu.Unlock()

	if err := session.Start(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// Stop stops the running session, if any.
func (m *Manager) Stop() error {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()
	if session == nil {
		return ErrSessionNotActive
	}
	return session.Stop()
}

// Current returns the session, which may be nil before the first Start.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}
