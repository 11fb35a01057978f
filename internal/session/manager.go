package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const CookieName = "bot_session"

type entry struct {
	userID  int64
	expires time.Time
}

// Manager issues opaque session tokens for logged-in users. Tokens live
// in memory; restarting the process logs everyone out.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *Manager) Create(userID int64) string {
	token := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	m.sessions[token] = entry{userID: userID, expires: m.now().Add(m.ttl)}
	return token
}

// sweepLocked drops every expired session. Abandoned tokens are never
// resolved again, so Create is the one place they get collected.
func (m *Manager) sweepLocked() {
	now := m.now()
	for token, e := range m.sessions {
		if now.After(e.expires) {
			delete(m.sessions, token)
		}
	}
}

// Resolve returns the user behind a token. Expired tokens are dropped on
// the way out.
func (m *Manager) Resolve(token string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[token]
	if !ok {
		return 0, false
	}
	if m.now().After(e.expires) {
		delete(m.sessions, token)
		return 0, false
	}
	return e.userID, true
}

func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
