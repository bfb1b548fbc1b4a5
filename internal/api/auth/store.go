package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

const sessionCleanupInterval = 15 * time.Minute

var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side record behind a session cookie.
type Session struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore persists sessions keyed by the raw cookie token. Stores only
// ever see the token's SHA-256 digest.
type SessionStore interface {
	Save(ctx context.Context, token string, s Session) error
	Load(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// MemoryStore keeps sessions in process. Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time

	stop        chan struct{}
	cleanupOnce sync.Once
	closeOnce   sync.Once
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (m *MemoryStore) Save(ctx context.Context, token string, s Session) error {
	m.startCleanup()
	m.mu.Lock()
	m.sessions[hashToken(token)] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, token string) (Session, error) {
	key := hashToken(token)
	m.mu.RLock()
	s, ok := m.sessions[key]
	m.mu.RUnlock()
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if !s.ExpiresAt.After(m.now()) {
		m.mu.Lock()
		delete(m.sessions, key)
		m.mu.Unlock()
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, hashToken(token))
	m.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine.
func (m *MemoryStore) Close() {
	m.closeOnce.Do(func() { close(m.stop) })
}

func (m *MemoryStore) startCleanup() {
	m.cleanupOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(sessionCleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-m.stop:
					return
				case <-ticker.C:
					m.prune()
				}
			}
		}()
	})
}

func (m *MemoryStore) prune() {
	now := m.now()
	m.mu.Lock()
	for key, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.sessions, key)
		}
	}
	m.mu.Unlock()
}
