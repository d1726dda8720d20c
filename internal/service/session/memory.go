package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/funds-assistant/backend/internal/model/conversation"
)

// MemoryStore keeps sessions in process memory, suitable for a single instance.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]conversation.Session
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
}

// NewMemoryStore builds an in-memory store whose sessions expire after ttl of inactivity.
func NewMemoryStore(ttl time.Duration, opts ...Option) *MemoryStore {
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}

	return &MemoryStore{
		sessions: make(map[string]conversation.Session),
		ttl:      ttl,
		now:      o.now,
		newID:    o.newID,
	}
}

func (m *MemoryStore) Create(_ context.Context, clientKey string) (conversation.Session, error) {
	if clientKey == "" {
		return conversation.Session{}, ErrSessionNotFound
	}

	session := conversation.NewSession(m.newID(), m.now())

	m.mu.Lock()
	m.sessions[clientKey] = session
	m.mu.Unlock()

	return session, nil
}

func (m *MemoryStore) Get(_ context.Context, clientKey, expectedID string) (conversation.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[clientKey]
	if !ok {
		return conversation.Session{}, ErrSessionNotFound
	}
	if session.Expired(m.now(), m.ttl) {
		delete(m.sessions, clientKey)
		return conversation.Session{}, ErrSessionNotFound
	}
	if session.ID != expectedID {
		return conversation.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (m *MemoryStore) Update(_ context.Context, clientKey string, session conversation.Session) error {
	if clientKey == "" {
		return ErrSessionNotFound
	}

	m.mu.Lock()
	m.sessions[clientKey] = session
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, clientKey string) error {
	m.mu.Lock()
	delete(m.sessions, clientKey)
	m.mu.Unlock()
	return nil
}

// Sweep removes every expired session.
func (m *MemoryStore) Sweep(_ context.Context) (int, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, session := range m.sessions {
		if session.Expired(now, m.ttl) {
			delete(m.sessions, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
