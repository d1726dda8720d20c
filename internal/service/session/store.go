package session

import (
	"context"
	"errors"
	"time"

	"github.com/zhouzirui/funds-assistant/backend/internal/model/conversation"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps at most one active conversation per client key.
type Store interface {
	// Create replaces any session held by the client with a fresh one.
	Create(ctx context.Context, clientKey string) (conversation.Session, error)
	// Get returns the client's session only when its id equals expectedID.
	Get(ctx context.Context, clientKey, expectedID string) (conversation.Session, error)
	Update(ctx context.Context, clientKey string, session conversation.Session) error
	Clear(ctx context.Context, clientKey string) error
}

// Sweeper drops expired sessions and reports how many were removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Option customizes a store.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the time source used for timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}
