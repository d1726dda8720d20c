package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/zhouzirui/funds-assistant/backend/internal/model/conversation"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS funds_sessions (
	client_key   TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	transcript   TEXT NOT NULL,
	flow         TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	last_updated TIMESTAMPTZ NOT NULL
)`

const upsertSession = `
INSERT INTO funds_sessions (client_key, session_id, transcript, flow, created_at, last_updated)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (client_key)
DO UPDATE SET
	session_id = EXCLUDED.session_id,
	transcript = EXCLUDED.transcript,
	flow = EXCLUDED.flow,
	created_at = EXCLUDED.created_at,
	last_updated = EXCLUDED.last_updated`

// OpenPostgres opens and pings a Postgres connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database connection string is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}

// PostgresStore persists sessions in the funds_sessions table so several
// instances can share them.
type PostgresStore struct {
	db    *sql.DB
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

// NewPostgresStore wraps an open database handle. Call Migrate before first use.
func NewPostgresStore(db *sql.DB, ttl time.Duration, opts ...Option) *PostgresStore {
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return &PostgresStore{db: db, ttl: ttl, now: o.now, newID: o.newID}
}

// Migrate creates the sessions table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("failed to create funds_sessions table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, clientKey string) (conversation.Session, error) {
	if clientKey == "" {
		return conversation.Session{}, ErrSessionNotFound
	}

	session := conversation.NewSession(s.newID(), s.now())
	if err := s.save(ctx, clientKey, session); err != nil {
		return conversation.Session{}, err
	}
	return session, nil
}

func (s *PostgresStore) Get(ctx context.Context, clientKey, expectedID string) (conversation.Session, error) {
	const query = `
		SELECT session_id, transcript, flow, created_at, last_updated
		FROM funds_sessions
		WHERE client_key = $1`

	var (
		session conversation.Session
		flow    string
	)
	err := s.db.QueryRowContext(ctx, query, clientKey).Scan(
		&session.ID,
		&session.Transcript,
		&flow,
		&session.CreatedAt,
		&session.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return conversation.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return conversation.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	session.Flow, _ = conversation.ParseIntent(flow)
	session.CreatedAt = session.CreatedAt.UTC()
	session.LastUpdated = session.LastUpdated.UTC()

	if session.Expired(s.now(), s.ttl) {
		if err := s.Clear(ctx, clientKey); err != nil {
			return conversation.Session{}, err
		}
		return conversation.Session{}, ErrSessionNotFound
	}
	if session.ID != expectedID {
		return conversation.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *PostgresStore) Update(ctx context.Context, clientKey string, session conversation.Session) error {
	if clientKey == "" {
		return ErrSessionNotFound
	}
	return s.save(ctx, clientKey, session)
}

func (s *PostgresStore) Clear(ctx context.Context, clientKey string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM funds_sessions WHERE client_key = $1`, clientKey); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Sweep deletes sessions idle for longer than the ttl.
func (s *PostgresStore) Sweep(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	cutoff := s.now().Add(-s.ttl).UTC()
	res, err := s.db.ExecContext(ctx, `DELETE FROM funds_sessions WHERE last_updated < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

func (s *PostgresStore) save(ctx context.Context, clientKey string, session conversation.Session) error {
	_, err := s.db.ExecContext(ctx, upsertSession,
		clientKey,
		session.ID,
		session.Transcript,
		session.Flow.String(),
		session.CreatedAt.UTC(),
		session.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
