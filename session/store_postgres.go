package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLConn is the subset of *sql.DB used by [PostgresStore].
type SQLConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PingContext(ctx context.Context) error
}

// PostgresStore implements [RefreshStore] over the refresh_tokens table
// (see internal/migrations). Open the connection with the pgx stdlib driver.
type PostgresStore struct {
	db  SQLConn
	now func() time.Time
}

// NewPostgresStore creates a Postgres-backed refresh store.
func NewPostgresStore(db SQLConn) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// SetClock replaces the time source used for record validation and the
// expiry filter. A nil now is ignored. Call it before the store is shared.
func (s *PostgresStore) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Insert adds rec. Token hashes are unique; reinserting the same token fails.
func (s *PostgresStore) Insert(ctx context.Context, rec Record) error {
	now := s.now()
	if err := validateRecord(rec, now); err != nil {
		return err
	}

	query := `
		INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, query, HashToken(rec.Token), rec.Subject, rec.ExpiresAt.UTC(), now.UTC()); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Exists reports whether an unexpired row for token is present.
func (s *PostgresStore) Exists(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	query := `
		SELECT EXISTS(SELECT 1 FROM refresh_tokens WHERE token_hash = $1 AND expires_at > $2)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, HashToken(token), s.now().UTC()).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return exists, nil
}

// Delete removes the row for token (idempotent).
func (s *PostgresStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	query := `
		DELETE FROM refresh_tokens
		WHERE token_hash = $1
	`
	if _, err := s.db.ExecContext(ctx, query, HashToken(token)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteAllForSubject removes every row of subject (idempotent).
func (s *PostgresStore) DeleteAllForSubject(ctx context.Context, subject string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE user_id = $1
	`
	if _, err := s.db.ExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// PurgeExpired deletes rows whose expiry has passed and returns how many were removed.
// Expired rows are already ignored by Exists; purging only reclaims space.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE expires_at <= $1
	`
	res, err := s.db.ExecContext(ctx, query, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}

// Ping checks database reachability and returns the round-trip latency.
func (s *PostgresStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
