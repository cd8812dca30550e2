package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ErrStoreUnavailable is returned when the backing store cannot be reached or
// rejects an operation.
var ErrStoreUnavailable = errors.New("refresh store unavailable")

// ErrInvalidRecord is returned by Insert for records that cannot be persisted.
var ErrInvalidRecord = errors.New("invalid refresh record")

// Record is one persisted refresh token.
type Record struct {
	Subject   string
	Token     string
	ExpiresAt time.Time
}

// RefreshStore persists refresh tokens. A token is usable only while its
// record exists; deleting the record revokes the token even if its signature
// and expiry are still valid.
//
// Implementations must be safe for concurrent use.
type RefreshStore interface {
	Insert(ctx context.Context, rec Record) error
	Exists(ctx context.Context, token string) (bool, error)
	// Delete removes the record for token. Deleting an absent record is not an error.
	Delete(ctx context.Context, token string) error
	DeleteAllForSubject(ctx context.Context, subject string) error
	Ping(ctx context.Context) (time.Duration, error)
}

// HashToken returns the hex SHA-256 of a raw token. Stores key records by
// this value so raw tokens never reach the backend.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Clocked is implemented by stores that check expiry against a clock.
// The engine builder hands its own clock to such stores.
type Clocked interface {
	SetClock(now func() time.Time)
}

func validateRecord(rec Record, now time.Time) error {
	if strings.TrimSpace(rec.Subject) == "" {
		return errors.Join(ErrInvalidRecord, errors.New("empty subject"))
	}
	if rec.Token == "" {
		return errors.Join(ErrInvalidRecord, errors.New("empty token"))
	}
	if !rec.ExpiresAt.After(now) {
		return errors.Join(ErrInvalidRecord, errors.New("record already expired"))
	}
	return nil
}
