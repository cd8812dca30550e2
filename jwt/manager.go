package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest HS256 secret accepted by [NewManager].
const MinSecretLength = 32

var (
	// ErrInvalidToken is returned by [Manager.Decode] for every token that cannot be
	// trusted: malformed input, wrong algorithm, bad signature, wrong issuer,
	// wrong token type, or an elapsed expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is joined with [ErrInvalidToken] when the only problem is an
	// elapsed expiry, so callers can tell "expired" from "forged".
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidClaims is returned when claims cannot be issued.
	ErrInvalidClaims = errors.New("invalid claims")
)

// TokenType distinguishes the two token variants sharing one encoding.
type TokenType string

const (
	// TypeAccess marks a short-lived, never persisted token.
	TypeAccess TokenType = "access"
	// TypeRefresh marks a long-lived, store-tracked token.
	TypeRefresh TokenType = "refresh"
)

// Config defines the codec settings. Secret is the process-wide signing key.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Secret []byte
	Issuer string
	Leeway time.Duration
	Now    func() time.Time
}

// Manager signs and verifies HS256 session tokens. It is stateless and safe
// for concurrent use.
type Manager struct {
	config Config
}

// Claims is the signed payload of a session token.
type Claims struct {
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a ready codec.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires secret")
	}
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("hs256 secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	cfg.Secret = secret

	return &Manager{config: cfg}, nil
}

// Now returns the codec clock.
func (m *Manager) Now() time.Time {
	return m.config.Now()
}

// NewClaims builds claims for subject valid for ttl starting now. Each call
// carries a fresh random token ID.
func (m *Manager) NewClaims(typ TokenType, subject string, ttl time.Duration) (Claims, error) {
	if typ != TypeAccess && typ != TypeRefresh {
		return Claims{}, fmt.Errorf("%w: unknown token type %q", ErrInvalidClaims, typ)
	}
	if strings.TrimSpace(subject) == "" {
		return Claims{}, fmt.Errorf("%w: empty subject", ErrInvalidClaims)
	}
	// NumericDate has second precision; shorter lifetimes would encode exp == iat.
	if ttl < time.Second {
		return Claims{}, fmt.Errorf("%w: ttl must be at least 1s", ErrInvalidClaims)
	}

	now := m.config.Now()
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    m.config.Issuer,
		},
	}
	return claims, nil
}

// Issue encodes and signs claims. It has no side effects.
func (m *Manager) Issue(claims Claims) (string, error) {
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return "", fmt.Errorf("%w: iat and exp are required", ErrInvalidClaims)
	}
	if !claims.ExpiresAt.Time.After(claims.IssuedAt.Time) {
		return "", fmt.Errorf("%w: exp must be after iat", ErrInvalidClaims)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidClaims)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Decode verifies signature, structure, issuer and expiry and returns the
// embedded claims. Expired tokens fail; the returned error then matches both
// [ErrInvalidToken] and [ErrTokenExpired].
func (m *Manager) Decode(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.config.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

// DecodeType is [Manager.Decode] plus a check of the embedded token type.
func (m *Manager) DecodeType(tokenStr string, want TokenType) (*Claims, error) {
	claims, err := m.Decode(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.Type)
	}
	return claims, nil
}

// Remaining reports how long claims stay valid at the codec's current time.
func (m *Manager) Remaining(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(m.config.Now())
}
