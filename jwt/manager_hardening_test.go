package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestManager(t *testing.T, clock *fakeClock) *Manager {
	t.Helper()
	cfg := Config{Secret: []byte(testSecret), Issuer: "gosession"}
	if clock != nil {
		cfg.Now = clock.Now
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestNewManagerRejectsWeakConfig(t *testing.T) {
	if _, err := NewManager(Config{}); err == nil {
		t.Fatal("expected empty secret to be rejected")
	}
	if _, err := NewManager(Config{Secret: []byte("short")}); err == nil {
		t.Fatal("expected short secret to be rejected")
	}
	if _, err := NewManager(Config{Secret: []byte(testSecret), Leeway: -time.Second}); err == nil {
		t.Fatal("expected negative leeway to be rejected")
	}
	if _, err := NewManager(Config{Secret: []byte(testSecret), Leeway: 5 * time.Minute}); err == nil {
		t.Fatal("expected oversized leeway to be rejected")
	}
}

func TestDecodeRejectsWrongAlgorithm(t *testing.T) {
	m := newTestManager(t, nil)

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	claims := Claims{Type: TypeAccess, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "gosession",
		IssuedAt:  gjwt.NewNumericDate(time.Now()),
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, claims).SignedString(priv)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected wrong algorithm to be rejected with ErrInvalidToken, got %v", err)
	}
}

func TestDecodeRejectsNoneAlgorithm(t *testing.T) {
	m := newTestManager(t, nil)

	claims := Claims{Type: TypeAccess, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "gosession",
		IssuedAt:  gjwt.NewNumericDate(time.Now()),
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims).SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected alg=none to be rejected, got %v", err)
	}
}

func TestDecodeIssuerAndLeeway(t *testing.T) {
	m, err := NewManager(Config{
		Secret: []byte(testSecret),
		Issuer: "gosession",
		Leeway: 30 * time.Second,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	sign := func(c Claims) string {
		t.Helper()
		s, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	wrongIssuer := sign(Claims{Type: TypeAccess, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "other",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
		IssuedAt:  gjwt.NewNumericDate(time.Now()),
	}})
	if _, err := m.Decode(wrongIssuer); err == nil {
		t.Fatal("expected wrong issuer to fail")
	}

	within := sign(Claims{Type: TypeAccess, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "gosession",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(-15 * time.Second)),
		IssuedAt:  gjwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	if _, err := m.Decode(within); err != nil {
		t.Fatalf("expected token within leeway to pass: %v", err)
	}

	expired := sign(Claims{Type: TypeAccess, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "gosession",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		IssuedAt:  gjwt.NewNumericDate(time.Now().Add(-3 * time.Minute)),
	}})
	_, err = m.Decode(expired)
	if !errors.Is(err, ErrInvalidToken) || !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired token to match ErrInvalidToken and ErrTokenExpired, got %v", err)
	}
}

func TestDecodeRejectsMissingExpiryAndSubject(t *testing.T) {
	m := newTestManager(t, nil)

	noExp, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, Claims{Type: TypeAccess, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:  "u1",
		Issuer:   "gosession",
		IssuedAt: gjwt.NewNumericDate(time.Now()),
	}}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Decode(noExp); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected token without exp to fail, got %v", err)
	}

	noSub, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, Claims{Type: TypeAccess, RegisteredClaims: gjwt.RegisteredClaims{
		Issuer:    "gosession",
		IssuedAt:  gjwt.NewNumericDate(time.Now()),
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Decode(noSub); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected token without subject to fail, got %v", err)
	}
}

func TestDecodeRejectsFutureIssuedAt(t *testing.T) {
	m := newTestManager(t, nil)

	future, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, Claims{Type: TypeAccess, RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "gosession",
		IssuedAt:  gjwt.NewNumericDate(time.Now().Add(time.Hour)),
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
	}}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Decode(future); err == nil {
		t.Fatal("expected iat in the future to fail")
	}
}

func TestDecodeWrongSecretFails(t *testing.T) {
	m := newTestManager(t, nil)
	other, err := NewManager(Config{Secret: []byte("ffffffffffffffffffffffffffffffff"), Issuer: "gosession"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims, err := other.NewClaims(TypeAccess, "u1", time.Hour)
	if err != nil {
		t.Fatalf("new claims: %v", err)
	}
	token, err := other.Issue(claims)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = m.Decode(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected signature mismatch to fail with ErrInvalidToken, got %v", err)
	}
	if errors.Is(err, ErrTokenExpired) {
		t.Fatal("signature mismatch must not be reported as expiry")
	}
}
