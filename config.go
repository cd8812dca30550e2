package goSession

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/jwt"
)

// Config is the complete engine configuration.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	JWT       JWTConfig
	Store     StoreConfig
	Cookie    CookieConfig
	Gate      GateConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures the token codec. Secret is the process-wide HS256 key.
type JWTConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig configures the refresh store built from a Redis client.
// OperationTimeout bounds every store call made on behalf of a request.
type StoreConfig struct {
	RedisPrefix      string
	OperationTimeout time.Duration
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig controls cookie names and attributes used by middleware and handlers.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Path        string
	Domain      string
	Secure      bool
	HTTPOnly    bool
	SameSite    http.SameSite
}

/*
====================================
GATE CONFIG
====================================
*/

// GateConfig controls access-token renewal on gated requests. On the access
// path a fresh token is minted only when the presented one has less than
// RenewBefore left; zero renews on every request. The refresh path always mints.
type GateConfig struct {
	RenewBefore time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig controls login and refresh-path throttling. Any enabled
// throttle requires a Redis client.
type RateLimitConfig struct {
	EnableLoginThrottle   bool
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldown         time.Duration
	EnableRefreshThrottle bool
	MaxRefreshAttempts    int
	RefreshCooldown       time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and the gate latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the documented defaults: 1h access tokens, 30d
// refresh tokens, Secure HttpOnly SameSite=Strict cookies on "/", renewal on
// every gated request. The secret is left empty and must be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  time.Hour,
			RefreshTTL: 30 * 24 * time.Hour,
		},
		Store: StoreConfig{
			RedisPrefix:      "gs",
			OperationTimeout: 2 * time.Second,
		},
		Cookie: CookieConfig{
			AccessName:  "access_token",
			RefreshName: "refresh_token",
			Path:        "/",
			Secure:      true,
			HTTPOnly:    true,
			SameSite:    http.SameSiteStrictMode,
		},
		RateLimit: RateLimitConfig{
			EnableLoginThrottle:   true,
			MaxLoginAttempts:      5,
			LoginCooldown:         15 * time.Minute,
			EnableRefreshThrottle: false,
			MaxRefreshAttempts:    60,
			RefreshCooldown:       time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks internal consistency of the configuration.
func (c *Config) Validate() error {
	// JWT
	if len(c.JWT.Secret) == 0 {
		return errors.New("JWT Secret is required")
	}
	if len(c.JWT.Secret) < jwt.MinSecretLength {
		return fmt.Errorf("JWT Secret must be at least %d bytes", jwt.MinSecretLength)
	}
	if c.JWT.AccessTTL < time.Second {
		return errors.New("JWT AccessTTL must be >= 1s")
	}
	if c.JWT.RefreshTTL < time.Second {
		return errors.New("JWT RefreshTTL must be >= 1s")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	// Store
	if c.Store.OperationTimeout < 0 {
		return errors.New("Store OperationTimeout must be >= 0")
	}

	// Cookie
	if strings.TrimSpace(c.Cookie.AccessName) == "" || strings.TrimSpace(c.Cookie.RefreshName) == "" {
		return errors.New("Cookie names must be set")
	}
	if c.Cookie.AccessName == c.Cookie.RefreshName {
		return errors.New("Cookie AccessName and RefreshName must differ")
	}
	if c.Cookie.SameSite == http.SameSiteNoneMode && !c.Cookie.Secure {
		return errors.New("Cookie SameSite=None requires Secure")
	}

	// Gate
	if c.Gate.RenewBefore < 0 {
		return errors.New("Gate RenewBefore must be >= 0")
	}
	if c.Gate.RenewBefore > c.JWT.AccessTTL {
		return errors.New("Gate RenewBefore must be <= JWT AccessTTL")
	}

	// Rate limit
	if c.RateLimit.EnableLoginThrottle {
		if c.RateLimit.MaxLoginAttempts <= 0 {
			return errors.New("RateLimit MaxLoginAttempts must be > 0")
		}
		if c.RateLimit.LoginCooldown <= 0 {
			return errors.New("RateLimit LoginCooldown must be > 0")
		}
	}
	if c.RateLimit.EnableIPThrottle && !c.RateLimit.EnableLoginThrottle {
		return errors.New("RateLimit EnableIPThrottle requires EnableLoginThrottle")
	}
	if c.RateLimit.EnableRefreshThrottle {
		if c.RateLimit.MaxRefreshAttempts <= 0 {
			return errors.New("RateLimit MaxRefreshAttempts must be > 0")
		}
		if c.RateLimit.RefreshCooldown <= 0 {
			return errors.New("RateLimit RefreshCooldown must be > 0")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}

func (c *Config) rateLimitEnabled() bool {
	return c.RateLimit.EnableLoginThrottle || c.RateLimit.EnableRefreshThrottle
}
