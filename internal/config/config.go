// Package config loads the goSession server configuration from the
// environment and an optional YAML file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http" env-prefix:"HTTP_"`
	Log      LogConfig      `yaml:"log" env-prefix:"LOG_"`
	JWT      JWTConfig      `yaml:"jwt" env-prefix:"JWT_"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis" env-prefix:"REDIS_"`
	Session  SessionConfig  `yaml:"session"`
}

type HTTPConfig struct {
	Addr              string        `yaml:"addr" env:"ADDR" env-default:":8080"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"FORMAT" env-default:"json"`
}

type JWTConfig struct {
	Secret string `yaml:"secret" env:"SECRET" env-required:"true"`
	Issuer string `yaml:"issuer" env:"ISSUER" env-default:"gosession"`
}

type DatabaseConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB" env-default:"0"`
}

type SessionConfig struct {
	RefreshStore     string        `yaml:"refresh_store" env:"REFRESH_STORE" env-default:"redis"`
	CookieSecure     bool          `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"true"`
	CookieDomain     string        `yaml:"cookie_domain" env:"COOKIE_DOMAIN"`
	LoginThrottle    bool          `yaml:"login_throttle" env:"LOGIN_THROTTLE" env-default:"true"`
	MaxLoginAttempts int           `yaml:"max_login_attempts" env:"MAX_LOGIN_ATTEMPTS" env-default:"5"`
	LoginCooldown    time.Duration `yaml:"login_cooldown" env:"LOGIN_COOLDOWN" env-default:"15m"`
	AuditLog         bool          `yaml:"audit_log" env:"AUDIT_LOG" env-default:"false"`
	Metrics          bool          `yaml:"metrics" env:"METRICS" env-default:"true"`
	PurgeInterval    time.Duration `yaml:"purge_interval" env:"PURGE_INTERVAL" env-default:"1h"`
}

// Load reads path (when non-empty) and then the environment, which wins.
func Load(path string) (*Config, error) {
	var cfg Config

	var err error
	if path != "" {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, fmt.Errorf("config: %w", statErr)
		}
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	cfg.Session.RefreshStore = strings.ToLower(strings.TrimSpace(cfg.Session.RefreshStore))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load with the path taken from [FetchConfigPath]; it panics on error.
func MustLoad() *Config {
	cfg, err := Load(FetchConfigPath(flag.CommandLine, os.Args[1:]))
	if err != nil {
		panic(err)
	}
	return cfg
}

// FetchConfigPath returns the -config flag value, falling back to CONFIG_PATH.
func FetchConfigPath(fs *flag.FlagSet, args []string) string {
	var res string
	fs.StringVar(&res, "config", "", "path to config file")
	_ = fs.Parse(args)

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}

// Validate checks cross-field constraints cleanenv cannot express.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < jwt.MinSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes", jwt.MinSecretLength)
	}
	switch c.Session.RefreshStore {
	case StoreRedis:
		if c.Redis.Addr == "" {
			return errors.New("config: REFRESH_STORE=redis requires REDIS_ADDR")
		}
	case StorePostgres:
	default:
		return fmt.Errorf("config: unknown REFRESH_STORE %q", c.Session.RefreshStore)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return errors.New("config: HTTP_SHUTDOWN_TIMEOUT must be > 0")
	}
	return nil
}

// UseRedis reports whether a Redis client is configured.
func (c *Config) UseRedis() bool {
	return c.Redis.Addr != ""
}

// SessionConfig maps the server settings onto a goSession.Config.
// Rate limiting needs Redis, so throttles are off without it.
func (c *Config) SessionConfig() goSession.Config {
	cfg := goSession.DefaultConfig()
	cfg.JWT.Secret = []byte(c.JWT.Secret)
	cfg.JWT.Issuer = c.JWT.Issuer

	cfg.Cookie.Secure = c.Session.CookieSecure
	cfg.Cookie.Domain = c.Session.CookieDomain

	cfg.RateLimit.EnableLoginThrottle = c.Session.LoginThrottle && c.UseRedis()
	cfg.RateLimit.MaxLoginAttempts = c.Session.MaxLoginAttempts
	cfg.RateLimit.LoginCooldown = c.Session.LoginCooldown
	if !cfg.RateLimit.EnableLoginThrottle {
		cfg.RateLimit.EnableIPThrottle = false
	}
	if !c.UseRedis() {
		cfg.RateLimit.EnableRefreshThrottle = false
	}

	cfg.Audit.Enabled = c.Session.AuditLog
	cfg.Metrics.Enabled = c.Session.Metrics
	cfg.Metrics.EnableLatencyHistograms = c.Session.Metrics
	return cfg
}
