package goSession

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A Builder can be used for a single Build.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  session.RefreshStore

	userProvider UserProvider
	auditSink    AuditSink
	logger       *slog.Logger
	now          func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration. The secret is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client used by the rate limiter and, unless
// [Builder.WithRefreshStore] is also called, by a [session.RedisStore].
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithRefreshStore sets an explicit refresh store, such as [session.PostgresStore].
func (b *Builder) WithRefreshStore(store session.RefreshStore) *Builder {
	b.store = store
	return b
}

// WithUserProvider describes the withuserprovider operation and its observable behavior.
//
// The provider is required; Build fails without one.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink sets the sink fed by the audit dispatcher when audit is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger for engine warnings.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides the time source used for token timestamps and, for
// stores implementing [session.Clocked], refresh record expiry.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when the configuration is invalid or a required
// collaborator is missing.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("refresh store or redis client required")
		}
		store = session.NewRedisStore(b.redis, cfg.Store.RedisPrefix)
	}
	if c, ok := store.(session.Clocked); ok && b.now != nil {
		c.SetClock(b.now)
	}

	if cfg.rateLimitEnabled() && b.redis == nil {
		return nil, errors.New("RateLimit requires redis client")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}

	jm, err := jwt.NewManager(jwt.Config{
		Secret: cloneBytes(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		Leeway: cfg.JWT.Leeway,
		Now:    b.now,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		jwtManager:   jm,
		store:        store,
		userProvider: b.userProvider,
		logger:       logger,
		metrics:      NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	if cfg.rateLimitEnabled() {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			Prefix:                  cfg.Store.RedisPrefix,
			EnableIPThrottle:        cfg.RateLimit.EnableIPThrottle,
			EnableRefreshThrottle:   cfg.RateLimit.EnableRefreshThrottle,
			MaxLoginAttempts:        cfg.RateLimit.MaxLoginAttempts,
			LoginCooldownDuration:   cfg.RateLimit.LoginCooldown,
			MaxRefreshAttempts:      cfg.RateLimit.MaxRefreshAttempts,
			RefreshCooldownDuration: cfg.RateLimit.RefreshCooldown,
		})
	}

	engine.verifiers = []SessionVerifier{
		accessVerifier{codec: jm},
		refreshVerifier{codec: jm, store: store, timeout: engine.storeContext},
	}
	engine.flowDeps = engine.buildFlowDeps()

	b.built = true

	return engine, nil
}

func (e *Engine) buildFlowDeps() flows.Deps {
	deps := flows.Deps{
		Issue: flows.IssueDeps{
			NewClaims:  e.jwtManager.NewClaims,
			Sign:       e.jwtManager.Issue,
			AccessTTL:  e.config.JWT.AccessTTL,
			RefreshTTL: e.config.JWT.RefreshTTL,
			Store:      e.store,
		},
		Logout: flows.LogoutDeps{
			Store: e.store,
		},
		Login: flows.LoginDeps{
			ClientIPFromContext: clientIPFromContext,
			Warn:                e.logger.Warn,
			RateLimited:         rate.ErrRateLimited,
			NotFound:            ErrUserNotFound,
			IssueSession: func(ctx context.Context, subject string) (string, string, error) {
				pair, err := e.IssueSession(ctx, subject)
				if err != nil {
					return "", "", err
				}
				return pair.AccessToken, pair.RefreshToken, nil
			},
		},
	}

	if e.rateLimiter != nil && e.config.RateLimit.EnableLoginThrottle {
		deps.Login.CheckLoginRate = e.rateLimiter.CheckLogin
		deps.Login.IncrementLoginRate = e.rateLimiter.IncrementLogin
		deps.Login.ResetLoginRate = e.rateLimiter.ResetLogin
	}

	return deps
}
