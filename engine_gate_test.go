package goSession

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/session"
)

func TestAuthenticateAccessPath(t *testing.T) {
	env := newTestEnv(t, testConfig())
	pair := mustIssueSession(t, env.engine, "u1")

	res, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.Path != PathAccess {
		t.Fatalf("expected access path, got %v", res.Path)
	}
	if res.User != testUser {
		t.Fatalf("unexpected user %+v", res.User)
	}
	if res.AccessToken == "" {
		t.Fatal("expected renewed access token with zero RenewBefore")
	}
	if res.AccessExpired {
		t.Fatal("access token was not expired")
	}
	if got := env.engine.MetricsSnapshot().Counters[MetricGateAllowAccess]; got != 1 {
		t.Fatalf("expected one access-path allow, got %d", got)
	}
}

func TestAuthenticateAccessPathSkipsStore(t *testing.T) {
	env := newTestEnv(t, testConfig())
	pair := mustIssueSession(t, env.engine, "u1")

	env.mr.Close()
	res, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatalf("access path must not depend on the store: %v", err)
	}
	if res.Path != PathAccess {
		t.Fatalf("expected access path, got %v", res.Path)
	}
}

func TestAuthenticateFallsBackToRefresh(t *testing.T) {
	env := newTestEnv(t, testConfig())
	pair := mustIssueSession(t, env.engine, "u1")

	env.clock.Advance(61 * time.Minute)

	res, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.Path != PathRefresh {
		t.Fatalf("expected refresh path, got %v", res.Path)
	}
	if !res.AccessExpired {
		t.Fatal("expected AccessExpired to be reported")
	}
	if res.AccessToken == "" {
		t.Fatal("refresh path must mint a new access token")
	}

	claims, err := env.engine.VerifyAccess(context.Background(), res.AccessToken)
	if err != nil {
		t.Fatalf("renewed access token does not verify: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("renewed token subject %q", claims.Subject)
	}
}

func TestAuthenticateTamperedAccessFallsBack(t *testing.T) {
	env := newTestEnv(t, testConfig())
	pair := mustIssueSession(t, env.engine, "u1")

	res, err := env.engine.Authenticate(context.Background(), pair.AccessToken+"x", pair.RefreshToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.Path != PathRefresh || res.AccessExpired {
		t.Fatalf("expected refresh path for an invalid (not expired) access token, got %+v", res)
	}
}

func TestAuthenticateRejectsWhenBothFail(t *testing.T) {
	env := newTestEnv(t, testConfig())
	pair := mustIssueSession(t, env.engine, "u1")

	if err := env.engine.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	env.clock.Advance(2 * time.Hour)

	_, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	snap := env.engine.MetricsSnapshot()
	if snap.Counters[MetricGateReject] != 1 || snap.Counters[MetricRefreshRevoked] != 1 {
		t.Fatalf("unexpected counters %+v", snap.Counters)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	env := newTestEnv(t, testConfig())

	_, err := env.engine.Authenticate(context.Background(), "not-a-token", "also-not")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticateRequiresBothTokens(t *testing.T) {
	env := newTestEnv(t, testConfig())
	pair := mustIssueSession(t, env.engine, "u1")

	if _, err := env.engine.Authenticate(context.Background(), pair.AccessToken, ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken without refresh, got %v", err)
	}
	if _, err := env.engine.Authenticate(context.Background(), "", pair.RefreshToken); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken without access, got %v", err)
	}
}

func TestAuthenticateUserNotFound(t *testing.T) {
	env := newTestEnv(t, testConfig())
	pair := mustIssueSession(t, env.engine, "u1")
	env.users.remove("u1")

	_, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthenticateProviderErrorPropagates(t *testing.T) {
	env := newTestEnv(t, testConfig())
	pair := mustIssueSession(t, env.engine, "u1")
	boom := errors.New("db down")
	env.users.failWith = boom

	_, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken)
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestAuthenticateStoreOutageIsUnauthorized(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := &failingStore{
		RefreshStore: session.NewRedisStore(rdb, "gs"),
	}
	clock := newTestClock()
	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithRefreshStore(store).
		WithUserProvider(newMockUserProvider(testUser)).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	pair := mustIssueSession(t, engine, "u1")
	clock.Advance(2 * time.Hour)
	store.existsErr = session.ErrStoreUnavailable

	_, err = engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized on store outage, got %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricStoreUnavailable]; got != 1 {
		t.Fatalf("expected store outage metric, got %d", got)
	}
}

func TestAuthenticateRenewBeforeKeepsFreshToken(t *testing.T) {
	cfg := testConfig()
	cfg.Gate.RenewBefore = 10 * time.Minute
	env := newTestEnv(t, cfg)
	pair := mustIssueSession(t, env.engine, "u1")

	res, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.AccessToken != "" {
		t.Fatal("fresh access token must not be renewed")
	}

	env.clock.Advance(55 * time.Minute)
	res, err = env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.Path != PathAccess || res.AccessToken == "" {
		t.Fatalf("expected renewal inside RenewBefore window, got %+v", res)
	}
}

func TestAuthenticateRefreshThrottle(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.EnableRefreshThrottle = true
	cfg.RateLimit.MaxRefreshAttempts = 2
	cfg.RateLimit.RefreshCooldown = time.Minute
	env := newTestEnv(t, cfg)
	pair := mustIssueSession(t, env.engine, "u1")
	env.clock.Advance(2 * time.Hour)

	for i := 0; i < 2; i++ {
		if _, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	_, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken)
	if !errors.Is(err, ErrRefreshRateLimited) {
		t.Fatalf("expected ErrRefreshRateLimited, got %v", err)
	}

	env.mr.FastForward(time.Minute + time.Second)
	if _, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken); err != nil {
		t.Fatalf("expected budget reset after cooldown: %v", err)
	}
}

func TestLoginLogoutGateScenario(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	login, err := env.engine.Login(ctx, testUser.WalletAddress)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User != testUser {
		t.Fatalf("unexpected login user %+v", login.User)
	}

	if _, err := env.engine.Authenticate(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken); err != nil {
		t.Fatalf("gate after login: %v", err)
	}

	if err := env.engine.Logout(ctx, login.Tokens.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	// The access token stays valid until it expires; the gate only needs the
	// refresh token once access fails.
	if _, err := env.engine.Authenticate(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken); err != nil {
		t.Fatalf("access path should still allow: %v", err)
	}

	env.clock.Advance(61 * time.Minute)
	if _, err := env.engine.Authenticate(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout and expiry, got %v", err)
	}
}

func TestAuthenticateRefreshRecordExpires(t *testing.T) {
	env := newTestEnv(t, testConfig())
	pair := mustIssueSession(t, env.engine, "u1")

	env.mr.FastForward(31 * 24 * time.Hour)
	env.clock.Advance(2 * time.Hour)

	if _, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized once the record expired, got %v", err)
	}
	if n, err := env.rdb.Exists(context.Background(), "gs:rt:"+session.HashToken(pair.RefreshToken)).Result(); err != nil || n != 0 {
		t.Fatalf("expected expired record gone, n=%d err=%v", n, err)
	}
}

func TestAuthenticateLatencyHistogram(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.EnableLatencyHistograms = true
	env := newTestEnv(t, cfg)
	pair := mustIssueSession(t, env.engine, "u1")

	for i := 0; i < 3; i++ {
		if _, err := env.engine.Authenticate(context.Background(), pair.AccessToken, pair.RefreshToken); err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
	}

	var total uint64
	for _, v := range env.engine.MetricsSnapshot().Histograms[MetricGateLatency] {
		total += v
	}
	if total != 3 {
		t.Fatalf("expected 3 latency observations, got %d", total)
	}
}
