package goSession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
)

// Engine issues, verifies and revokes session tokens and evaluates the
// request gate. It is safe for concurrent use once built.
type Engine struct {
	config       Config
	jwtManager   *jwt.Manager
	store        session.RefreshStore
	rateLimiter  *rate.Limiter
	userProvider UserProvider
	verifiers    []SessionVerifier
	flowDeps     flows.Deps
	audit        *audit.Dispatcher
	metrics      *Metrics
	logger       *slog.Logger
}

// Close stops the audit dispatcher after draining queued events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot returns empty maps when metrics are disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// CookieConfig returns the cookie names and attributes the engine was built with.
func (e *Engine) CookieConfig() CookieConfig {
	if e == nil {
		return DefaultConfig().Cookie
	}
	return e.config.Cookie
}

// AccessTTL returns the configured access token lifetime.
func (e *Engine) AccessTTL() time.Duration {
	if e == nil {
		return 0
	}
	return e.config.JWT.AccessTTL
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.config.Store.OperationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.config.Store.OperationTimeout)
}

// IssueAccessToken mints an access token for subject. It touches no store.
func (e *Engine) IssueAccessToken(subject string) (string, error) {
	if e == nil || e.jwtManager == nil {
		return "", ErrEngineNotReady
	}

	res := flows.RunIssueAccess(subject, e.flowDeps.Issue)
	if res.Failure != flows.IssueFailureNone {
		return "", fmt.Errorf("%w: %v", ErrSessionCreationFailed, res.Err)
	}
	return res.Token, nil
}

// IssueRefreshToken describes the issuerefreshtoken operation and its observable behavior.
//
// IssueRefreshToken mints a refresh token and records it in the store. When
// the record cannot be written the token is discarded and the returned error
// matches both [ErrSessionCreationFailed] and the store error.
func (e *Engine) IssueRefreshToken(ctx context.Context, subject string) (string, error) {
	if e == nil || e.jwtManager == nil {
		return "", ErrEngineNotReady
	}

	opCtx, cancel := e.storeContext(ctx)
	defer cancel()

	res := flows.RunIssueRefresh(opCtx, subject, e.flowDeps.Issue)
	switch res.Failure {
	case flows.IssueFailureNone:
		return res.Token, nil
	case flows.IssueFailurePersist:
		e.metricInc(MetricSessionCreationFailed)
		e.metricInc(MetricStoreUnavailable)
		e.logger.Warn("goSession: refresh token not persisted", "subject", subject, "error", res.Err)
		e.emitAudit(ctx, auditEventRefreshPersistFailure, false, subject, PathNone, ErrSessionCreationFailed, nil)
		return "", fmt.Errorf("%w: %w", ErrSessionCreationFailed, res.Err)
	default:
		return "", fmt.Errorf("%w: %w", ErrSessionCreationFailed, res.Err)
	}
}

// IssueSession mints a token pair for an already authenticated subject.
func (e *Engine) IssueSession(ctx context.Context, subject string) (TokenPair, error) {
	access, err := e.IssueAccessToken(subject)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := e.IssueRefreshToken(ctx, subject)
	if err != nil {
		return TokenPair{}, err
	}

	e.metricInc(MetricSessionCreated)
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks an access token's signature, expiry and type.
func (e *Engine) VerifyAccess(ctx context.Context, token string) (*jwt.Claims, error) {
	if e == nil || len(e.verifiers) == 0 {
		return nil, ErrEngineNotReady
	}
	return e.verifiers[0].Verify(ctx, token)
}

// VerifyRefresh describes the verifyrefresh operation and its observable behavior.
//
// VerifyRefresh requires the token to be present in the refresh store before
// decoding it, so logout revokes a token whose signature is still valid.
// Store I/O failures return an error matching [ErrStoreUnavailable].
func (e *Engine) VerifyRefresh(ctx context.Context, token string) (*jwt.Claims, error) {
	if e == nil || len(e.verifiers) < 2 {
		return nil, ErrEngineNotReady
	}
	return e.verifiers[1].Verify(ctx, token)
}

// Authenticate describes the authenticate operation and its observable behavior.
//
// Authenticate evaluates the request gate. The access token is tried first
// and the refresh token only when it fails; both must be supplied. On success
// the subject's user is resolved and, subject to [GateConfig.RenewBefore], a
// replacement access token is minted into [AuthResult.AccessToken].
//
// Authenticate returns [ErrMissingToken], [ErrUnauthorized],
// [ErrRefreshRateLimited] or [ErrUserNotFound] on rejection.
func (e *Engine) Authenticate(ctx context.Context, accessToken, refreshToken string) (*AuthResult, error) {
	if e == nil || e.jwtManager == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricGateLatency, time.Since(start))
		}()
	}

	if accessToken == "" || refreshToken == "" {
		e.metricInc(MetricGateReject)
		e.emitAudit(ctx, auditEventGateReject, false, "", PathNone, ErrMissingToken, nil)
		return nil, ErrMissingToken
	}

	steps := make([]flows.GateStep, 0, len(e.verifiers))
	for _, v := range e.verifiers {
		step := flows.GateStep{
			Path:   int(v.Path()),
			Token:  accessToken,
			Verify: v.Verify,
		}
		if v.Path() == PathRefresh {
			step.Token = refreshToken
			if e.rateLimiter != nil && e.config.RateLimit.EnableRefreshThrottle {
				step.Before = e.checkRefreshRate
			}
		}
		steps = append(steps, step)
	}

	res := flows.RunGate(ctx, steps)

	accessExpired := len(res.StepErrs) > 0 && errors.Is(res.StepErrs[0], ErrTokenExpired)
	if accessExpired {
		e.metricInc(MetricAccessExpired)
	}
	for _, stepErr := range res.StepErrs {
		switch {
		case stepErr == nil:
		case errors.Is(stepErr, ErrStoreUnavailable):
			e.metricInc(MetricStoreUnavailable)
			e.logger.Warn("goSession: refresh store unavailable during gate", "error", stepErr)
		case errors.Is(stepErr, errRefreshRevoked):
			e.metricInc(MetricRefreshRevoked)
		}
	}

	switch res.Failure {
	case flows.GateFailureThrottled:
		e.metricInc(MetricRefreshRateLimited)
		e.emitAudit(ctx, auditEventGateReject, false, "", AuthPath(res.Path), ErrRefreshRateLimited, nil)
		return nil, ErrRefreshRateLimited
	case flows.GateFailureExhausted:
		e.metricInc(MetricGateReject)
		e.emitAudit(ctx, auditEventGateReject, false, "", PathNone, res.Err, func() map[string]string {
			return map[string]string{
				"access_expired": fmt.Sprint(accessExpired),
			}
		})
		return nil, ErrUnauthorized
	}

	path := AuthPath(res.Path)
	claims := res.Claims

	user, err := e.userProvider.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricGateUserNotFound)
			e.emitAudit(ctx, auditEventGateReject, false, claims.Subject, path, ErrUserNotFound, nil)
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	result := &AuthResult{
		User:          user,
		Subject:       claims.Subject,
		Path:          path,
		AccessExpired: accessExpired,
		Claims:        claims,
	}

	if e.shouldRenew(path, claims) {
		issued := flows.RunIssueAccess(claims.Subject, e.flowDeps.Issue)
		if issued.Failure != flows.IssueFailureNone {
			return nil, fmt.Errorf("%w: %v", ErrSessionCreationFailed, issued.Err)
		}
		result.AccessToken = issued.Token
		e.metricInc(MetricAccessRenewed)
	}

	if path == PathRefresh {
		e.metricInc(MetricGateAllowRefresh)
		e.emitAudit(ctx, auditEventGateAllowRefresh, true, claims.Subject, path, nil, nil)
	} else {
		e.metricInc(MetricGateAllowAccess)
		e.emitAudit(ctx, auditEventGateAllowAccess, true, claims.Subject, path, nil, nil)
	}

	return result, nil
}

func (e *Engine) shouldRenew(path AuthPath, claims *jwt.Claims) bool {
	if path != PathAccess {
		return true
	}
	if e.config.Gate.RenewBefore <= 0 {
		return true
	}
	return e.jwtManager.Remaining(claims) < e.config.Gate.RenewBefore
}

// checkRefreshRate refuses the refresh step once the token's budget is spent.
// Limiter backend errors are logged and do not block the request.
func (e *Engine) checkRefreshRate(ctx context.Context, token string) error {
	err := e.rateLimiter.CheckRefresh(ctx, session.HashToken(token))
	if err == nil {
		return nil
	}
	if errors.Is(err, rate.ErrRateLimited) {
		return ErrRefreshRateLimited
	}
	e.logger.Warn("goSession: refresh limiter unavailable", "error", err)
	return nil
}

// Logout deletes the record of refreshToken. Unknown or already revoked
// tokens are not an error.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if refreshToken == "" {
		return ErrMissingToken
	}

	subject := ""
	if claims, err := e.jwtManager.DecodeType(refreshToken, jwt.TypeRefresh); err == nil {
		subject = claims.Subject
	}

	opCtx, cancel := e.storeContext(ctx)
	defer cancel()

	if err := flows.RunLogout(opCtx, refreshToken, e.flowDeps.Logout); err != nil {
		e.metricInc(MetricStoreUnavailable)
		e.emitAudit(ctx, auditEventLogout, false, subject, PathNone, ErrSessionInvalidationFailed, nil)
		return fmt.Errorf("%w: %w", ErrSessionInvalidationFailed, err)
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, subject, PathNone, nil, nil)
	return nil
}

// LogoutAll deletes every refresh record of subject.
func (e *Engine) LogoutAll(ctx context.Context, subject string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if subject == "" {
		return ErrUserNotFound
	}

	opCtx, cancel := e.storeContext(ctx)
	defer cancel()

	if err := flows.RunLogoutAll(opCtx, subject, e.flowDeps.Logout); err != nil {
		e.metricInc(MetricStoreUnavailable)
		e.emitAudit(ctx, auditEventLogoutAll, false, subject, PathNone, ErrSessionInvalidationFailed, nil)
		return fmt.Errorf("%w: %w", ErrSessionInvalidationFailed, err)
	}

	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditEventLogoutAll, true, subject, PathNone, nil, nil)
	return nil
}

// Ping checks the refresh store and reports its round-trip latency.
func (e *Engine) Ping(ctx context.Context) (time.Duration, error) {
	if e == nil || e.store == nil {
		return 0, ErrEngineNotReady
	}

	opCtx, cancel := e.storeContext(ctx)
	defer cancel()

	return e.store.Ping(opCtx)
}
