package goSession

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goSession/internal/flows"
)

// Login describes the login operation and its observable behavior.
//
// Login resolves identifier (a wallet address) through the user provider and
// issues a token pair for the matched user. Unknown identifiers count against
// the login limiter when throttling is enabled.
//
// Login may return [ErrInvalidIdentifier], [ErrUserNotFound],
// [ErrLoginRateLimited], [ErrStoreUnavailable] or [ErrSessionCreationFailed].
func (e *Engine) Login(ctx context.Context, identifier string) (*LoginResult, error) {
	if e == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}

	var user User
	deps := e.flowDeps.Login
	deps.LookupSubject = func(ctx context.Context, id string) (string, error) {
		u, err := e.userProvider.GetUserByIdentifier(ctx, id)
		if err != nil {
			return "", err
		}
		user = u
		return u.ID, nil
	}

	res := flows.RunLogin(ctx, identifier, deps)
	switch res.Failure {
	case flows.LoginFailureNone:
		e.metricInc(MetricLoginSuccess)
		e.emitAudit(ctx, auditEventLoginSuccess, true, res.Subject, PathNone, nil, nil)
		return &LoginResult{
			User: user,
			Tokens: TokenPair{
				AccessToken:  res.AccessToken,
				RefreshToken: res.RefreshToken,
			},
		}, nil
	case flows.LoginFailureInvalidInput:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", PathNone, ErrInvalidIdentifier, nil)
		return nil, ErrInvalidIdentifier
	case flows.LoginFailureRateLimited:
		e.metricInc(MetricLoginRateLimited)
		e.emitAudit(ctx, auditEventLoginRateLimited, false, "", PathNone, ErrLoginRateLimited, nil)
		return nil, ErrLoginRateLimited
	case flows.LoginFailureLimiter:
		e.metricInc(MetricLoginFailure)
		e.logger.Warn("goSession: login limiter unavailable", "error", res.Err)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", PathNone, ErrStoreUnavailable, nil)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
	case flows.LoginFailureUnknownIdentifier:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", PathNone, ErrUserNotFound, nil)
		return nil, ErrUserNotFound
	case flows.LoginFailureIssue:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, res.Subject, PathNone, res.Err, nil)
		return nil, res.Err
	default:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", PathNone, res.Err, nil)
		return nil, res.Err
	}
}
