package flows

import (
	"context"
	"errors"
	"strings"
)

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureInvalidInput
	LoginFailureRateLimited
	LoginFailureLimiter
	LoginFailureUnknownIdentifier
	LoginFailureLookup
	LoginFailureIssue
)

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	Failure      LoginFailureKind
	Err          error
	Subject      string
	AccessToken  string
	RefreshToken string
}

// LoginDeps captures login dependencies. Rate hooks may be nil.
type LoginDeps struct {
	ClientIPFromContext func(context.Context) string
	Warn                func(string, ...any)

	CheckLoginRate     func(context.Context, string, string) error
	IncrementLoginRate func(context.Context, string, string) error
	ResetLoginRate     func(context.Context, string) error
	RateLimited        error

	// LookupSubject resolves identifier to a subject. NotFound marks the
	// error it returns for unknown identifiers.
	LookupSubject func(context.Context, string) (string, error)
	NotFound      error

	IssueSession func(context.Context, string) (string, string, error)
}

// RunLogin resolves identifier and issues a session for it.
func RunLogin(ctx context.Context, identifier string, deps LoginDeps) LoginResult {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return LoginResult{Failure: LoginFailureInvalidInput, Err: errors.New("empty identifier")}
	}

	ip := ""
	if deps.ClientIPFromContext != nil {
		ip = deps.ClientIPFromContext(ctx)
	}

	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, identifier, ip); err != nil {
			if deps.RateLimited != nil && errors.Is(err, deps.RateLimited) {
				return LoginResult{Failure: LoginFailureRateLimited, Err: err}
			}
			return LoginResult{Failure: LoginFailureLimiter, Err: err}
		}
	}

	subject, err := deps.LookupSubject(ctx, identifier)
	if err != nil {
		if deps.NotFound != nil && errors.Is(err, deps.NotFound) {
			if deps.IncrementLoginRate != nil {
				if incErr := deps.IncrementLoginRate(ctx, identifier, ip); incErr != nil {
					if deps.RateLimited != nil && errors.Is(incErr, deps.RateLimited) {
						return LoginResult{Failure: LoginFailureRateLimited, Err: incErr}
					}
					if deps.Warn != nil {
						deps.Warn("goSession: login limiter increment failed", "error", incErr)
					}
				}
			}
			return LoginResult{Failure: LoginFailureUnknownIdentifier, Err: err}
		}
		return LoginResult{Failure: LoginFailureLookup, Err: err}
	}

	access, refresh, err := deps.IssueSession(ctx, subject)
	if err != nil {
		return LoginResult{Failure: LoginFailureIssue, Err: err, Subject: subject}
	}

	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, identifier); err != nil && deps.Warn != nil {
			deps.Warn("goSession: login limiter reset failed", "error", err)
		}
	}

	return LoginResult{
		Failure:      LoginFailureNone,
		Subject:      subject,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}
