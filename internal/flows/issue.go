package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
)

// IssueFailureKind classifies issuance failures for root-level mapping.
type IssueFailureKind int

const (
	IssueFailureNone IssueFailureKind = iota
	IssueFailureClaims
	IssueFailureSign
	IssueFailurePersist
	IssueFailureCanceled
)

// IssueResult carries either a signed token or failure metadata.
type IssueResult struct {
	Failure IssueFailureKind
	Err     error
	Token   string
	Claims  jwt.Claims
}

type IssueRefreshStore interface {
	Insert(ctx context.Context, rec session.Record) error
}

// IssueDeps captures issuance dependencies.
type IssueDeps struct {
	NewClaims  func(jwt.TokenType, string, time.Duration) (jwt.Claims, error)
	Sign       func(jwt.Claims) (string, error)
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Store      IssueRefreshStore
}

// RunIssueAccess mints an access token for subject. It touches no store.
func RunIssueAccess(subject string, deps IssueDeps) IssueResult {
	return sign(jwt.TypeAccess, subject, deps.AccessTTL, deps)
}

// RunIssueRefresh mints a refresh token and persists its record. The token is
// returned only when the record was written.
func RunIssueRefresh(ctx context.Context, subject string, deps IssueDeps) IssueResult {
	if err := ctx.Err(); err != nil {
		return IssueResult{Failure: IssueFailureCanceled, Err: err}
	}

	res := sign(jwt.TypeRefresh, subject, deps.RefreshTTL, deps)
	if res.Failure != IssueFailureNone {
		return res
	}

	rec := session.Record{
		Subject:   subject,
		Token:     res.Token,
		ExpiresAt: res.Claims.ExpiresAt.Time,
	}
	if err := deps.Store.Insert(ctx, rec); err != nil {
		return IssueResult{Failure: IssueFailurePersist, Err: err, Claims: res.Claims}
	}

	return res
}

func sign(typ jwt.TokenType, subject string, ttl time.Duration, deps IssueDeps) IssueResult {
	claims, err := deps.NewClaims(typ, subject, ttl)
	if err != nil {
		return IssueResult{Failure: IssueFailureClaims, Err: err}
	}

	token, err := deps.Sign(claims)
	if err != nil {
		return IssueResult{Failure: IssueFailureSign, Err: err, Claims: claims}
	}

	return IssueResult{
		Failure: IssueFailureNone,
		Token:   token,
		Claims:  claims,
	}
}
