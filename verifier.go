package goSession

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
)

// SessionVerifier is one gate strategy. Verify returns the token's claims or
// an error matching [ErrInvalidToken] (or [ErrStoreUnavailable]).
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*jwt.Claims, error)
	Path() AuthPath
}

var errRefreshRevoked = fmt.Errorf("%w: refresh token not recognized", ErrInvalidToken)

type accessVerifier struct {
	codec *jwt.Manager
}

func (v accessVerifier) Path() AuthPath { return PathAccess }

func (v accessVerifier) Verify(_ context.Context, token string) (*jwt.Claims, error) {
	return v.codec.DecodeType(token, jwt.TypeAccess)
}

type refreshVerifier struct {
	codec   *jwt.Manager
	store   session.RefreshStore
	timeout func(context.Context) (context.Context, context.CancelFunc)
}

func (v refreshVerifier) Path() AuthPath { return PathRefresh }

// Verify checks store presence before the signature, so a revoked token is
// rejected even while its signature and expiry are still valid.
func (v refreshVerifier) Verify(ctx context.Context, token string) (*jwt.Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	opCtx, cancel := v.timeout(ctx)
	exists, err := v.store.Exists(opCtx, token)
	cancel()
	if err != nil {
		if errors.Is(err, session.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !exists {
		return nil, errRefreshRevoked
	}

	return v.codec.DecodeType(token, jwt.TypeRefresh)
}
