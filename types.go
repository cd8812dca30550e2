package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/jwt"
)

// User is the account record resolved for a verified subject.
type User struct {
	ID            string `json:"id"`
	WalletAddress string `json:"wallet_address"`
	Username      string `json:"username"`
}

// UserProvider is the user store collaborator. Implementations return an
// error matching [ErrUserNotFound] for unknown users.
type UserProvider interface {
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (User, error)
}

// TokenPair carries a freshly minted access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	User   User
	Tokens TokenPair
}

// AuthPath identifies which token allowed a gated request.
type AuthPath int

const (
	// PathNone is the zero value; it never appears on an allowed request.
	PathNone AuthPath = iota
	// PathAccess means the access token verified.
	PathAccess
	// PathRefresh means the access token failed and the refresh token verified.
	PathRefresh
)

func (p AuthPath) String() string {
	switch p {
	case PathAccess:
		return "access"
	case PathRefresh:
		return "refresh"
	default:
		return "none"
	}
}

// AuthResult is the outcome of an allowed gate evaluation.
//
// AccessToken is the freshly minted replacement access token, or empty when
// the presented one was kept under the renewal policy. AccessExpired reports
// whether the access token failed only because it had expired.
type AuthResult struct {
	User          User
	Subject       string
	Path          AuthPath
	AccessToken   string
	AccessExpired bool
	Claims        *jwt.Claims
}
