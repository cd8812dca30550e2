package users

import (
	"context"
	"errors"
	"fmt"

	goSession "github.com/MrEthical07/goSession"
	"github.com/google/uuid"
)

// Provider exposes a Repository as a goSession.UserProvider. Login
// identifiers are wallet addresses; subjects are user IDs.
type Provider struct {
	repo Repository
}

// NewProvider wraps repo.
func NewProvider(repo Repository) *Provider {
	return &Provider{repo: repo}
}

func (p *Provider) GetUserByID(ctx context.Context, id string) (goSession.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return goSession.User{}, fmt.Errorf("%w: malformed id", goSession.ErrUserNotFound)
	}
	u, err := p.repo.GetByID(ctx, uid)
	if err != nil {
		return goSession.User{}, mapLookupErr(err)
	}
	return ToSessionUser(u), nil
}

func (p *Provider) GetUserByIdentifier(ctx context.Context, identifier string) (goSession.User, error) {
	u, err := p.repo.GetByWallet(ctx, identifier)
	if err != nil {
		return goSession.User{}, mapLookupErr(err)
	}
	return ToSessionUser(u), nil
}

// ToSessionUser converts u to the engine's user value.
func ToSessionUser(u User) goSession.User {
	return goSession.User{
		ID:            u.ID.String(),
		WalletAddress: u.WalletAddress,
		Username:      u.Username,
	}
}

func mapLookupErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %w", goSession.ErrUserNotFound, err)
	}
	return err
}
