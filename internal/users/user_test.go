package users

import (
	"context"
	"errors"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewValidates(t *testing.T) {
	cases := []struct {
		name    string
		wallet  string
		user    string
		message string
	}{
		{name: "short wallet", wallet: "abcd", user: "alice", message: "Wallet address is invalid."},
		{name: "short username", wallet: "wallet-1", user: "a", message: "Name is too short."},
		{name: "whitespace wallet", wallet: "  ab  ", user: "alice", message: "Wallet address is invalid."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.wallet, tc.user)
			require.ErrorIs(t, err, ErrInvalidUser)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tc.message, verr.Message)
		})
	}

	u, err := New(" wallet-1 ", "al")
	require.NoError(t, err)
	require.Equal(t, "wallet-1", u.WalletAddress)
	require.NotEqual(t, uuid.Nil, u.ID)
}

func TestUpdateApply(t *testing.T) {
	u, err := New("wallet-1", "alice")
	require.NoError(t, err)

	name := "bob"
	got, err := Update{Username: &name}.Apply(u)
	require.NoError(t, err)
	require.Equal(t, "bob", got.Username)
	require.Equal(t, u.WalletAddress, got.WalletAddress)

	short := "x"
	_, err = Update{WalletAddress: &short}.Apply(u)
	require.ErrorIs(t, err, ErrInvalidUser)
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	alice, _ := New("wallet-alice", "alice")
	require.NoError(t, repo.Create(ctx, alice))

	dup, _ := New("wallet-alice", "other")
	require.ErrorIs(t, repo.Create(ctx, dup), ErrAlreadyExists)

	got, err := repo.GetByWallet(ctx, "wallet-alice")
	require.NoError(t, err)
	require.Equal(t, alice, got)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)

	alice.Username = "alicia"
	require.NoError(t, repo.Update(ctx, alice))
	got, err = repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alicia", got.Username)

	ghost, _ := New("wallet-ghost", "ghost")
	require.ErrorIs(t, repo.Update(ctx, ghost), ErrNotFound)
}

func TestProviderMapsErrors(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	alice, _ := New("wallet-alice", "alice")
	require.NoError(t, repo.Create(ctx, alice))

	p := NewProvider(repo)

	u, err := p.GetUserByID(ctx, alice.ID.String())
	require.NoError(t, err)
	require.Equal(t, goSession.User{ID: alice.ID.String(), WalletAddress: "wallet-alice", Username: "alice"}, u)

	u, err = p.GetUserByIdentifier(ctx, "wallet-alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID.String(), u.ID)

	_, err = p.GetUserByID(ctx, "not-a-uuid")
	require.ErrorIs(t, err, goSession.ErrUserNotFound)

	_, err = p.GetUserByID(ctx, uuid.NewString())
	require.ErrorIs(t, err, goSession.ErrUserNotFound)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = p.GetUserByIdentifier(ctx, "wallet-nobody")
	require.ErrorIs(t, err, goSession.ErrUserNotFound)
}

type brokenRepo struct{ Repository }

func (brokenRepo) GetByWallet(context.Context, string) (User, error) {
	return User{}, errors.New("connection refused")
}

func TestProviderPassesBackendErrors(t *testing.T) {
	_, err := NewProvider(brokenRepo{}).GetUserByIdentifier(context.Background(), "wallet-alice")
	require.Error(t, err)
	require.False(t, errors.Is(err, goSession.ErrUserNotFound))
}
