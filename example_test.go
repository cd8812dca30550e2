package goSession_test

import (
	"context"
	"errors"
	"fmt"

	goSession "github.com/MrEthical07/goSession"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type exampleUsers struct{}

func (exampleUsers) GetUserByID(_ context.Context, id string) (goSession.User, error) {
	if id != "user-1" {
		return goSession.User{}, goSession.ErrUserNotFound
	}
	return goSession.User{ID: "user-1", WalletAddress: "wallet-alice", Username: "alice"}, nil
}

func (u exampleUsers) GetUserByIdentifier(ctx context.Context, wallet string) (goSession.User, error) {
	if wallet != "wallet-alice" {
		return goSession.User{}, goSession.ErrUserNotFound
	}
	return u.GetUserByID(ctx, "user-1")
}

func exampleEngine() (*goSession.Engine, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := goSession.DefaultConfig()
	cfg.JWT.Secret = []byte("example-secret-0123456789abcdef0123")

	engine, err := goSession.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(exampleUsers{}).
		Build()
	if err != nil {
		panic(err)
	}
	return engine, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

// ExampleEngine_Authenticate walks a session from login through the gate to logout.
func ExampleEngine_Authenticate() {
	engine, done := exampleEngine()
	defer done()
	ctx := context.Background()

	login, err := engine.Login(ctx, "wallet-alice")
	if err != nil {
		panic(err)
	}

	res, err := engine.Authenticate(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken)
	if err != nil {
		panic(err)
	}
	fmt.Println(res.User.Username, res.Path)

	// A broken access token falls back to the refresh token.
	res, err = engine.Authenticate(ctx, "stale", login.Tokens.RefreshToken)
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Path, res.AccessToken != "")

	_ = engine.Logout(ctx, login.Tokens.RefreshToken)
	_, err = engine.Authenticate(ctx, "stale", login.Tokens.RefreshToken)
	fmt.Println(errors.Is(err, goSession.ErrUnauthorized))

	// Output:
	// alice access
	// refresh true
	// true
}

// ExampleEngine_Login shows how an unknown wallet is reported.
func ExampleEngine_Login() {
	engine, done := exampleEngine()
	defer done()

	_, err := engine.Login(context.Background(), "wallet-nobody")
	fmt.Println(errors.Is(err, goSession.ErrUserNotFound))

	// Output:
	// true
}
