package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
)

type fakeStore struct {
	insertErr error
	inserted  []session.Record
	deleted   []string
	deleteAll []string
}

func (s *fakeStore) Insert(_ context.Context, rec session.Record) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, rec)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, token string) error {
	s.deleted = append(s.deleted, token)
	return nil
}

func (s *fakeStore) DeleteAllForSubject(_ context.Context, subject string) error {
	s.deleteAll = append(s.deleteAll, subject)
	return nil
}

func testIssueDeps(t *testing.T, store IssueRefreshStore) IssueDeps {
	t.Helper()
	m, err := jwt.NewManager(jwt.Config{Secret: []byte("0123456789abcdef0123456789abcdef")})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return IssueDeps{
		NewClaims:  m.NewClaims,
		Sign:       m.Issue,
		AccessTTL:  time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
		Store:      store,
	}
}

func TestRunIssueRefreshPersists(t *testing.T) {
	store := &fakeStore{}
	res := RunIssueRefresh(context.Background(), "u1", testIssueDeps(t, store))
	if res.Failure != IssueFailureNone {
		t.Fatalf("unexpected failure %v: %v", res.Failure, res.Err)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected one record, got %d", len(store.inserted))
	}
	rec := store.inserted[0]
	if rec.Token != res.Token || rec.Subject != "u1" {
		t.Fatalf("record does not match issued token: %+v", rec)
	}
	if !rec.ExpiresAt.Equal(res.Claims.ExpiresAt.Time) {
		t.Fatal("record expiry must match token expiry")
	}
}

func TestRunIssueRefreshPersistFailureDiscardsToken(t *testing.T) {
	store := &fakeStore{insertErr: session.ErrStoreUnavailable}
	res := RunIssueRefresh(context.Background(), "u1", testIssueDeps(t, store))
	if res.Failure != IssueFailurePersist {
		t.Fatalf("expected persist failure, got %v", res.Failure)
	}
	if res.Token != "" {
		t.Fatal("token must not be returned when persistence fails")
	}
	if !errors.Is(res.Err, session.ErrStoreUnavailable) {
		t.Fatalf("expected store error, got %v", res.Err)
	}
}

func TestRunIssueRefreshCanceledContext(t *testing.T) {
	store := &fakeStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := RunIssueRefresh(ctx, "u1", testIssueDeps(t, store))
	if res.Failure != IssueFailureCanceled || res.Token != "" {
		t.Fatalf("expected canceled failure without token, got %+v", res)
	}
	if len(store.inserted) != 0 {
		t.Fatal("canceled issuance must not persist")
	}
}

func TestRunIssueAccessClaimsFailure(t *testing.T) {
	res := RunIssueAccess("", testIssueDeps(t, &fakeStore{}))
	if res.Failure != IssueFailureClaims {
		t.Fatalf("expected claims failure for empty subject, got %v", res.Failure)
	}
}

func TestRunGateFirstStepWins(t *testing.T) {
	calls := 0
	steps := []GateStep{
		{Path: 1, Token: "a", Verify: func(context.Context, string) (*jwt.Claims, error) {
			calls++
			return &jwt.Claims{}, nil
		}},
		{Path: 2, Token: "r", Verify: func(context.Context, string) (*jwt.Claims, error) {
			calls++
			return &jwt.Claims{}, nil
		}},
	}
	res := RunGate(context.Background(), steps)
	if res.Failure != GateFailureNone || res.Path != 1 {
		t.Fatalf("expected first step to allow, got %+v", res)
	}
	if calls != 1 {
		t.Fatalf("second step must not run, calls=%d", calls)
	}
}

func TestRunGateFallsBack(t *testing.T) {
	accessErr := errors.New("access expired")
	steps := []GateStep{
		{Path: 1, Verify: func(context.Context, string) (*jwt.Claims, error) { return nil, accessErr }},
		{Path: 2, Verify: func(context.Context, string) (*jwt.Claims, error) { return &jwt.Claims{}, nil }},
	}
	res := RunGate(context.Background(), steps)
	if res.Failure != GateFailureNone || res.Path != 2 {
		t.Fatalf("expected fallback step to allow, got %+v", res)
	}
	if !errors.Is(res.StepErrs[0], accessErr) || res.StepErrs[1] != nil {
		t.Fatalf("unexpected step errors %v", res.StepErrs)
	}
}

func TestRunGateExhausted(t *testing.T) {
	last := errors.New("refresh revoked")
	steps := []GateStep{
		{Path: 1, Verify: func(context.Context, string) (*jwt.Claims, error) { return nil, errors.New("bad") }},
		{Path: 2, Verify: func(context.Context, string) (*jwt.Claims, error) { return nil, last }},
	}
	res := RunGate(context.Background(), steps)
	if res.Failure != GateFailureExhausted {
		t.Fatalf("expected exhausted, got %v", res.Failure)
	}
	if !errors.Is(res.Err, last) {
		t.Fatalf("expected last step error, got %v", res.Err)
	}
}

func TestRunGateThrottledStops(t *testing.T) {
	throttle := errors.New("throttled")
	verified := false
	steps := []GateStep{
		{Path: 1, Verify: func(context.Context, string) (*jwt.Claims, error) { return nil, errors.New("bad") }},
		{
			Path:   2,
			Before: func(context.Context, string) error { return throttle },
			Verify: func(context.Context, string) (*jwt.Claims, error) {
				verified = true
				return &jwt.Claims{}, nil
			},
		},
	}
	res := RunGate(context.Background(), steps)
	if res.Failure != GateFailureThrottled || res.Path != 2 {
		t.Fatalf("expected throttled at step 2, got %+v", res)
	}
	if verified {
		t.Fatal("throttled step must not verify")
	}
}

func TestRunLogin(t *testing.T) {
	notFound := errors.New("not found")
	limited := errors.New("limited")
	var resets, increments int

	deps := LoginDeps{
		RateLimited:        limited,
		NotFound:           notFound,
		CheckLoginRate:     func(context.Context, string, string) error { return nil },
		IncrementLoginRate: func(context.Context, string, string) error { increments++; return nil },
		ResetLoginRate:     func(context.Context, string) error { resets++; return nil },
		LookupSubject: func(_ context.Context, id string) (string, error) {
			if id == "wallet-1" {
				return "u1", nil
			}
			return "", notFound
		},
		IssueSession: func(_ context.Context, subject string) (string, string, error) {
			return "a-" + subject, "r-" + subject, nil
		},
	}

	res := RunLogin(context.Background(), " wallet-1 ", deps)
	if res.Failure != LoginFailureNone || res.Subject != "u1" || res.AccessToken != "a-u1" || res.RefreshToken != "r-u1" {
		t.Fatalf("unexpected login result %+v", res)
	}
	if resets != 1 {
		t.Fatalf("expected limiter reset on success, got %d", resets)
	}

	res = RunLogin(context.Background(), "nobody", deps)
	if res.Failure != LoginFailureUnknownIdentifier || increments != 1 {
		t.Fatalf("expected unknown identifier with one increment, got %+v (increments=%d)", res, increments)
	}

	deps.CheckLoginRate = func(context.Context, string, string) error { return limited }
	res = RunLogin(context.Background(), "wallet-1", deps)
	if res.Failure != LoginFailureRateLimited {
		t.Fatalf("expected rate limited, got %+v", res)
	}

	res = RunLogin(context.Background(), "  ", deps)
	if res.Failure != LoginFailureInvalidInput {
		t.Fatalf("expected invalid input, got %+v", res)
	}
}

func TestRunLogout(t *testing.T) {
	store := &fakeStore{}
	deps := LogoutDeps{Store: store}

	if err := RunLogout(context.Background(), "tok", deps); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := RunLogoutAll(context.Background(), "u1", deps); err != nil {
		t.Fatalf("logout all: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "tok" {
		t.Fatalf("unexpected deletes %v", store.deleted)
	}
	if len(store.deleteAll) != 1 || store.deleteAll[0] != "u1" {
		t.Fatalf("unexpected delete-all %v", store.deleteAll)
	}
}
