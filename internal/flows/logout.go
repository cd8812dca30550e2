package flows

import (
	"context"
)

type LogoutRefreshStore interface {
	Delete(ctx context.Context, token string) error
	DeleteAllForSubject(ctx context.Context, subject string) error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Store LogoutRefreshStore
}

// RunLogout deletes the record of one refresh token. Absent records are not an error.
func RunLogout(ctx context.Context, refreshToken string, deps LogoutDeps) error {
	return deps.Store.Delete(ctx, refreshToken)
}

// RunLogoutAll deletes every record of subject.
func RunLogoutAll(ctx context.Context, subject string, deps LogoutDeps) error {
	return deps.Store.DeleteAllForSubject(ctx, subject)
}
