package authz

import (
	"context"
	"errors"
	"strings"
)

var ErrUnauthenticated = errors.New("unauthenticated")

const (
	ProviderClerk = "clerk"
	ProviderLocal = "local"

	// AnonymousApplicant is recorded when nobody can be named.
	AnonymousApplicant = "anonymous"
)

// AuthUser is the operator behind the current session.
type AuthUser struct {
	Subject  string
	Email    string
	Provider string
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

func RequireUser(ctx context.Context) error {
	if UserFromContext(ctx) == nil {
		return ErrUnauthenticated
	}
	return nil
}

// Applicant picks the name recorded on a submission: the submitted value,
// then the session email, then "anonymous".
func Applicant(ctx context.Context, submitted string) string {
	if s := strings.TrimSpace(submitted); s != "" {
		return s
	}
	if user := UserFromContext(ctx); user != nil && user.Email != "" {
		return user.Email
	}
	return AnonymousApplicant
}
