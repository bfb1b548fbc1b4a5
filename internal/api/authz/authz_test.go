package authz

import (
	"context"
	"errors"
	"testing"
)

func TestRequireUserUnauthenticated(t *testing.T) {
	if err := RequireUser(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireUserAuthenticated(t *testing.T) {
	ctx := ContextWithUser(context.Background(), &AuthUser{Email: "ops@example.com", Provider: ProviderLocal})
	if err := RequireUser(ctx); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestUserFromContextNil(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	if user := UserFromContext(nil); user != nil {
		t.Fatalf("expected nil user, got %+v", user)
	}
}

func TestApplicant(t *testing.T) {
	withUser := ContextWithUser(context.Background(), &AuthUser{Email: "ops@example.com"})
	tests := []struct {
		name      string
		ctx       context.Context
		submitted string
		want      string
	}{
		{"submitted wins", withUser, "  Siti ", "Siti"},
		{"session email", withUser, "", "ops@example.com"},
		{"anonymous", context.Background(), " ", "anonymous"},
		{"user without email", ContextWithUser(context.Background(), &AuthUser{Subject: "u_1"}), "", "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Applicant(tt.ctx, tt.submitted); got != tt.want {
				t.Fatalf("Applicant() = %q, want %q", got, tt.want)
			}
		})
	}
}
