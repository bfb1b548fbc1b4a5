package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/api/apiutil"
	"github.com/codr1/Opsboard/internal/api/authz"
	"github.com/codr1/Opsboard/internal/ratelimit"
)

// TokenVerifier turns a client-side ID token into an operator identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*authz.AuthUser, error)
}

type clerkVerifier struct{}

// InitClerk configures the Clerk SDK. It returns nil when no secret key is
// set, which disables /sessionLogin.
func InitClerk(secretKey string) TokenVerifier {
	if secretKey == "" {
		log.Warn().Msg("Clerk secret key not configured")
		return nil
	}
	clerk.SetKey(secretKey)
	log.Info().Msg("Clerk SDK initialized")
	return clerkVerifier{}
}

func (clerkVerifier) Verify(ctx context.Context, token string) (*authz.AuthUser, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
	if err != nil {
		return nil, fmt.Errorf("verify clerk token: %w", err)
	}
	clerkUser, err := user.Get(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load clerk user %s: %w", claims.Subject, err)
	}
	return &authz.AuthUser{
		Subject:  claims.Subject,
		Email:    primaryEmail(clerkUser),
		Provider: authz.ProviderClerk,
	}, nil
}

func primaryEmail(u *clerk.User) string {
	if u == nil {
		return ""
	}
	if u.PrimaryEmailAddressID != nil {
		for _, addr := range u.EmailAddresses {
			if addr.ID == *u.PrimaryEmailAddressID {
				return addr.EmailAddress
			}
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

type sessionLoginRequest struct {
	IDToken string `json:"idToken"`
}

// HandleSessionLogin exchanges a Clerk ID token for a session cookie.
func HandleSessionLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if verifier == nil || store == nil {
		logger.Error().Msg("Token login not configured")
		http.Error(w, "Authentication service not available", http.StatusServiceUnavailable)
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy())
	if !allowLogin(w, "", ip) {
		return
	}

	var req sessionLoginRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.IDToken) == "" {
		http.Error(w, "idToken is required", http.StatusBadRequest)
		return
	}

	operator, err := verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		logger.Warn().Err(err).Str("ip", ip).Msg("ID token rejected")
		recordLoginFailure("", ip)
		http.Error(w, "Unauthorized request", http.StatusUnauthorized)
		return
	}
	if limiter != nil {
		limiter.Reset(operator.Email, ip)
	}

	if err := CreateSession(r.Context(), w, operator); err != nil {
		logger.Error().Err(err).Msg("Failed to create session")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	logger.Info().Str("subject", operator.Subject).Str("identifier", ratelimit.SanitizeIdentifier(operator.Email)).Msg("Session created from ID token")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Session cookie set."))
}
