package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/codr1/Opsboard/internal/api/authz"
	"github.com/codr1/Opsboard/internal/config"
	"github.com/codr1/Opsboard/internal/ratelimit"
)

const (
	sessionCookieName = "session"
	defaultSessionTTL = 24 * time.Hour
	sessionTokenBytes = 32
)

var errAuthNotInitialized = errors.New("auth handlers not initialized")

var (
	appConfig *config.Config
	store     SessionStore
	limiter   *ratelimit.Limiter
	verifier  TokenVerifier
)

// InitHandlers wires the session store, login limiter and optional token
// verifier. verifier may be nil when Clerk is not configured.
func InitHandlers(cfg *config.Config, s SessionStore, l *ratelimit.Limiter, v TokenVerifier) {
	appConfig = cfg
	store = s
	limiter = l
	verifier = v
}

func isSecureCookie() bool {
	return appConfig == nil || appConfig.App.Environment != "development"
}

func trustProxy() bool {
	return appConfig != nil && appConfig.Auth.TrustProxy
}

func sessionTTL() time.Duration {
	if appConfig == nil || appConfig.Auth.SessionTTL <= 0 {
		return defaultSessionTTL
	}
	return appConfig.Auth.SessionTTL
}

// CreateSession stores a new session for user and sets the session cookie.
func CreateSession(ctx context.Context, w http.ResponseWriter, user *authz.AuthUser) error {
	if store == nil {
		return errAuthNotInitialized
	}
	if w == nil || user == nil {
		return errors.New("session requires response writer and user")
	}

	token, err := newSessionToken()
	if err != nil {
		return err
	}

	ttl := sessionTTL()
	now := time.Now()
	expiresAt := now.Add(ttl)
	if err := store.Save(ctx, token, Session{
		Subject:   user.Subject,
		Email:     user.Email,
		Provider:  user.Provider,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(ttl.Seconds()),
	})
	return nil
}

// ClearSession deletes the server-side session, if any, and expires the cookie.
func ClearSession(w http.ResponseWriter, r *http.Request) error {
	var err error
	if cookie, cookieErr := r.Cookie(sessionCookieName); cookieErr == nil && store != nil {
		err = store.Delete(r.Context(), cookie.Value)
	}
	ClearSessionCookie(w)
	return err
}

func ClearSessionCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// UserFromRequest resolves the session cookie to an operator. A missing or
// expired session yields nil without error.
func UserFromRequest(w http.ResponseWriter, r *http.Request) (*authz.AuthUser, error) {
	if r == nil || store == nil {
		return nil, nil
	}

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	sess, err := store.Load(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			ClearSessionCookie(w)
			return nil, nil
		}
		return nil, err
	}

	return &authz.AuthUser{
		Subject:  sess.Subject,
		Email:    sess.Email,
		Provider: sess.Provider,
	}, nil
}

func newSessionToken() (string, error) {
	token := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(token), nil
}
