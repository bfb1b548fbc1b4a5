package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/codr1/Opsboard/internal/api/authz"
	"github.com/codr1/Opsboard/internal/api/htmx"
	"github.com/codr1/Opsboard/internal/ratelimit"
	authtempl "github.com/codr1/Opsboard/internal/templates/components/auth"
)

const homePath = "/home"

// HashPassword wraps bcrypt.GenerateFromPassword for local operator config.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword wraps bcrypt.CompareHashAndPassword for local auth checks.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HandleLoginPage renders the sign-in page, or sends signed-in operators home.
func HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if authz.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, homePath, http.StatusFound)
		return
	}

	data := authtempl.LoginData{}
	if appConfig != nil {
		data.AppName = appConfig.App.Name
		data.ClerkPublishableKey = appConfig.Auth.ClerkPublishableKey
		data.LocalLogin = len(appConfig.Auth.LocalUsers) > 0
	}
	data.ClerkEnabled = verifier != nil && data.ClerkPublishableKey != ""

	if err := authtempl.LoginPage(data).Render(r.Context(), w); err != nil {
		logger.Error().Err(err).Msg("Failed to render login page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// HandleLocalLogin checks an email and password against the configured
// local operators.
func HandleLocalLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if appConfig == nil || store == nil {
		logger.Error().Msg("Local login not configured")
		http.Error(w, "Authentication service not available", http.StatusServiceUnavailable)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		renderLoginError(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy())
	if !allowLogin(w, email, ip) {
		return
	}

	hash, ok := localPasswordHash(email)
	if !ok || !VerifyPassword(hash, password) {
		if recordLoginFailure(email, ip) {
			logger.Warn().Str("identifier", ratelimit.SanitizeIdentifier(email)).Str("ip", ip).Msg("Login locked out")
		}
		renderLoginError(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if limiter != nil {
		limiter.Reset(email, ip)
	}

	operator := &authz.AuthUser{Subject: "local:" + strings.ToLower(email), Email: email, Provider: authz.ProviderLocal}
	if err := CreateSession(r.Context(), w, operator); err != nil {
		logger.Error().Err(err).Msg("Failed to create session")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	logger.Info().Str("identifier", ratelimit.SanitizeIdentifier(email)).Msg("Local login succeeded")
	redirect(w, r, homePath)
}

// HandleLogout ends the session and returns to the login page.
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := ClearSession(w, r); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Failed to delete session")
	}
	redirect(w, r, "/")
}

func localPasswordHash(email string) (string, bool) {
	for _, u := range appConfig.Auth.LocalUsers {
		if strings.EqualFold(strings.TrimSpace(u.Email), email) {
			return u.PasswordHash, true
		}
	}
	return "", false
}

func allowLogin(w http.ResponseWriter, identifier, ip string) bool {
	if limiter == nil {
		return true
	}
	res := limiter.CheckLogin(identifier, ip)
	if res.Allowed {
		return true
	}
	ratelimit.LogRateLimitExceeded(identifier, ip, res.Reason)
	seconds := int(res.RetryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	http.Error(w, "Too many login attempts. Try again later.", http.StatusTooManyRequests)
	return false
}

func recordLoginFailure(identifier, ip string) bool {
	if limiter == nil {
		return false
	}
	return limiter.RecordFailure(identifier, ip)
}

func renderLoginError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if htmx.IsRequest(r) {
		w.WriteHeader(status)
		if err := authtempl.LoginError(message).Render(r.Context(), w); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to render login error")
		}
		return
	}
	http.Error(w, message, status)
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if htmx.IsRequest(r) {
		htmx.Redirect(w, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
