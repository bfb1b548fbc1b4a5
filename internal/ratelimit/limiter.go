// Package ratelimit throttles failed login attempts per client IP and per
// account identifier.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	MaxFailures int           // Failures allowed inside Window before lockout (default: 5)
	Window      time.Duration // Counting window (default: 15m)
	Lockout     time.Duration // Lockout after MaxFailures (default: 15m)

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFailures: 5,
		Window:      15 * time.Minute,
		Lockout:     15 * time.Minute,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count    int
	firstAt  time.Time
	lastAt   time.Time
	lockedAt time.Time // zero if not locked
}

// Limiter counts failed logins keyed by a hash of the IP and of the identifier.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex
	byIP   map[string]*entry
	byID   map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaults.MaxFailures
	}
	if cfg.Window <= 0 {
		cfg.Window = defaults.Window
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = defaults.Lockout
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byIP:          make(map[string]*entry),
		byID:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// CheckLogin reports whether a login attempt may proceed.
// Does NOT record anything - call RecordFailure when credentials are rejected.
func (l *Limiter) CheckLogin(identifier, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	ipKey := l.hashKey("ip:", ip)
	idKey := l.hashKey("id:", normalizeIdentifier(identifier))

	l.mu.RLock()
	defer l.mu.RUnlock()

	if res, blocked := l.blocked(l.byIP[ipKey], now, "ip_lockout"); blocked {
		return res
	}
	if identifier != "" {
		if res, blocked := l.blocked(l.byID[idKey], now, "account_lockout"); blocked {
			return res
		}
	}
	return LimitResult{Allowed: true}
}

func (l *Limiter) blocked(e *entry, now time.Time, reason string) (LimitResult, bool) {
	if e == nil || e.lockedAt.IsZero() {
		return LimitResult{}, false
	}
	elapsed := now.Sub(e.lockedAt)
	if elapsed >= l.config.Lockout {
		return LimitResult{}, false
	}
	return LimitResult{Allowed: false, RetryAfter: l.config.Lockout - elapsed, Reason: reason}, true
}

// RecordFailure counts a rejected login. Returns true if this failure
// started a lockout.
func (l *Limiter) RecordFailure(identifier, ip string) (lockedOut bool) {
	now := l.clock.Now()
	ipKey := l.hashKey("ip:", ip)
	idKey := l.hashKey("id:", normalizeIdentifier(identifier))

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.record(l.byIP, ipKey, now) {
		lockedOut = true
	}
	if identifier != "" && l.record(l.byID, idKey, now) {
		lockedOut = true
	}
	return lockedOut
}

func (l *Limiter) record(m map[string]*entry, key string, now time.Time) bool {
	e := m[key]
	expired := e != nil && (now.Sub(e.firstAt) >= l.config.Window && e.lockedAt.IsZero() ||
		!e.lockedAt.IsZero() && now.Sub(e.lockedAt) >= l.config.Lockout)
	if e == nil || expired {
		e = &entry{firstAt: now}
		m[key] = e
	}
	e.count++
	e.lastAt = now
	if e.count >= l.config.MaxFailures && e.lockedAt.IsZero() {
		e.lockedAt = now
		return true
	}
	return false
}

// Reset clears counters after a successful login.
func (l *Limiter) Reset(identifier, ip string) {
	ipKey := l.hashKey("ip:", ip)
	idKey := l.hashKey("id:", normalizeIdentifier(identifier))
	l.mu.Lock()
	delete(l.byIP, ipKey)
	delete(l.byID, idKey)
	l.mu.Unlock()
}

func (l *Limiter) hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// normalizeIdentifier lowercases the identifier to prevent case-based bypass.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	maxAge := l.config.Window + l.config.Lockout
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range []map[string]*entry{l.byIP, l.byID} {
		for k, e := range m {
			if now.Sub(e.lastAt) > maxAge {
				delete(m, k)
			}
		}
	}
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost public IP from X-Forwarded-For.
// When trustProxy is false, ignores forwarding headers entirely.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			return strings.TrimSpace(parts[len(parts)-1])
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

var privateNetworks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	} {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// SanitizeIdentifier masks an email for logging.
func SanitizeIdentifier(identifier string) string {
	identifier = normalizeIdentifier(identifier)
	local, domain, ok := strings.Cut(identifier, "@")
	if !ok {
		return "***"
	}
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}

// LogRateLimitExceeded logs a blocked login with a masked identifier.
func LogRateLimitExceeded(identifier, ip, reason string) {
	log.Warn().
		Str("event", "rate_limit_exceeded").
		Str("identifier", SanitizeIdentifier(identifier)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Login rate limit exceeded")
}
