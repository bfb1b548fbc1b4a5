package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLockoutAfterMaxFailures(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{Clock: clock})
	defer limiter.Close()

	ip := "203.0.113.7"
	for i := 1; i <= 4; i++ {
		if res := limiter.CheckLogin("ops@example.com", ip); !res.Allowed {
			t.Fatalf("attempt %d blocked: %s", i, res.Reason)
		}
		if limiter.RecordFailure("ops@example.com", ip) {
			t.Fatalf("attempt %d should not lock out", i)
		}
	}
	if !limiter.RecordFailure("ops@example.com", ip) {
		t.Fatal("fifth failure should start lockout")
	}

	res := limiter.CheckLogin("someone@example.com", ip)
	if res.Allowed || res.Reason != "ip_lockout" {
		t.Fatalf("CheckLogin() = %+v, want ip_lockout", res)
	}
	if res.RetryAfter != 15*time.Minute {
		t.Fatalf("RetryAfter = %v, want 15m", res.RetryAfter)
	}

	res = limiter.CheckLogin("OPS@example.com", "198.51.100.1")
	if res.Allowed || res.Reason != "account_lockout" {
		t.Fatalf("CheckLogin() = %+v, want account_lockout", res)
	}

	clock.Advance(15 * time.Minute)
	if res := limiter.CheckLogin("ops@example.com", ip); !res.Allowed {
		t.Fatalf("lockout should expire, got %s", res.Reason)
	}
	if limiter.RecordFailure("ops@example.com", ip) {
		t.Fatal("first failure after lockout should not lock out again")
	}
}

func TestFailuresOutsideWindowReset(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{MaxFailures: 3, Window: time.Minute, Lockout: time.Hour, Clock: clock})
	defer limiter.Close()

	limiter.RecordFailure("", "10.0.0.1")
	limiter.RecordFailure("", "10.0.0.1")
	clock.Advance(2 * time.Minute)
	if limiter.RecordFailure("", "10.0.0.1") {
		t.Fatal("failures from an expired window should not count")
	}
}

func TestResetClearsCounters(t *testing.T) {
	limiter := New(&Config{MaxFailures: 2, Clock: newMockClock()})
	defer limiter.Close()

	limiter.RecordFailure("a@example.com", "10.0.0.1")
	limiter.Reset("a@example.com", "10.0.0.1")
	if limiter.RecordFailure("a@example.com", "10.0.0.1") {
		t.Fatal("Reset should clear prior failures")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trustProxy bool
		want       string
	}{
		{"remote addr", "192.0.2.1:1234", "", false, "192.0.2.1"},
		{"untrusted header ignored", "192.0.2.1:1234", "203.0.113.9", false, "192.0.2.1"},
		{"rightmost public", "10.0.0.1:1234", "198.51.100.4, 203.0.113.9, 10.0.0.2", true, "203.0.113.9"},
		{"all private", "10.0.0.1:1234", "10.0.0.3, 192.168.1.1", true, "192.168.1.1"},
		{"no port", "192.0.2.5", "", false, "192.0.2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodPost, "/login", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := GetClientIP(r, tt.trustProxy); got != tt.want {
				t.Fatalf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := map[string]string{
		"Operator@Example.com": "op***@example.com",
		"ab@example.com":       "***@example.com",
		"not-an-email":         "***",
	}
	for in, want := range tests {
		if got := SanitizeIdentifier(in); got != want {
			t.Fatalf("SanitizeIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}
