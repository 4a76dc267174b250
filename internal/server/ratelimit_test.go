package server

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "203.0.113.7:5555", nil, "203.0.113.7"},
		{"forwarded for", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "garbage, 198.51.100.2, 10.0.0.1"}, "198.51.100.2"},
		{"real ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
		{"bad real ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "nope"}, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetRateLimitKey(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"

	if got := getRateLimitKey(req, true, true); got != "ip:203.0.113.7" {
		t.Errorf("without key got %q", got)
	}
	if got := getRateLimitKey(req, false, false); got != "" {
		t.Errorf("disabled got %q", got)
	}

	req.Header.Set("Authorization", "Bearer token-1")
	got := getRateLimitKey(req, true, true)
	if got != "api:token-1" {
		t.Errorf("with bearer got %q", got)
	}
	if clientType(got) != "api_key" {
		t.Errorf("clientType(%q) = %q", got, clientType(got))
	}
}

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(60, time.Minute, 2, nil)
	defer limiter.Close()

	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatal("burst requests should be allowed")
	}
	if limiter.Allow("a") {
		t.Error("third request should be limited")
	}
	if !limiter.Allow("b") {
		t.Error("other keys have their own bucket")
	}

	stats := limiter.GetStats()
	if stats["active_limiters"] != 2 {
		t.Errorf("active_limiters = %v, want 2", stats["active_limiters"])
	}
}

func TestRateLimiterReserveRetryAfter(t *testing.T) {
	limiter := NewRateLimiter(30, time.Minute, 1, nil)
	defer limiter.Close()

	if ok, wait := limiter.Reserve("ip:1"); !ok || wait != 0 {
		t.Fatalf("first Reserve() = %v, %v", ok, wait)
	}

	ok, wait := limiter.Reserve("ip:1")
	if ok {
		t.Fatal("second request should be limited")
	}
	if wait <= 0 || wait > 2*time.Second {
		t.Errorf("retry after = %v, want about 2s at 30 requests/min", wait)
	}

	// a rejected request must not consume the next token
	if ok, _ := limiter.Reserve("ip:1"); ok {
		t.Error("third request should still be limited")
	}
}

func TestRateLimiterEvictIdle(t *testing.T) {
	limiter := NewRateLimiter(60, time.Minute, 1, nil)
	defer limiter.Close()

	limiter.Allow("ip:old")
	limiter.evictIdle(time.Now().Add(2 * time.Minute))

	if got := limiter.GetStats()["active_limiters"]; got != 0 {
		t.Errorf("active_limiters = %v after eviction, want 0", got)
	}
}
