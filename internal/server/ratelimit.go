package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"resumeats/internal/errors"
	"resumeats/internal/observability"

	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client key (IP or API key)
// and forgets clients idle for longer than the configured window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	rate    rate.Limit
	burst   int
	idle    time.Duration
	done    chan struct{}
	logger  *errors.Logger
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter set allowing requestsPerMin per client
// with bursts of burstCapacity. window is how long an idle client keeps its
// bucket; zero means ten minutes.
func NewRateLimiter(requestsPerMin int, window time.Duration, burstCapacity int, logger *errors.Logger) *RateLimiter {
	if window <= 0 {
		window = 10 * time.Minute
	}

	m := &RateLimiter{
		clients: make(map[string]*client),
		rate:    rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   burstCapacity,
		idle:    window,
		done:    make(chan struct{}),
		logger:  logger,
	}

	go m.cleanupRoutine(window)
	return m
}

func (m *RateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Allow reports whether a request for key may proceed now
func (m *RateLimiter) Allow(key string) bool {
	ok, _ := m.Reserve(key)
	return ok
}

// Reserve takes a token for key when one is available. Otherwise it returns
// false and how long the client should wait before retrying.
func (m *RateLimiter) Reserve(key string) (bool, time.Duration) {
	now := time.Now()
	reservation := m.limiterFor(key, now).ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute
	}

	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// GetStats returns current rate limiter statistics
func (m *RateLimiter) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"active_limiters": len(m.clients),
		"rate_per_minute": float64(m.rate) * 60.0,
		"burst_capacity":  m.burst,
		"idle_eviction":   m.idle.String(),
	}
}

func (m *RateLimiter) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.evictIdle(now)
		case <-m.done:
			return
		}
	}
}

// evictIdle drops clients not seen within the idle window
func (m *RateLimiter) evictIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, c := range m.clients {
		if now.Sub(c.lastSeen) > m.idle {
			delete(m.clients, key)
		}
	}
	m.logger.Debug("Rate limiter cleanup completed", "remaining_limiters", len(m.clients))
}

// Close stops the cleanup goroutine
func (m *RateLimiter) Close() {
	close(m.done)
}

// rateLimitMiddleware creates rate limiting middleware using golang.org/x/time/rate.
// Rejected requests are counted in metrics.
func (s *Server) rateLimitMiddleware(metrics *observability.Metrics) func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rateLimitKey := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if rateLimitKey == "" {
				next(w, r)
				return
			}

			allowed, retryAfter := s.RateLimiter.Reserve(rateLimitKey)
			if !allowed {
				s.Logger.Info("Rate limit exceeded",
					"client", clientType(rateLimitKey),
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r))
				metrics.RecordRateLimitHit(r.Context(), clientType(rateLimitKey))
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				writeErrorResponse(w, http.StatusTooManyRequests, errors.ErrCodeRateLimited, "Too many requests", nil)
				return
			}

			next(w, r)
		}
	}
}

// getRateLimitKey prefers the API key over the client IP when both are enabled
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := requestAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

// clientType names the kind of key a limiter is bound to
func clientType(rateLimitKey string) string {
	if strings.HasPrefix(rateLimitKey, "api:") {
		return "api_key"
	}
	return "ip"
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (for proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP in the list
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return xri
		}
	}

	// Fall back to RemoteAddr
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first valid IP from a comma-separated list
func parseFirstIP(ips string) string {
	// Split by comma and check each IP
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if parsed := net.ParseIP(ip); parsed != nil {
			return ip
		}
	}
	return ""
}
