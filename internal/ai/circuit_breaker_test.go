package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"resumeats/internal/config"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

func failingCall() (*genai.GenerateContentResponse, error) {
	return nil, errors.New("upstream unavailable")
}

func TestCircuitBreakerConfigurationMapping(t *testing.T) {
	cb := NewAICircuitBreaker("Import", config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      10,
		Interval:         120 * time.Second,
		Timeout:          90 * time.Second,
		MinRequests:      5,
		FailureThreshold: 0.8,
	}, nil)

	if cb == nil {
		t.Fatal("Circuit breaker should not be nil")
	}

	stats := cb.GetStats()

	name, ok := stats["name"].(string)
	if !ok {
		t.Fatal("Circuit breaker name not found")
	}
	if name != "gemini-import" {
		t.Errorf("Expected circuit breaker name 'gemini-import', got '%s'", name)
	}

	state, ok := stats["state"].(string)
	if !ok {
		t.Fatal("Circuit breaker state not found")
	}
	if state != "closed" {
		t.Errorf("Expected initial state 'closed', got '%s'", state)
	}

	if !cb.IsHealthy() {
		t.Error("Circuit breaker should be healthy initially")
	}
}

func TestCircuitBreakerTrips(t *testing.T) {
	cb := NewAICircuitBreaker("Trip", config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}, nil)

	for range 2 {
		_, _ = cb.Execute(failingCall)
	}

	if cb.IsHealthy() {
		t.Fatal("Circuit breaker should be open after consecutive failures")
	}

	calls := 0
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		calls++
		return nil, nil
	})
	if err == nil {
		t.Error("Open circuit breaker should reject calls")
	}
	if calls != 0 {
		t.Errorf("Open circuit breaker should not invoke the call, got %d calls", calls)
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cb := NewAICircuitBreaker("Disabled", config.CircuitBreakerConfig{Enabled: false}, nil)

	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	// A nil breaker passes calls through
	if _, err := cb.Execute(failingCall); err == nil {
		t.Error("Expected the call's own error from a nil breaker")
	}
	if stats := cb.GetStats(); stats["enabled"] != false {
		t.Errorf("Expected disabled stats, got %v", stats)
	}
	if !cb.IsHealthy() {
		t.Error("Nil breaker should report healthy")
	}
}

func TestCountsAsSuccess(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"cancelled", fmt.Errorf("generate: %w", context.Canceled), true},
		{"deadline", context.DeadlineExceeded, false},
		{"plain error", errors.New("boom"), false},
		{"bad request", genai.APIError{Code: http.StatusBadRequest}, true},
		{"wrapped bad request", fmt.Errorf("parse: %w", genai.APIError{Code: http.StatusForbidden}), true},
		{"rate limited", genai.APIError{Code: http.StatusTooManyRequests}, false},
		{"request timeout", &googleapi.Error{Code: http.StatusRequestTimeout}, false},
		{"server error", &googleapi.Error{Code: http.StatusServiceUnavailable}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countsAsSuccess(tt.err); got != tt.want {
				t.Errorf("countsAsSuccess(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClientErrorsDoNotTrip(t *testing.T) {
	cb := NewAICircuitBreaker("Client", config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      1,
		FailureThreshold: 0.5,
	}, nil)

	for range 3 {
		_, _ = cb.Execute(func() (*genai.GenerateContentResponse, error) {
			return nil, genai.APIError{Code: http.StatusBadRequest}
		})
	}

	if !cb.IsHealthy() {
		t.Error("Rejected requests should not open the breaker")
	}
}
