package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"resumeats/internal/config"
	apperrors "resumeats/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// AICircuitBreaker guards Gemini calls. Only failures that say something
// about the upstream count against it: cancelled calls and rejected
// requests do not.
type AICircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*genai.GenerateContentResponse]
}

// NewAICircuitBreaker creates a breaker named after operation. It returns
// nil when the breaker is disabled; a nil breaker passes calls through.
func NewAICircuitBreaker(operation string, cfg config.CircuitBreakerConfig, logger *apperrors.Logger) *AICircuitBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:         "gemini-" + strings.ToLower(operation),
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		ReadyToTrip:  tripOnFailureRatio(cfg),
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("AI circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &AICircuitBreaker{cb: gobreaker.NewCircuitBreaker[*genai.GenerateContentResponse](settings)}
}

// tripOnFailureRatio opens the breaker once MinRequests calls were seen in
// the interval and the failure ratio reached the threshold
func tripOnFailureRatio(cfg config.CircuitBreakerConfig) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests == 0 || counts.Requests < cfg.MinRequests {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
	}
}

// countsAsSuccess reports whether err leaves the upstream's health record
// untouched
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	status, ok := apiStatus(err)
	if !ok {
		return false
	}
	switch status {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return false
	}
	return status >= 400 && status < 500
}

// apiStatus extracts the HTTP status of a Gemini API error
func apiStatus(err error) (int, bool) {
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return genaiErr.Code, true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return 0, false
}

// Execute runs fn under the breaker
func (cb *AICircuitBreaker) Execute(fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	if cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

// GetStats returns circuit breaker statistics
func (cb *AICircuitBreaker) GetStats() map[string]any {
	if cb == nil {
		return map[string]any{"enabled": false}
	}

	counts := cb.cb.Counts()
	return map[string]any{
		"enabled":              true,
		"name":                 cb.cb.Name(),
		"state":                cb.cb.State().String(),
		"requests":             counts.Requests,
		"total_failures":       counts.TotalFailures,
		"consecutive_failures": counts.ConsecutiveFailures,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (cb *AICircuitBreaker) IsHealthy() bool {
	if cb == nil {
		return true
	}
	return cb.cb.State() == gobreaker.StateClosed
}
