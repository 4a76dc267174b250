package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resumeats/internal/config"
	apperrors "resumeats/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// BreakerStore guards a BlobStore with a circuit breaker so that a failing
// backend is not hammered by every worker
type BreakerStore struct {
	next BlobStore
	cb   *gobreaker.CircuitBreaker[string]
}

// NewBreakerStore wraps next. A disabled breaker config returns a
// pass-through wrapper.
func NewBreakerStore(next BlobStore, cfg config.CircuitBreakerConfig, logger *apperrors.Logger) *BreakerStore {
	if !cfg.Enabled {
		return &BreakerStore{next: next}
	}

	settings := gobreaker.Settings{
		Name:        "BlobStore",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		// Only backend failures count against the store
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker[string](settings)}
}

func (b *BreakerStore) execute(fn func() (string, error)) (string, error) {
	if b.cb == nil {
		return fn()
	}
	out, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, err
}

func (b *BreakerStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return b.execute(func() (string, error) {
		return b.next.Put(ctx, key, data, contentType)
	})
}

func (b *BreakerStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return b.execute(func() (string, error) {
		return b.next.SignedURL(ctx, key, ttl)
	})
}

// Resolve forwards to the wrapped store when it serves its own downloads
func (b *BreakerStore) Resolve(token string) (string, error) {
	resolver, ok := b.next.(TokenResolver)
	if !ok {
		return "", fmt.Errorf("blob store does not serve downloads")
	}
	return resolver.Resolve(token)
}

// State reports the breaker state for health output
func (b *BreakerStore) State() string {
	if b.cb == nil {
		return "disabled"
	}
	return b.cb.State().String()
}
