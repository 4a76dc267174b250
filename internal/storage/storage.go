// Package storage keeps rendered documents and hands out time-limited
// download links for them.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"resumeats/internal/config"
	apperrors "resumeats/internal/errors"
)

// BlobStore stores documents under a key and issues signed download URLs
type BlobStore interface {
	// Put stores data under key and returns its location
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// SignedURL returns a URL that downloads key until ttl elapses
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

var (
	// ErrUnavailable marks failures of the backing store itself
	ErrUnavailable = errors.New("blob store unavailable")
	// ErrInvalidKey rejects keys that would escape the store
	ErrInvalidKey = errors.New("invalid blob key")
)

// New builds the configured blob store wrapped in a circuit breaker
func New(ctx context.Context, cfg config.StorageConfig, publicBaseURL string, logger *apperrors.Logger) (BlobStore, error) {
	var store BlobStore

	switch cfg.Backend {
	case "s3":
		s3Store, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "Failed to configure S3 storage", err)
		}
		store = s3Store
	case "local", "":
		signingKey := cfg.Local.SigningKey
		if signingKey == "" {
			signingKey = randomKey()
			logger.Warn("No storage.local.signingKey configured, download links will not survive a restart")
		}
		localStore, err := NewLocalStore(cfg.Local.BaseDir, signingKey, publicBaseURL)
		if err != nil {
			return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "Failed to configure local storage", err)
		}
		store = localStore
	default:
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported storage backend: %s", cfg.Backend), nil)
	}

	logger.Info("Blob store initialized", "backend", cfg.Backend)
	return NewBreakerStore(store, cfg.CircuitBreaker, logger), nil
}

func randomKey() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
