package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// downloadClaims identify the blob a download token grants access to
type downloadClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// LocalStore keeps blobs on disk. Its signed URLs carry an HS256 token
// that Resolve verifies when the file is served.
type LocalStore struct {
	baseDir    string
	signingKey []byte
	baseURL    string
	now        func() time.Time
}

// NewLocalStore creates a store rooted at baseDir
func NewLocalStore(baseDir, signingKey, baseURL string) (*LocalStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if signingKey == "" {
		return nil, fmt.Errorf("signing key is required")
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return &LocalStore{
		baseDir:    abs,
		signingKey: []byte(signingKey),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		now:        time.Now,
	}, nil
}

// validateKey accepts relative slash-separated keys that stay inside the store
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if cleaned := path.Clean(key); cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

// Put writes data to the file for key
func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return "", fmt.Errorf("%w: cannot create directory for %s: %v", ErrUnavailable, key, err)
	}
	if err := os.WriteFile(target, data, 0600); err != nil {
		return "", fmt.Errorf("%w: cannot write %s: %v", ErrUnavailable, key, err)
	}

	return "file://" + filepath.ToSlash(target), nil
}

// SignedURL returns <baseURL>/files/<token> for an existing blob
func (s *LocalStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if _, err := os.Stat(s.path(key)); err != nil {
		return "", fmt.Errorf("%w: %s is not readable: %v", ErrUnavailable, key, err)
	}

	now := s.now()
	claims := &downloadClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign download token: %w", err)
	}

	return s.baseURL + "/files/" + token, nil
}

// Resolve verifies a download token and returns the file it grants access to
func (s *LocalStore) Resolve(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token string is empty")
	}

	claims := &downloadClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("invalid download token: %w", err)
	}
	if !parsed.Valid {
		return "", fmt.Errorf("download token is not valid")
	}
	if err := validateKey(claims.Key); err != nil {
		return "", err
	}

	return s.path(claims.Key), nil
}

// TokenResolver is implemented by stores whose URLs the HTTP server must serve
type TokenResolver interface {
	Resolve(token string) (string, error)
}
