package server

import (
	"encoding/json"
	"sync"
	"time"

	"resumeats/internal/ai"
	"resumeats/internal/ats"
	"resumeats/internal/config"
	apperrors "resumeats/internal/errors"
	"resumeats/internal/orders"
	"resumeats/internal/pdftext"
	"resumeats/internal/storage"
)

// ExtractRequest is the JSON form of the import endpoint
type ExtractRequest struct {
	Text string `json:"text"`
}

// MergeRequest combines a stored record with an imported partial record
type MergeRequest struct {
	Base    json.RawMessage `json:"base"`
	Partial json.RawMessage `json:"partial"`
}

// CreateOrderResponse is returned by the create-order endpoint
type CreateOrderResponse struct {
	OrderID     string        `json:"orderId"`
	Status      orders.Status `json:"status"`
	AmountCents int64         `json:"amountCents"`
	Currency    string        `json:"currency"`
}

// OrderView is the public representation of an order
type OrderView struct {
	OrderID      string         `json:"orderId"`
	Status       orders.Status  `json:"status"`
	AmountCents  int64          `json:"amountCents"`
	Currency     string         `json:"currency"`
	TemplateKey  string         `json:"templateKey"`
	BuyerEmail   string         `json:"buyerEmail,omitempty"`
	ProviderInfo map[string]any `json:"providerInfo,omitempty"`
	Error        string         `json:"error,omitempty"`
	Downloadable bool           `json:"downloadable"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Dependencies are the domain services the HTTP handlers call
type Dependencies struct {
	Engine   *ats.Engine
	Importer *ai.Importer
	Reader   *pdftext.Reader
	Orders   *orders.Service
	Store    storage.BlobStore
	// Worker runs in-process when set
	Worker   *orders.Worker
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// API Authentication
	APIKeys *apiKeySet

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	deps Dependencies

	// Logger
	Logger *apperrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *apperrors.Logger) *Server {
	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	if deps.Engine == nil {
		deps.Engine = ats.NewEngine(ats.Options{})
	}
	if deps.Reader == nil {
		deps.Reader = pdftext.NewReader(0)
	}
	if deps.Importer == nil {
		deps.Importer = ai.NewImporter(nil, nil, logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		APIKeys:        newAPIKeySet(cfg.APIKeys),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		deps:           deps,
		Logger:         logger,
	}
}

// apiKeySet is the set of accepted API keys. It can be replaced while the
// server is running.
type apiKeySet struct {
	mu   sync.RWMutex
	keys map[string]bool
}

func newAPIKeySet(keys []string) *apiKeySet {
	s := &apiKeySet{}
	s.Replace(keys)
	return s
}

// Replace swaps the accepted keys. Empty entries are ignored.
func (s *apiKeySet) Replace(keys []string) {
	m := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			m[key] = true
		}
	}
	s.mu.Lock()
	s.keys = m
	s.mu.Unlock()
}

// Len returns how many keys are accepted
func (s *apiKeySet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Has reports whether key is accepted
func (s *apiKeySet) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[key]
}
