package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumeats/internal/ats"
	"resumeats/internal/config"
	apperrors "resumeats/internal/errors"
	"resumeats/internal/observability"
	"resumeats/internal/orders"
	"resumeats/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testResume = `{
	"personal": {"name": "Ana Souza", "email": "ana@example.com", "phone": "+55 11 91234-5678", "address": "São Paulo"},
	"summary": "Desenvolvedora backend com foco em Go e sistemas distribuídos.",
	"skills": [{"id": "1", "name": "Go"}, {"id": "2", "name": "PostgreSQL"}]
}`

const testFilesBaseURL = "http://files.test"

type staticRenderer struct{}

func (staticRenderer) Render(_ context.Context, doc orders.Document) ([]byte, error) {
	return []byte("%PDF-1.4 " + doc.TemplateKey), nil
}

type testEnv struct {
	server  *Server
	handler http.Handler
	orders  *orders.Service
}

func newTestEnv(t *testing.T, cfg ServerConfig) *testEnv {
	t.Helper()

	logger := apperrors.NewLogger(slog.LevelError)
	store, err := storage.NewLocalStore(t.TempDir(), "test-signing-key", testFilesBaseURL)
	require.NoError(t, err)

	svc := orders.NewService(config.OrdersConfig{
		AmountCents:     1990,
		Currency:        "BRL",
		DefaultTemplate: orders.TemplateOptimized,
		DownloadTTL:     time.Minute,
	}, orders.NewMemoryRepository(), orders.NewMemoryQueue(8), staticRenderer{}, store, nil, logger)

	srv := NewServer(nil, cfg, Dependencies{Orders: svc, Store: store}, logger)
	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, nil)
	require.NoError(t, err)

	return &testEnv{server: srv, handler: srv.Handler(om), orders: svc}
}

func (e *testEnv) do(method, target, contentType string, body []byte, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t, ServerConfig{Version: "test"})

	rec := env.do(http.MethodGet, "/health", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "resumeats", body["service"])
	assert.Equal(t, "test", body["version"])
}

func TestHealthHandlerRejectsOtherMethods(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	rec := env.do(http.MethodPost, "/health", "", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t, ServerConfig{APIKeys: []string{"secret-key-123456"}})

	tests := []struct {
		name   string
		header http.Header
		want   int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"invalid key", http.Header{"X-Api-Key": {"nope"}}, http.StatusUnauthorized},
		{"header key", http.Header{"X-Api-Key": {"secret-key-123456"}}, http.StatusOK},
		{"bearer token", http.Header{"Authorization": {"Bearer secret-key-123456"}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, "/stats", "", nil, tt.header)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, apperrors.ErrCodeUnauthorized, decodeError(t, rec).Error)
			}
		})
	}
}

func TestAPIKeysCanBeReplaced(t *testing.T) {
	env := newTestEnv(t, ServerConfig{APIKeys: []string{"old-key"}})
	env.server.APIKeys.Replace([]string{"new-key", ""})

	assert.Equal(t, 1, env.server.APIKeys.Len())
	assert.False(t, env.server.APIKeys.Has("old-key"))
	assert.True(t, env.server.APIKeys.Has("new-key"))
}

func TestAnalyzeHandler(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	t.Run("scores record in requested locale", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/ats/analyze?locale=en-US", "application/json", []byte(testResume), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var report ats.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, ats.LocaleEN, report.Locale)
		assert.Positive(t, report.MaxScore)
		assert.NotEmpty(t, report.Feedback)
	})

	t.Run("unknown locale", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/ats/analyze?locale=fr", "application/json", []byte(testResume), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidLocale, decodeError(t, rec).Error)
	})

	t.Run("invalid shape lists fields", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/ats/analyze", "application/json", []byte(`{"skills": "Go"}`), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, apperrors.ErrCodeInvalidRecord, resp.Error)
		assert.NotNil(t, resp.Details)
	})
}

func TestRequestSizeLimit(t *testing.T) {
	env := newTestEnv(t, ServerConfig{MaxRequestSize: 16})

	rec := env.do(http.MethodPost, "/ats/analyze", "application/json", []byte(testResume), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apperrors.ErrCodeRequestTooLarge, decodeError(t, rec).Error)
}

func TestExtractHandler(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})
	text := "Ana Souza\nana@example.com\n+55 11 91234-5678\n\nResumo\nDesenvolvedora backend com foco em Go.\n"

	tests := []struct {
		name        string
		contentType string
		body        []byte
		want        int
		wantCode    string
	}{
		{"plain text", "text/plain", []byte(text), http.StatusOK, ""},
		{"json text", "application/json", mustJSON(t, ExtractRequest{Text: text}), http.StatusOK, ""},
		{"binary", "application/octet-stream", []byte{0xff, 0xfe, 0x00, 0x81}, http.StatusUnsupportedMediaType, apperrors.ErrCodeUnsupportedMedia},
		{"empty text", "application/json", []byte(`{"text": "  "}`), http.StatusBadRequest, apperrors.ErrCodeTextExtraction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/import/extract", tt.contentType, tt.body, nil)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Error)
				return
			}

			var result struct {
				Method string         `json:"method"`
				Record map[string]any `json:"record"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.Equal(t, "heuristic", result.Method)
			assert.NotNil(t, result.Record["personal"])
		})
	}
}

func TestMergeHandler(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	body := mustJSON(t, map[string]any{
		"base":    json.RawMessage(testResume),
		"partial": map[string]any{"summary": "Engenheira de software."},
	})
	rec := env.do(http.MethodPost, "/import/merge", "application/json", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var merged map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &merged))
	assert.Equal(t, "Engenheira de software.", merged["summary"])
	assert.Len(t, merged["skills"], 2)

	rec = env.do(http.MethodPost, "/import/merge", "application/json", []byte(`{"partial": {}}`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, decodeError(t, rec).Error)
}

func TestOrderLifecycle(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	body := mustJSON(t, map[string]any{"resumeData": json.RawMessage(testResume), "templateKey": "compact"})
	rec := env.do(http.MethodPost, "/api/create-order", "application/json", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, orders.StatusPending, created.Status)
	assert.Equal(t, int64(1990), created.AmountCents)
	assert.Equal(t, "BRL", created.Currency)

	rec = env.do(http.MethodGet, "/api/download/"+created.OrderID, "", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.ErrCodeOrderNotReady, decodeError(t, rec).Error)

	rec = env.do(http.MethodPost, "/api/order/"+created.OrderID+"/pay", "", nil, nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/order/"+created.OrderID+"/pay", "", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.ErrCodeInvalidTransition, decodeError(t, rec).Error)

	require.NoError(t, env.orders.Process(context.Background(), orders.Job{OrderID: created.OrderID}))

	rec = env.do(http.MethodGet, "/api/order/"+created.OrderID, "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, orders.StatusReady, view.Status)
	assert.True(t, view.Downloadable)
	assert.Equal(t, "sandbox", view.ProviderInfo["provider"])

	rec = env.do(http.MethodGet, "/api/download/"+created.OrderID, "", nil, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, testFilesBaseURL+"/files/"), location)

	rec = env.do(http.MethodGet, strings.TrimPrefix(location, testFilesBaseURL), "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4 compact", rec.Body.String())
}

func TestOrderErrors(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		want     int
		wantCode string
	}{
		{"unknown order", http.MethodGet, "/api/order/missing", "", http.StatusNotFound, apperrors.ErrCodeOrderNotFound},
		{"pay unknown order", http.MethodPost, "/api/order/missing/pay", "", http.StatusNotFound, apperrors.ErrCodeOrderNotFound},
		{"download unknown order", http.MethodGet, "/api/download/missing", "", http.StatusNotFound, apperrors.ErrCodeOrderNotFound},
		{"missing resume", http.MethodPost, "/api/create-order", `{}`, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest},
		{"unknown template", http.MethodPost, "/api/create-order", `{"resumeData": {}, "templateKey": "neon"}`, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest},
		{"invalid resume", http.MethodPost, "/api/create-order", `{"resumeData": {"skills": 3}}`, http.StatusBadRequest, apperrors.ErrCodeInvalidRecord},
		{"malformed json", http.MethodPost, "/api/create-order", `{`, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType := ""
			if tt.body != "" {
				contentType = "application/json"
			}
			rec := env.do(tt.method, tt.target, contentType, []byte(tt.body), nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Error)
		})
	}
}

func TestFilesHandlerRejectsBadToken(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	rec := env.do(http.MethodGet, "/files/not-a-token", "", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, decodeError(t, rec).Error)
}

func TestRateLimitMiddleware(t *testing.T) {
	env := newTestEnv(t, ServerConfig{
		RateLimit: &config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 1, ByIP: true},
	})
	t.Cleanup(env.server.RateLimiter.Close)

	rec := env.do(http.MethodGet, "/stats", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/stats", "", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, apperrors.ErrCodeRateLimited, decodeError(t, rec).Error)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Health stays reachable
	rec = env.do(http.MethodGet, "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatsHandlerCountsOrders(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	body := mustJSON(t, map[string]any{"resumeData": json.RawMessage(testResume)})
	rec := env.do(http.MethodPost, "/api/create-order", "application/json", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodGet, "/stats", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Orders map[string]int `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Orders["pending"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  *apperrors.AppError
		want int
	}{
		{apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "", nil), http.StatusBadRequest},
		{apperrors.NewValidationError(apperrors.ErrCodeRequestTooLarge, "", nil), http.StatusRequestEntityTooLarge},
		{apperrors.NewValidationError(apperrors.ErrCodeUnsupportedMedia, "", nil), http.StatusUnsupportedMediaType},
		{apperrors.NewNotFoundError(apperrors.ErrCodeOrderNotFound, "", nil), http.StatusNotFound},
		{apperrors.NewConflictError(apperrors.ErrCodeOrderNotReady, "", nil), http.StatusConflict},
		{apperrors.NewStorageError(apperrors.ErrCodeStorageUnavailable, "", nil), http.StatusServiceUnavailable},
		{apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed, "", nil), http.StatusBadGateway},
		{apperrors.NewInternalError(apperrors.ErrCodeQueueFailed, "", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestDisplayServerInfo(t *testing.T) {
	env := newTestEnv(t, ServerConfig{
		APIKeys:        []string{"secret-key-123456"},
		MaxRequestSize: 2 << 20,
		RateLimit:      &config.RateLimitConfig{Enabled: true, RequestsPerMin: 30, BurstCapacity: 5, ByIP: true},
	})
	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	env.server.displayServerInfo(&out, om)

	banner := out.String()
	assert.Contains(t, banner, "/api/download/{id}")
	assert.Contains(t, banner, "(requires API key)")
	assert.Contains(t, banner, "ENABLED (1 keys configured)")
	assert.Contains(t, banner, "Request size limit: 2.0 MB")
	assert.Contains(t, banner, "30 requests/min, burst 5, keyed by [ip]")
	assert.Contains(t, banner, "Render worker: EXTERNAL")
	assert.NotContains(t, banner, "/metrics")
}

func TestStatsHandlerReportsImport(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})

	rec := env.do(http.MethodGet, "/stats", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Import map[string]any `json:"import"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, false, stats.Import["ai_enabled"])
}

func TestMaskAPIKey(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"short":            "****",
		"12345678":         "****",
		"sk-live-abcdefgh": "sk-l****",
	}
	for key, want := range tests {
		assert.Equal(t, want, maskAPIKey(key), key)
	}
}
