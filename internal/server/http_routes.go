package server

import (
	"net/http"
	"strings"

	apperrors "resumeats/internal/errors"
	"resumeats/internal/observability"
)

// route is one endpoint of the API. The list also feeds the startup banner.
type route struct {
	method    string
	path      string
	summary   string
	protected bool
	handler   http.HandlerFunc
}

func (s *Server) routes(om *observability.ObservabilityManager) []route {
	return []route{
		{"GET", "/health", "Health check", false, s.healthHandler},
		{"GET", "/files/{token}", "Signed document download", false, s.filesHandler},
		{"GET", "/stats", "Server statistics and order counts", true, s.statsHandler},
		{"POST", "/ats/analyze", "Score a résumé record", true, s.createAnalyzeHandler(om)},
		{"POST", "/import/extract", "Import a PDF or text résumé", true, s.createExtractHandler(om)},
		{"POST", "/import/merge", "Merge an imported record", true, s.createMergeHandler(om)},
		{"POST", "/api/create-order", "Create a sandbox order", true, s.createOrderHandler(om)},
		{"GET", "/api/order/{id}", "Order status", true, s.getOrderHandler(om)},
		{"POST", "/api/order/{id}/pay", "Confirm sandbox payment", true, s.payOrderHandler(om)},
		{"GET", "/api/download/{id}", "Redirect to the rendered PDF", true, s.downloadHandler(om)},
	}
}

// setupRoutes mounts every route. Protected routes pass rate limiting,
// authentication and the body size limit, in that order.
func (s *Server) setupRoutes(om *observability.ObservabilityManager) *http.ServeMux {
	mux := http.NewServeMux()

	rateLimited := s.rateLimitMiddleware(om.GetMetrics())
	sizeLimited := s.requestSizeLimitMiddleware()

	for _, rt := range s.routes(om) {
		h := rt.handler
		if rt.protected {
			h = rateLimited(s.authMiddleware(sizeLimited(h)))
		}
		mux.HandleFunc(rt.method+" "+rt.path, h)
	}

	if metrics := om.MetricsHandler(); metrics != nil {
		mux.Handle("GET "+om.MetricsEndpoint(), metrics)
	}
	return mux
}

// authMiddleware rejects requests without a known API key. It is a no-op
// while no keys are configured.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.APIKeys.Len() == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		message := ""
		switch {
		case apiKey == "":
			message = "X-API-Key header or Authorization Bearer token required"
		case !s.APIKeys.Has(apiKey):
			message = "Invalid API key"
		default:
			next(w, r)
			return
		}

		s.Logger.Info("Authentication failed",
			"reason", message,
			"endpoint", r.URL.Path,
			"client_ip", getClientIP(r),
			"api_key_prefix", maskAPIKey(apiKey))
		writeErrorResponse(w, http.StatusUnauthorized, apperrors.ErrCodeUnauthorized, message, nil)
	}
}

// requestAPIKey reads the X-API-Key header, falling back to a Bearer token
func requestAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}

			next(w, r)
		}
	}
}

// maskAPIKey keeps the first 4 characters of keys longer than 8
func maskAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:4] + "****"
}
