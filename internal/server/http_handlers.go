package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"

	"resumeats/internal/ats"
	apperrors "resumeats/internal/errors"
	"resumeats/internal/resume"
	"resumeats/internal/storage"
)

// stateReporter is implemented by blob stores behind a circuit breaker
type stateReporter interface {
	State() string
}

// healthHandler reports service health. The service is degraded while the
// storage circuit breaker is open.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumeats",
		"version": s.Version,
	}

	response["ats"] = map[string]any{
		"keywords": len(s.deps.Engine.Keywords()),
		"locales":  ats.SupportedLocales,
	}
	response["import"] = map[string]any{
		"ai_enabled": s.deps.Importer.AIEnabled(),
	}

	status := http.StatusOK
	if reporter, ok := s.deps.Store.(stateReporter); ok {
		state := reporter.State()
		response["storage"] = map[string]any{"circuit_breaker": state}
		if state == "open" {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info and
// order counts
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumeats",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys":               s.APIKeys.Len(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	response["import"] = s.deps.Importer.Stats()

	if s.deps.Orders != nil {
		counts, err := s.deps.Orders.Counts(r.Context())
		if err != nil {
			s.Logger.LogError(err, "Failed to count orders")
			response["orders"] = map[string]any{"error": "unavailable"}
		} else {
			response["orders"] = counts
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// filesHandler serves documents of the local blob store. The path segment
// is a signed download token.
func (s *Server) filesHandler(w http.ResponseWriter, r *http.Request) {
	resolver, ok := s.deps.Store.(storage.TokenResolver)
	if !ok {
		writeErrorResponse(w, http.StatusNotFound, apperrors.ErrCodeFileNotFound, "Downloads are not served by this instance", nil)
		return
	}

	path, err := resolver.Resolve(r.PathValue("token"))
	if err != nil {
		s.Logger.Info("Rejected download token", "client_ip", getClientIP(r), "error", err.Error())
		writeErrorResponse(w, http.StatusForbidden, apperrors.ErrCodeInvalidToken, "Invalid or expired download link", nil)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="resume.pdf"`)
	http.ServeFile(w, r, path)
}

// readBody reads the (size limited) request body
func readBody(r *http.Request) ([]byte, error) {
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, apperrors.NewValidationError(apperrors.ErrCodeRequestTooLarge,
				fmt.Sprintf("Request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return nil, apperrors.NewIOError(apperrors.ErrCodeInvalidRequest, "Failed to read request body", err)
	}
	return body, nil
}

// parseJSONRequest parses JSON request body into the provided struct. An
// empty body is accepted when allowEmpty is set.
func parseJSONRequest(r *http.Request, v any, allowEmpty bool) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if len(body) == 0 && allowEmpty {
		return nil
	}

	if mediaType(r) != "application/json" {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "Content-Type must be application/json", nil)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("Failed to parse JSON: %v", err), err)
	}
	return nil
}

// mediaType returns the request media type without parameters
func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string, details any) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   code,
		Message: message,
		Details: details,
	})
}

// writeAppError maps an error to its HTTP status and writes it. Shape
// violations of a résumé record are listed in details.
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	var details any
	var shapeErr *resume.ShapeError
	if errors.As(err, &shapeErr) {
		details = shapeErr.Errors
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		if shapeErr != nil {
			writeErrorResponse(w, http.StatusBadRequest, apperrors.ErrCodeInvalidRecord, "Resume record has an invalid shape", details)
			return
		}
		s.Logger.LogError(err, "Unhandled request error")
		writeErrorResponse(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "Internal server error", nil)
		return
	}

	statusCode := statusFor(appErr)
	if statusCode >= http.StatusInternalServerError {
		s.Logger.LogError(appErr, "Request failed")
	}
	writeErrorResponse(w, statusCode, appErr.Code, appErr.Message, details)
}

// statusFor maps an error type to an HTTP status code
func statusFor(err *apperrors.AppError) int {
	switch err.Type {
	case apperrors.ErrorTypeValidation:
		if err.Code == apperrors.ErrCodeRequestTooLarge {
			return http.StatusRequestEntityTooLarge
		}
		if err.Code == apperrors.ErrCodeUnsupportedMedia {
			return http.StatusUnsupportedMediaType
		}
		return http.StatusBadRequest
	case apperrors.ErrorTypeIO:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeStorage:
		return http.StatusServiceUnavailable
	case apperrors.ErrorTypeAI, apperrors.ErrorTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
