package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"resumeats/internal/ats"
	apperrors "resumeats/internal/errors"
	"resumeats/internal/observability"
	"resumeats/internal/orders"
	"resumeats/internal/pdftext"
	"resumeats/internal/resume"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "resumeats.api"

// failSpan records err on span and writes the error response
func (s *Server) failSpan(w http.ResponseWriter, span trace.Span, errorType string, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.type", errorType))
	s.writeAppError(w, err)
}

// createAnalyzeHandler scores the posted résumé record
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.ats.analyze")
		defer span.End()

		var locale ats.Locale
		if raw := r.URL.Query().Get("locale"); raw != "" {
			parsed, ok := ats.ParseLocale(raw)
			if !ok {
				s.failSpan(w, span, "validation", apperrors.NewValidationError(apperrors.ErrCodeInvalidLocale,
					fmt.Sprintf("Unsupported locale %q, expected one of pt, en, es", raw), nil))
				return
			}
			locale = parsed
		}

		body, err := readBody(r)
		if err != nil {
			s.failSpan(w, span, "validation", err)
			return
		}
		record, err := resume.Decode(body)
		if err != nil {
			s.failSpan(w, span, "validation", apperrors.NewValidationError(apperrors.ErrCodeInvalidRecord, "Resume record has an invalid shape", err))
			return
		}

		report := s.deps.Engine.Analyze(record, locale)
		om.GetMetrics().RecordAnalysis(ctx, report.Score, string(report.Locale))

		span.SetAttributes(
			attribute.String("ats.locale", string(report.Locale)),
			attribute.Int("ats.score", report.Score),
			attribute.Int("ats.percentage", report.Percentage),
		)

		writeJSON(w, http.StatusOK, report)
	}
}

// createExtractHandler imports a partial record from an uploaded PDF or
// text document. The body is either the raw document, a multipart form
// with a "file" field, or JSON {"text": "..."}.
func (s *Server) createExtractHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.import.extract")
		defer span.End()

		text, err := s.documentText(r)
		if err != nil {
			om.GetMetrics().RecordExtraction(ctx, "none", false)
			s.failSpan(w, span, "validation", err)
			return
		}
		if strings.TrimSpace(text) == "" {
			om.GetMetrics().RecordExtraction(ctx, "none", false)
			s.failSpan(w, span, "validation", apperrors.NewValidationError(apperrors.ErrCodeTextExtraction,
				"Document has no extractable text", nil))
			return
		}

		result := s.deps.Importer.Import(ctx, text)
		om.GetMetrics().RecordExtraction(ctx, string(result.Method), true)

		span.SetAttributes(
			attribute.Int("request.text_length", len(text)),
			attribute.String("import.method", string(result.Method)),
		)

		writeJSON(w, http.StatusOK, result)
	}
}

// documentText returns the text of the uploaded document
func (s *Server) documentText(r *http.Request) (string, error) {
	switch mediaType(r) {
	case "application/json":
		var req ExtractRequest
		if err := parseJSONRequest(r, &req, false); err != nil {
			return "", err
		}
		return req.Text, nil
	case "multipart/form-data":
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "Multipart upload requires a \"file\" field", err)
		}
		defer func() { _ = file.Close() }()
		return s.readDocument(file)
	default:
		body, err := readBody(r)
		if err != nil {
			return "", err
		}
		return s.documentFromBytes(body)
	}
}

func (s *Server) readDocument(file multipart.File) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable, "Failed to read uploaded file", err)
	}
	return s.documentFromBytes(data)
}

func (s *Server) documentFromBytes(data []byte) (string, error) {
	if pdftext.Sniff(data) == "" {
		return "", apperrors.NewValidationError(apperrors.ErrCodeUnsupportedMedia,
			"Document must be a PDF or UTF-8 text", nil)
	}
	text, err := s.deps.Reader.Text(data)
	if err != nil {
		return "", apperrors.NewValidationError(apperrors.ErrCodeTextExtraction, "Failed to read document text", err)
	}
	return text, nil
}

// createMergeHandler merges an imported partial record into a base record
func (s *Server) createMergeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := om.Tracer(tracerName).Start(r.Context(), "api.import.merge")
		defer span.End()

		var req MergeRequest
		if err := parseJSONRequest(r, &req, false); err != nil {
			s.failSpan(w, span, "validation", err)
			return
		}
		if len(req.Base) == 0 || len(req.Partial) == 0 {
			s.failSpan(w, span, "validation", apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest,
				"base and partial fields are required", nil))
			return
		}

		base, err := resume.Decode(req.Base)
		if err != nil {
			s.failSpan(w, span, "validation", apperrors.NewValidationError(apperrors.ErrCodeInvalidRecord, "Invalid base record", err))
			return
		}
		partial, err := resume.DecodePartial(req.Partial)
		if err != nil {
			s.failSpan(w, span, "validation", apperrors.NewValidationError(apperrors.ErrCodeInvalidRecord, "Invalid partial record", err))
			return
		}

		writeJSON(w, http.StatusOK, resume.Merge(base, partial))
	}
}

// createOrderHandler stores a new pending order
func (s *Server) createOrderHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.orders.create")
		defer span.End()

		var req orders.CreateOrderRequest
		if err := parseJSONRequest(r, &req, false); err != nil {
			s.failSpan(w, span, "validation", err)
			return
		}

		order, err := s.deps.Orders.Create(ctx, req)
		if err != nil {
			s.failSpan(w, span, "orders", err)
			return
		}

		span.SetAttributes(
			attribute.String("order.id", order.ID),
			attribute.String("order.template", order.TemplateKey),
		)

		writeJSON(w, http.StatusCreated, CreateOrderResponse{
			OrderID:     order.ID,
			Status:      order.Status,
			AmountCents: order.AmountCents,
			Currency:    order.Currency,
		})
	}
}

// getOrderHandler returns the public view of an order
func (s *Server) getOrderHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.orders.get")
		defer span.End()

		id := r.PathValue("id")
		span.SetAttributes(attribute.String("order.id", id))

		order, err := s.deps.Orders.Get(ctx, id)
		if err != nil {
			s.failSpan(w, span, "orders", err)
			return
		}

		writeJSON(w, http.StatusOK, newOrderView(order))
	}
}

// payOrderHandler confirms a simulated payment and queues the render
func (s *Server) payOrderHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.orders.pay")
		defer span.End()

		id := r.PathValue("id")
		span.SetAttributes(attribute.String("order.id", id))

		var req orders.PaymentRequest
		if err := parseJSONRequest(r, &req, true); err != nil {
			s.failSpan(w, span, "validation", err)
			return
		}

		order, err := s.deps.Orders.Pay(ctx, id, req)
		if err != nil {
			s.failSpan(w, span, "orders", err)
			return
		}

		writeJSON(w, http.StatusAccepted, newOrderView(order))
	}
}

// downloadHandler redirects to a signed URL of a ready order's document
func (s *Server) downloadHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.orders.download")
		defer span.End()

		id := r.PathValue("id")
		span.SetAttributes(attribute.String("order.id", id))

		url, err := s.deps.Orders.DownloadURL(ctx, id)
		if err != nil {
			s.failSpan(w, span, "orders", err)
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}

func newOrderView(o *orders.Order) OrderView {
	return OrderView{
		OrderID:      o.ID,
		Status:       o.Status,
		AmountCents:  o.AmountCents,
		Currency:     o.Currency,
		TemplateKey:  o.TemplateKey,
		BuyerEmail:   o.BuyerEmail,
		ProviderInfo: o.ProviderInfo,
		Error:        o.Error,
		Downloadable: o.Status == orders.StatusReady,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
