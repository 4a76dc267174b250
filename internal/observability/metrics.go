package observability

import (
	"context"
	"time"

	"resumeats/internal/orders"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RecordAnalysis counts an ATS analysis and records its score
func (m *Metrics) RecordAnalysis(ctx context.Context, score int, locale string) {
	if !m.settings.BusinessMetrics.Enabled {
		return
	}

	attrs := metric.WithAttributes(attribute.String("locale", locale))
	if m.ATSAnalyses != nil {
		m.ATSAnalyses.Add(ctx, 1, attrs)
	}
	if m.ATSScore != nil && m.settings.BusinessMetrics.TrackScores {
		m.ATSScore.Record(ctx, int64(score), attrs)
	}
}

// RecordExtraction counts a document import by the method that produced it
func (m *Metrics) RecordExtraction(ctx context.Context, method string, success bool) {
	if !m.settings.BusinessMetrics.Enabled || m.ImportExtractions == nil {
		return
	}
	m.ImportExtractions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.Bool("success", success),
	))
}

// RecordTransition counts an order entering status
func (m *Metrics) RecordTransition(ctx context.Context, status orders.Status) {
	if !m.settings.BusinessMetrics.Enabled || !m.settings.BusinessMetrics.TrackOrders || m.OrderTransitions == nil {
		return
	}
	m.OrderTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
}

// RecordRender records how long a document took to render
func (m *Metrics) RecordRender(ctx context.Context, templateKey string, duration time.Duration, err error) {
	if !m.settings.BusinessMetrics.Enabled || !m.settings.BusinessMetrics.TrackRenderTimes || m.RenderDuration == nil {
		return
	}
	m.RenderDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("template", templateKey),
		attribute.Bool("success", err == nil),
	))
}

// RecordRateLimitHit counts a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, clientType string) {
	if !m.settings.Infrastructure.Enabled || !m.settings.Infrastructure.TrackRateLimits || m.RateLimitHits == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("client_type", clientType)))
}

var _ orders.Metrics = (*Metrics)(nil)
