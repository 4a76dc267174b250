package observability

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig holds Prometheus-specific configuration.
// An empty Port mounts the scrape endpoint on the API server instead of
// a dedicated listener.
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// prometheusExporter couples the OTel reader with the registry it writes to
type prometheusExporter struct {
	reader  sdkmetric.Reader
	handler http.Handler
}

// newPrometheusExporter registers the OTel exporter on a private registry
// so several managers can coexist in one process.
func newPrometheusExporter() (*prometheusExporter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	return &prometheusExporter{
		reader:  exporter,
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// metricsServer is the dedicated scrape listener
type metricsServer struct {
	server *http.Server
}

// startMetricsServer binds addr and serves handler at endpoint in the background
func startMetricsServer(addr, endpoint string, handler http.Handler) (*metricsServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+endpoint, handler)

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("[METRICS] Prometheus metrics available at http://%s%s", listener.Addr(), endpoint)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[METRICS] Prometheus server error: %v", err)
		}
	}()

	return &metricsServer{server: server}, nil
}

func (s *metricsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// setupPrometheusReader adds the Prometheus reader and exposes its handler,
// starting a dedicated listener when a port is configured
func (om *ObservabilityManager) setupPrometheusReader(readers *[]sdkmetric.Reader) error {
	cfg := om.config.Prometheus
	if !cfg.Enabled {
		return nil
	}

	exporter, err := newPrometheusExporter()
	if err != nil {
		return err
	}
	*readers = append(*readers, exporter.reader)
	om.metricsHandler = exporter.handler

	if cfg.Port == "" {
		return nil
	}

	server, err := startMetricsServer(":"+cfg.Port, om.MetricsEndpoint(), exporter.handler)
	if err != nil {
		return fmt.Errorf("failed to start Prometheus server: %w", err)
	}
	om.shutdownFuncs = append(om.shutdownFuncs, server.Shutdown)
	return nil
}

// MetricsHandler returns the Prometheus scrape handler when it should be
// mounted on the API server, nil otherwise
func (om *ObservabilityManager) MetricsHandler() http.Handler {
	if om == nil || om.config.Prometheus.Port != "" {
		return nil
	}
	return om.metricsHandler
}

// MetricsEndpoint returns the configured scrape path
func (om *ObservabilityManager) MetricsEndpoint() string {
	if om == nil || om.config.Prometheus.Endpoint == "" {
		return "/metrics"
	}
	return om.config.Prometheus.Endpoint
}
