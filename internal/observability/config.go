package observability

import (
	"resumeats/internal/config"
)

// GetObservabilityConfig flattens the observability section of cfg. The
// tracing section overrides the global sample rate, and disabling tracing
// keeps the provider but samples nothing.
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:    "resumeats",
			ServiceVersion: version,
			Enabled:        true,
			ConsoleOutput:  true,
			PrettyPrint:    true,
			SampleRate:     1.0,
		}
	}

	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	sampleRate := obs.SampleRate
	switch {
	case !obs.Tracing.Enabled:
		sampleRate = 0
	case obs.Tracing.SampleRate > 0:
		sampleRate = obs.Tracing.SampleRate
	}

	return ObservabilityConfig{
		ServiceName:    obs.ServiceName,
		ServiceVersion: serviceVersion,
		Enabled:        obs.Enabled,
		ConsoleOutput:  obs.ConsoleOutput || obs.Console.Enabled,
		PrettyPrint:    obs.Console.PrettyPrint,
		SampleRate:     sampleRate,
		Prometheus: PrometheusConfig{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
	}
}
