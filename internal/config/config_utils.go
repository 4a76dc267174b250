package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"resumeats/internal/ats"
	"resumeats/internal/errors"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyAIKeyFallback()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks trims API keys, which may arrive comma-separated
func (c *Config) applyServerAPIKeyFallbacks() {
	keys := c.Server.APIKeys[:0]
	for _, key := range c.Server.APIKeys {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	c.Server.APIKeys = keys
}

// applyAIKeyFallback accepts the conventional GEMINI_API_KEY variable
func (c *Config) applyAIKeyFallback() {
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	// Try to get hostname, fallback to default
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if _, err := errors.ParseLevel(c.App.LogLevel); err != nil {
		return err
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if _, ok := ats.ParseLocale(c.ATS.DefaultLocale); !ok {
		return fmt.Errorf("unsupported default locale: %s", c.ATS.DefaultLocale)
	}

	s := c.ATS.Summary
	if s.Min <= 0 || s.Min > s.Good || s.Good > s.Max {
		return fmt.Errorf("summary thresholds must satisfy 0 < min <= good <= max (got %d/%d/%d)", s.Min, s.Good, s.Max)
	}

	if c.AI.Enabled && c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.Orders.AmountCents <= 0 {
		return fmt.Errorf("order amount must be positive")
	}
	if c.Orders.Workers < 1 {
		return fmt.Errorf("at least one render worker is required")
	}

	switch c.Storage.Backend {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be 'local' or 's3')", c.Storage.Backend)
	}

	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be 'memory' or 'postgres')", c.Database.Driver)
	}

	switch c.Queue.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid queue backend: %s (must be 'memory' or 'redis')", c.Queue.Backend)
	}

	return nil
}

// sourceEnvVars are the environment variables worth reporting at startup
var sourceEnvVars = []string{
	"RESUMEATS_AI_APIKEY",
	"RESUMEATS_AI_ENABLED",
	"RESUMEATS_SERVER_PORT",
	"RESUMEATS_SERVER_HOST",
	"RESUMEATS_SERVER_APIKEYS",
	"RESUMEATS_APP_LOGLEVEL",
	"RESUMEATS_DATABASE_URL",
	"RESUMEATS_STORAGE_BACKEND",
	"RESUMEATS_STORAGE_LOCAL_SIGNINGKEY",
	"RESUMEATS_QUEUE_BACKEND",
	"RESUMEATS_VAULT_ENABLED",
	"GEMINI_API_KEY",
}

// logConfigurationSources prints where the configuration came from and the
// values that shape the run. Secrets are masked.
func (c *Config) logConfigurationSources(configFileUsed string) {
	if configFileUsed == "" {
		configFileUsed = "none (defaults, env and flags only)"
	}
	log.Printf("[CONFIG] Config file: %s", configFileUsed)

	var set []string
	for _, name := range sourceEnvVars {
		value, ok := os.LookupEnv(name)
		if !ok || value == "" {
			continue
		}
		if isSensitive(name) {
			value = "***MASKED***"
		}
		set = append(set, name+"="+value)
	}
	if len(set) == 0 {
		log.Println("[CONFIG] Environment: none set")
	} else {
		log.Printf("[CONFIG] Environment: %s", strings.Join(set, " "))
	}

	for _, kv := range c.summary() {
		log.Printf("[CONFIG] %-18s %v", kv[0]+":", kv[1])
	}
}

// summary lists the non-secret settings reported at startup
func (c *Config) summary() [][2]any {
	aiKey := "not set"
	if c.AI.APIKey != "" {
		aiKey = "configured"
	}
	return [][2]any{
		{"AI import", fmt.Sprintf("%t (model %s, key %s)", c.AI.Enabled, c.AI.Model, aiKey)},
		{"Server", c.Server.Host + ":" + c.Server.Port},
		{"Log level", c.App.LogLevel},
		{"ATS locale", c.ATS.DefaultLocale},
		{"Storage", c.Storage.Backend},
		{"Database", c.Database.Driver},
		{"Queue", c.Queue.Backend},
		{"Vault", c.Vault.Enabled},
		{"Observability", c.Observability.Enabled},
	}
}

func isSensitive(envVar string) bool {
	lower := strings.ToLower(envVar)
	return strings.Contains(lower, "key") || strings.Contains(lower, "url")
}
