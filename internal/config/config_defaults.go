package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 5*1024*1024) // 5MB, résumé PDFs

	// ATS Configuration
	v.SetDefault("ats.defaultLocale", "pt")
	v.SetDefault("ats.keywordsFile", "")
	v.SetDefault("ats.watchKeywords", false)
	v.SetDefault("ats.watchDebounce", time.Second)
	v.SetDefault("ats.experienceDescriptionMin", 50)
	v.SetDefault("ats.summary.min", 100)
	v.SetDefault("ats.summary.good", 200)
	v.SetDefault("ats.summary.max", 2000)

	// Extraction Configuration
	v.SetDefault("extract.maxPages", 10)
	v.SetDefault("extract.limits.nameScanLines", 6)
	v.SetDefault("extract.limits.summaryLines", 3)
	v.SetDefault("extract.limits.summaryMaxRunes", 800)
	v.SetDefault("extract.limits.windowLines", 20)
	v.SetDefault("extract.limits.maxSkills", 60)
	v.SetDefault("extract.limits.maxEntries", 5)

	// AI Configuration
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 2)
	v.SetDefault("ai.temperature", 0.1) // Extraction should be literal
	v.SetDefault("ai.systemPrompt", "")
	v.SetDefault("ai.systemPromptFile", "")
	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 10*1024*1024)
	v.SetDefault("server.publicBaseURL", "http://localhost:8080")
	v.SetDefault("server.runWorker", true)
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// Order pipeline Configuration
	v.SetDefault("orders.amountCents", 1000)
	v.SetDefault("orders.currency", "BRL")
	v.SetDefault("orders.defaultTemplate", "optimized")
	v.SetDefault("orders.workers", 2)
	v.SetDefault("orders.renderTimeout", 45*time.Second)
	v.SetDefault("orders.chromePath", "")
	v.SetDefault("orders.downloadTTL", 15*time.Minute)

	// Storage Configuration
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local.baseDir", "./data/blobs")
	v.SetDefault("storage.local.signingKey", "")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.usePathStyle", false)
	v.SetDefault("storage.circuitBreaker.enabled", true)
	v.SetDefault("storage.circuitBreaker.maxRequests", 1)
	v.SetDefault("storage.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("storage.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("storage.circuitBreaker.minRequests", 3)
	v.SetDefault("storage.circuitBreaker.failureThreshold", 0.5)

	// Database Configuration
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.url", "")
	v.SetDefault("database.maxConns", 10)
	v.SetDefault("database.healthCheckPeriod", 30*time.Second)

	// Queue Configuration
	v.SetDefault("queue.backend", "memory")
	v.SetDefault("queue.name", "resumeats:render")
	v.SetDefault("queue.bufferSize", 100)
	v.SetDefault("queue.pollTimeout", 5*time.Second)
	v.SetDefault("queue.redis.addr", "localhost:6379")
	v.SetDefault("queue.redis.password", "")
	v.SetDefault("queue.redis.db", 0)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.mount", "secret")
	v.SetDefault("vault.keyRefresh", 0)
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.databaseURL", "")
	v.SetDefault("vault.secrets.signingKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumeats")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackScores", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackOrders", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackRenderTimes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
