package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"resumeats/internal/extract"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
// Secret Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMEATS_AI_APIKEY, etc.), including a local .env file
// 4. Default values - Lowest priority
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	ATS           ATSConfig           `mapstructure:"ats"`
	Extract       ExtractConfig       `mapstructure:"extract"`
	AI            AIConfig            `mapstructure:"ai"`
	Server        ServerConfig        `mapstructure:"server"`
	Orders        OrdersConfig        `mapstructure:"orders"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Queue         QueueConfig         `mapstructure:"queue"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ATSConfig holds scoring engine configuration
type ATSConfig struct {
	DefaultLocale            string            `mapstructure:"defaultLocale"`
	KeywordsFile             string            `mapstructure:"keywordsFile"`  // Optional keyword list replacing the built-in one
	WatchKeywords            bool              `mapstructure:"watchKeywords"` // Reload KeywordsFile on change
	WatchDebounce            time.Duration     `mapstructure:"watchDebounce"`
	ExperienceDescriptionMin int               `mapstructure:"experienceDescriptionMin"`
	Summary                  SummaryThresholds `mapstructure:"summary"`
}

// SummaryThresholds are rune counts bucketing the professional summary
type SummaryThresholds struct {
	Min  int `mapstructure:"min"`
	Good int `mapstructure:"good"`
	Max  int `mapstructure:"max"`
}

// ExtractConfig holds document import configuration
type ExtractConfig struct {
	MaxPages int            `mapstructure:"maxPages"`
	Limits   extract.Limits `mapstructure:"limits"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// AIConfig holds the optional Gemini import configuration
type AIConfig struct {
	Enabled          bool                 `mapstructure:"enabled"`
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          time.Duration        `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	MaxRetries       int                  `mapstructure:"maxRetries"`
	Temperature      float32              `mapstructure:"temperature"`
	SystemPrompt     string               `mapstructure:"systemPrompt"`
	SystemPromptFile string               `mapstructure:"systemPromptFile"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	MaxRequestSize int64         `mapstructure:"maxRequestSize"`
	PublicBaseURL  string        `mapstructure:"publicBaseURL"` // Prefix for local download links
	RunWorker      bool          `mapstructure:"runWorker"`     // Run the render worker inside serve

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int           `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int           `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool          `mapstructure:"byIP"`           // Enable per-IP rate limiting
	ByAPIKey       bool          `mapstructure:"byAPIKey"`       // Enable per-API-key rate limiting
	Window         time.Duration `mapstructure:"window"`         // Rate limiting window duration
}

// OrdersConfig holds the sandboxed order pipeline configuration
type OrdersConfig struct {
	AmountCents     int64         `mapstructure:"amountCents"`
	Currency        string        `mapstructure:"currency"`
	DefaultTemplate string        `mapstructure:"defaultTemplate"`
	Workers         int           `mapstructure:"workers"`
	RenderTimeout   time.Duration `mapstructure:"renderTimeout"`
	ChromePath      string        `mapstructure:"chromePath"` // Empty uses the chromedp lookup
	DownloadTTL     time.Duration `mapstructure:"downloadTTL"`
}

// StorageConfig selects and configures the blob store
type StorageConfig struct {
	Backend        string               `mapstructure:"backend"` // local, s3
	Local          LocalStorageConfig   `mapstructure:"local"`
	S3             S3StorageConfig      `mapstructure:"s3"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// LocalStorageConfig configures the filesystem blob store
type LocalStorageConfig struct {
	BaseDir    string `mapstructure:"baseDir"`
	SigningKey string `mapstructure:"signingKey"` // HS256 secret for download tokens
}

// S3StorageConfig configures the S3 blob store
type S3StorageConfig struct {
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"` // Optional, for S3-compatible services
	UsePathStyle bool   `mapstructure:"usePathStyle"`
}

// DatabaseConfig selects the order repository
type DatabaseConfig struct {
	Driver            string        `mapstructure:"driver"` // memory, postgres
	URL               string        `mapstructure:"url"`
	MaxConns          int32         `mapstructure:"maxConns"`
	HealthCheckPeriod time.Duration `mapstructure:"healthCheckPeriod"`
}

// QueueConfig selects the render job queue
type QueueConfig struct {
	Backend     string        `mapstructure:"backend"` // memory, redis
	Name        string        `mapstructure:"name"`
	BufferSize  int           `mapstructure:"bufferSize"`
	PollTimeout time.Duration `mapstructure:"pollTimeout"`
	Redis       RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds the Redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	BusinessMetrics BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// BusinessMetricsConfig holds business metrics configuration
type BusinessMetricsConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	TrackScores      bool `mapstructure:"trackScores"`
	TrackOrders      bool `mapstructure:"trackOrders"`
	TrackRenderTimes bool `mapstructure:"trackRenderTimes"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// decodeHook lets durations and comma-separated lists come from env vars
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("")
}

// LoadConfigFrom loads configuration like LoadConfig, reading configFile
// instead of searching the default paths when it is not empty.
func LoadConfigFrom(configFile string) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	// A missing .env file is normal outside development
	if err := godotenv.Load(); err == nil {
		log.Println("[CONFIG] Loaded environment from .env")
	}

	v := viper.New()

	// Set default values
	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	// Set up environment variable handling
	v.SetEnvPrefix("RESUMEATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'RESUMEATS'")

	// Set up config file handling
	if configFile != "" {
		v.SetConfigFile(configFile)
		log.Printf("[CONFIG] Using explicit config file: %s", configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.resumeats")
		log.Println("[CONFIG] Configured config file search paths: ., ./config, $HOME/.resumeats")
	}

	// Read the config file
	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	// Unmarshal the configuration into the Config struct
	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	config.logConfigurationSources(configFileUsed)

	if err := config.loadSystemPromptFile(); err != nil {
		return nil, fmt.Errorf("failed to load AI system prompt: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Default returns the built-in configuration without reading files or the environment
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// Defaults always decode
	_ = v.Unmarshal(&config, decodeHook())
	return &config
}
