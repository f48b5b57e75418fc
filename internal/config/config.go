package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (INFINITEATS_AI_APIKEY, GEMINI_API_KEY)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Prompts       PromptsConfig       `mapstructure:"prompts"`
	Server        ServerConfig        `mapstructure:"server"`
	Session       SessionConfig       `mapstructure:"session"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`

	prompts *PromptSet
}

// AIConfig holds AI service configuration
type AIConfig struct {
	// Global/fallback configuration
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"` // 0 leaves the transport default
	APIKey      string        `mapstructure:"apiKey"`
	Temperature float32       `mapstructure:"temperature"`

	// Operation-specific configurations
	Analyze OperationAIConfig `mapstructure:"analyze"`
	Rewrite OperationAIConfig `mapstructure:"rewrite"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Open -> half-open delay
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for one operation
type OperationAIConfig struct {
	Provider       string               `mapstructure:"provider"`
	Model          string               `mapstructure:"model"`
	Timeout        *time.Duration       `mapstructure:"timeout"`
	APIKey         string               `mapstructure:"apiKey"`
	Temperature    *float32             `mapstructure:"temperature"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// PromptsConfig points at optional prompt template files.
type PromptsConfig struct {
	AnalyzeFile   string        `mapstructure:"analyzeFile"`
	RewriteFile   string        `mapstructure:"rewriteFile"`
	Watch         bool          `mapstructure:"watch"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	MaxRequestSize int64         `mapstructure:"maxRequestSize"`

	TLS TLSConfig `mapstructure:"tls"`

	// API keys guard the JSON API; the browser pages stay open.
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"` // "disabled" or "server"
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`

	// Certificate content (used when loaded from Vault instead of files)
	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`

	MinVersion string `mapstructure:"minVersion"` // "1.2" or "1.3"
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	IdleTTL        time.Duration `mapstructure:"idleTTL"` // how long an unused limiter is kept
}

// SessionConfig controls the in-memory browser sessions.
type SessionConfig struct {
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
	MaxSessions  int           `mapstructure:"maxSessions"`
	CookieName   string        `mapstructure:"cookieName"`
	CookieSecure bool          `mapstructure:"cookieSecure"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
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
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	AIOperations    AIOperationsMetricsConfig   `mapstructure:"aiOperations"`
	BusinessMetrics BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

type AIOperationsMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
}

type BusinessMetricsConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	TrackEdits  bool `mapstructure:"trackEdits"`
	TrackExport bool `mapstructure:"trackExport"`
}

type InfrastructureMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
	TrackSessions   bool `mapstructure:"trackSessions"`
}

type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"` // empty serves metrics on the main server
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

type HealthCheckConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	AIModelCheckTimeout time.Duration `mapstructure:"aiModelCheckTimeout"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix("INFINITEATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'INFINITEATS'")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/infiniteats/")
	v.AddConfigPath("$HOME/.infiniteats")
	v.AddConfigPath(".")

	return loadFromViper(v)
}

// LoadConfigFile loads configuration from an explicit file path, still
// honoring environment overrides.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("INFINITEATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(path)
	return loadFromViper(v)
}

func loadFromViper(v *viper.Viper) (*Config, error) {
	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid. A missing API key is not
// an error here; commands that never call the model still work without one.
func (c *Config) Validate() error {
	if c.AI.Provider != "gemini" {
		return fmt.Errorf("unsupported AI provider: %s", c.AI.Provider)
	}

	if c.AI.Timeout < 0 {
		return fmt.Errorf("AI timeout must not be negative")
	}

	for _, op := range []struct {
		name string
		cfg  OperationAIConfig
	}{{OperationAnalyze, c.AI.Analyze}, {OperationRewrite, c.AI.Rewrite}} {
		if op.cfg.Temperature != nil && (*op.cfg.Temperature < 0 || *op.cfg.Temperature > 2) {
			return fmt.Errorf("%s temperature must be between 0 and 2", op.name)
		}
		if cb := op.cfg.CircuitBreaker; cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
			return fmt.Errorf("%s circuit breaker failureThreshold must be in (0, 1]", op.name)
		}
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("session maxSessions must be positive")
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("session idleTimeout must be positive")
	}

	if c.App.MaxFileSize <= 0 {
		return fmt.Errorf("app maxFileSize must be positive")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}
