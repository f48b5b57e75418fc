package server

import (
	"context"
	"time"

	"infiniteats/internal/config"
	"infiniteats/internal/errors"
	"infiniteats/internal/observability"
	"infiniteats/internal/session"
	"infiniteats/internal/types"
)

// AnalyzeRequest is the body of the one-shot analyze and optimize
// endpoints. Exactly one of ResumeText and ResumeFile is expected, and one
// of JobDescription and Role.
type AnalyzeRequest struct {
	ResumeText     string        `json:"resumeText"`
	ResumeFile     *UploadedFile `json:"resumeFile,omitempty"`
	JobDescription string        `json:"jobDescription"`
	Role           string        `json:"role"`
}

// UploadedFile carries a base64 encoded resume in a JSON body.
type UploadedFile struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Optimizer is what the server needs from the AI layer.
type Optimizer interface {
	session.Analyzer
	session.Rewriter
	Health(ctx context.Context) map[string]any
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64
	MaxFileSize    int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	AI       Optimizer
	Sessions *session.Store
	Obs      *observability.ObservabilityManager

	Logger *errors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	MaxFileSize    int64
	RateLimit      *config.RateLimitConfig
}

// NewServerConfig derives a ServerConfig from the application config.
func NewServerConfig(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		MaxFileSize:    cfg.App.MaxFileSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server. The session store and observability
// manager are owned by the caller.
func NewServer(appCfg *config.Config, cfg ServerConfig, optimizer Optimizer, store *session.Store,
	om *observability.ObservabilityManager, logger *errors.Logger) *Server {
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			cfg.RateLimit.IdleTTL,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		MaxFileSize:    cfg.MaxFileSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		AI:             optimizer,
		Sessions:       store,
		Obs:            om,
		Logger:         logger,
	}
}

// roleCatalog is served by /api/roles and the upload page.
func roleCatalog() []string {
	return append([]string(nil), types.Roles...)
}
