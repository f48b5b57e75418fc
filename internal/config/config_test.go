package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, DefaultModel, cfg.AI.Model)
	assert.Equal(t, time.Duration(0), cfg.AI.Timeout)
	assert.Equal(t, 1000, cfg.Session.MaxSessions)
	assert.Equal(t, int64(10*1024*1024), cfg.App.MaxFileSize)
}

func TestOperationTemperatures(t *testing.T) {
	cfg := Default()

	analyze := cfg.GetAnalyzeConfig()
	rewrite := cfg.GetRewriteConfig()

	require.NotNil(t, analyze.Temperature)
	require.NotNil(t, rewrite.Temperature)
	assert.InDelta(t, 0.2, *analyze.Temperature, 1e-6)
	assert.InDelta(t, 0.4, *rewrite.Temperature, 1e-6)
	assert.False(t, analyze.CircuitBreaker.Enabled)
}

func TestApplyOperationDefaults(t *testing.T) {
	cfg := Default()
	cfg.AI.APIKey = "global-key"
	cfg.AI.Model = "global-model"
	cfg.AI.Rewrite.Model = "rewrite-model"
	cfg.AI.Rewrite.Temperature = nil

	rewrite := cfg.GetRewriteConfig()
	assert.Equal(t, "rewrite-model", rewrite.Model)
	assert.Equal(t, "global-key", rewrite.APIKey)
	require.NotNil(t, rewrite.Temperature)
	assert.Equal(t, cfg.AI.Temperature, *rewrite.Temperature)
	require.NotNil(t, rewrite.Timeout)

	analyze := cfg.GetOperationConfig(OperationAnalyze)
	assert.Equal(t, "global-model", analyze.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.AI.Provider = "other" }, "unsupported AI provider"},
		{"negative timeout", func(c *Config) { c.AI.Timeout = -time.Second }, "must not be negative"},
		{"temperature out of range", func(c *Config) {
			bad := float32(3)
			c.AI.Analyze.Temperature = &bad
		}, "analyze temperature"},
		{"breaker threshold", func(c *Config) {
			c.AI.Rewrite.CircuitBreaker.Enabled = true
			c.AI.Rewrite.CircuitBreaker.FailureThreshold = 0
		}, "rewrite circuit breaker"},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port"},
		{"no sessions", func(c *Config) { c.Session.MaxSessions = 0 }, "maxSessions"},
		{"bad format", func(c *Config) { c.App.DefaultFormat = "yaml" }, "invalid default format"},
		{"tls without cert", func(c *Config) { c.Server.TLS.Mode = "server" }, "certificate and key are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
	}{
		{"disabled", TLSConfig{Mode: "disabled"}, false},
		{"server with files", TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem"}, false},
		{"server with content", TLSConfig{Mode: "server", CertContent: "c", KeyContent: "k", MinVersion: "1.3"}, false},
		{"both file and content", TLSConfig{Mode: "server", CertFile: "c.pem", CertContent: "c", KeyFile: "k.pem"}, true},
		{"bad version", TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem", MinVersion: "1.0"}, true},
		{"mutual unsupported", TLSConfig{Mode: "mutual", CertFile: "c.pem", KeyFile: "k.pem"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Server.TLS = tt.tls
			err := cfg.ValidateTLSConfig()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
ai:
  model: gemini-test
  rewrite:
    temperature: 0.5
server:
  port: "9999"
session:
  maxSessions: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-test", cfg.AI.Model)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Session.MaxSessions)
	assert.InDelta(t, 0.5, *cfg.GetRewriteConfig().Temperature, 1e-6)
	assert.InDelta(t, 0.2, *cfg.GetAnalyzeConfig().Temperature, 1e-6)
}

func TestGeminiAPIKeyEnvFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg := Default()
	assert.Equal(t, "from-env", cfg.AI.APIKey)
}

func TestServerAPIKeysEnvFallback(t *testing.T) {
	t.Setenv("INFINITEATS_SERVER_APIKEYS", " a , b,,c ")

	cfg := Default()
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Server.APIKeys)
}
