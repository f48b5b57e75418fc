package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/vault/api"

	"infiniteats/internal/errors"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault (KV v2 paths, e.g.
// "secret/data/infiniteats/gemini").
type VaultSecrets struct {
	APIKeys   string `mapstructure:"apiKeys"`   // key "keys", comma separated
	GeminiKey string `mapstructure:"geminiKey"` // key "api_key"
	TLSCerts  string `mapstructure:"tlsCerts"`  // keys "cert" and "key", PEM content
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// secretReader is the part of the Vault client the secret loaders need.
type secretReader interface {
	GetSecretV2(path string) (*VaultSecret, error)
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// NewVaultClient creates a new Vault client from configuration. It returns
// nil, nil when Vault is disabled.
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		return nil, nil
	}

	apiConfig := api.DefaultConfig()
	if config.Address != "" {
		apiConfig.Address = config.Address
	}
	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	if logger != nil {
		logger.Info("Connected to Vault",
			"address", apiConfig.Address,
			"version", health.Version,
			"sealed", health.Sealed)
	}

	return &VaultClient{client: client, config: config, logger: logger}, nil
}

// resolveVaultToken resolves the Vault token from config or file
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token
	if token == "" && config.TokenFile != "" {
		tokenBytes, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return parseKVv2(secret.Data, path)
}

// parseKVv2 unwraps the data and metadata envelope of a KV v2 read.
func parseKVv2(raw map[string]any, path string) (*VaultSecret, error) {
	data, ok := raw["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := raw["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	versionRaw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}
	version, err := parseVersionValue(versionRaw, path)
	if err != nil {
		return nil, err
	}
	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue parses version value from the types the Vault client
// may decode it into
func parseVersionValue(versionRaw any, path string) (int64, error) {
	switch v := versionRaw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, versionRaw)
	}
}

func stringField(r secretReader, path, key string) (string, error) {
	secret, err := r.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	return str, nil
}

// ApplyVaultSecrets loads secrets from Vault and applies them to the config
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		if logger != nil {
			logger.LogError(err, "Failed to initialize Vault client")
		}
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}

	return applySecrets(client, config, logger)
}

func applySecrets(r secretReader, config *Config, logger *errors.Logger) error {
	secrets := config.Vault.Secrets

	if secrets.APIKeys != "" {
		raw, err := stringField(r, secrets.APIKeys, "keys")
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if keys := splitAndTrim(raw); len(keys) > 0 {
			config.Server.APIKeys = keys
			if logger != nil {
				logger.Info("API keys loaded from Vault", "count", len(keys))
			}
		} else if logger != nil {
			logger.Warn("No API keys found in Vault", "path", secrets.APIKeys)
		}
	}

	if secrets.GeminiKey != "" {
		key, err := stringField(r, secrets.GeminiKey, "api_key")
		if err != nil {
			return fmt.Errorf("failed to load Gemini API key from vault: %w", err)
		}
		if key != "" {
			applyGeminiKeyToConfig(config, key)
			if logger != nil {
				logger.Info("Gemini API key loaded from Vault")
			}
		} else if logger != nil {
			logger.Warn("Empty Gemini API key found in Vault", "path", secrets.GeminiKey)
		}
	}

	if secrets.TLSCerts != "" {
		tlsData, err := r.GetSecretV2(secrets.TLSCerts)
		if err != nil {
			return fmt.Errorf("failed to load TLS certificates from vault: %w", err)
		}
		if err := rejectFilePathFields(tlsData); err != nil {
			return err
		}
		if cert, ok := tlsData.Data["cert"].(string); ok && cert != "" {
			config.Server.TLS.CertContent = cert
			config.Server.TLS.CertFile = ""
		}
		if key, ok := tlsData.Data["key"].(string); ok && key != "" {
			config.Server.TLS.KeyContent = key
			config.Server.TLS.KeyFile = ""
		}
		if logger != nil {
			logger.Info("TLS certificate loaded from Vault", "version", tlsData.Version)
		}
	}

	return nil
}

// applyGeminiKeyToConfig applies the Gemini API key to every AI operation
// that has no key of its own.
func applyGeminiKeyToConfig(config *Config, geminiKey string) {
	config.AI.APIKey = geminiKey
	if config.AI.Analyze.APIKey == "" {
		config.AI.Analyze.APIKey = geminiKey
	}
	if config.AI.Rewrite.APIKey == "" {
		config.AI.Rewrite.APIKey = geminiKey
	}
}

// rejectFilePathFields refuses secrets that store file paths instead of
// PEM content.
func rejectFilePathFields(tlsData *VaultSecret) error {
	for _, field := range []string{"cert_file", "key_file"} {
		if _, ok := tlsData.Data[field]; ok {
			return fmt.Errorf("vault TLS secret: '%s' is not supported, store PEM content in '%s'",
				field, strings.TrimSuffix(field, "_file"))
		}
	}
	return nil
}
