package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infiniteats/internal/errors"
)

type fakeVault map[string]*VaultSecret

func (f fakeVault) GetSecretV2(path string) (*VaultSecret, error) {
	if s, ok := f[path]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("secret not found at path: %s", path)
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "test/path")
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParseKVv2(t *testing.T) {
	secret, err := parseKVv2(map[string]any{
		"data":     map[string]any{"api_key": "abc"},
		"metadata": map[string]any{"version": float64(3)},
	}, "p")
	require.NoError(t, err)
	assert.Equal(t, int64(3), secret.Version)
	assert.Equal(t, "abc", secret.Data["api_key"])

	_, err = parseKVv2(map[string]any{"api_key": "abc"}, "p")
	assert.ErrorContains(t, err, "not in KVv2 format")
}

func TestApplyGeminiKeyToConfig(t *testing.T) {
	cfg := &Config{AI: AIConfig{Rewrite: OperationAIConfig{APIKey: "own-key"}}}

	applyGeminiKeyToConfig(cfg, "vault-key")

	assert.Equal(t, "vault-key", cfg.AI.APIKey)
	assert.Equal(t, "vault-key", cfg.AI.Analyze.APIKey)
	assert.Equal(t, "own-key", cfg.AI.Rewrite.APIKey)
}

func TestApplySecrets(t *testing.T) {
	cfg := Default()
	cfg.Server.TLS.CertFile = "old.pem"
	cfg.Vault.Secrets = VaultSecrets{
		APIKeys:   "secret/data/keys",
		GeminiKey: "secret/data/gemini",
		TLSCerts:  "secret/data/tls",
	}
	vault := fakeVault{
		"secret/data/keys":   {Data: map[string]any{"keys": "k1, k2"}, Version: 1},
		"secret/data/gemini": {Data: map[string]any{"api_key": "g-key"}, Version: 2},
		"secret/data/tls":    {Data: map[string]any{"cert": "CERT", "key": "KEY"}, Version: 5},
	}

	require.NoError(t, applySecrets(vault, cfg, errors.Discard()))

	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
	assert.Equal(t, "g-key", cfg.AI.APIKey)
	assert.Equal(t, "CERT", cfg.Server.TLS.CertContent)
	assert.Equal(t, "", cfg.Server.TLS.CertFile)
	assert.Equal(t, "KEY", cfg.Server.TLS.KeyContent)
}

func TestApplySecretsErrors(t *testing.T) {
	tests := []struct {
		name    string
		secrets VaultSecrets
		vault   fakeVault
		want    string
	}{
		{
			name:    "missing secret",
			secrets: VaultSecrets{GeminiKey: "secret/data/none"},
			vault:   fakeVault{},
			want:    "failed to load Gemini API key",
		},
		{
			name:    "wrong key type",
			secrets: VaultSecrets{APIKeys: "secret/data/keys"},
			vault:   fakeVault{"secret/data/keys": {Data: map[string]any{"keys": 42}}},
			want:    "is not a string",
		},
		{
			name:    "file path field",
			secrets: VaultSecrets{TLSCerts: "secret/data/tls"},
			vault:   fakeVault{"secret/data/tls": {Data: map[string]any{"cert_file": "/etc/cert.pem"}}},
			want:    "'cert_file' is not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Vault.Secrets = tt.secrets
			err := applySecrets(tt.vault, cfg, errors.Discard())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte(" s.file-token \n"), 0600))

	token, err := resolveVaultToken(VaultConfig{Token: "direct"})
	require.NoError(t, err)
	assert.Equal(t, "direct", token)

	token, err = resolveVaultToken(VaultConfig{TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "s.file-token", token)

	_, err = resolveVaultToken(VaultConfig{})
	assert.Error(t, err)
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyVaultSecrets(cfg, errors.Discard()))
}
