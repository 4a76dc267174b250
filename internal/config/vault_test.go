package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"resumeats/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("error")
	return logger
}

func TestResolveVaultToken(t *testing.T) {
	logger := newTestLogger()

	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("config token wins over file", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct", TokenFile: "/nonexistent"}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, logger)
		assert.ErrorContains(t, err, "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, logger)
		assert.ErrorContains(t, err, "vault token is required")
	})

	t.Run("blank token file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "empty-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("   \n  \n"), 0600))

		_, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.ErrorContains(t, err, "vault token is required")
	})
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{Vault: VaultConfig{Enabled: false}}
	assert.NoError(t, ApplyVaultSecrets(context.Background(), cfg, newTestLogger()))
}

func TestNewVaultClientDisabled(t *testing.T) {
	client, err := NewVaultClient(VaultConfig{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestSecretPath(t *testing.T) {
	tests := []struct {
		mount string
		path  string
		want  string
	}{
		{"secret", "resumeats/api-keys", "resumeats/api-keys"},
		{"secret", "secret/data/resumeats/api-keys", "resumeats/api-keys"},
		{"secret", "/secret/data/resumeats/gemini/", "resumeats/gemini"},
		{"kv", "secret/data/other", "secret/data/other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, secretPath(tt.mount, tt.path))
		})
	}
}

func TestFromKVSecret(t *testing.T) {
	secret := fromKVSecret(&api.KVSecret{
		Data:            map[string]any{"keys": "a,b"},
		VersionMetadata: &api.KVVersionMetadata{Version: 7},
	})
	assert.Equal(t, int64(7), secret.Version)
	assert.Equal(t, "a,b", secret.Data["keys"])

	empty := fromKVSecret(&api.KVSecret{})
	assert.Zero(t, empty.Version)
	assert.NotNil(t, empty.Data)
}

func TestVaultSecretString(t *testing.T) {
	secret := &VaultSecret{Data: map[string]any{"api_key": "abc", "count": 3.0}}

	value, err := secret.String("api_key")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	_, err = secret.String("missing")
	assert.ErrorContains(t, err, "not found")

	_, err = secret.String("count")
	assert.ErrorContains(t, err, "not a string")
}

func TestVaultSecretStrings(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    []string
		wantErr bool
	}{
		{"comma separated", "k1, k2 ,,k3", []string{"k1", "k2", "k3"}, false},
		{"json list", []any{"k1", " k2 "}, []string{"k1", "k2"}, false},
		{"string slice", []string{"k1"}, []string{"k1"}, false},
		{"empty string", "", []string{}, false},
		{"mixed list", []any{"k1", 2.0}, nil, true},
		{"number", 42.0, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&VaultSecret{Data: map[string]any{"keys": tt.value}}).Strings("keys")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeSecretReader struct {
	secrets map[string]map[string]any
	err     error
}

func (f *fakeSecretReader) GetSecret(_ context.Context, path string) (*VaultSecret, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.secrets[path]
	if !ok {
		return nil, stderrors.New("secret not found")
	}
	return &VaultSecret{Data: data, Version: 1}, nil
}

func TestLoadAllSecretsFromVault(t *testing.T) {
	cfg := &Config{
		Vault: VaultConfig{Secrets: VaultSecrets{
			APIKeys:     "resumeats/api",
			GeminiKey:   "resumeats/gemini",
			DatabaseURL: "resumeats/db",
			SigningKey:  "resumeats/signing",
		}},
		Storage: StorageConfig{Local: LocalStorageConfig{SigningKey: "from-config"}},
	}
	reader := &fakeSecretReader{secrets: map[string]map[string]any{
		"resumeats/api":     {"keys": []any{"k1", "k2"}},
		"resumeats/gemini":  {"api_key": "gemini-key"},
		"resumeats/db":      {"url": "postgres://u:p@db/resumeats"},
		"resumeats/signing": {"key": ""},
	}}

	require.NoError(t, loadAllSecretsFromVault(context.Background(), reader, cfg, newTestLogger()))

	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
	assert.Equal(t, "gemini-key", cfg.AI.APIKey)
	assert.Equal(t, "postgres://u:p@db/resumeats", cfg.Database.URL)
	// Empty secrets leave the configured value alone
	assert.Equal(t, "from-config", cfg.Storage.Local.SigningKey)
}

func TestLoadAllSecretsFromVaultErrors(t *testing.T) {
	t.Run("read failure", func(t *testing.T) {
		cfg := &Config{Vault: VaultConfig{Secrets: VaultSecrets{GeminiKey: "resumeats/gemini"}}}
		reader := &fakeSecretReader{err: stderrors.New("permission denied")}

		err := loadAllSecretsFromVault(context.Background(), reader, cfg, nil)
		assert.ErrorContains(t, err, "Gemini API key")
	})

	t.Run("missing key", func(t *testing.T) {
		cfg := &Config{Vault: VaultConfig{Secrets: VaultSecrets{DatabaseURL: "resumeats/db"}}}
		reader := &fakeSecretReader{secrets: map[string]map[string]any{"resumeats/db": {"dsn": "x"}}}

		err := loadAllSecretsFromVault(context.Background(), reader, cfg, nil)
		assert.ErrorContains(t, err, "database URL")
	})
}
