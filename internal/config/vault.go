package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"resumeats/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`
	Mount     string `mapstructure:"mount"` // KVv2 mount path, "secret" by default

	// KeyRefresh is how often serve re-reads the API keys secret. Zero disables polling.
	KeyRefresh time.Duration `mapstructure:"keyRefresh"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets names the secrets to read, relative to the mount. A
// "<mount>/data/" prefix is accepted and stripped.
type VaultSecrets struct {
	APIKeys     string `mapstructure:"apiKeys"`     // key "keys": comma-separated string or list
	GeminiKey   string `mapstructure:"geminiKey"`   // key "api_key"
	DatabaseURL string `mapstructure:"databaseURL"` // key "url"
	SigningKey  string `mapstructure:"signingKey"`  // key "key"
}

// VaultClient reads KVv2 secrets
type VaultClient struct {
	kv     *api.KVv2
	mount  string
	logger *errors.Logger
}

// VaultSecret is one version of a KVv2 secret
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient connects to Vault and verifies the server is reachable.
// It returns nil when Vault is disabled.
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		logger.Debug("Vault integration disabled")
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

	token, err := resolveVaultToken(config, logger)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault at %s: %w", apiConfig.Address, err)
	}
	if health.Sealed {
		return nil, fmt.Errorf("vault at %s is sealed", apiConfig.Address)
	}
	logger.Info("Connected to Vault",
		"address", apiConfig.Address,
		"version", health.Version,
		"cluster_name", health.ClusterName)

	mount := config.Mount
	if mount == "" {
		mount = "secret"
	}
	return &VaultClient{kv: client.KVv2(mount), mount: mount, logger: logger}, nil
}

// resolveVaultToken returns the configured token, falling back to TokenFile
func resolveVaultToken(config VaultConfig, logger *errors.Logger) (string, error) {
	token := config.Token

	if token == "" && config.TokenFile != "" {
		logger.Debug("Reading Vault token from file", "file", config.TokenFile)
		data, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}

	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// secretPath strips an optional "<mount>/data/" prefix
func secretPath(mount, path string) string {
	path = strings.Trim(path, "/")
	return strings.TrimPrefix(path, mount+"/data/")
}

// GetSecret reads the latest version of the secret at path
func (vc *VaultClient) GetSecret(ctx context.Context, path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	vc.logger.Debug("Reading secret from Vault", "mount", vc.mount, "path", path)
	kvSecret, err := vc.kv.Get(ctx, secretPath(vc.mount, path))
	if err != nil {
		if stderrors.Is(err, api.ErrSecretNotFound) {
			return nil, fmt.Errorf("secret not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	return fromKVSecret(kvSecret), nil
}

func fromKVSecret(kvSecret *api.KVSecret) *VaultSecret {
	secret := &VaultSecret{Data: kvSecret.Data}
	if kvSecret.VersionMetadata != nil {
		secret.Version = int64(kvSecret.VersionMetadata.Version)
	}
	if secret.Data == nil {
		secret.Data = map[string]any{}
	}
	return secret
}

// String returns the string stored under key
func (s *VaultSecret) String(key string) (string, error) {
	value, ok := s.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret", key)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key %q is a %T, not a string", key, value)
	}
	return str, nil
}

// Strings returns the list stored under key. Both a JSON list of strings
// and a comma-separated string are accepted; blank entries are dropped.
func (s *VaultSecret) Strings(key string) ([]string, error) {
	value, ok := s.Data[key]
	if !ok {
		return nil, fmt.Errorf("key %q not found in secret", key)
	}

	var raw []string
	switch v := value.(type) {
	case string:
		raw = strings.Split(v, ",")
	case []any:
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("list under key %q holds a %T", key, item)
			}
			raw = append(raw, str)
		}
	case []string:
		raw = v
	default:
		return nil, fmt.Errorf("value for key %q is a %T, not a list", key, value)
	}

	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	return values, nil
}

// ApplyVaultSecrets overrides configured secrets with the values stored in
// Vault. It is a no-op when Vault is disabled.
func ApplyVaultSecrets(ctx context.Context, config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	return loadAllSecretsFromVault(ctx, client, config, logger)
}

// secretReader is the part of VaultClient the loaders need
type secretReader interface {
	GetSecret(ctx context.Context, path string) (*VaultSecret, error)
}

// loadAllSecretsFromVault reads every configured secret path into config
func loadAllSecretsFromVault(ctx context.Context, client secretReader, config *Config, logger *errors.Logger) error {
	secrets := config.Vault.Secrets

	if secrets.APIKeys != "" {
		secret, err := client.GetSecret(ctx, secrets.APIKeys)
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		keys, err := secret.Strings("keys")
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if len(keys) > 0 {
			config.Server.APIKeys = keys
			logger.Info("API keys loaded from Vault", "count", len(keys), "version", secret.Version)
		} else {
			logger.Warn("No API keys found in Vault", "path", secrets.APIKeys)
		}
	}

	stringSecrets := []struct {
		path   string
		key    string
		target *string
		name   string
	}{
		{secrets.GeminiKey, "api_key", &config.AI.APIKey, "Gemini API key"},
		{secrets.DatabaseURL, "url", &config.Database.URL, "database URL"},
		{secrets.SigningKey, "key", &config.Storage.Local.SigningKey, "download signing key"},
	}

	for _, s := range stringSecrets {
		if s.path == "" {
			continue
		}
		secret, err := client.GetSecret(ctx, s.path)
		if err != nil {
			return fmt.Errorf("failed to load %s from vault: %w", s.name, err)
		}
		value, err := secret.String(s.key)
		if err != nil {
			return fmt.Errorf("failed to load %s from vault: %w", s.name, err)
		}
		if value == "" {
			logger.Warn("Empty secret found in Vault", "secret", s.name, "path", s.path)
			continue
		}
		*s.target = value
		logger.Info("Secret loaded from Vault", "secret", s.name, "version", secret.Version)
	}

	return nil
}
