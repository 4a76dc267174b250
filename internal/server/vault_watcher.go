package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"resumeats/internal/config"
	"resumeats/internal/errors"
)

// SecretGetter reads a versioned secret
type SecretGetter interface {
	GetSecret(ctx context.Context, path string) (*config.VaultSecret, error)
}

// apiKeysSecretKey is the field of the API keys secret holding the key list
const apiKeysSecretKey = "keys"

// KeysReloadCallback receives the API keys read after a secret change
type KeysReloadCallback func(keys []string, err error)

// VaultWatcher polls the Vault secret holding the API keys and hands the new
// key list to a callback whenever the secret version increases.
type VaultWatcher struct {
	mu sync.RWMutex

	client         SecretGetter
	secretPath     string
	pollInterval   time.Duration
	reloadCallback KeysReloadCallback
	logger         *errors.Logger

	running     bool
	lastVersion int64
	lastReload  time.Time
}

// NewVaultWatcher creates a new VaultWatcher
func NewVaultWatcher(client SecretGetter, secretPath string, pollInterval time.Duration, reloadCallback KeysReloadCallback, logger *errors.Logger) *VaultWatcher {
	return &VaultWatcher{
		client:         client,
		secretPath:     secretPath,
		pollInterval:   pollInterval,
		reloadCallback: reloadCallback,
		logger:         logger,
	}
}

// Run polls Vault until ctx is cancelled. The version current at start is
// recorded so that only later changes trigger a reload.
func (vw *VaultWatcher) Run(ctx context.Context) {
	vw.mu.Lock()
	if vw.running {
		vw.mu.Unlock()
		return
	}
	vw.running = true
	vw.mu.Unlock()

	defer func() {
		vw.mu.Lock()
		vw.running = false
		vw.mu.Unlock()
		vw.logger.Info("Vault key watcher stopped")
	}()

	if _, _, err := vw.checkForUpdates(ctx); err != nil {
		vw.logger.LogError(err, "Failed to read initial API keys secret version")
	}
	vw.logger.Info("Vault key watcher started", "secret_path", vw.secretPath, "poll_interval", vw.pollInterval)

	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			vw.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// poll runs one check and reloads the keys when the secret changed
func (vw *VaultWatcher) poll(ctx context.Context) {
	secret, changed, err := vw.checkForUpdates(ctx)
	if err != nil {
		vw.logger.LogError(err, "Failed to check Vault for updates")
		return
	}
	if !changed {
		return
	}

	keys, err := secret.Strings(apiKeysSecretKey)
	if err == nil && len(keys) == 0 {
		err = fmt.Errorf("secret %s holds no keys", vw.secretPath)
	}
	if err != nil {
		err = fmt.Errorf("failed to read API keys from vault: %w", err)
		vw.logger.LogError(err, "API keys not reloaded", "version", secret.Version)
		vw.reloadCallback(nil, err)
		return
	}

	vw.mu.Lock()
	vw.lastReload = time.Now()
	vw.mu.Unlock()

	vw.logger.Info("API keys reloaded from Vault", "count", len(keys), "version", secret.Version)
	vw.reloadCallback(keys, nil)
}

// checkForUpdates reads the secret and reports whether its version moved
// past the last one seen. The first read only records the version.
func (vw *VaultWatcher) checkForUpdates(ctx context.Context) (*config.VaultSecret, bool, error) {
	secret, err := vw.client.GetSecret(ctx, vw.secretPath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read secret: %w", err)
	}

	vw.mu.Lock()
	defer vw.mu.Unlock()
	if secret.Version <= vw.lastVersion {
		return secret, false, nil
	}
	first := vw.lastVersion == 0
	vw.lastVersion = secret.Version
	return secret, !first, nil
}

// Status returns the current status of the VaultWatcher for health reporting
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	return map[string]any{
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
		"last_reload":   vw.lastReload,
	}
}
