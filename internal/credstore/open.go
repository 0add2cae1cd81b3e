package credstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/etay-atar/Sandbox/internal/domain"
	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/etay-atar/Sandbox/internal/platform/config"
)

const redisPingTimeout = 3 * time.Second

// Open builds the store selected by cfg.CredentialStore. The returned close
// function releases backend connections and is always non-nil on success.
// m instruments the Redis store and may be nil.
func Open(ctx context.Context, cfg *config.Config, m *metrics.StoreMetrics) (domain.CredentialStore, func() error, error) {
	noop := func() error { return nil }

	c, err := NewCipher(cfg.CredentialKey)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.CredentialStore {
	case config.CredentialStoreMemory:
		return NewMemory(), noop, nil

	case config.CredentialStoreRedis:
		store, err := NewRedis(cfg.RedisURL, cfg.RedisCredentialKey, c)
		if err != nil {
			return nil, nil, err
		}
		if m != nil {
			store.Instrument(m)
		}
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Debug("Using redis credential store", "key", cfg.RedisCredentialKey)
		return store, store.Close, nil

	default:
		path := cfg.CredentialPath
		if path == "" {
			if path, err = DefaultPath(); err != nil {
				return nil, nil, err
			}
		}
		slog.Debug("Using file credential store", "path", path)
		return NewFile(path, c), noop, nil
	}
}
