package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	CredentialStoreFile   = "file"
	CredentialStoreRedis  = "redis"
	CredentialStoreMemory = "memory"
)

type Config struct {
	APIURL    string `env:"SANDBOX_API_URL" default:"http://localhost:8000/api/v1"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
	LogFile   string `env:"LOG_FILE"`

	CredentialStore    string `env:"CREDENTIAL_STORE" default:"file"`
	CredentialPath     string `env:"CREDENTIAL_PATH"`
	CredentialKey      string `env:"CREDENTIAL_KEY"`
	RedisURL           string `env:"REDIS_URL"`
	RedisCredentialKey string `env:"REDIS_CREDENTIAL_KEY" default:"sandboxctl:token"`

	ListPollInterval   time.Duration `env:"LIST_POLL_INTERVAL" default:"5s"`
	DetailPollInterval time.Duration `env:"DETAIL_POLL_INTERVAL" default:"2s"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" default:"10s"`
	FreezeOnTerminal   bool          `env:"FREEZE_ON_TERMINAL" default:"true"`

	RequestsPerSecond  float64       `env:"REQUESTS_PER_SECOND" default:"20"`
	RequestBurst       int           `env:"REQUEST_BURST" default:"10"`
	BreakerMaxFailures uint32        `env:"BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `env:"BREAKER_OPEN_TIMEOUT" default:"30s"`

	MetricsAddr string `env:"METRICS_ADDR"`

	MockAddr           string        `env:"MOCK_ADDR" default:":8000"`
	MockJWTSecret      string        `env:"MOCK_JWT_SECRET" default:"super-secret-key-change-in-production"`
	MockTokenTTL       time.Duration `env:"MOCK_TOKEN_TTL" default:"30m"`
	MockCompleteChance float64       `env:"MOCK_COMPLETE_CHANCE" default:"0.3"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SANDBOX_API_URL must be an absolute URL, got %q", cfg.APIURL)
	}

	switch cfg.CredentialStore {
	case CredentialStoreFile, CredentialStoreMemory:
	case CredentialStoreRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required when CREDENTIAL_STORE=redis")
		}
	default:
		return fmt.Errorf("CREDENTIAL_STORE must be one of file, redis, memory, got %q", cfg.CredentialStore)
	}

	if cfg.CredentialKey != "" {
		keyBytes, err := hex.DecodeString(cfg.CredentialKey)
		if err != nil {
			return fmt.Errorf("CREDENTIAL_KEY must be valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("CREDENTIAL_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
		}
	}

	if cfg.ListPollInterval <= 0 || cfg.DetailPollInterval <= 0 {
		return errors.New("poll intervals must be positive")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if cfg.RequestsPerSecond <= 0 || cfg.RequestBurst < 1 {
		return errors.New("REQUESTS_PER_SECOND must be positive and REQUEST_BURST at least 1")
	}
	if cfg.MockCompleteChance < 0 || cfg.MockCompleteChance > 1 {
		return errors.New("MOCK_COMPLETE_CHANCE must be between 0 and 1")
	}

	return nil
}
