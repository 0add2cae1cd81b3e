package httpserver

import (
	"math/rand/v2"
	"time"

	"github.com/etay-atar/Sandbox/internal/platform/config"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL      = 30 * time.Minute
	defaultAuthRate      = 5
	defaultAuthBurst     = 20
	defaultMaxUploadSize = "64M"
	defaultPageSize      = 10
)

// MockConfig configures the mock backend. CompleteChance is the probability
// that a poll of a processing submission completes it; zero never completes.
type MockConfig struct {
	Addr           string
	JWTSecret      string
	TokenTTL       time.Duration
	CompleteChance float64
	BcryptCost     int
	AuthRate       float64
	AuthBurst      int
	MaxUploadSize  string

	Clock    clockwork.Clock
	Rand     func() float64
	Registry *prometheus.Registry
}

func MockConfigFrom(cfg *config.Config, reg *prometheus.Registry) MockConfig {
	return MockConfig{
		Addr:           cfg.MockAddr,
		JWTSecret:      cfg.MockJWTSecret,
		TokenTTL:       cfg.MockTokenTTL,
		CompleteChance: cfg.MockCompleteChance,
		Registry:       reg,
	}
}

func (c MockConfig) withDefaults() MockConfig {
	if c.TokenTTL <= 0 {
		c.TokenTTL = defaultTokenTTL
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.AuthRate <= 0 {
		c.AuthRate = defaultAuthRate
	}
	if c.AuthBurst <= 0 {
		c.AuthBurst = defaultAuthBurst
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = defaultMaxUploadSize
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Rand == nil {
		c.Rand = rand.Float64
	}
	return c
}

type backend struct {
	cfg    MockConfig
	secret []byte
	clock  clockwork.Clock
	store  *memoryStore
}

func newBackend(cfg MockConfig) *backend {
	return &backend{
		cfg:    cfg,
		secret: []byte(cfg.JWTSecret),
		clock:  cfg.Clock,
		store:  newMemoryStore(),
	}
}
