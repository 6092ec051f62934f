package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Upstream UpstreamConfig
	Session  SessionConfig
	Guard    GuardConfig

	Mongo MongoConfig
	Redis RedisConfig
}

type UpstreamConfig struct {
	URL         string        `env:"UPSTREAM_URL,  default=http://localhost:3000"`
	RealtimeURL string        `env:"REALTIME_URL"`
	Timeout     time.Duration `env:"FETCH_TIMEOUT, default=3s"`
	RPS         float64       `env:"REST_RPS,      default=20"`
	Burst       int           `env:"REST_BURST,    default=40"`
}

type SessionConfig struct {
	// Backend is one of redis, mongo or memory.
	Backend  string        `env:"SESSION_BACKEND,   default=redis"`
	ShortTTL time.Duration `env:"SESSION_SHORT_TTL, default=12h"`
	LongTTL  time.Duration `env:"SESSION_LONG_TTL,  default=720h"`
	// Envelope is age or secretbox. EnvelopeKey may only be empty with the
	// memory backend.
	Envelope    string `env:"ENVELOPE, default=age"`
	EnvelopeKey string `env:"ENVELOPE_KEY"`
}

type GuardConfig struct {
	TokenVerifySecret string `env:"TOKEN_VERIFY_SECRET"`
	LandingPath       string `env:"LANDING_PATH, default=/dashboard"`
	RoutesFile        string `env:"ROUTES_FILE"`
}

type MongoConfig struct {
	URI        string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database   string `env:"MONGO_DB,         default=console"`
	Collection string `env:"MONGO_COLLECTION, default=sessions"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load that panics, for process start-up.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case "redis", "mongo", "memory":
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	switch c.Session.Envelope {
	case "age", "secretbox":
	default:
		return fmt.Errorf("unknown ENVELOPE %q", c.Session.Envelope)
	}
	// A shared store is read by other processes, which need the same key.
	if c.Session.Backend != "memory" && c.Session.EnvelopeKey == "" {
		return fmt.Errorf("ENVELOPE_KEY is required with SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }
