package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string        `env:"APP_NAME" envDefault:"GoalText"`
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	Port           string        `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	RedisURL       string        `env:"REDIS_URL"`
	ShutdownPeriod time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// DefaultRegion is the region used to read numbers without a country code.
	DefaultRegion string `env:"DEFAULT_REGION" envDefault:"US"`
	// DefaultTimezone scopes day keys for users without a stored timezone.
	DefaultTimezone string `env:"DEFAULT_TIMEZONE" envDefault:"America/Chicago"`

	MatchThreshold      float64 `env:"MATCH_THRESHOLD" envDefault:"0.60"`
	MatchSubstringBonus float64 `env:"MATCH_SUBSTRING_BONUS" envDefault:"0.15"`

	Twilio Twilio

	// PublicBaseURL is the externally visible origin the provider signs callbacks against.
	PublicBaseURL     string `env:"PUBLIC_BASE_URL"`
	ValidateSignature bool   `env:"VALIDATE_SIGNATURE" envDefault:"true"`
	InboundRateLimit  int    `env:"INBOUND_RATE_LIMIT" envDefault:"20"`
}

// Twilio holds messaging provider credentials.
type Twilio struct {
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	FromNumber string `env:"TWILIO_FROM_NUMBER"`
}

// Load reads configuration values from the environment and populates a Config instance.
// A .env file in the working directory is honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("MATCH_THRESHOLD must be in (0, 1], got %v", c.MatchThreshold)
	}
	if c.MatchSubstringBonus < 0 || c.MatchSubstringBonus > 1 {
		return fmt.Errorf("MATCH_SUBSTRING_BONUS must be in [0, 1], got %v", c.MatchSubstringBonus)
	}
	if c.IsDev() {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL must be set")
	}
	if c.ValidateSignature && c.Twilio.AuthToken == "" {
		return fmt.Errorf("TWILIO_AUTH_TOKEN must be set when VALIDATE_SIGNATURE is enabled")
	}
	return nil
}

// IsDev reports whether the service runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}
