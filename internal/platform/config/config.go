package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration, read from the environment.
type Config struct {
	Server   Server      `envPrefix:"KYC_"`
	Log      Log         `envPrefix:"KYC_LOG_"`
	Auth     Auth        `envPrefix:"KYC_AUTH_"`
	Verifier Verifier    `envPrefix:"KYC_VERIFIER_"`
	Channel  Channel     `envPrefix:"KYC_CHANNEL_"`
	Decision Decision    `envPrefix:"KYC_DECISION_"`
	Session  Session     `envPrefix:"KYC_SESSION_"`
	Redis    RedisConfig `envPrefix:"KYC_REDIS_"`
	Postgres Postgres    `envPrefix:"KYC_POSTGRES_"`
	Kafka    Kafka       `envPrefix:"KYC_KAFKA_"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"45s"`
	// PrivacyKey keys the hashes that stand in for contact data in logs and audit.
	PrivacyKey string `env:"PRIVACY_KEY" envDefault:"dev-privacy-key-change-in-production"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// Auth configures caller bearer tokens and manual review tickets.
type Auth struct {
	// Use a default for development - should be overridden in production
	JWTSigningKey   string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	Issuer          string        `env:"ISSUER" envDefault:"idproof"`
	Audience        string        `env:"AUDIENCE" envDefault:"idproof-kyc"`
	ReviewTicketTTL time.Duration `env:"REVIEW_TICKET_TTL" envDefault:"72h"`
	Disabled        bool          `env:"DISABLED" envDefault:"false"`
}

// Verifier points at the remote OCR / biometric / code service.
type Verifier struct {
	BaseURL          string        `env:"BASE_URL" envDefault:"http://localhost:9090"`
	APIKey           string        `env:"API_KEY"`
	Timeout          time.Duration `env:"TIMEOUT" envDefault:"12s"`
	FailureThreshold int           `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}

// Channel holds the one-time code policy.
type Channel struct {
	ResendCooldown time.Duration `env:"RESEND_COOLDOWN" envDefault:"60s"`
	CodeTTL        time.Duration `env:"CODE_TTL" envDefault:"10m"`
	MaxAttempts    int           `env:"MAX_ATTEMPTS" envDefault:"3"`
}

// Decision holds the tunable confidence policy.
type Decision struct {
	ApproveAtOrAbove float64 `env:"APPROVE_AT_OR_ABOVE" envDefault:"80"`
	RejectBelow      float64 `env:"REJECT_BELOW" envDefault:"50"`
	HighPriorityBand float64 `env:"HIGH_PRIORITY_BAND" envDefault:"5"`
	FrontWeight      float64 `env:"FRONT_WEIGHT" envDefault:"0.35"`
	BackWeight       float64 `env:"BACK_WEIGHT" envDefault:"0.25"`
	LivenessWeight   float64 `env:"LIVENESS_WEIGHT" envDefault:"0.40"`
	ComparisonWeight float64 `env:"COMPARISON_WEIGHT" envDefault:"0.20"`
}

type Session struct {
	TTL           time.Duration `env:"TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	// Profile is "standard" or "strict" (adds a document-face vs selfie comparison).
	Profile string `env:"PROFILE" envDefault:"standard"`
}

// RedisConfig is optional; an empty URL keeps code state in memory.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// Postgres is optional; an empty DSN keeps the audit trail in memory.
type Postgres struct {
	DSN          string `env:"DSN"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
}

// Kafka is optional; without brokers results are handed off to the log only.
type Kafka struct {
	Brokers  []string `env:"BROKERS" envSeparator:","`
	Topic    string   `env:"TOPIC" envDefault:"kyc.results"`
	ClientID string   `env:"CLIENT_ID" envDefault:"idproof"`
}

// FromEnv builds the config from the environment, loading a .env file first when
// one is present so main stays lean.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("KYC_ADDR must not be empty"))
	}
	if c.Verifier.BaseURL == "" {
		errs = append(errs, errors.New("KYC_VERIFIER_BASE_URL must not be empty"))
	}
	if c.Verifier.Timeout <= 0 {
		errs = append(errs, errors.New("KYC_VERIFIER_TIMEOUT must be positive"))
	}
	if c.Channel.MaxAttempts < 1 {
		errs = append(errs, errors.New("KYC_CHANNEL_MAX_ATTEMPTS must be at least 1"))
	}
	if c.Channel.ResendCooldown <= 0 || c.Channel.CodeTTL <= 0 {
		errs = append(errs, errors.New("channel cooldown and code TTL must be positive"))
	}
	if c.Decision.RejectBelow > c.Decision.ApproveAtOrAbove {
		errs = append(errs, errors.New("KYC_DECISION_REJECT_BELOW must not exceed KYC_DECISION_APPROVE_AT_OR_ABOVE"))
	}
	if c.Decision.FrontWeight < 0 || c.Decision.BackWeight < 0 || c.Decision.LivenessWeight < 0 || c.Decision.ComparisonWeight < 0 {
		errs = append(errs, errors.New("decision weights must not be negative"))
	}
	if c.Decision.FrontWeight+c.Decision.BackWeight+c.Decision.LivenessWeight == 0 {
		errs = append(errs, errors.New("decision weights must not all be zero"))
	}
	if c.Session.Profile != "standard" && c.Session.Profile != "strict" {
		errs = append(errs, fmt.Errorf("KYC_SESSION_PROFILE %q must be standard or strict", c.Session.Profile))
	}
	if len(c.Server.PrivacyKey) > 64 {
		errs = append(errs, errors.New("KYC_PRIVACY_KEY must be at most 64 bytes"))
	}
	return errors.Join(errs...)
}
