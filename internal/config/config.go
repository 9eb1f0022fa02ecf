// Package config loads platform configuration from the environment.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is the top-level configuration for the server binary.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Stellar  StellarConfig
	Logging  LoggingConfig
	Referral ReferralConfig

	// EconomicsPath optionally points at a YAML file overriding the ledger
	// parameters. Defaults apply when unset or unreadable.
	EconomicsPath string `env:"ECONOMICS_CONFIG"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host           string `env:"HOST,default=0.0.0.0"`
	Port           int    `env:"PORT,default=8080"`
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS,default=*"`
	RateLimitRPS   int    `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int    `env:"RATE_LIMIT_BURST,default=40"`
}

// DatabaseConfig selects and tunes the storage backend. Driver "memory"
// runs without external storage; "postgres" requires DSN.
type DatabaseConfig struct {
	Driver          string `env:"DB_DRIVER,default=memory"`
	DSN             string `env:"DATABASE_URL"`
	MaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS,default=25"`
	MaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS,default=25"`
	ConnMaxLifetime int    `env:"DB_CONN_MAX_LIFETIME,default=300"` // seconds
}

// RedisConfig enables the optional event stream when URL is set.
type RedisConfig struct {
	URL    string `env:"REDIS_URL"`
	Stream string `env:"REDIS_EVENT_STREAM,default=star.events"`
}

// StellarConfig points at the Horizon endpoint used for transaction lookups.
// Verification is off by default; minting is simulated until the on-chain
// contracts ship.
type StellarConfig struct {
	HorizonURL     string `env:"HORIZON_URL,default=https://horizon-testnet.stellar.org"`
	VerifyTx       bool   `env:"STELLAR_VERIFY_TX,default=false"`
	TimeoutSeconds int    `env:"STELLAR_TIMEOUT,default=15"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL,default=info"`
	Format string `env:"LOG_FORMAT,default=text"`
	Output string `env:"LOG_OUTPUT,default=stdout"`
}

// ReferralConfig carries referral policy knobs. Self-referral is not policed
// unless RejectSelf turns the check on.
type ReferralConfig struct {
	RejectSelf bool `env:"REFERRAL_REJECT_SELF,default=false"`
}

// Load reads .env when present and decodes the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if cfg.Database.Driver != "memory" && cfg.Database.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == "postgres" && cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is required with DB_DRIVER=postgres")
	}

	return &cfg, nil
}
