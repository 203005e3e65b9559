package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultMinConsentDuration is the floor for consent lifetimes when
// MIN_CONSENT_DURATION_MS is not configured: one hour.
const DefaultMinConsentDuration = int64(time.Hour / time.Millisecond)

type Config struct {
	Port                 string   `mapstructure:"PORT"`
	Env                  string   `mapstructure:"ENV"`
	DatabaseURL          string   `mapstructure:"DATABASE_URL"`
	DBMaxConns           int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns           int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins          []string `mapstructure:"CORS_ORIGINS"`
	FieldEncryptionKey   string   `mapstructure:"FIELD_ENCRYPTION_KEY"`
	SigningKeyFile       string   `mapstructure:"SIGNING_KEY_FILE"`
	JWTSecret            string   `mapstructure:"JWT_SECRET"`
	MinConsentDurationMs int64    `mapstructure:"MIN_CONSENT_DURATION_MS"`
	RateLimitRPS         float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst       int      `mapstructure:"RATE_LIMIT_BURST"`
	WebhookTimeout       int      `mapstructure:"WEBHOOK_TIMEOUT_SECONDS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SIGNING_KEY_FILE", "keys/signing.pem")
	v.SetDefault("MIN_CONSENT_DURATION_MS", DefaultMinConsentDuration)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("WEBHOOK_TIMEOUT_SECONDS", 10)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("FIELD_ENCRYPTION_KEY")
	v.BindEnv("SIGNING_KEY_FILE")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("MIN_CONSENT_DURATION_MS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("WEBHOOK_TIMEOUT_SECONDS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// FieldKey decodes the configured field-encryption key. The key must be a
// 64-character hex string encoding exactly 32 bytes; anything else refuses
// to start.
func (c *Config) FieldKey() ([]byte, error) {
	if c.FieldEncryptionKey == "" {
		return nil, fmt.Errorf("FIELD_ENCRYPTION_KEY is required")
	}
	key, err := hex.DecodeString(c.FieldEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("FIELD_ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("FIELD_ENCRYPTION_KEY must be 32 bytes (64 hex chars), got %d bytes", len(key))
	}
	return key, nil
}

// MinConsentDuration returns the consent floor as a time.Duration.
func (c *Config) MinConsentDuration() time.Duration {
	return time.Duration(c.MinConsentDurationMs) * time.Millisecond
}

// Validate checks that the configuration is safe to run. The field key is
// always required and must decode to 32 bytes; in production a JWT secret is
// also mandatory so bearer-token auth cannot silently run unkeyed.
func (c *Config) Validate() error {
	if _, err := c.FieldKey(); err != nil {
		return err
	}
	if c.SigningKeyFile == "" {
		return fmt.Errorf("SIGNING_KEY_FILE is required")
	}
	if c.MinConsentDurationMs <= 0 {
		return fmt.Errorf("MIN_CONSENT_DURATION_MS must be positive, got %d", c.MinConsentDurationMs)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}
