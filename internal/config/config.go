package config

import (
	"errors"
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	SessionTokenTTL  time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"1h"`
	ElevatedTokenTTL time.Duration `env:"ELEVATED_TOKEN_TTL" envDefault:"10m"`

	OTPIssuer              string        `env:"OTP_ISSUER" envDefault:"Liquid Bank"`
	OTPStep                time.Duration `env:"OTP_STEP" envDefault:"300s"`
	OTPDigits              int           `env:"OTP_DIGITS" envDefault:"6"`
	OTPSkew                uint          `env:"OTP_SKEW" envDefault:"1"`
	OTPStore               string        `env:"OTP_STORE" envDefault:"memory"`
	RequireOTPForSensitive bool          `env:"REQUIRE_OTP_FOR_SENSITIVE" envDefault:"true"`

	RedisURL string `env:"REDIS_URL"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@liquid.bank"`
	MailRetries  uint64 `env:"MAIL_RETRIES" envDefault:"3"`

	ExchangeAPIURL   string        `env:"EXCHANGE_API_URL" envDefault:"https://v6.exchangerate-api.com/v6"`
	ExchangeAPIKey   string        `env:"EXCHANGE_API_KEY"`
	ExchangeBase     string        `env:"EXCHANGE_BASE" envDefault:"GBP"`
	ExchangeCacheTTL time.Duration `env:"EXCHANGE_CACHE_TTL" envDefault:"15m"`

	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	ReferenceNode   int64         `env:"REFERENCE_NODE" envDefault:"1"`
	MigrateOnStart  bool          `env:"MIGRATE_ON_START" envDefault:"true"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"1m"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate rejects combinations the server cannot run with.
func (c *Config) Validate() error {
	if c.ElevatedTokenTTL <= 0 || c.SessionTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.ElevatedTokenTTL > c.SessionTokenTTL {
		return fmt.Errorf("ELEVATED_TOKEN_TTL (%s) must not exceed SESSION_TOKEN_TTL (%s)", c.ElevatedTokenTTL, c.SessionTokenTTL)
	}
	if c.OTPStep < time.Second {
		return errors.New("OTP_STEP must be at least one second")
	}
	if c.OTPDigits != 6 && c.OTPDigits != 8 {
		return errors.New("OTP_DIGITS must be 6 or 8")
	}
	switch c.OTPStore {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when OTP_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown OTP_STORE %q", c.OTPStore)
	}
	if c.ReferenceNode < 0 || c.ReferenceNode > 1023 {
		return errors.New("REFERENCE_NODE must be between 0 and 1023")
	}
	return nil
}
