package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// FallbackJWTSecret is used to sign session tokens when JWT_SECRET is not
// set outside production.  It is public and therefore insecure; Load logs a
// warning whenever it ends up in use.
const FallbackJWTSecret = "insecure-dev-only-jwt-secret-change-me"

// MinJWTSecretLength is the minimum secret length accepted in production.
const MinJWTSecretLength = 32

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; defaults apply when the variable is unset.
type Config struct {
	Env            string        `env:"APP_ENV" envDefault:"development"`         // application environment (development, test, production)
	Port           string        `env:"APP_PORT" envDefault:"8080"`               // HTTP port to listen on
	DBDriver       string        `env:"DB_DRIVER" envDefault:"sqlite"`            // sqlite or mysql
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"./data/auth.db"` // driver specific DSN
	JWTSecret      string        `env:"JWT_SECRET"`                               // secret used to sign session tokens
	BaseURL        string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`              // bcrypt cost for password hashing
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"168h"`            // token and cookie lifetime
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"true"`          // Secure attribute on the session cookie
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`          // bound for store and hash work per request
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT"`                               // text or json; json when empty in production

	RedisURL     string        `env:"REDIS_URL"`                           // optional, enables the user cache
	UserCacheTTL time.Duration `env:"USER_CACHE_TTL" envDefault:"30s"`     // lifetime of cached user records

	RabbitMQURL    string `env:"RABBITMQ_URL"`                             // optional, enables auth event publishing
	EventsQueue    string `env:"AUTH_EVENTS_QUEUE" envDefault:"auth.events"`
	EventsConsumer bool   `env:"EVENTS_CONSUMER" envDefault:"false"`       // run the audit log consumer in-process
	EventLogDir    string `env:"EVENT_LOG_DIR" envDefault:"logs"`

	// UsingFallbackSecret is set by Load when JWTSecret was defaulted.
	UsingFallbackSecret bool `env:"-"`
}

// IsProduction reports whether the app runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load reads configuration values from environment variables and validates
// them.  A missing signing secret is fatal in production and replaced by
// FallbackJWTSecret elsewhere.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or mysql, got %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must not be empty")
	}

	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = FallbackJWTSecret
		c.UsingFallbackSecret = true
	}
	if c.IsProduction() {
		if c.JWTSecret == FallbackJWTSecret {
			return errors.New("JWT_SECRET must not be the development fallback in production")
		}
		if len(c.JWTSecret) < MinJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d bytes in production, got %d",
				MinJWTSecretLength, len(c.JWTSecret))
		}
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}
