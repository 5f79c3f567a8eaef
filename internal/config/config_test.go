package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "APP_PORT", "DB_DRIVER", "DATABASE_URL", "JWT_SECRET", "BASE_URL",
	"BCRYPT_COST", "SESSION_TTL", "COOKIE_SECURE", "REQUEST_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	"REDIS_URL", "USER_CACHE_TTL", "RABBITMQ_URL", "AUTH_EVENTS_QUEUE", "EVENTS_CONSUMER", "EVENT_LOG_DIR",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "./data/auth.db", cfg.DatabaseURL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.UserCacheTTL)
	assert.Equal(t, "auth.events", cfg.EventsQueue)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.EventsConsumer)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FallbackSecretOutsideProduction(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, FallbackJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.UsingFallbackSecret)
}

func TestLoad_ExplicitSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "local-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "local-secret", cfg.JWTSecret)
	assert.False(t, cfg.UsingFallbackSecret)
}

func TestLoad_Production(t *testing.T) {
	strong := "0123456789abcdef0123456789abcdef"

	tests := []struct {
		name    string
		secret  string
		wantErr string
	}{
		{"missing secret", "", "JWT_SECRET is required"},
		{"fallback secret", FallbackJWTSecret, "development fallback"},
		{"short secret", "too-short", "at least 32 bytes"},
		{"strong secret", strong, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", "production")
			if tt.secret != "" {
				t.Setenv("JWT_SECRET", tt.secret)
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, cfg.IsProduction())
			assert.False(t, cfg.UsingFallbackSecret)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown driver", "DB_DRIVER", "postgres"},
		{"bcrypt cost too low", "BCRYPT_COST", "3"},
		{"bcrypt cost too high", "BCRYPT_COST", "32"},
		{"bcrypt cost not a number", "BCRYPT_COST", "ten"},
		{"negative ttl", "SESSION_TTL", "-1h"},
		{"zero timeout", "REQUEST_TIMEOUT", "0s"},
		{"bad duration", "SESSION_TTL", "a week"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_NormalisesDriverAndBaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", " MySQL ")
	t.Setenv("DATABASE_URL", "user:pass@tcp(localhost:3306)/auth")
	t.Setenv("BASE_URL", "https://example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "https://example.com", cfg.BaseURL)
}

func TestNewRedisClient_EmptyURL(t *testing.T) {
	c, err := NewRedisClient("")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	c, err := NewRedisClient("not-a-redis-url")
	assert.Error(t, err)
	assert.Nil(t, c)
}
