package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTestConfig(env string) *Config {
	return &Config{
		Port:         "8480",
		JWTSecret:    "secure-secret-at-least-32-chars-long",
		DBPassword:   "secure-password",
		DBSSLMode:    "require",
		RedisURL:     "redis://localhost:6379",
		FeedPageSize: 50,
		Env:          env,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validTestConfig(tt.env)
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRequiredFields(t *testing.T) {
	t.Run("missing port", func(t *testing.T) {
		c := validTestConfig("development")
		c.Port = ""
		assert.Error(t, c.Validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		c := validTestConfig("development")
		c.JWTSecret = ""
		assert.Error(t, c.Validate())
	})

	t.Run("non-positive feed page size", func(t *testing.T) {
		c := validTestConfig("development")
		c.FeedPageSize = 0
		assert.Error(t, c.Validate())
	})

	t.Run("default jwt secret rejected in production", func(t *testing.T) {
		c := validTestConfig("production")
		c.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, c.Validate())
	})
}
