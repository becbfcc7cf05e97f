package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, time.Hour, cfg.SessionTokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.ElevatedTokenTTL)
	assert.Equal(t, 300*time.Second, cfg.OTPStep)
	assert.Equal(t, "memory", cfg.OTPStore)
	assert.True(t, cfg.RequireOTPForSensitive)
}

func TestLoad_MissingRequired(t *testing.T) {
	// t.Setenv registers restoration of the original values on cleanup.
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			SessionTokenTTL:  time.Hour,
			ElevatedTokenTTL: 10 * time.Minute,
			OTPStep:          300 * time.Second,
			OTPDigits:        6,
			OTPStore:         "memory",
			ReferenceNode:    1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{
			name:    "elevated token outlives session",
			mutate:  func(c *Config) { c.ElevatedTokenTTL = 2 * time.Hour },
			wantErr: true,
		},
		{
			name:   "elevated equal to session is allowed",
			mutate: func(c *Config) { c.ElevatedTokenTTL = time.Hour },
		},
		{
			name:    "redis store without url",
			mutate:  func(c *Config) { c.OTPStore = "redis" },
			wantErr: true,
		},
		{
			name:   "redis store with url",
			mutate: func(c *Config) { c.OTPStore = "redis"; c.RedisURL = "redis://localhost:6379/0" },
		},
		{
			name:    "unknown store",
			mutate:  func(c *Config) { c.OTPStore = "etcd" },
			wantErr: true,
		},
		{
			name:    "seven digit otp",
			mutate:  func(c *Config) { c.OTPDigits = 7 },
			wantErr: true,
		},
		{
			name:    "reference node out of range",
			mutate:  func(c *Config) { c.ReferenceNode = 2048 },
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
