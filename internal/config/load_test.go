package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesim/salesim-api/internal/config"
)

// setRequiredEnv sets the minimum environment for a valid configuration.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SALESIM_DATABASE_URL", "postgres://localhost:5432/salesim_test")
	t.Setenv("SALESIM_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("SALESIM_LLM_GEMINI_API_KEY", "test-api-key")
}

func TestLoadFromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SALESIM_SERVER_PORT", "9090")
	t.Setenv("SALESIM_SERVER_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/salesim_test", cfg.Database.URL)
	assert.Equal(t, "test-api-key", cfg.LLM.GeminiAPIKey)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.ModelName)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{
			name: "missing database URL",
			setup: func(t *testing.T) {
				t.Setenv("SALESIM_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
				t.Setenv("SALESIM_LLM_GEMINI_API_KEY", "test-api-key")
			},
		},
		{
			name: "jwt secret too short",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("SALESIM_AUTH_JWT_SECRET", "short")
			},
		},
		{
			name: "invalid log level",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("SALESIM_SERVER_LOG_LEVEL", "verbose")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setup(t)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
