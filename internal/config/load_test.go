package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the configuration values that have no defaults.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LOGOFORGE_DATABASE_URL", "postgres://localhost:5432/logoforge")
	t.Setenv("LOGOFORGE_GENERATOR_BASE_URL", "https://queue.example.com")
	t.Setenv("LOGOFORGE_GENERATOR_API_KEY", "generator-test-key")
	t.Setenv("LOGOFORGE_GENERATOR_MODEL", "seedream/v4/text-to-image")
	t.Setenv("LOGOFORGE_STORAGE_ENDPOINT", "https://bucket.example.com")
	t.Setenv("LOGOFORGE_STORAGE_BUCKET", "generated-assets")
	t.Setenv("LOGOFORGE_STORAGE_API_KEY", "storage-test-key")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrentSubmissions)
	assert.Equal(t, 300, cfg.Batch.GenerationTimeoutSeconds)
	assert.Equal(t, 3, cfg.Batch.KitSuccessThreshold)
	assert.Equal(t, 5, cfg.Credits.RefinementCost)
	assert.Equal(t, "postgres", cfg.Credits.Backend)
	assert.Equal(t, "redis", cfg.Sessions.Backend)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGOFORGE_SERVER_PORT", "9191")
	t.Setenv("LOGOFORGE_SERVER_LOG_LEVEL", "debug")
	t.Setenv("LOGOFORGE_BATCH_MAX_CONCURRENT_SUBMISSIONS", "4")
	t.Setenv("LOGOFORGE_CREDITS_BACKEND", "grant-all")
	t.Setenv("LOGOFORGE_SESSIONS_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentSubmissions)
	assert.Equal(t, "grant-all", cfg.Credits.Backend)
	assert.Equal(t, "memory", cfg.Sessions.Backend)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing database URL", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LOGOFORGE_DATABASE_URL", "")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "validation")
	})

	t.Run("invalid log level", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LOGOFORGE_SERVER_LOG_LEVEL", "verbose")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid credits backend", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LOGOFORGE_CREDITS_BACKEND", "mock")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("zero kit threshold", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LOGOFORGE_BATCH_KIT_SUCCESS_THRESHOLD", "0")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()

	batch := BatchConfig{GenerationTimeoutSeconds: 300}
	assert.Equal(t, "5m0s", batch.GenerationTimeout().String())

	stream := StreamConfig{
		PollIntervalSeconds:      3,
		HeartbeatIntervalSeconds: 30,
		MaxDurationSeconds:       900,
	}
	assert.Equal(t, "3s", stream.PollInterval().String())
	assert.Equal(t, "30s", stream.HeartbeatInterval().String())
	assert.Equal(t, "15m0s", stream.MaxDuration().String())

	sessions := SessionsConfig{TTLMinutes: 60}
	assert.Equal(t, "1h0m0s", sessions.TTL().String())
}
