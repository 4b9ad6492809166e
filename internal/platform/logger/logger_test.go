package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/logoforge-api/internal/config"
)

func TestSetup(t *testing.T) {
	cases := []struct {
		name     string
		level    string
		minLevel slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"invalid level falls back to info", "verbose", slog.LevelInfo},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tc.level})
			require.NoError(t, err)
			require.NotNil(t, logger)

			assert.True(t, logger.Enabled(context.Background(), tc.minLevel))
			if tc.minLevel > slog.LevelDebug {
				assert.False(t, logger.Enabled(context.Background(), tc.minLevel-4))
			}
		})
	}
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	attached := slog.New(slog.NewTextHandler(io.Discard, nil)).With("component", "test")
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		ctx := WithContext(context.Background(), attached)
		assert.Same(t, attached, FromContext(ctx))
		assert.Same(t, attached, FromContextOrDefault(ctx, fallback))
	})

	t.Run("missing logger falls back", func(t *testing.T) {
		t.Parallel()
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
		assert.NotNil(t, FromContext(context.Background()))
	})
}
