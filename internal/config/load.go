package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// LOGOFORGE_ prefix with underscores separating nested keys (for example
// LOGOFORGE_SERVER_PORT) and take precedence over file values.
// Returns a populated Config struct or an error if loading or validation
// fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LOGOFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; env vars and defaults carry the load.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values for every tunable that has a safe
// one. Secrets and endpoints default to empty strings so that viper's
// automatic env lookup finds them; validation rejects the empties.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")
	v.SetDefault("redis.url", "")

	v.SetDefault("generator.base_url", "")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.model", "")

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.api_key", "")

	v.SetDefault("llm.gemini_api_key", "")

	v.SetDefault("generator.image_size", 1024)
	v.SetDefault("generator.max_retries", 3)
	v.SetDefault("generator.retry_delay_seconds", 2)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("credits.backend", "postgres")
	v.SetDefault("credits.refinement_cost", 5)

	v.SetDefault("batch.max_concurrent_submissions", 8)
	v.SetDefault("batch.generation_timeout_seconds", 300)
	v.SetDefault("batch.kit_success_threshold", 3)

	v.SetDefault("stream.poll_interval_seconds", 3)
	v.SetDefault("stream.heartbeat_interval_seconds", 30)
	v.SetDefault("stream.max_duration_seconds", 900)

	v.SetDefault("sessions.backend", "redis")
	v.SetDefault("sessions.ttl_minutes", 60)
}
