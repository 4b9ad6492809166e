package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Generator GeneratorConfig `mapstructure:"generator" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage"   validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Credits   CreditsConfig   `mapstructure:"credits"   validate:"required"`
	Batch     BatchConfig     `mapstructure:"batch"     validate:"required"`
	Stream    StreamConfig    `mapstructure:"stream"    validate:"required"`
	Sessions  SessionsConfig  `mapstructure:"sessions"  validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RedisConfig contains connection settings for the Redis instance backing
// the session store. Only consulted when Sessions.Backend is "redis".
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// GeneratorConfig contains settings for the remote image generation queue.
type GeneratorConfig struct {
	BaseURL           string `mapstructure:"base_url"            validate:"required,url"`
	APIKey            string `mapstructure:"api_key"             validate:"required"`
	Model             string `mapstructure:"model"               validate:"required"`
	ImageSize         int    `mapstructure:"image_size"          validate:"gt=0"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1"`
}

// StorageConfig contains settings for the durable artifact bucket.
type StorageConfig struct {
	Endpoint string `mapstructure:"endpoint" validate:"required,url"`
	Bucket   string `mapstructure:"bucket"   validate:"required"`
	APIKey   string `mapstructure:"api_key"  validate:"required"`
}

// LLMConfig contains settings for the Gemini-backed prompt producer.
// The producer is optional: when the API key is empty the deterministic
// fallback prompts are used instead.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// CreditsConfig selects the ledger backend and prices the credit-gated flows.
type CreditsConfig struct {
	Backend        string `mapstructure:"backend"         validate:"required,oneof=postgres grant-all"`
	RefinementCost int    `mapstructure:"refinement_cost" validate:"gt=0"`
}

// BatchConfig tunes the batch generation pipeline.
type BatchConfig struct {
	MaxConcurrentSubmissions int `mapstructure:"max_concurrent_submissions" validate:"gt=0"`
	GenerationTimeoutSeconds int `mapstructure:"generation_timeout_seconds" validate:"gt=0"`
	KitSuccessThreshold      int `mapstructure:"kit_success_threshold"      validate:"gt=0"`
}

// GenerationTimeout returns the per-unit await timeout as a duration.
func (c BatchConfig) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutSeconds) * time.Second
}

// StreamConfig tunes the progress stream endpoint.
type StreamConfig struct {
	PollIntervalSeconds      int `mapstructure:"poll_interval_seconds"      validate:"gt=0"`
	HeartbeatIntervalSeconds int `mapstructure:"heartbeat_interval_seconds" validate:"gt=0"`
	MaxDurationSeconds       int `mapstructure:"max_duration_seconds"       validate:"gt=0"`
}

// PollInterval returns the poll cadence as a duration.
func (c StreamConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// HeartbeatInterval returns the heartbeat cadence as a duration.
func (c StreamConfig) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalSeconds) * time.Second
}

// MaxDuration returns the stream wall-clock cap as a duration.
func (c StreamConfig) MaxDuration() time.Duration {
	return time.Duration(c.MaxDurationSeconds) * time.Second
}

// SessionsConfig selects the TTL session store backend.
type SessionsConfig struct {
	Backend    string `mapstructure:"backend"     validate:"required,oneof=redis memory"`
	TTLMinutes int    `mapstructure:"ttl_minutes" validate:"gt=0"`
}

// TTL returns the session lifetime as a duration.
func (c SessionsConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}
