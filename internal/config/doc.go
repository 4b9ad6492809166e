// Package config defines the application's configuration structures and
// loading logic. Configuration is sourced from environment variables and an
// optional YAML file, then validated before the application starts.
package config
