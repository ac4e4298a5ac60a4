// Package config loads and validates the application configuration from
// environment variables (prefix ANNOTUNE_) and an optional config file.
package config
