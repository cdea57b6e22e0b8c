// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

// Package config loads ShopSage configuration with the standard
// precedence: flags > environment (SHOPSAGE_*) > config file > defaults.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

// Config is the top-level ShopSage configuration.
type Config struct {
	Networking NetworkingConfig `mapstructure:"networking"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Shopify    ShopifyConfig    `mapstructure:"shopify"`
}

// NetworkingConfig controls how ShopSage listens for connections.
type NetworkingConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// StorageConfig selects the storage backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// AgentConfig points at the external analysis service.
type AgentConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
}

// Timeout returns the per-attempt timeout as a duration.
func (c AgentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ShopifyConfig holds the Shopify app credentials.
type ShopifyConfig struct {
	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	Scopes     string `mapstructure:"scopes"`
	APIVersion string `mapstructure:"api_version"`
	AppURL     string `mapstructure:"app_url"`
}

// SetDefaults installs configuration defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("networking.listen", "127.0.0.1:8080")
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "shopsage.db")
	v.SetDefault("agent.url", "http://localhost:8000")
	v.SetDefault("agent.timeout_seconds", 30)
	v.SetDefault("agent.max_retries", 2)
	v.SetDefault("shopify.scopes", "read_orders,read_products,read_customers")
	v.SetDefault("shopify.api_version", "2024-01")
	v.SetDefault("shopify.app_url", "http://localhost:8080")
}

// SetupEnv binds SHOPSAGE_-prefixed environment variables.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("SHOPSAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults when path is
// empty) with environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, ssgerr.Errorf(ssgerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ssgerr.Errorf(ssgerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	// PYTHON_AGENT_URL predates the SHOPSAGE_ prefix; honor it when the
	// namespaced variable is absent.
	if legacy := os.Getenv("PYTHON_AGENT_URL"); legacy != "" && os.Getenv("SHOPSAGE_AGENT_URL") == "" && !v.InConfig("agent.url") {
		cfg.Agent.URL = legacy
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Networking.Listen == "" {
		return ssgerr.New(ssgerr.CodeConfigValidateInvalidValue, "networking.listen must not be empty")
	}

	switch c.Storage.Backend {
	case "sqlite", "memory":
	default:
		return ssgerr.Errorf(ssgerr.CodeConfigValidateInvalidValue, "unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" {
		return ssgerr.New(ssgerr.CodeConfigValidateInvalidValue, "storage.path must not be empty for the sqlite backend")
	}

	if c.Agent.URL == "" {
		return ssgerr.New(ssgerr.CodeConfigValidateInvalidValue, "agent.url must not be empty")
	}
	if c.Agent.TimeoutSeconds <= 0 {
		return ssgerr.New(ssgerr.CodeConfigValidateInvalidValue, "agent.timeout_seconds must be positive")
	}
	if c.Agent.MaxRetries < 0 {
		return ssgerr.New(ssgerr.CodeConfigValidateInvalidValue, "agent.max_retries must not be negative")
	}

	return nil
}
