// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsage-dev/shopsage/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shopsage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Networking.Listen)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "shopsage.db", cfg.Storage.Path)
	assert.Equal(t, "http://localhost:8000", cfg.Agent.URL)
	assert.Equal(t, 30, cfg.Agent.TimeoutSeconds)
	assert.Equal(t, 30*time.Second, cfg.Agent.Timeout())
	assert.Equal(t, 2, cfg.Agent.MaxRetries)
	assert.Equal(t, "read_orders,read_products,read_customers", cfg.Shopify.Scopes)
	assert.Equal(t, "2024-01", cfg.Shopify.APIVersion)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
networking:
  listen: "0.0.0.0:9090"
  cors_origins:
    - "https://app.example.com"
storage:
  backend: memory
agent:
  url: "http://agent.internal:8000"
  timeout_seconds: 45
shopify:
  api_key: key
  api_secret: secret
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Networking.Listen)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Networking.CORSOrigins)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "http://agent.internal:8000", cfg.Agent.URL)
	assert.Equal(t, 45, cfg.Agent.TimeoutSeconds)
	assert.Equal(t, "key", cfg.Shopify.APIKey)

	// Unset keys keep their defaults.
	assert.Equal(t, 2, cfg.Agent.MaxRetries)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SHOPSAGE_AGENT_URL", "http://env.internal:8000")
	t.Setenv("SHOPSAGE_NETWORKING_LISTEN", "127.0.0.1:7000")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://env.internal:8000", cfg.Agent.URL)
	assert.Equal(t, "127.0.0.1:7000", cfg.Networking.Listen)
}

func TestLoadLegacyAgentURLEnv(t *testing.T) {
	t.Setenv("PYTHON_AGENT_URL", "http://legacy.internal:8000")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://legacy.internal:8000", cfg.Agent.URL)

	// The namespaced variable wins over the legacy one.
	t.Setenv("SHOPSAGE_AGENT_URL", "http://new.internal:8000")
	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://new.internal:8000", cfg.Agent.URL)
}

func TestLoadLegacyAgentURLDoesNotOverrideFile(t *testing.T) {
	t.Setenv("PYTHON_AGENT_URL", "http://legacy.internal:8000")
	path := writeConfigFile(t, `
agent:
  url: "http://file.internal:8000"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file.internal:8000", cfg.Agent.URL)
}

func TestValidate(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			Networking: config.NetworkingConfig{Listen: "127.0.0.1:8080"},
			Storage:    config.StorageConfig{Backend: "sqlite", Path: "shopsage.db"},
			Agent:      config.AgentConfig{URL: "http://localhost:8000", TimeoutSeconds: 30, MaxRetries: 2},
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Networking.Listen = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Storage.Backend = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Storage.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Storage.Backend = "memory"
	cfg.Storage.Path = ""
	assert.NoError(t, cfg.Validate(), "memory backend needs no path")

	cfg = base()
	cfg.Agent.URL = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Agent.TimeoutSeconds = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Agent.MaxRetries = -1
	assert.Error(t, cfg.Validate())
}
