// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package main

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsage-dev/shopsage/internal/config"
	"github.com/shopsage-dev/shopsage/internal/secrets"
)

func testConfig() *config.Config {
	return &config.Config{
		Networking: config.NetworkingConfig{Listen: "127.0.0.1:0"},
		Storage:    config.StorageConfig{Backend: "memory"},
		Agent:      config.AgentConfig{URL: "http://localhost:8000", TimeoutSeconds: 30, MaxRetries: 2},
		Shopify: config.ShopifyConfig{
			APIKey:     "test-key",
			APISecret:  "test-secret",
			Scopes:     "read_orders",
			APIVersion: "2024-01",
			AppURL:     "http://localhost:8080",
		},
	}
}

func setEncryptionKey(t *testing.T) {
	t.Helper()

	key := make([]byte, secrets.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	t.Setenv(secrets.EnvKey, base64.StdEncoding.EncodeToString(key))
}

func TestWireGateway(t *testing.T) {
	setEncryptionKey(t)

	gw, err := WireGateway(testConfig())
	require.NoError(t, err)
	defer gw.Close()

	require.NotNil(t, gw.Server)
	require.NotNil(t, gw.Registry)

	// The wired handler serves the health endpoint.
	rec := httptest.NewRecorder()
	gw.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWireGatewayRequiresShopifyCredentials(t *testing.T) {
	setEncryptionKey(t)

	cfg := testConfig()
	cfg.Shopify.APIKey = ""

	_, err := WireGateway(cfg)
	require.Error(t, err)
}

func TestWireGatewaySqliteBackend(t *testing.T) {
	setEncryptionKey(t)

	cfg := testConfig()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.Path = t.TempDir() + "/shopsage.db"

	gw, err := WireGateway(cfg)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
}
