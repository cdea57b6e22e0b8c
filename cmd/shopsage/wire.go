// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package main

import (
	"net/http"
	"time"

	"github.com/shopsage-dev/shopsage/internal/agent"
	"github.com/shopsage-dev/shopsage/internal/config"
	"github.com/shopsage-dev/shopsage/internal/question"
	"github.com/shopsage-dev/shopsage/internal/secrets"
	"github.com/shopsage-dev/shopsage/internal/server"
	"github.com/shopsage-dev/shopsage/internal/shopify"
	"github.com/shopsage-dev/shopsage/internal/store"
	_ "github.com/shopsage-dev/shopsage/internal/store/sqlite" // register sqlite backend
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

// Gateway holds all wired subsystems and manages their lifecycle.
type Gateway struct {
	Server   *server.Server
	Registry store.Registry
}

// WireGateway creates all subsystems and wires them together. The HTTP
// clients are constructed here, once, and injected by reference.
func WireGateway(cfg *config.Config) (*Gateway, error) {
	// 1. Token cipher.
	key, err := secrets.ResolveKey()
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeCLISetupFailure, "resolving encryption key")
	}
	cipher, err := secrets.NewCipher(key)
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeCLISetupFailure, "creating token cipher")
	}

	// 2. Store registry.
	registry, err := store.NewRegistry(&store.StorageConfig{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
	}, cipher)
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeCLISetupFailure, "creating store registry")
	}

	// 3. Analysis client.
	analyzer := agent.New(agent.Config{
		BaseURL:    cfg.Agent.URL,
		Timeout:    cfg.Agent.Timeout(),
		MaxRetries: cfg.Agent.MaxRetries,
	}, &http.Client{Timeout: cfg.Agent.Timeout()})

	// 4. OAuth connector.
	oauth, err := shopify.New(shopify.Config{
		APIKey:     cfg.Shopify.APIKey,
		APISecret:  cfg.Shopify.APISecret,
		Scopes:     cfg.Shopify.Scopes,
		APIVersion: cfg.Shopify.APIVersion,
		AppURL:     cfg.Shopify.AppURL,
	}, &http.Client{Timeout: 10 * time.Second}, registry.Stores())
	if err != nil {
		_ = registry.Close()
		return nil, ssgerr.Wrap(err, ssgerr.CodeCLISetupFailure, "creating oauth connector")
	}

	// 5. Question orchestrator.
	questions, err := question.NewService(registry.Stores(), registry.Questions(), analyzer)
	if err != nil {
		_ = registry.Close()
		return nil, ssgerr.Wrap(err, ssgerr.CodeCLISetupFailure, "creating question service")
	}

	// 6. HTTP server.
	services, err := server.NewServices(oauth, questions, registry.Stores())
	if err != nil {
		_ = registry.Close()
		return nil, ssgerr.Wrap(err, ssgerr.CodeCLISetupFailure, "creating services")
	}

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Networking.Listen,
		CORSOrigins: cfg.Networking.CORSOrigins,
	}, services)
	if err != nil {
		_ = registry.Close()
		return nil, ssgerr.Wrap(err, ssgerr.CodeCLISetupFailure, "creating server")
	}

	return &Gateway{Server: srv, Registry: registry}, nil
}

// Close releases all resources held by the gateway.
func (gw *Gateway) Close() error {
	return gw.Registry.Close()
}
