// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package store

import (
	"sync"

	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

// StorageConfig controls which backend the store factory uses.
type StorageConfig struct {
	Backend string // "sqlite" (default) or "memory".
	Path    string // Database file path; unused by the memory backend.
}

// RegistryFactory creates a Registry from a storage config. The token
// cipher seals access tokens before they are persisted.
type RegistryFactory func(cfg *StorageConfig, cipher TokenCipher) (Registry, error)

var (
	factories   = map[string]RegistryFactory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). Goroutine-safe.
func RegisterBackend(name string, factory RegistryFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// NewRegistry creates the store registry for the configured backend,
// defaulting to "sqlite".
func NewRegistry(cfg *StorageConfig, cipher TokenCipher) (Registry, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = "sqlite"
	}

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, ssgerr.Errorf(ssgerr.CodeStoreBackendUnsupported, "unsupported storage backend: %q", backend)
	}

	return factory(cfg, cipher)
}
