// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package sqlite

import (
	"github.com/shopsage-dev/shopsage/internal/store"
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

func init() {
	store.RegisterBackend("sqlite", func(cfg *store.StorageConfig, cipher store.TokenCipher) (store.Registry, error) {
		if cfg.Path == "" {
			return nil, ssgerr.New(ssgerr.CodeConfigValidateInvalidValue, "storage.path is required for the sqlite backend")
		}
		return NewRegistry(cfg.Path, cipher)
	})
}
