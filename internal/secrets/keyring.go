// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"

	"github.com/zalando/go-keyring"

	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

const (
	// EnvKey overrides keyring lookup when set. The value is a base64
	// encoding of a 32-byte key.
	EnvKey = "SHOPSAGE_ENCRYPTION_KEY"

	keyringService = "shopsage"
	keyringKey     = "encryption-key"
)

// ResolveKey returns the token-encryption key, in precedence order:
// the SHOPSAGE_ENCRYPTION_KEY environment variable, the OS keyring, or a
// freshly generated key persisted to the keyring for subsequent starts.
func ResolveKey() ([]byte, error) {
	if env := os.Getenv(EnvKey); env != "" {
		key, err := decodeKey(env)
		if err != nil {
			return nil, ssgerr.Wrap(err, ssgerr.CodeSecretsKeyInvalid, "decoding "+EnvKey)
		}
		return key, nil
	}

	stored, err := keyring.Get(keyringService, keyringKey)
	if err == nil {
		key, err := decodeKey(stored)
		if err != nil {
			return nil, ssgerr.Wrap(err, ssgerr.CodeSecretsKeyInvalid, "decoding keyring entry")
		}
		return key, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		return nil, ssgerr.Wrap(err, ssgerr.CodeSecretsKeyringFailure, "reading encryption key from keyring")
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeSecretsKeyringFailure, "generating encryption key")
	}

	if err := keyring.Set(keyringService, keyringKey, base64.StdEncoding.EncodeToString(key)); err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeSecretsKeyringFailure, "persisting encryption key to keyring")
	}

	slog.Info("generated new token encryption key", "service", keyringService)
	return key, nil
}

func decodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(key) != KeySize {
		return nil, ssgerr.Errorf(ssgerr.CodeSecretsKeyInvalid, "encryption key must decode to %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}
