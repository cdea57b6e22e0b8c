// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopsage-dev/shopsage/internal/store/sqlite"
)

// testDBPath returns a database path inside a per-test temp dir.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name+".db")
}

// passthroughCipher marks sealed tokens with a prefix so tests can tell
// what actually hit the database file.
type passthroughCipher struct{}

func (passthroughCipher) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	return "sealed:" + plaintext, nil
}

func (passthroughCipher) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	return sealed[len("sealed:"):], nil
}

func newTestRegistry(t *testing.T) *sqlite.Registry {
	t.Helper()

	reg, err := sqlite.NewRegistry(testDBPath(t, "shopsage"), passthroughCipher{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	return reg
}
