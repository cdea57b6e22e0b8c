// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"init", "start", "status", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestVersionCmd(t *testing.T) {
	root := NewRootCmd()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "shopsage")
	assert.Contains(t, out.String(), version)
}

func TestInitCmdWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopsage.yaml")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"init", "--output", path})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), path)
	assert.FileExists(t, path)
}

func TestInitCmdRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopsage.yaml")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"init", "--output", path})
	require.NoError(t, root.Execute())

	// Second run without --force fails.
	root = NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"init", "--output", path})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// --force overwrites.
	root = NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"init", "--output", path, "--force"})
	require.NoError(t, root.Execute())
}
