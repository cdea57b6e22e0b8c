// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

// configFile mirrors config.Config with yaml tags for writing the
// bootstrap file.
type configFile struct {
	Networking struct {
		Listen      string   `yaml:"listen"`
		CORSOrigins []string `yaml:"cors_origins,omitempty"`
	} `yaml:"networking"`
	Storage struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"storage"`
	Agent struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxRetries     int    `yaml:"max_retries"`
	} `yaml:"agent"`
	Shopify struct {
		APIKey     string `yaml:"api_key"`
		APISecret  string `yaml:"api_secret"`
		Scopes     string `yaml:"scopes"`
		APIVersion string `yaml:"api_version"`
		AppURL     string `yaml:"app_url"`
	} `yaml:"shopify"`
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default shopsage.yaml",
		Long:  "Write a default configuration file. Fill in the Shopify app credentials before starting the server.",
		RunE:  runInit,
	}

	cmd.Flags().String("output", "", "destination path (default ~/.config/shopsage/shopsage.yaml)")
	cmd.Flags().Bool("force", false, "overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ssgerr.Wrap(err, ssgerr.CodeCLISetupFailure, "resolving home directory")
		}
		path = filepath.Join(home, ".config", "shopsage", "shopsage.yaml")
	}

	if _, err := os.Stat(path); err == nil && !force {
		return ssgerr.Errorf(ssgerr.CodeCLIInputInvalid, "%s already exists (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ssgerr.Wrap(err, ssgerr.CodeCLISetupFailure, "creating config directory")
	}

	var cf configFile
	cf.Networking.Listen = "127.0.0.1:8080"
	cf.Storage.Backend = "sqlite"
	cf.Storage.Path = "shopsage.db"
	cf.Agent.URL = "http://localhost:8000"
	cf.Agent.TimeoutSeconds = 30
	cf.Agent.MaxRetries = 2
	cf.Shopify.Scopes = "read_orders,read_products,read_customers"
	cf.Shopify.APIVersion = "2024-01"
	cf.Shopify.AppURL = "http://localhost:8080"

	raw, err := yaml.Marshal(&cf)
	if err != nil {
		return ssgerr.Wrap(err, ssgerr.CodeCLISetupFailure, "marshalling default config")
	}

	// The file will hold the Shopify app secret once filled in.
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return ssgerr.Wrap(err, ssgerr.CodeCLISetupFailure, "writing config file")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
