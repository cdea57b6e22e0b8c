// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shopsage-dev/shopsage/internal/config"
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

// NewRootCmd creates the root shopsage command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shopsage",
		Short:         "ShopSage — Shopify store analytics Q&A backend",
		Long:          "ShopSage connects Shopify stores via OAuth and answers natural-language questions about their data through an external analysis agent.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	// Global flags — these map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newInitCmd(),
		newStartCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return ssgerr.Errorf(ssgerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// Auto-discover shopsage.yaml from standard locations. No config
		// file is fine — defaults and env vars still apply; parse or
		// permission errors must surface.
		v.SetConfigName("shopsage")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/shopsage")
		v.AddConfigPath("/etc/shopsage")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return ssgerr.Errorf(ssgerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
		}
	}

	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return ssgerr.Errorf(ssgerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}
