// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/schoolhub/schoolhub/internal/config"
	"github.com/schoolhub/schoolhub/internal/logging"
	"github.com/schoolhub/schoolhub/internal/xdg"
)

// serviceName labels every log record and span.
const serviceName = "schoolhub"

// NewRootCmd creates the root command for the SchoolHub CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmdWithDeps(nil)
}

func newRootCmdWithDeps(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "schoolhub",
		Short: "SchoolHub - school directory backend",
		Long: `SchoolHub serves the school directory API: account registration and
login, bearer-token authentication and the school catalog.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (YAML, default $XDG_CONFIG_HOME/schoolhub/config.yaml)")

	cmd.AddCommand(NewServeCmd(deps))
	cmd.AddCommand(NewMigrateCmd(deps))
	cmd.AddCommand(NewImportSchoolsCmd(deps))

	return cmd
}

// loadConfig reads configuration for cmd, honoring --config and any
// configuration flags cmd defines.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path = ""
	}
	if path == "" {
		if path, err = xdg.ConfigFile(); err != nil {
			return nil, err
		}
	}
	return config.Load(path, cmd.Flags())
}

// newLogger builds the process logger from cfg.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	if err := cfg.ValidateLogging(); err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.Log.Format,
		Level:   level,
		Writer:  w,
	})
}
