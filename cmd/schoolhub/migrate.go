// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/schoolhub/schoolhub/internal/config"
	"github.com/schoolhub/schoolhub/internal/store"
)

// NewMigrateCmd creates the migrate subcommand and its up, down and status
// children. Bare "migrate" behaves like "migrate up".
func NewMigrateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back or inspect the embedded PostgreSQL schema migrations.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, runMigrateUp)
		},
	}
	config.BindDatabaseFlags(cmd.PersistentFlags())

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, runMigrateUp)
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Long:  `Roll back every applied migration, dropping all SchoolHub tables. Requires --yes.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, err := cmd.Flags().GetBool("yes")
			if err != nil {
				return oops.Wrap(err)
			}
			if !yes {
				return oops.Code("CONFIRMATION_REQUIRED").Errorf("refusing to drop all tables without --yes")
			}
			return withMigrator(cmd, deps, runMigrateDown)
		},
	}
	down.Flags().Bool("yes", false, "confirm rolling back every migration")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, runMigrateStatus)
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, deps *Deps, fn func(*cobra.Command, Migrator) error) (err error) {
	deps = deps.withDefaults()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	migrator, err := deps.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(cmd, migrator)
}

func runMigrateUp(cmd *cobra.Command, m Migrator) error {
	cmd.Println("Running migrations...")
	if err := m.Up(); err != nil {
		return err
	}
	st, err := m.Status()
	if err != nil {
		return err
	}
	cmd.Printf("Migrations completed successfully (version %d)\n", st.Current)
	return nil
}

func runMigrateDown(cmd *cobra.Command, m Migrator) error {
	cmd.Println("Rolling back migrations...")
	if err := m.Down(); err != nil {
		return err
	}
	cmd.Println("All migrations rolled back")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, m Migrator) error {
	st, err := m.Status()
	if err != nil {
		return err
	}
	cmd.Printf("Current version: %d\n", st.Current)
	if st.Dirty {
		cmd.Println("WARNING: database is dirty; a previous migration failed part way")
	}
	printMigrations(cmd, "Applied", st.Applied)
	printMigrations(cmd, "Pending", st.Pending)
	return nil
}

func printMigrations(cmd *cobra.Command, title string, migs []store.Migration) {
	cmd.Printf("%s:\n", title)
	if len(migs) == 0 {
		cmd.Println("  (none)")
		return
	}
	for _, mig := range migs {
		cmd.Printf("  %s\n", mig.Name)
	}
}
