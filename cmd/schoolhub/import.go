// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/schoolhub/schoolhub/internal/catalog"
	catalogpg "github.com/schoolhub/schoolhub/internal/catalog/postgres"
	"github.com/schoolhub/schoolhub/internal/config"
)

// NewImportSchoolsCmd creates the import-schools subcommand.
func NewImportSchoolsCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-schools <file>",
		Short: "Load schools from a YAML or JSON file",
		Long: `Upsert every school in the file, keyed by name and city (case-insensitive).
Invalid records are skipped and reported. With --dry-run the file is only
validated and the database is not touched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, err := cmd.Flags().GetBool("dry-run")
			if err != nil {
				return oops.Wrap(err)
			}
			return runImportSchools(cmd, deps, args[0], dryRun)
		},
	}
	cmd.Flags().Bool("dry-run", false, "validate the file without writing to the database")
	config.BindDatabaseFlags(cmd.Flags())
	return cmd
}

func runImportSchools(cmd *cobra.Command, deps *Deps, path string, dryRun bool) error {
	deps = deps.withDefaults()

	records, err := readImportFile(path)
	if err != nil {
		return err
	}

	if dryRun {
		printImportReport(cmd, validateOnly(records), true)
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}
	logger, err := newLogger(cfg, deps.LogOutput)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := deps.Connect(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout)
	if err != nil {
		return oops.With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()

	svc, err := catalog.NewService(catalogpg.NewSchoolRepository(db), logger)
	if err != nil {
		return err
	}
	report, err := svc.Import(ctx, records)
	printImportReport(cmd, report, false)
	return err
}

func readImportFile(path string) ([]catalog.School, error) {
	f, err := os.Open(path) //nolint:gosec // path is an operator-supplied CLI argument
	if err != nil {
		return nil, oops.Code("IMPORT_FILE_UNREADABLE").With("path", path).Wrap(err)
	}
	defer func() { _ = f.Close() }()

	records, err := catalog.ParseImportFile(f)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return records, nil
}

// validateOnly reports what an import would skip. Created counts every valid
// record since a dry run cannot tell inserts from updates.
func validateOnly(records []catalog.School) catalog.ImportReport {
	var report catalog.ImportReport
	for i := range records {
		school := records[i]
		school.Normalize()
		if err := school.Validate(); err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, catalog.RecordError{Index: i, Name: school.Name, Reason: err.Error()})
			continue
		}
		report.Created++
	}
	return report
}

func printImportReport(cmd *cobra.Command, report catalog.ImportReport, dryRun bool) {
	if dryRun {
		cmd.Printf("Dry run: %d valid, %d invalid\n", report.Created, report.Skipped)
	} else {
		cmd.Printf("Imported schools: %d created, %d updated, %d skipped\n",
			report.Created, report.Updated, report.Skipped)
	}
	for _, e := range report.Errors {
		cmd.Printf("  record %d (%q): %s\n", e.Index, e.Name, e.Reason)
	}
}
