// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/schoolhub/pkg/errutil"
)

const importYAML = `
schools:
  - name: Lincoln High
    city: Springfield
    type: Public
  - name: Adams Academy
    city: Shelbyville
  - name: ""
    city: Nowhere
`

func writeImportFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestImportSchools_DryRunNeedsNoDatabase(t *testing.T) {
	isolateEnv(t)
	deps := &Deps{Connect: func(context.Context, string, time.Duration) (Database, error) {
		t.Fatal("dry run must not connect")
		return nil, nil
	}}

	output, err := execute(t, deps, "import-schools", "--dry-run", writeImportFile(t, importYAML))
	require.NoError(t, err)
	assert.Contains(t, output, "Dry run: 2 valid, 1 invalid")
	assert.Contains(t, output, `record 2 (""): name is required`)
}

func TestImportSchools_Upserts(t *testing.T) {
	isolateEnv(t)
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	upsertArgs := make([]any, 9)
	for i := range upsertArgs {
		upsertArgs[i] = pgxmock.AnyArg()
	}
	mock.ExpectQuery(`(?s)INSERT INTO schools .+ ON CONFLICT`).
		WithArgs(upsertArgs...).
		WillReturnRows(pgxmock.NewRows([]string{"id", "inserted"}).AddRow(ulid.Make().String(), true))
	mock.ExpectQuery(`(?s)INSERT INTO schools .+ ON CONFLICT`).
		WithArgs(upsertArgs...).
		WillReturnRows(pgxmock.NewRows([]string{"id", "inserted"}).AddRow(ulid.Make().String(), false))
	mock.ExpectClose()

	var gotURL string
	deps := &Deps{
		Connect: func(_ context.Context, url string, _ time.Duration) (Database, error) {
			gotURL = url
			return mock, nil
		},
		LogOutput: new(syncBuffer),
	}

	output, err := execute(t, deps, "import-schools", "--database-url", "postgres://localhost/db", writeImportFile(t, importYAML))
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/db", gotURL)
	assert.Contains(t, output, "Imported schools: 1 created, 1 updated, 1 skipped")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportSchools_Errors(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, nil, "import-schools", filepath.Join(t.TempDir(), "missing.yaml"))
	errutil.AssertErrorCode(t, err, "IMPORT_FILE_UNREADABLE")

	_, err = execute(t, nil, "import-schools", writeImportFile(t, "   \n"))
	errutil.AssertErrorCode(t, err, "CATALOG_IMPORT_PARSE_FAILED")

	_, err = execute(t, nil, "import-schools", writeImportFile(t, importYAML))
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")

	_, err = execute(t, nil, "import-schools")
	assert.Error(t, err, "file argument is required")
}
