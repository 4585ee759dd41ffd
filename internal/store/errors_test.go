// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "accounts_email_lower_idx"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.True(t, IsUniqueViolation(oops.With("operation", "insert").Wrap(unique)))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	assert.False(t, IsUniqueViolation(errors.New("duplicate key")))
	assert.False(t, IsUniqueViolation(nil))

	assert.Equal(t, "accounts_email_lower_idx", ConstraintName(unique))
	assert.Empty(t, ConstraintName(errors.New("x")))
}
