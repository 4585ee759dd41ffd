// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package postgres implements auth.AccountDirectory on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/store"
)

const accountColumns = `id, name, email, password_hash, role, created_at, updated_at`

// AccountRepository implements auth.AccountDirectory using PostgreSQL.
type AccountRepository struct {
	db store.DB
}

var _ auth.AccountDirectory = (*AccountRepository)(nil)

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db store.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create stores a new account. A unique violation on the email index is
// reported as auth.ErrIdentityTaken.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		account.ID.String(),
		account.Name,
		account.Email,
		account.PasswordHash,
		string(account.Role),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return oops.Code("ACCOUNT_EMAIL_TAKEN").
				With("constraint", store.ConstraintName(err)).
				Wrap(auth.ErrIdentityTaken)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("id", account.ID.String()).
			Wrap(err)
	}
	return nil
}

// GetByEmail retrieves an account by email (case-insensitive).
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}
	return account, nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id.String())

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("operation", "get account by id").
			With("id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		idStr     string
		role      string
		createdAt time.Time
		updatedAt time.Time
		account   auth.Account
	)
	if err := row.Scan(&idStr, &account.Name, &account.Email, &account.PasswordHash, &role, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_CORRUPT").With("id", idStr).Wrap(err)
	}
	account.ID = id
	account.Role = auth.Role(role)
	if !account.Role.Valid() {
		return nil, oops.Code("ACCOUNT_CORRUPT").With("id", idStr).With("role", role).Errorf("unknown role %q", role)
	}
	account.CreatedAt = createdAt.UTC()
	account.UpdatedAt = updatedAt.UTC()
	return &account, nil
}
