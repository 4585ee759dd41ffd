// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is the coarse account tag. It is assigned at creation and never changed
// by this package.
type Role string

// Account roles.
const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Account field constraints.
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
)

// emailRegex accepts local@domain.tld with no whitespace and a single @.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Account is a registered user together with its stored credential.
type Account struct {
	ID           ulid.ULID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// View is the public projection of an account. It never carries the hash.
type View struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// View returns the public projection of a.
func (a *Account) View() View {
	return View{
		ID:        a.ID.String(),
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}

// NormalizeIdentity trims and lowercases an email so lookups and uniqueness
// are case-insensitive.
func NormalizeIdentity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateIdentity checks that an already normalized email is email-shaped.
func ValidateIdentity(email string) error {
	if email == "" {
		return oops.Code(CodeInvalidEmail).Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code(CodeInvalidEmail).
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return oops.Code(CodeInvalidEmail).Errorf("email address is not valid")
	}
	return nil
}

// ValidateName checks a trimmed display name.
func ValidateName(name string) error {
	if name == "" {
		return oops.Code(CodeInvalidName).Errorf("name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return oops.Code(CodeInvalidName).
			With("max", MaxNameLength).
			Errorf("name must be at most %d characters", MaxNameLength)
	}
	return nil
}

// NewAccount builds a student account with a fresh id. The email is
// normalized and the name trimmed before validation.
func NewAccount(name, email, passwordHash string, now time.Time) (*Account, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	email = NormalizeIdentity(email)
	if err := ValidateIdentity(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code(CodeInvalidHash).Errorf("password hash cannot be empty")
	}

	now = now.UTC()
	return &Account{
		ID:           ulid.Make(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// AccountDirectory manages account persistence.
type AccountDirectory interface {
	// Create stores a new account. Returns ErrIdentityTaken if the email is
	// already registered.
	Create(ctx context.Context, account *Account) error

	// GetByEmail retrieves an account by normalized email.
	// Returns ErrNotFound if no account has the given email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)
}
