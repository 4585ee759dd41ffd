// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// Error codes returned by the authentication subsystem.
const (
	CodeWeakPassword       = "AUTH_WEAK_PASSWORD"
	CodeIdentityTaken      = "AUTH_IDENTITY_TAKEN"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeInvalidToken       = "AUTH_INVALID_TOKEN"
	CodeTokenExpired       = "AUTH_TOKEN_EXPIRED"
	CodeAccountNotFound    = "AUTH_ACCOUNT_NOT_FOUND"
	CodeInvalidEmail       = "AUTH_INVALID_EMAIL"
	CodeInvalidName        = "AUTH_INVALID_NAME"
	CodeInvalidHash        = "AUTH_INVALID_HASH"
	CodeUnexpected         = "AUTH_UNEXPECTED"
)

// User-facing messages. The invalid credentials text is shared by the
// unknown-email and wrong-password paths and must stay identical for both.
const (
	InvalidCredentialsMessage = "Invalid credentials"
	IdentityTakenMessage      = "User already exists"
)

// ErrNotFound is returned by an AccountDirectory when no account matches.
var ErrNotFound = errors.New("not found")

// ErrIdentityTaken is returned by an AccountDirectory when the email is
// already registered to another account.
var ErrIdentityTaken = errors.New("identity already registered")

// ErrorCode returns the oops code attached to err, or "" when err carries none.
func ErrorCode(err error) string {
	return errutil.Code(err)
}

// Violations returns the strength rules a WeakPassword error reports.
func Violations(err error) []string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	v, _ := oopsErr.Context()["violations"].([]string) //nolint:errcheck // absent means none
	return v
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf(InvalidCredentialsMessage)
}

// unexpected builds the opaque error handed to callers when a dependency
// fails. The cause is intentionally not wrapped so its detail and codes stay
// out of the returned chain; callers log it before calling this.
func unexpected(operation string) error {
	return oops.Code(CodeUnexpected).
		With("operation", operation).
		Errorf("%s failed", operation)
}
