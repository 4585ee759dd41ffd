// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package auth provides the credential and session primitives for SchoolHub.
//
// # Components
//
//   - CredentialManager - password strength rules, salted hashing, verification
//   - TokenIssuer - signed, time-bounded bearer tokens (HS256 JWT)
//   - Service - registration, login and request authentication on top of both
//
// The credential manager and token issuer never perform I/O. Persistence goes
// through an AccountDirectory supplied by the caller; the postgres subpackage
// provides the production implementation.
//
// # Domain Types
//
// Accounts should be created with NewAccount, which normalizes the email and
// validates the name and email before any hash is attached. Direct struct
// initialization bypasses that validation.
//
// # Errors
//
// Every error returned across the package boundary is an oops error carrying
// one of the Code* constants. ErrorCode extracts it; callers map codes to
// transport statuses.
package auth
