// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package authtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolhub/schoolhub/internal/auth"
)

// SigningKey is a fixed HS256 key for tests.
var SigningKey = []byte("test-signing-key-0123456789abcdef")

// Fixture bundles a service with its collaborators.
type Fixture struct {
	Directory   *MemoryDirectory
	Credentials *auth.CredentialManager
	Tokens      *auth.TokenIssuer
	Service     *auth.Service
}

// NewFixture builds a Service over a MemoryDirectory using the cheapest
// bcrypt cost so tests stay fast. opts are applied to the token issuer.
func NewFixture(t *testing.T, opts ...auth.TokenOption) *Fixture {
	t.Helper()

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	creds, err := auth.NewCredentialManager(hasher)
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer(SigningKey, auth.DefaultTokenTTL, opts...)
	require.NoError(t, err)

	dir := NewMemoryDirectory()
	svc, err := auth.NewService(dir, creds, tokens)
	require.NoError(t, err)

	return &Fixture{Directory: dir, Credentials: creds, Tokens: tokens, Service: svc}
}

// FixedClock returns a clock that always reports at.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
