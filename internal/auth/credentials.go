// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"sync"

	"github.com/samber/oops"
)

// CredentialManager applies the password rules and owns hashing and
// verification. It is safe for concurrent use.
type CredentialManager struct {
	primary PasswordHasher
	hashers []PasswordHasher

	dummyOnce sync.Once
	dummyHash string
	dummyErr  error
}

// NewCredentialManager creates a CredentialManager that hashes new passwords
// with primary. Stored hashes from any of the additional hashers still verify.
func NewCredentialManager(primary PasswordHasher, additional ...PasswordHasher) (*CredentialManager, error) {
	if primary == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("primary password hasher is required")
	}
	hashers := []PasswordHasher{primary}
	for _, h := range additional {
		if h != nil {
			hashers = append(hashers, h)
		}
	}
	return &CredentialManager{primary: primary, hashers: hashers}, nil
}

// ValidateStrength checks password against every strength rule.
func (m *CredentialManager) ValidateStrength(password string) error {
	return ValidateStrength(password)
}

// Hash produces a salted hash with the primary hasher. Callers must only
// hash passwords that passed ValidateStrength; ValidateAndHash does both.
func (m *CredentialManager) Hash(password string) (string, error) {
	hash, err := m.primary.Hash(password)
	if err != nil {
		return "", oops.With("operation", "hash password").Wrap(err)
	}
	return hash, nil
}

// ValidateAndHash validates password strength and hashes it only when every
// rule passes.
func (m *CredentialManager) ValidateAndHash(password string) (string, error) {
	if err := ValidateStrength(password); err != nil {
		return "", err
	}
	return m.Hash(password)
}

// Verify compares candidate against storedHash using the hasher that
// produced it. A mismatch is (false, nil); an unrecognized or corrupt hash is
// an AUTH_INVALID_HASH error.
func (m *CredentialManager) Verify(candidate, storedHash string) (bool, error) {
	for _, h := range m.hashers {
		if h.Handles(storedHash) {
			return h.Verify(candidate, storedHash)
		}
	}
	return false, oops.Code(CodeInvalidHash).Errorf("unrecognized password hash format")
}

// VerifyAbsent spends the same work as a real verification against a dummy
// hash. Login calls it for unknown emails so both failure paths take
// comparable time. The dummy hash comes from the primary hasher; accounts
// still on a secondary algorithm verify at that algorithm's cost.
func (m *CredentialManager) VerifyAbsent(candidate string) {
	m.dummyOnce.Do(func() {
		m.dummyHash, m.dummyErr = m.primary.Hash("dummy-Passw0rd!-never-matches")
	})
	if m.dummyErr != nil {
		return
	}
	_, _ = m.primary.Verify(candidate, m.dummyHash) //nolint:errcheck // result intentionally discarded
}
