// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

func newBcrypt(t *testing.T) *auth.BcryptHasher {
	t.Helper()
	h, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewBcryptHasher(t *testing.T) {
	t.Run("accepts the default cost", func(t *testing.T) {
		h, err := auth.NewBcryptHasher(auth.DefaultBcryptCost)
		require.NoError(t, err)
		assert.Equal(t, 12, h.Cost())
	})

	t.Run("rejects cost below minimum", func(t *testing.T) {
		_, err := auth.NewBcryptHasher(bcrypt.MinCost - 1)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_COST")
	})

	t.Run("rejects cost above maximum", func(t *testing.T) {
		_, err := auth.NewBcryptHasher(bcrypt.MaxCost + 1)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_COST")
	})
}

func TestNewHasher(t *testing.T) {
	h, err := auth.NewHasher(auth.AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	assert.IsType(t, &auth.BcryptHasher{}, h)

	h, err = auth.NewHasher(auth.AlgorithmArgon2id, 0)
	require.NoError(t, err)
	assert.IsType(t, &auth.Argon2idHasher{}, h)

	_, err = auth.NewHasher("md5", 0)
	errutil.AssertErrorCode(t, err, "AUTH_UNKNOWN_ALGORITHM")
}

func TestBcryptHasher(t *testing.T) {
	hasher := newBcrypt(t)

	t.Run("produces bcrypt hash at configured cost", func(t *testing.T) {
		hash, err := hasher.Hash("Secret1!")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2"))
		assert.True(t, hasher.Handles(hash))

		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.MinCost, cost)
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("Secret1!")
		require.NoError(t, err)
		hash2, err := hasher.Hash("Secret1!")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("verify round trip", func(t *testing.T) {
		hash, err := hasher.Hash("Secret1!")
		require.NoError(t, err)

		ok, err := hasher.Verify("Secret1!", hash)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = hasher.Verify("Secret2!", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("passwords longer than 72 bytes hash and verify", func(t *testing.T) {
		long := strings.Repeat("Ab1!", 32)
		hash, err := hasher.Hash(long)
		require.NoError(t, err)

		ok, err := hasher.Verify(long, hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
	})

	t.Run("corrupt hash is an error, not a mismatch", func(t *testing.T) {
		ok, err := hasher.Verify("Secret1!", "$2a$10$tooshort")
		assert.False(t, ok)
		errutil.AssertErrorCode(t, err, auth.CodeInvalidHash)
	})
}

func TestArgon2idHasher(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	t.Run("produces valid hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
		assert.True(t, hasher.Handles(hash))
		assert.False(t, hasher.Handles("$2a$10$abc"))
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("correctpassword", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("incorrect password fails", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("wrongpassword", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.Error(t, err)
	})
}

func TestArgon2idHasher_MalformedHashes(t *testing.T) {
	hasher := auth.NewArgon2idHasher()
	validSalt := base64.RawStdEncoding.EncodeToString([]byte("0123456789abcdef"))
	validKey := base64.RawStdEncoding.EncodeToString(make([]byte, 32))

	tests := []struct {
		name     string
		hash     string
		contains string
	}{
		{"invalid hash format", "not-a-valid-hash", "invalid hash format"},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA", "unsupported hash algorithm"},
		{"invalid version format", "$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA", ""},
		{"invalid parameters format", "$argon2id$v=19$invalid$c2FsdA$aGFzaA", ""},
		{"invalid salt base64", "$argon2id$v=19$m=65536,t=1,p=4$!!!invalid!!!$aGFzaA", ""},
		{"invalid hash base64", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!invalid!!!", ""},
		{"threads overflow", "$argon2id$v=19$m=65536,t=1,p=256$c2FsdA$aGFzaA", "threads value"},
		{"zero iterations", "$argon2id$v=19$m=65536,t=0,p=4$c2FsdA$aGFzaA", "iterations"},
		{"iterations too high", "$argon2id$v=19$m=65536,t=4294967295,p=1$" + validSalt + "$" + validKey, "iterations value"},
		{"memory too high", "$argon2id$v=19$m=4294967295,t=1,p=1$" + validSalt + "$" + validKey, "memory value"},
		{"zero memory", "$argon2id$v=19$m=0,t=1,p=1$" + validSalt + "$" + validKey, "memory value"},
		{"unknown version", "$argon2id$v=16$m=65536,t=1,p=4$" + validSalt + "$" + validKey, "unsupported argon2 version"},
		{"salt too short", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$" + validKey, "invalid salt length"},
		{"salt too long", "$argon2id$v=19$m=65536,t=1,p=4$" + base64.RawStdEncoding.EncodeToString(make([]byte, 65)) + "$" + validKey, "invalid salt length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := hasher.Verify("password", tt.hash)
			require.Error(t, err)
			assert.False(t, ok)
			errutil.AssertErrorCode(t, err, auth.CodeInvalidHash)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}
