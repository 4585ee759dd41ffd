// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported hash algorithms.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// DefaultBcryptCost is the work factor used for new bcrypt hashes.
const DefaultBcryptCost = 12

// bcryptMaxInput is the number of password bytes bcrypt consumes. Longer
// input is truncated before hashing and verification.
const bcryptMaxInput = 72

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// Bounds accepted when verifying a stored argon2id hash. Values outside them
// mark the hash as corrupt instead of being handed to argon2.IDKey.
const (
	argon2MaxMemory     = 1 << 20 // 1 GiB in KiB
	argon2MaxIterations = 16
	argon2MinSaltLen    = 8
	argon2MaxSaltLen    = 64
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher hashes and verifies passwords for one algorithm.
type PasswordHasher interface {
	// Hash produces a salted hash of the password. Two calls with the same
	// input return different strings.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, hash string) (bool, error)

	// Handles reports whether hash was produced by this algorithm.
	Handles(hash string) bool
}

// NewHasher returns the hasher for algorithm. cost applies to bcrypt only.
func NewHasher(algorithm string, cost int) (PasswordHasher, error) {
	switch algorithm {
	case AlgorithmBcrypt:
		return NewBcryptHasher(cost)
	case AlgorithmArgon2id:
		return NewArgon2idHasher(), nil
	default:
		return nil, oops.Code("AUTH_UNKNOWN_ALGORITHM").
			With("algorithm", algorithm).
			Errorf("unsupported hash algorithm: %s", algorithm)
	}
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the given cost.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, oops.Code("AUTH_INVALID_COST").
			With("cost", cost).
			Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash produces a bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").With("algorithm", AlgorithmBcrypt).Wrap(err)
	}
	return string(hash), nil
}

// Verify checks if the password matches the bcrypt hash.
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, oops.Code(CodeInvalidHash).With("algorithm", AlgorithmBcrypt).Wrap(err)
}

// Handles reports whether hash uses a bcrypt prefix ($2a$, $2b$, $2y$).
func (h *BcryptHasher) Handles(hash string) bool {
	return strings.HasPrefix(hash, "$2")
}

func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxInput {
		b = b[:bcryptMaxInput]
	}
	return b
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password in PHC string format.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks if the password matches the argon2id hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, oops.Code(CodeInvalidHash).Errorf("invalid hash format")
	}
	if parts[1] != AlgorithmArgon2id {
		return false, oops.Code(CodeInvalidHash).Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code(CodeInvalidHash).Wrap(err)
	}
	if version != argon2.Version {
		return false, oops.Code(CodeInvalidHash).Errorf("unsupported argon2 version %d", version)
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, oops.Code(CodeInvalidHash).Wrap(err)
	}
	if threads == 0 || threads > 255 {
		return false, oops.Code(CodeInvalidHash).Errorf("threads value %d out of range", threads)
	}
	if iterations == 0 || iterations > argon2MaxIterations {
		return false, oops.Code(CodeInvalidHash).Errorf("iterations value %d out of range", iterations)
	}
	if memory == 0 || memory > argon2MaxMemory {
		return false, oops.Code(CodeInvalidHash).Errorf("memory value %d out of range", memory)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code(CodeInvalidHash).Wrap(err)
	}
	if len(salt) < argon2MinSaltLen || len(salt) > argon2MaxSaltLen {
		return false, oops.Code(CodeInvalidHash).Errorf("invalid salt length: %d", len(salt))
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code(CodeInvalidHash).Wrap(err)
	}

	keyLen := len(expected)
	if keyLen == 0 || keyLen > 1<<10 {
		return false, oops.Code(CodeInvalidHash).Errorf("invalid hash key length: %d", keyLen)
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, uint8(threads), uint32(keyLen))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// Handles reports whether hash is in argon2id PHC format.
func (h *Argon2idHasher) Handles(hash string) bool {
	return strings.HasPrefix(hash, "$argon2id$")
}
