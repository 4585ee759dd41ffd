// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the validity window of a session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenIssuer issues and verifies HS256 session tokens. The signing key and
// TTL are fixed at construction; the issuer holds no other state.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// TokenOption configures a TokenIssuer.
type TokenOption func(*TokenIssuer)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenIssuer) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTokenIssuer creates a TokenIssuer signing with key. The key is copied.
func NewTokenIssuer(key []byte, ttl time.Duration, opts ...TokenOption) (*TokenIssuer, error) {
	if len(key) == 0 {
		return nil, oops.Code("CONFIG_INVALID").Errorf("token signing key is required")
	}
	if ttl <= 0 {
		return nil, oops.Code("CONFIG_INVALID").With("ttl", ttl.String()).Errorf("token ttl must be positive")
	}

	t := &TokenIssuer{
		key: append([]byte(nil), key...),
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TTL returns the validity window of issued tokens.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue returns a signed token whose subject is the account id.
func (t *TokenIssuer) Issue(subject ulid.ULID) (string, error) {
	if subject.Compare(ulid.ULID{}) == 0 {
		return "", oops.Code("AUTH_INVALID_SUBJECT").Errorf("token subject cannot be zero")
	}

	issuedAt := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").
			With("subject", claims.Subject).
			Wrap(err)
	}
	return signed, nil
}

// Verify checks the token signature and expiry and returns its subject.
// Tampered, malformed or foreign-algorithm tokens fail with
// AUTH_INVALID_TOKEN; tokens at or past their expiry fail with
// AUTH_TOKEN_EXPIRED.
func (t *TokenIssuer) Verify(token string) (ulid.ULID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ulid.ULID{}, oops.Code(CodeTokenExpired).Errorf("token has expired")
		}
		return ulid.ULID{}, oops.Code(CodeInvalidToken).
			With("reason", err.Error()).
			Errorf("invalid token")
	}

	subject, err := ulid.Parse(claims.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code(CodeInvalidToken).
			With("reason", "subject is not an account id").
			Errorf("invalid token")
	}
	return subject, nil
}
