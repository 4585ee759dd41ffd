// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/oops"
)

// Password length constraints, counted in characters.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// Strength rule messages, in the order they are reported.
const (
	MsgPasswordTooShort  = "Password must be at least 8 characters long"
	MsgPasswordTooLong   = "Password must be at most 128 characters long"
	MsgPasswordNoUpper   = "Password must contain at least one uppercase letter"
	MsgPasswordNoLower   = "Password must contain at least one lowercase letter"
	MsgPasswordNoDigit   = "Password must contain at least one number"
	MsgPasswordNoSpecial = "Password must contain at least one special character"
)

// ValidateStrength checks every password rule and reports all violations at
// once. The returned error has code AUTH_WEAK_PASSWORD; Violations lists the
// failed rules and the message joins them.
func ValidateStrength(password string) error {
	var violations []string

	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		violations = append(violations, MsgPasswordTooShort)
	}
	if n > MaxPasswordLength {
		violations = append(violations, MsgPasswordTooLong)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			special = true
		}
	}

	if !upper {
		violations = append(violations, MsgPasswordNoUpper)
	}
	if !lower {
		violations = append(violations, MsgPasswordNoLower)
	}
	if !digit {
		violations = append(violations, MsgPasswordNoDigit)
	}
	if !special {
		violations = append(violations, MsgPasswordNoSpecial)
	}

	if len(violations) == 0 {
		return nil
	}
	return oops.Code(CodeWeakPassword).
		With("violations", violations).
		Errorf("%s", strings.Join(violations, ", "))
}
