// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

func TestValidateStrength(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		violations []string
	}{
		{"strong password", "Str0ng!Pass", nil},
		{"exactly minimum length", "Abcde1!x", nil},
		{"exactly maximum length", "Aa1!" + strings.Repeat("x", 124), nil},
		{"unicode letters and symbols", "Ünïcødé1€", nil},
		{"seven characters fails length only", "Short1!", []string{auth.MsgPasswordTooShort}},
		{"too long fails length only", "Aa1!" + strings.Repeat("x", 125), []string{auth.MsgPasswordTooLong}},
		{"missing uppercase", "alllowercase1!", []string{auth.MsgPasswordNoUpper}},
		{"missing lowercase", "ALLUPPERCASE1!", []string{auth.MsgPasswordNoLower}},
		{"missing digit", "NoDigits!", []string{auth.MsgPasswordNoDigit}},
		{"missing special character", "NoSpecial123", []string{auth.MsgPasswordNoSpecial}},
		{
			"lowercase seven characters fails length and uppercase",
			"short1!",
			[]string{auth.MsgPasswordTooShort, auth.MsgPasswordNoUpper},
		},
		{
			"empty password reports every rule",
			"",
			[]string{
				auth.MsgPasswordTooShort,
				auth.MsgPasswordNoUpper,
				auth.MsgPasswordNoLower,
				auth.MsgPasswordNoDigit,
				auth.MsgPasswordNoSpecial,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateStrength(tt.password)
			if tt.violations == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, auth.CodeWeakPassword)
			assert.Equal(t, tt.violations, auth.Violations(err))
			assert.Equal(t, strings.Join(tt.violations, ", "), err.Error())
		})
	}
}

func TestValidateStrength_CountsCharactersNotBytes(t *testing.T) {
	// 8 runes, 16 bytes
	password := "Ää1!öööö"
	require.NoError(t, auth.ValidateStrength(password))

	// 7 runes but more than 8 bytes
	err := auth.ValidateStrength("Ää1!ööö")
	require.Error(t, err)
	assert.Equal(t, []string{auth.MsgPasswordTooShort}, auth.Violations(err))
}

func TestViolations_NonStrengthError(t *testing.T) {
	assert.Nil(t, auth.Violations(nil))
	assert.Nil(t, auth.Violations(assert.AnError))
}
