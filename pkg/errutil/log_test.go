// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/schoolhub/pkg/errutil"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("TEST_ERROR").
		With("key", "value").
		Errorf("something failed")

	errutil.LogError(logger, "operation failed", err)

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "operation failed", entry["msg"])
	assert.Equal(t, "TEST_ERROR", entry["code"])
	require.IsType(t, map[string]any{}, entry["context"])
	assert.Equal(t, "value", entry["context"].(map[string]any)["key"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "operation failed", errors.New("standard error"))

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "standard error")
	assert.NotContains(t, entry, "code")
}

func TestLogError_AppendsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "lookup failed", errors.New("boom"), "operation", "login", "account_id", "01ABC")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "login", entry["operation"])
	assert.Equal(t, "01ABC", entry["account_id"])
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"oops with code", oops.Code("X_CODE").Errorf("x"), "X_CODE"},
		{"oops without code", oops.Errorf("x"), ""},
		{"standard error", errors.New("x"), ""},
		{"nil", nil, ""},
		{"wrapped keeps inner code", oops.With("k", "v").Wrap(oops.Code("INNER").Errorf("x")), "INNER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errutil.Code(tt.err))
		})
	}
}
