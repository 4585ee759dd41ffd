// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package errutil holds helpers for logging and inspecting oops errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code and context.
// For standard errors, it logs the error string. attrs are appended as-is.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	LogErrorContext(context.Background(), logger, msg, err, attrs...)
}

// LogErrorContext is LogError with a context, so trace-aware handlers can
// correlate the record.
func LogErrorContext(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...any) {
	fields := make([]any, 0, len(attrs)+6)
	if oopsErr, ok := oops.AsOops(err); ok {
		fields = append(fields, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil {
			fields = append(fields, "code", code)
		}
		if oc := oopsErr.Context(); len(oc) > 0 {
			fields = append(fields, "context", oc)
		}
	} else {
		fields = append(fields, "error", err)
	}
	fields = append(fields, attrs...)
	logger.ErrorContext(ctx, msg, fields...)
}

// Code returns the oops code attached to err, or "" when it carries none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string) //nolint:errcheck // non-string codes are treated as absent
	return code
}
