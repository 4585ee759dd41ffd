// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package logging provides structured logging with OpenTelemetry trace context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/trace"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Options configures a logger built by New.
type Options struct {
	Service string
	Version string
	Format  string
	Level   slog.Leveler
	Writer  io.Writer
}

// traceHandler adds the active span's trace and span IDs to every record.
type traceHandler struct {
	next slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.next.Handle(ctx, r)
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{next: h.next.WithGroup(name)}
}

// ValidFormat reports whether format names a supported output format.
// The empty string selects JSON.
func ValidFormat(format string) bool {
	switch format {
	case "", FormatJSON, FormatText:
		return true
	}
	return false
}

// ParseLevel converts a level name such as "debug" or "WARN" into a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, oops.Code("LOG_LEVEL_INVALID").With("level", name).Errorf("unknown log level %q", name)
	}
	return level, nil
}

// New builds a logger from opts. Every record carries the service and
// version, plus trace_id and span_id when the context holds a span.
func New(opts Options) (*slog.Logger, error) {
	if !ValidFormat(opts.Format) {
		return nil, oops.Code("LOG_FORMAT_INVALID").
			With("format", opts.Format).
			Errorf("unknown log format %q (want %s or %s)", opts.Format, FormatJSON, FormatText)
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if opts.Format == FormatText {
		base = slog.NewTextHandler(w, handlerOpts)
	} else {
		base = slog.NewJSONHandler(w, handlerOpts)
	}

	base = base.WithAttrs([]slog.Attr{
		slog.String("service", opts.Service),
		slog.String("version", opts.Version),
	})
	return slog.New(&traceHandler{next: base}), nil
}

// Setup creates a debug-level logger, falling back to JSON for an unknown format.
// If w is nil, writes to os.Stderr.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if !ValidFormat(format) {
		format = FormatJSON
	}
	//nolint:errcheck // format is valid at this point
	logger, _ := New(Options{
		Service: service,
		Version: version,
		Format:  format,
		Level:   slog.LevelDebug,
		Writer:  w,
	})
	return logger
}

// SetDefault installs logger as the process-wide default.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
