// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/schoolhub/schoolhub/internal/observability"
	"github.com/schoolhub/schoolhub/internal/store"
)

// Deps contains injectable dependencies for the CLI commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// Connect opens the database pool.
	// Default: store.Connect
	Connect func(ctx context.Context, url string, timeout time.Duration) (Database, error)

	// NewMigrator creates a schema migrator.
	// Default: store.NewMigrator
	NewMigrator func(url string) (Migrator, error)

	// Listen creates the API listener.
	// Default: net.Listen
	Listen func(network, address string) (net.Listener, error)

	// ObservabilityServerFactory creates the metrics/health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// LogOutput receives structured logs.
	// Default: os.Stderr
	LogOutput io.Writer
}

// Database is the pool surface the commands use.
type Database interface {
	store.DB
	Close()
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Status() (store.Status, error)
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

func (d *Deps) withDefaults() *Deps {
	out := &Deps{}
	if d != nil {
		*out = *d
	}
	if out.Connect == nil {
		out.Connect = func(ctx context.Context, url string, timeout time.Duration) (Database, error) {
			pool, err := store.Connect(ctx, url, timeout)
			if err != nil {
				return nil, err
			}
			return pool, nil
		}
	}
	if out.NewMigrator == nil {
		out.NewMigrator = func(url string) (Migrator, error) {
			m, err := store.NewMigrator(url)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	if out.Listen == nil {
		out.Listen = net.Listen
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, ready, observability.WithLogger(logger))
		}
	}
	if out.LogOutput == nil {
		out.LogOutput = os.Stderr
	}
	return out
}
