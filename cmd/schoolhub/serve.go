// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/schoolhub/schoolhub/internal/auth"
	authpg "github.com/schoolhub/schoolhub/internal/auth/postgres"
	"github.com/schoolhub/schoolhub/internal/catalog"
	catalogpg "github.com/schoolhub/schoolhub/internal/catalog/postgres"
	"github.com/schoolhub/schoolhub/internal/config"
	"github.com/schoolhub/schoolhub/internal/httpapi"
	"github.com/schoolhub/schoolhub/internal/observability"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the SchoolHub API server",
		Long: `Start the HTTP API. Pending migrations are applied first. The server
stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd, deps)
		},
	}

	config.BindFlags(cmd.Flags())
	return cmd
}

// runServe wires the services and serves until ctx is cancelled or a server
// fails.
func runServe(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *Deps) error {
	deps = deps.withDefaults()

	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(cfg, deps.LogOutput)
	if err != nil {
		return err
	}

	logger.Info("starting schoolhub",
		"http_addr", cfg.HTTP.Addr,
		"metrics_addr", cfg.Metrics.Addr,
		"hash_algorithm", cfg.Auth.HashAlgorithm,
	)

	db, err := deps.Connect(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout)
	if err != nil {
		return oops.With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := applyMigrations(cfg.Database.URL, deps, logger); err != nil {
		return err
	}

	creds, err := newCredentialManager(cfg.Auth)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ready atomic.Bool
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer := deps.ObservabilityServerFactory(cfg.Metrics.Addr, ready.Load, logger)
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		defer stopObservability(obsServer, cfg.HTTP.ShutdownTimeout, logger)
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability", logger)
		metrics = obsServer.Metrics()
	}

	authOpts := []auth.ServiceOption{auth.WithLogger(logger)}
	if metrics != nil {
		authOpts = append(authOpts, auth.WithRecorder(metrics))
	}
	authSvc, err := auth.NewService(authpg.NewAccountRepository(db), creds, tokens, authOpts...)
	if err != nil {
		return err
	}
	catalogSvc, err := catalog.NewService(catalogpg.NewSchoolRepository(db), logger)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	routerCfg := httpapi.Config{Auth: authSvc, Schools: catalogSvc, Logger: logger}
	if metrics != nil {
		routerCfg.Recorder = metrics
	}
	router, err := httpapi.NewRouter(routerCfg)
	if err != nil {
		return err
	}

	listener, err := deps.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return oops.Code("HTTP_LISTEN_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}

	httpSrv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	ready.Store(true)
	cmd.Printf("SchoolHub API listening on %s\n", listener.Addr())
	logger.Info("schoolhub ready", "http_addr", listener.Addr().String())

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
		errutil.LogError(logger, "http server failed", serveErr)
	}

	ready.Store(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}

	if serveErr != nil {
		return oops.Code("HTTP_SERVE_FAILED").Wrap(serveErr)
	}
	logger.Info("shutdown complete")
	return nil
}

// newCredentialManager hashes with the configured algorithm and still
// verifies hashes from the other supported one.
func newCredentialManager(cfg config.AuthConfig) (*auth.CredentialManager, error) {
	primary, err := auth.NewHasher(cfg.HashAlgorithm, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	var secondary auth.PasswordHasher
	if cfg.HashAlgorithm == auth.AlgorithmBcrypt {
		secondary = auth.NewArgon2idHasher()
	} else {
		secondary, err = auth.NewBcryptHasher(auth.DefaultBcryptCost)
		if err != nil {
			return nil, err
		}
	}
	return auth.NewCredentialManager(primary, secondary)
}

func applyMigrations(url string, deps *Deps, logger *slog.Logger) error {
	migrator, err := deps.NewMigrator(url)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("error closing migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return err
	}
	st, err := migrator.Status()
	if err != nil {
		return err
	}
	logger.Info("database schema up to date", "version", st.Current)
	return nil
}

func stopObservability(server ObservabilityServer, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}
}

// monitorServerErrors cancels ctx when a server reports an error. It exits
// when the channel closes or ctx is done.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
