// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package httpapi exposes the auth and school catalog services over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/catalog"
)

// Authenticator is the subset of auth.Service the API uses.
type Authenticator interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Authenticate(ctx context.Context, token string) (*auth.Account, error)
}

// SchoolCatalog is the subset of catalog.Service the API uses.
type SchoolCatalog interface {
	List(ctx context.Context, q catalog.ListQuery) (catalog.Page, error)
	Get(ctx context.Context, id ulid.ULID) (*catalog.School, error)
}

// RequestRecorder records one completed API request.
type RequestRecorder interface {
	RecordHTTPRequest(method, route string, status int, elapsed time.Duration)
}

var (
	_ Authenticator = (*auth.Service)(nil)
	_ SchoolCatalog = (*catalog.Service)(nil)
)

// Config holds the router's collaborators. Auth and Schools are required.
type Config struct {
	Auth     Authenticator
	Schools  SchoolCatalog
	Logger   *slog.Logger
	Recorder RequestRecorder
}

// Handler serves the SchoolHub API.
type Handler struct {
	auth    Authenticator
	schools SchoolCatalog
	logger  *slog.Logger
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if cfg.Auth == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("authenticator is required")
	}
	if cfg.Schools == nil {
		return nil, oops.Code("CONFIG_INVALID").Errorf("school catalog is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{auth: cfg.Auth, schools: cfg.Schools, logger: logger}

	router := gin.New()
	router.Use(accessLog(logger))
	if cfg.Recorder != nil {
		router.Use(recordRequests(cfg.Recorder))
	}
	router.Use(gin.CustomRecovery(h.recoverPanic))
	router.NoRoute(func(c *gin.Context) {
		abortWithMessage(c, http.StatusNotFound, "Not found")
	})

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)

	protected := api.Group("")
	protected.Use(h.requireAccount)
	protected.GET("/auth/me", h.me)
	protected.GET("/schools", h.listSchools)
	protected.GET("/schools/:id", h.getSchool)

	return router, nil
}
