// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolhub/schoolhub/internal/auth"
)

// accountKey is the gin context key holding the authenticated *auth.Account.
const accountKey = "schoolhub.account"

// unmatchedRoute labels requests that matched no route, keeping metric
// cardinality bounded.
const unmatchedRoute = "unmatched"

// requireAccount resolves the bearer token to an account. A missing header
// is rejected with 401 before the token is looked at.
func (h *Handler) requireAccount(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		abortWithMessage(c, http.StatusUnauthorized, "Authorization header required")
		return
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		abortWithMessage(c, http.StatusForbidden, "Invalid token")
		return
	}

	account, err := h.auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set(accountKey, account)
	c.Next()
}

// currentAccount returns the account set by requireAccount.
func currentAccount(c *gin.Context) *auth.Account {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil
	}
	account, _ := v.(*auth.Account) //nolint:errcheck // only requireAccount sets this key
	return account
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
		)
	}
}

func recordRequests(recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		recorder.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
