// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/catalog"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// InternalErrorMessage is the only text a client sees for a 500.
const InternalErrorMessage = "Internal server error"

// errorResponse is the body of every non-2xx response. Errors is set only
// for weak passwords.
type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func abortWithMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Message: msg})
}

// writeError maps a service error to its status and public message. Codes
// not listed here are logged and reported as an opaque 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	code := errutil.Code(err)
	switch code {
	case auth.CodeWeakPassword:
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
			Message: err.Error(),
			Errors:  auth.Violations(err),
		})
	case auth.CodeIdentityTaken:
		abortWithMessage(c, http.StatusBadRequest, auth.IdentityTakenMessage)
	case auth.CodeInvalidCredentials:
		abortWithMessage(c, http.StatusBadRequest, auth.InvalidCredentialsMessage)
	case auth.CodeInvalidEmail, auth.CodeInvalidName, catalog.CodeInvalidQuery:
		abortWithMessage(c, http.StatusBadRequest, err.Error())
	case auth.CodeInvalidToken:
		abortWithMessage(c, http.StatusForbidden, "Invalid token")
	case auth.CodeTokenExpired:
		abortWithMessage(c, http.StatusForbidden, "Token expired")
	case auth.CodeAccountNotFound:
		abortWithMessage(c, http.StatusUnauthorized, "Account no longer exists")
	case catalog.CodeNotFound:
		abortWithMessage(c, http.StatusNotFound, "School not found")
	default:
		errutil.LogErrorContext(c.Request.Context(), h.logger, "request failed", err,
			"method", c.Request.Method,
			"route", c.FullPath(),
		)
		abortWithMessage(c, http.StatusInternalServerError, InternalErrorMessage)
	}
}

func (h *Handler) recoverPanic(c *gin.Context, recovered any) {
	h.logger.ErrorContext(c.Request.Context(), "panic in handler",
		"panic", recovered,
		"method", c.Request.Method,
		"route", c.FullPath(),
	)
	abortWithMessage(c, http.StatusInternalServerError, InternalErrorMessage)
}
