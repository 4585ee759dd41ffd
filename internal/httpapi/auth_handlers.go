// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolhub/schoolhub/internal/auth"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string    `json:"token"`
	User  auth.View `json:"user"`
}

type userResponse struct {
	User auth.View `json:"user"`
}

// POST /api/auth/register
func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.auth.Register(c.Request.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{Token: session.Token, User: session.Account.View()})
}

// POST /api/auth/login
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Token: session.Token, User: session.Account.View()})
}

// GET /api/auth/me
func (h *Handler) me(c *gin.Context) {
	account := currentAccount(c)
	if account == nil {
		abortWithMessage(c, http.StatusUnauthorized, "Authorization header required")
		return
	}
	c.JSON(http.StatusOK, userResponse{User: account.View()})
}
