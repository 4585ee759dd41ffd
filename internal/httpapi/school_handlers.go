// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/schoolhub/schoolhub/internal/catalog"
)

type listSchoolsQuery struct {
	Sort   string `form:"sort"`
	City   string `form:"city"`
	Type   string `form:"type"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

type schoolResponse struct {
	School *catalog.School `json:"school"`
}

// GET /api/schools
func (h *Handler) listSchools(c *gin.Context) {
	var q listSchoolsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithMessage(c, http.StatusBadRequest, "limit and offset must be integers")
		return
	}

	page, err := h.schools.List(c.Request.Context(), catalog.ListQuery{
		Sort:   q.Sort,
		City:   q.City,
		Type:   q.Type,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/schools/:id
func (h *Handler) getSchool(c *gin.Context) {
	id, err := ulid.Parse(c.Param("id"))
	if err != nil {
		abortWithMessage(c, http.StatusBadRequest, "Invalid school id")
		return
	}

	school, err := h.schools.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schoolResponse{School: school})
}
