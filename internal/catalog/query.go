// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package catalog

import (
	"strings"

	"github.com/samber/oops"
)

// Sort orders accepted by List. A leading "-" sorts descending.
const (
	SortName     = "name"
	SortNameDesc = "-name"
	SortCity     = "city"
	SortCityDesc = "-city"
)

// Paging limits.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListQuery filters and pages the school list. Zero values mean "no filter",
// sort by name and the default page size.
type ListQuery struct {
	Sort   string
	City   string
	Type   string
	Limit  int
	Offset int
}

// Page is one page of List results.
type Page struct {
	Schools []School `json:"schools"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// Normalize fills defaults and trims filters. It returns a copy.
func (q ListQuery) Normalize() ListQuery {
	q.Sort = strings.TrimSpace(q.Sort)
	if q.Sort == "" {
		q.Sort = SortName
	}
	q.City = strings.TrimSpace(q.City)
	q.Type = NormalizeType(q.Type)
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	return q
}

// Validate checks a normalized query.
func (q ListQuery) Validate() error {
	switch q.Sort {
	case SortName, SortNameDesc, SortCity, SortCityDesc:
	default:
		return oops.Code(CodeInvalidQuery).
			With("sort", q.Sort).
			Errorf("sort must be one of name, -name, city, -city")
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		return oops.Code(CodeInvalidQuery).
			With("limit", q.Limit).
			Errorf("limit must be between 1 and %d", MaxLimit)
	}
	if q.Offset < 0 {
		return oops.Code(CodeInvalidQuery).
			With("offset", q.Offset).
			Errorf("offset cannot be negative")
	}
	return nil
}

// SortField returns the field and direction of the query's sort.
func (q ListQuery) SortField() (field string, descending bool) {
	field, descending = strings.CutPrefix(q.Sort, "-")
	return field, descending
}
