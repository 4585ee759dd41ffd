// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package catalog serves the directory of schools.
package catalog

import (
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Error codes returned by the catalog.
const (
	CodeInvalidSchool = "CATALOG_INVALID_SCHOOL"
	CodeInvalidQuery  = "CATALOG_INVALID_QUERY"
	CodeNotFound      = "CATALOG_NOT_FOUND"
	CodeImportParse   = "CATALOG_IMPORT_PARSE_FAILED"
)

// ErrNotFound is returned by a Repository when no school matches.
var ErrNotFound = errors.New("school not found")

// Known school types. Other values are accepted and stored lowercased.
const (
	TypePublic     = "public"
	TypePrivate    = "private"
	TypeCharter    = "charter"
	TypeUniversity = "university"
)

// Field limits.
const (
	MaxNameLength        = 200
	MaxCityLength        = 100
	MaxDescriptionLength = 4000
)

// School is one entry in the directory.
type School struct {
	ID          ulid.ULID `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	State       string    `json:"state,omitempty"`
	Type        string    `json:"type,omitempty"`
	Website     string    `json:"website,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NormalizeType trims and lowercases a school type.
func NormalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// Normalize trims every text field and lowercases the type.
func (s *School) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.City = strings.TrimSpace(s.City)
	s.State = strings.TrimSpace(s.State)
	s.Type = NormalizeType(s.Type)
	s.Website = strings.TrimSpace(s.Website)
	s.Description = strings.TrimSpace(s.Description)
}

// Validate checks a normalized school.
func (s *School) Validate() error {
	switch {
	case s.Name == "":
		return invalidSchool("name", "name is required")
	case utf8.RuneCountInString(s.Name) > MaxNameLength:
		return invalidSchool("name", "name is too long")
	case s.City == "":
		return invalidSchool("city", "city is required")
	case utf8.RuneCountInString(s.City) > MaxCityLength:
		return invalidSchool("city", "city is too long")
	case utf8.RuneCountInString(s.Description) > MaxDescriptionLength:
		return invalidSchool("description", "description is too long")
	}
	if s.Website != "" {
		u, err := url.Parse(s.Website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalidSchool("website", "website must be an http or https URL")
		}
	}
	return nil
}

func invalidSchool(field, msg string) error {
	return oops.Code(CodeInvalidSchool).With("field", field).Errorf("%s", msg)
}
