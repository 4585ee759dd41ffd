// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// Repository persists schools.
type Repository interface {
	// List returns one page of schools matching q. q is already validated.
	List(ctx context.Context, q ListQuery) (Page, error)

	// Get retrieves a school by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id ulid.ULID) (*School, error)

	// Upsert inserts school, or updates the existing school with the same
	// name and city (case-insensitive). It reports whether a row was created
	// and sets school.ID to the stored id.
	Upsert(ctx context.Context, school *School) (created bool, err error)
}

// ImportReport summarizes an import run.
type ImportReport struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Skipped int           `json:"skipped"`
	Errors  []RecordError `json:"errors,omitempty"`
}

// RecordError explains why one import record was skipped.
type RecordError struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Service provides read access to the catalog and bulk import.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service. logger may be nil.
func NewService(repo Repository, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("CATALOG_INVALID_CONFIG").Errorf("school repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}, nil
}

// List returns a page of schools. Invalid sort or paging fails with
// CATALOG_INVALID_QUERY.
func (s *Service) List(ctx context.Context, q ListQuery) (Page, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return Page{}, err
	}
	page, err := s.repo.List(ctx, q)
	if err != nil {
		return Page{}, oops.With("operation", "list schools").Wrap(err)
	}
	page.Limit, page.Offset = q.Limit, q.Offset
	if page.Schools == nil {
		page.Schools = []School{}
	}
	return page, nil
}

// Get returns one school. A missing school fails with CATALOG_NOT_FOUND.
func (s *Service) Get(ctx context.Context, id ulid.ULID) (*School, error) {
	school, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeNotFound).With("id", id.String()).Errorf("school not found")
		}
		return nil, oops.With("operation", "get school").With("id", id.String()).Wrap(err)
	}
	return school, nil
}

// Import upserts every valid record. Invalid records are skipped and listed
// in the report; a repository failure aborts the run.
func (s *Service) Import(ctx context.Context, records []School) (ImportReport, error) {
	var report ImportReport
	for i := range records {
		school := records[i]
		school.Normalize()
		if err := school.Validate(); err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, RecordError{Index: i, Name: school.Name, Reason: err.Error()})
			continue
		}

		now := s.now().UTC()
		school.ID = ulid.Make()
		school.CreatedAt, school.UpdatedAt = now, now

		created, err := s.repo.Upsert(ctx, &school)
		if err != nil {
			errutil.LogErrorContext(ctx, s.logger, "school import failed", err, "index", i)
			return report, oops.With("operation", "import schools").With("index", i).Wrap(err)
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	s.logger.InfoContext(ctx, "school import finished",
		"created", report.Created, "updated", report.Updated, "skipped", report.Skipped)
	return report, nil
}
