// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package postgres implements catalog.Repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/catalog"
	"github.com/schoolhub/schoolhub/internal/store"
)

const schoolColumns = `id, name, city, state, type, website, description, created_at, updated_at`

// sortColumns maps sort fields to SQL expressions. Only these are ever
// interpolated into a query.
var sortColumns = map[string]string{
	"name": "LOWER(name)",
	"city": "LOWER(city)",
}

// SchoolRepository implements catalog.Repository using PostgreSQL.
type SchoolRepository struct {
	db store.DB
}

var _ catalog.Repository = (*SchoolRepository)(nil)

// NewSchoolRepository creates a new SchoolRepository.
func NewSchoolRepository(db store.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// List returns one page of schools with the total match count.
func (r *SchoolRepository) List(ctx context.Context, q catalog.ListQuery) (catalog.Page, error) {
	sql, args, err := buildListQuery(q)
	if err != nil {
		return catalog.Page{}, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return catalog.Page{}, oops.Code("SCHOOL_LIST_FAILED").With("operation", "list schools").Wrap(err)
	}
	defer rows.Close()

	page := catalog.Page{Schools: []catalog.School{}}
	for rows.Next() {
		var total int
		school, err := scanSchool(rows, &total)
		if err != nil {
			return catalog.Page{}, oops.Code("SCHOOL_LIST_FAILED").With("operation", "scan school row").Wrap(err)
		}
		page.Schools = append(page.Schools, *school)
		page.Total = total
	}
	if err := rows.Err(); err != nil {
		return catalog.Page{}, oops.Code("SCHOOL_LIST_FAILED").With("operation", "iterate schools").Wrap(err)
	}

	// An offset past the end returns no rows and so no window count.
	if len(page.Schools) == 0 && q.Offset > 0 {
		if err := r.countInto(ctx, q, &page.Total); err != nil {
			return catalog.Page{}, err
		}
	}
	return page, nil
}

func (r *SchoolRepository) countInto(ctx context.Context, q catalog.ListQuery, total *int) error {
	where, args := whereClause(q)
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM schools`+where, args...).Scan(total)
	if err != nil {
		return oops.Code("SCHOOL_LIST_FAILED").With("operation", "count schools").Wrap(err)
	}
	return nil
}

// Get retrieves a school by ID.
func (r *SchoolRepository) Get(ctx context.Context, id ulid.ULID) (*catalog.School, error) {
	row := r.db.QueryRow(ctx, `SELECT `+schoolColumns+` FROM schools WHERE id = $1`, id.String())

	school, err := scanSchool(row, nil)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SCHOOL_NOT_FOUND").With("id", id.String()).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SCHOOL_GET_FAILED").
			With("operation", "get school").
			With("id", id.String()).
			Wrap(err)
	}
	return school, nil
}

// Upsert inserts school or updates the row with the same lowercased name and
// city. On update the stored id and created_at are kept.
func (r *SchoolRepository) Upsert(ctx context.Context, school *catalog.School) (bool, error) {
	var (
		idStr    string
		inserted bool
	)
	err := r.db.QueryRow(ctx, `
		INSERT INTO schools (`+schoolColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ((LOWER(name)), (LOWER(city))) DO UPDATE SET
			state = EXCLUDED.state,
			type = EXCLUDED.type,
			website = EXCLUDED.website,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
		RETURNING id, (xmax = 0) AS inserted
	`,
		school.ID.String(),
		school.Name,
		school.City,
		school.State,
		school.Type,
		school.Website,
		school.Description,
		school.CreatedAt,
		school.UpdatedAt,
	).Scan(&idStr, &inserted)
	if err != nil {
		return false, oops.Code("SCHOOL_UPSERT_FAILED").
			With("operation", "upsert school").
			With("name", school.Name).
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return false, oops.Code("SCHOOL_CORRUPT").With("id", idStr).Wrap(err)
	}
	school.ID = id
	return inserted, nil
}

func whereClause(q catalog.ListQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.City != "" {
		args = append(args, q.City)
		conds = append(conds, "LOWER(city) = LOWER($"+strconv.Itoa(len(args))+")")
	}
	if q.Type != "" {
		args = append(args, q.Type)
		conds = append(conds, "type = $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func buildListQuery(q catalog.ListQuery) (string, []any, error) {
	field, desc := q.SortField()
	col, ok := sortColumns[field]
	if !ok {
		return "", nil, oops.Code(catalog.CodeInvalidQuery).With("sort", q.Sort).Errorf("unsupported sort %q", q.Sort)
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}

	where, args := whereClause(q)
	args = append(args, q.Limit, q.Offset)

	var b strings.Builder
	b.WriteString(`SELECT ` + schoolColumns + `, COUNT(*) OVER() AS total FROM schools`)
	b.WriteString(where)
	b.WriteString(" ORDER BY " + col + " " + dir + ", id ASC")
	b.WriteString(" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args)))
	return b.String(), args, nil
}

// scanSchool scans a school row. When total is non-nil the row carries a
// trailing window count. Callers are responsible for handling pgx.ErrNoRows.
func scanSchool(row pgx.Row, total *int) (*catalog.School, error) {
	var (
		idStr     string
		createdAt time.Time
		updatedAt time.Time
		s         catalog.School
	)
	dest := []any{&idStr, &s.Name, &s.City, &s.State, &s.Type, &s.Website, &s.Description, &createdAt, &updatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SCHOOL_CORRUPT").With("id", idStr).Wrap(err)
	}
	s.ID = id
	s.CreatedAt = createdAt.UTC()
	s.UpdatedAt = updatedAt.UTC()
	return &s, nil
}
