// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sitegen/internal/models"
)

// Page size bounds for List.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

const projectColumns = `id, title, website_type, user_prompt, html, css, javascript,
	       metadata::text, created_at, updated_at`

// ListParams selects a page of projects. A zero Limit means DefaultListLimit.
type ListParams struct {
	Skip        int
	Limit       int
	WebsiteType models.WebsiteType // empty lists every type
}

// normalize clamps Limit to 1..MaxListLimit and Skip to >= 0.
func (p ListParams) normalize() ListParams {
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
	if p.Limit > MaxListLimit {
		p.Limit = MaxListLimit
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	return p
}

// ProjectStore handles all project-related database operations.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a new ProjectStore with the given database connection.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	err := row.Scan(
		&p.ID, &p.Title, &p.WebsiteType, &p.Prompt, &p.HTML, &p.CSS, &p.Script,
		&p.Metadata, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Create inserts a new project and returns it with the server-assigned ID
// and timestamps.
func (s *ProjectStore) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO projects (title, website_type, user_prompt, html, css, javascript, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		RETURNING `+projectColumns,
		p.Title, p.WebsiteType, p.Prompt, p.HTML, p.CSS, p.Script, p.Metadata,
	)
	created, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return created, nil
}

// FindByID retrieves a project by its ID. Returns nil if not found.
func (s *ProjectStore) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	return p, nil
}

// List returns a page of projects, newest first.
func (s *ProjectStore) List(ctx context.Context, params ListParams) ([]models.Project, error) {
	params = params.normalize()

	query := `SELECT ` + projectColumns + ` FROM projects`
	args := []any{}
	if params.WebsiteType != "" {
		args = append(args, params.WebsiteType)
		query += ` WHERE website_type = $1`
	}
	args = append(args, params.Limit, params.Skip)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]models.Project, 0, params.Limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Count returns the number of projects, optionally of one type.
func (s *ProjectStore) Count(ctx context.Context, websiteType models.WebsiteType) (int64, error) {
	var n int64
	var err error
	if websiteType == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE website_type = $1`, websiteType).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// Update applies the non-nil fields of u and bumps updated_at. Returns nil
// if the project does not exist. An empty update returns the current row.
func (s *ProjectStore) Update(ctx context.Context, id int64, u models.ProjectUpdate) (*models.Project, error) {
	if u.Empty() {
		return s.FindByID(ctx, id)
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.WebsiteType != nil {
		add("website_type", *u.WebsiteType)
	}
	if u.Prompt != nil {
		add("user_prompt", *u.Prompt)
	}
	if u.HTML != nil {
		add("html", *u.HTML)
	}
	if u.CSS != nil {
		add("css", *u.CSS)
	}
	if u.Script != nil {
		add("javascript", *u.Script)
	}
	if u.Metadata != nil {
		args = append(args, *u.Metadata)
		sets = append(sets, fmt.Sprintf("metadata = $%d::jsonb", len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE projects SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), projectColumns)

	p, err := scanProject(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete removes a project. Reports whether a row existed.
func (s *ProjectStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete project rows affected: %w", err)
	}
	return n > 0, nil
}
