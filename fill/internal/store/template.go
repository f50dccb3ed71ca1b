// CLAUDE:SUMMARY CRUD operations for the templates table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Template is a stored HTML fragment, addressable by name.
type Template struct {
	Name      string `json:"name"`
	HTML      string `json:"html"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// PutTemplate inserts or replaces a template. created_at is preserved on
// replace.
func (s *Store) PutTemplate(ctx context.Context, name, html string) error {
	now := time.Now().UnixMilli()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO templates (name, html, created_at, updated_at)
		VALUES (?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET
			html = excluded.html,
			updated_at = excluded.updated_at`,
		name, html, now, now,
	)
	return err
}

// Template retrieves a template by name. Returns (nil, nil) when absent.
func (s *Store) Template(ctx context.Context, name string) (*Template, error) {
	t := &Template{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT name, html, created_at, updated_at
		FROM templates WHERE name = ?`, name).Scan(
		&t.Name, &t.HTML, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Templates returns all templates ordered by name.
func (s *Store) Templates(ctx context.Context) ([]*Template, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT name, html, created_at, updated_at
		FROM templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t := &Template{}
		if err := rows.Scan(&t.Name, &t.HTML, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template, reporting whether it existed.
func (s *Store) DeleteTemplate(ctx context.Context, name string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM templates WHERE name = ?`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
