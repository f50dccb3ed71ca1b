// CLAUDE:SUMMARY Render log writes and aggregate stats.
package store

import (
	"context"
	"time"
)

// RenderEntry is one row of the render log.
type RenderEntry struct {
	RenderID     string `json:"render_id"`
	TemplateName string `json:"template_name,omitempty"`
	DurationMS   int64  `json:"duration_ms"`
	OK           bool   `json:"ok"`
	Error        string `json:"error,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

// LogRender records one render call.
func (s *Store) LogRender(ctx context.Context, e *RenderEntry) error {
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixMilli()
	}
	ok := 0
	if e.OK {
		ok = 1
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO render_log (render_id, template_name, duration_ms, ok, error, created_at)
		VALUES (?,?,?,?,?,?)`,
		e.RenderID, e.TemplateName, e.DurationMS, ok, e.Error, e.CreatedAt,
	)
	return err
}

// Stats are aggregate counters over templates and the render log.
type Stats struct {
	Templates    int64 `json:"templates"`
	Renders      int64 `json:"renders"`
	Failures     int64 `json:"failures"`
	LastRenderAt int64 `json:"last_render_at,omitempty"`
}

// Stats returns the aggregate counters.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM templates),
			(SELECT COUNT(*) FROM render_log),
			(SELECT COUNT(*) FROM render_log WHERE ok = 0),
			(SELECT COALESCE(MAX(created_at), 0) FROM render_log)`).Scan(
		&st.Templates, &st.Renders, &st.Failures, &st.LastRenderAt,
	)
	if err != nil {
		return nil, err
	}
	return st, nil
}
