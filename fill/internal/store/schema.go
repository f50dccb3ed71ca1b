// CLAUDE:SUMMARY Complete DDL for the domfill tables.
package store

// Schema contains the complete DDL for the domfill tables.
const Schema = `
-- Templates: named HTML fragments carrying itemprop markers and
-- <template data-type=...> prototypes.
CREATE TABLE IF NOT EXISTS templates (
    name       TEXT PRIMARY KEY,
    html       TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Render log: one row per render call, written best-effort.
CREATE TABLE IF NOT EXISTS render_log (
    render_id     TEXT PRIMARY KEY,
    template_name TEXT NOT NULL DEFAULT '',
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    ok            INTEGER NOT NULL DEFAULT 1,
    error         TEXT NOT NULL DEFAULT '',
    created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_render_log_template ON render_log(template_name);
CREATE INDEX IF NOT EXISTS idx_render_log_created ON render_log(created_at);
`
