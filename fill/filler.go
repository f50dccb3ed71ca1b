// CLAUDE:SUMMARY Main domfill orchestrator — wires store, template cache, watcher, sanitizer, and the render pipeline.
// Package fill is the template-filling service around the microdata
// renderer.
//
// It owns the named-template store, renders micro-data into stored or
// inline fragments, and exposes the result over HTTP and MCP:
//
//	data + template ──► microdata.Apply ──► sanitize ──► HTML / markdown
//
// Key features:
//   - Named templates: SQLite-backed CRUD with a parsed-node cache
//   - Cache honesty: a poll watcher flushes on out-of-process writes
//   - Directory sync: *.html files in a watched dir become templates
//   - Sanitized output: rendered fragments pass a bluemonday policy
//   - Markdown previews: rendered HTML converted for text surfaces
//   - MCP tools: render, preview, template CRUD, stats
//
// Usage:
//
//	fl, err := fill.New(cfg, logger)
//	defer fl.Close()
//	fl.RegisterHTTP(router)
//	fl.RegisterMCP(mcpServer)
//	fl.Start(ctx)
package fill

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/hazyhaar/domfill/fill/internal/store"
	"github.com/hazyhaar/domfill/hooks"
	"github.com/hazyhaar/domfill/idgen"
	"github.com/hazyhaar/domfill/microdata"
	"github.com/hazyhaar/domfill/watch"
)

// Filler is the main domfill orchestrator.
type Filler struct {
	cfg     *Config
	logger  *slog.Logger
	store   *store.Store
	cache   *templateCache
	watcher *watch.Watcher
	policy  *bluemonday.Policy
	md      *converter.Converter
	opts    *microdata.Options
	newID   idgen.Generator
}

// Option customises a Filler beyond what Config covers.
type Option func(*Filler)

// WithRenderOptions replaces the formatter options built from the config
// (stock hooks, time layout) with the caller's own.
func WithRenderOptions(opts *microdata.Options) Option {
	return func(f *Filler) { f.opts = opts }
}

// WithIDGenerator overrides the render ID generator.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(f *Filler) { f.newID = gen }
}

// New creates a Filler instance. Opens the SQLite database and initialises
// the template cache, the change watcher, and the output sanitizer.
func New(cfg *Config, logger *slog.Logger, options ...Option) (*Filler, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	f := &Filler{
		cfg:    cfg,
		logger: logger,
		store:  s,
		cache:  newTemplateCache(),
		md:     newMarkdownConverter(),
		newID:  idgen.Prefixed("rnd_", idgen.UUIDv7()),
	}
	if cfg.sanitizeEnabled() {
		f.policy = renderPolicy()
	}
	if cfg.stockHooksEnabled() {
		f.opts = hooks.Options(cfg.TimeLayout)
	} else {
		f.opts = &microdata.Options{}
	}
	for _, o := range options {
		o(f)
	}

	f.watcher = watch.New(s.DB, watch.Options{
		Interval: cfg.Cache.PollInterval,
		Debounce: cfg.Cache.Debounce,
		Detector: func(ctx context.Context, _ *sql.DB) (int64, error) {
			return s.TemplatesVersion(ctx)
		},
		Logger: logger,
	})

	return f, nil
}

// Start launches background goroutines: the cache watcher and, when
// configured, the templates directory sync. Both stop with ctx.
func (f *Filler) Start(ctx context.Context) {
	go f.watcher.OnChange(ctx, func() error {
		n := f.cache.flush()
		f.logger.Info("fill: template cache flushed", "entries", n)
		return nil
	})
	if f.cfg.TemplatesDir != "" {
		go func() {
			if err := f.SyncDir(ctx, f.cfg.TemplatesDir); err != nil && ctx.Err() == nil {
				f.logger.Error("fill: templates dir sync stopped", "dir", f.cfg.TemplatesDir, "error", err)
			}
		}()
	}
	f.logger.Info("fill: started", "db", f.cfg.DBPath)
}

// Close shuts down the filler and closes the database.
func (f *Filler) Close() error {
	return f.store.Close()
}

// Store returns the underlying store for direct access (testing, admin).
func (f *Filler) Store() *store.Store {
	return f.store
}

// Result is the outcome of one render.
type Result struct {
	RenderID   string `json:"render_id"`
	Template   string `json:"template,omitempty"`
	HTML       string `json:"html"`
	DurationMS int64  `json:"duration_ms"`
}

// Render fills the named template with data and returns the HTML. Empty
// data (or JSON null) renders the template as stored.
func (f *Filler) Render(ctx context.Context, name string, data []byte) (*Result, error) {
	renderID := f.newID()
	start := time.Now()
	nodes, err := f.templateNodes(ctx, name)
	if err != nil {
		f.logRender(ctx, renderID, name, start, err)
		return nil, err
	}
	return f.finish(ctx, renderID, name, nodes, data, start)
}

// RenderFragment fills inline template markup with data. Nothing is
// stored; the render is still logged, without a template name.
func (f *Filler) RenderFragment(ctx context.Context, fragment string, data []byte) (*Result, error) {
	renderID := f.newID()
	start := time.Now()
	nodes, err := microdata.ParseFragment(strings.NewReader(fragment))
	if err != nil {
		err = fmt.Errorf("fill: parse fragment: %w", err)
		f.logRender(ctx, renderID, "", start, err)
		return nil, err
	}
	return f.finish(ctx, renderID, "", nodes, data, start)
}

// finish runs the shared tail of the render pipeline and logs the outcome.
func (f *Filler) finish(ctx context.Context, renderID, name string, nodes []*html.Node, data []byte, start time.Time) (*Result, error) {
	out, err := f.fillNodes(nodes, data)
	f.logRender(ctx, renderID, name, start, err)
	if err != nil {
		return nil, err
	}
	return &Result{
		RenderID:   renderID,
		Template:   name,
		HTML:       out,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}

// fillNodes clones the template nodes, applies the data to the first
// element, serializes, and sanitizes. The stored nodes stay pristine.
func (f *Filler) fillNodes(nodes []*html.Node, data []byte) (string, error) {
	if int64(len(data)) > f.cfg.MaxDataBytes {
		return "", fmt.Errorf("%w: %d bytes, cap %d", ErrDataTooLarge, len(data), f.cfg.MaxDataBytes)
	}
	var thing microdata.Thing
	if len(bytes.TrimSpace(data)) > 0 {
		var err error
		thing, err = microdata.Parse(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadData, err)
		}
	}

	clones := make([]*html.Node, len(nodes))
	for i, n := range nodes {
		clones[i] = microdata.Clone(n)
	}
	microdata.Apply(thing, microdata.FirstElement(clones), f.opts)

	out := microdata.RenderString(clones...)
	if f.policy != nil {
		out = f.policy.Sanitize(out)
	}
	return out, nil
}

func (f *Filler) logRender(ctx context.Context, renderID, name string, start time.Time, renderErr error) {
	e := &store.RenderEntry{
		RenderID:     renderID,
		TemplateName: name,
		DurationMS:   time.Since(start).Milliseconds(),
		OK:           renderErr == nil,
	}
	if renderErr != nil {
		e.Error = renderErr.Error()
	}
	if err := f.store.LogRender(ctx, e); err != nil {
		f.logger.Warn("fill: render log write failed", "render_id", renderID, "error", err)
	}
}

// PreviewResult is the outcome of one markdown preview.
type PreviewResult struct {
	RenderID   string `json:"render_id"`
	Template   string `json:"template,omitempty"`
	Markdown   string `json:"markdown"`
	DurationMS int64  `json:"duration_ms"`
}

// Preview renders the named template and converts the HTML to markdown.
func (f *Filler) Preview(ctx context.Context, name string, data []byte) (*PreviewResult, error) {
	res, err := f.Render(ctx, name, data)
	if err != nil {
		return nil, err
	}
	return f.toMarkdown(res)
}

// PreviewFragment renders inline markup and converts the HTML to markdown.
func (f *Filler) PreviewFragment(ctx context.Context, fragment string, data []byte) (*PreviewResult, error) {
	res, err := f.RenderFragment(ctx, fragment, data)
	if err != nil {
		return nil, err
	}
	return f.toMarkdown(res)
}

// PutTemplate validates and stores a template under name, evicting any
// cached parse. The markup must contain at least one element.
func (f *Filler) PutTemplate(ctx context.Context, name, markup string) error {
	if name == "" {
		return fmt.Errorf("fill: template name required")
	}
	nodes, err := microdata.ParseFragment(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("fill: parse template %q: %w", name, err)
	}
	if microdata.FirstElement(nodes) == nil {
		return fmt.Errorf("%w: %s", ErrNoElement, name)
	}
	if err := f.store.PutTemplate(ctx, name, markup); err != nil {
		return err
	}
	f.cache.evict(name)
	return nil
}

// Template retrieves a stored template by name.
func (f *Filler) Template(ctx context.Context, name string) (*store.Template, error) {
	t, err := f.store.Template(ctx, name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return t, nil
}

// Templates lists all stored templates ordered by name.
func (f *Filler) Templates(ctx context.Context) ([]*store.Template, error) {
	return f.store.Templates(ctx)
}

// DeleteTemplate removes a stored template and its cached parse.
func (f *Filler) DeleteTemplate(ctx context.Context, name string) error {
	existed, err := f.store.DeleteTemplate(ctx, name)
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	f.cache.evict(name)
	return nil
}

// Stats returns current service statistics.
func (f *Filler) Stats(ctx context.Context) (*Stats, error) {
	st, err := f.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Templates:    st.Templates,
		Renders:      st.Renders,
		Failures:     st.Failures,
		LastRenderAt: st.LastRenderAt,
		CacheEntries: f.cache.len(),
		Watcher:      f.watcher.Stats(),
	}, nil
}

// Stats holds domfill counters.
type Stats struct {
	Templates    int64       `json:"templates"`
	Renders      int64       `json:"renders"`
	Failures     int64       `json:"failures"`
	LastRenderAt int64       `json:"last_render_at,omitempty"`
	CacheEntries int         `json:"cache_entries"`
	Watcher      watch.Stats `json:"watcher"`
}
