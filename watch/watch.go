// CLAUDE:SUMMARY Polls SQLite for out-of-process writes and triggers debounced reloads of derived in-memory state.
// Package watch provides a "poll SQLite, detect change, debounce, reload"
// loop. domfill uses it to keep the parsed-template cache honest: the HTTP
// and MCP surfaces write templates through the Filler, which evicts cache
// entries itself, but any other process holding the database file can write
// templates too — the watcher notices and flushes.
//
// Typical usage:
//
//	w := watch.New(db, watch.Options{Interval: 500 * time.Millisecond, Debounce: time.Second})
//	go w.OnChange(ctx, func() error { cache.Flush(); return nil })
package watch

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ChangeDetector reads a version token from the database. Two calls
// returning different values mean "something changed". int64 maps naturally
// onto PRAGMA data_version, PRAGMA user_version, or an aggregate over an
// updated_at column.
type ChangeDetector func(ctx context.Context, db *sql.DB) (int64, error)

// Options tunes the watcher.
type Options struct {
	// Interval is the polling frequency. Default: 1s.
	Interval time.Duration

	// Debounce is the quiet period after a detected change before the
	// reload fires; further changes inside the window restart it. 0 fires
	// immediately.
	Debounce time.Duration

	// Detector overrides the default PragmaDataVersion detector.
	Detector ChangeDetector

	// Logger overrides slog.Default().
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.Detector == nil {
		o.Detector = PragmaDataVersion
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Watcher polls a SQLite database and runs a reload action when the version
// token moves. Safe for concurrent use.
type Watcher struct {
	db   *sql.DB
	opts Options

	// version is the last successfully processed token.
	version atomic.Int64

	// advanced is closed and replaced each time version moves, waking
	// WaitForVersion callers.
	mu       sync.Mutex
	advanced chan struct{}

	checks   atomic.Int64
	changes  atomic.Int64
	errors   atomic.Int64
	reloads  atomic.Int64
	reloadNs atomic.Int64
}

// Stats are point-in-time counters, exposed through the service stats
// surface.
type Stats struct {
	Checks          int64         `json:"checks"`
	ChangesDetected int64         `json:"changes_detected"`
	Errors          int64         `json:"errors"`
	Reloads         int64         `json:"reloads"`
	AvgReloadTime   time.Duration `json:"avg_reload_time"`
}

// New creates a Watcher. Call OnChange to start the loop.
func New(db *sql.DB, opts Options) *Watcher {
	opts.defaults()
	return &Watcher{db: db, opts: opts, advanced: make(chan struct{})}
}

// Version returns the last successfully processed version token.
func (w *Watcher) Version() int64 { return w.version.Load() }

// Stats returns the current counters.
func (w *Watcher) Stats() Stats {
	s := Stats{
		Checks:          w.checks.Load(),
		ChangesDetected: w.changes.Load(),
		Errors:          w.errors.Load(),
		Reloads:         w.reloads.Load(),
	}
	if s.Reloads > 0 {
		s.AvgReloadTime = time.Duration(w.reloadNs.Load() / s.Reloads)
	}
	return s
}

// OnChange blocks until ctx is cancelled, polling at opts.Interval. When the
// detector reports a new token and the debounce window passes quietly, the
// action runs. An action error leaves the version unchanged, so the reload
// is retried on the next poll cycle.
func (w *Watcher) OnChange(ctx context.Context, action func() error) {
	log := w.opts.Logger

	if v, err := w.poll(ctx); err != nil {
		log.Warn("watch: initial version check failed", "error", err)
	} else {
		w.setVersion(v)
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	// pending is the token waiting out its debounce window; -1 means none.
	pending := int64(-1)
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	log.Info("watch: started", "interval", w.opts.Interval, "debounce", w.opts.Debounce)

	for {
		select {
		case <-ctx.Done():
			log.Info("watch: stopped")
			return

		case <-ticker.C:
			w.checks.Add(1)
			cur, err := w.poll(ctx)
			if err != nil {
				w.errors.Add(1)
				log.Warn("watch: version check failed", "error", err)
				continue
			}
			if cur == w.version.Load() || cur == pending {
				continue
			}
			w.changes.Add(1)
			if w.opts.Debounce <= 0 {
				w.fire(log, action, cur)
				continue
			}
			// Restart the window only when the token actually moved.
			pending = cur
			debounce.Stop()
			debounce.Reset(w.opts.Debounce)
			log.Debug("watch: change detected, debouncing", "pending_version", cur)

		case <-debounce.C:
			if pending >= 0 {
				w.fire(log, action, pending)
				pending = -1
			}
		}
	}
}

// WaitForVersion blocks until a version >= target has been successfully
// processed, or ctx expires. Useful in tests and for read-your-writes
// coordination across processes.
func (w *Watcher) WaitForVersion(ctx context.Context, target int64) error {
	for {
		w.mu.Lock()
		ch := w.advanced
		w.mu.Unlock()

		if w.version.Load() >= target {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

func (w *Watcher) poll(ctx context.Context) (int64, error) {
	return w.opts.Detector(ctx, w.db)
}

func (w *Watcher) fire(log *slog.Logger, action func() error, ver int64) {
	start := time.Now()
	if err := action(); err != nil {
		w.errors.Add(1)
		log.Error("watch: reload failed", "error", err, "version", ver)
		return
	}
	elapsed := time.Since(start)
	w.reloads.Add(1)
	w.reloadNs.Add(int64(elapsed))
	w.setVersion(ver)
	log.Info("watch: reload complete", "version", ver, "duration", elapsed)
}

func (w *Watcher) setVersion(v int64) {
	w.version.Store(v)
	w.mu.Lock()
	close(w.advanced)
	w.advanced = make(chan struct{})
	w.mu.Unlock()
}

// ---------- Built-in detectors ----------

// PragmaDataVersion uses PRAGMA data_version, which increments whenever a
// different connection writes the database file. Detects cross-process and
// cross-connection mutations. Note that with a connection pool even this
// process's own writes land on other connections and register as changes —
// use a table-scoped detector when only part of the schema matters.
func PragmaDataVersion(ctx context.Context, db *sql.DB) (int64, error) {
	var v int64
	err := db.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v)
	return v, err
}

// PragmaUserVersion uses PRAGMA user_version, an application-controlled
// integer callers bump explicitly after writes. Deterministic, which makes
// it the detector of choice for WaitForVersion.
func PragmaUserVersion(ctx context.Context, db *sql.DB) (int64, error) {
	var v int64
	err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v)
	return v, err
}
