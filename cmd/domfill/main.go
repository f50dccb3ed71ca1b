// CLAUDE:SUMMARY CLI entry point for domfill — template-filling render service with HTTP, MCP stdio, and one-shot modes.
// Command domfill renders micro-data into HTML templates.
//
// Usage:
//
//	domfill -config domfill.yaml              # daemon with config file
//	domfill -db fill.db -addr :8080           # daemon with defaults
//	domfill -db fill.db -mcp                  # daemon, plus MCP tools on stdio
//	domfill -db fill.db -render card -data d.json   # render and exit
//	domfill -db fill.db -preview card -data -       # markdown preview, data from stdin
//	domfill -db fill.db -stats                # show stats and exit
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domfill/fill"
	"github.com/hazyhaar/domfill/shield"
)

type options struct {
	configPath   string
	dbPath       string
	addr         string
	templatesDir string
	mcpStdio     bool
	renderName   string
	previewName  string
	dataPath     string
	showStats    bool
	rateLimit    int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to domfill.yaml config file")
	flag.StringVar(&opts.dbPath, "db", "", "path to SQLite database")
	flag.StringVar(&opts.addr, "addr", ":8080", "HTTP listen address")
	flag.StringVar(&opts.templatesDir, "templates-dir", "", "directory of *.html files to sync into the store")
	flag.BoolVar(&opts.mcpStdio, "mcp", false, "also serve MCP tools on stdio")
	flag.StringVar(&opts.renderName, "render", "", "render this template and exit (HTML on stdout)")
	flag.StringVar(&opts.previewName, "preview", "", "render this template and exit (markdown on stdout)")
	flag.StringVar(&opts.dataPath, "data", "", "JSON data for -render/-preview: a file path, or - for stdin")
	flag.BoolVar(&opts.showStats, "stats", false, "show stats and exit")
	flag.IntVar(&opts.rateLimit, "rate-limit", 0, "max API requests per minute per IP, 0 disables")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, opts); err != nil {
		logger.Error("domfill: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	fl, err := fill.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer fl.Close()

	// One-shot: render.
	if opts.renderName != "" {
		data, err := readData(opts.dataPath)
		if err != nil {
			return fmt.Errorf("read data: %w", err)
		}
		res, err := fl.Render(ctx, opts.renderName, data)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		fmt.Println(res.HTML)
		return nil
	}

	// One-shot: preview.
	if opts.previewName != "" {
		data, err := readData(opts.dataPath)
		if err != nil {
			return fmt.Errorf("read data: %w", err)
		}
		res, err := fl.Preview(ctx, opts.previewName, data)
		if err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		fmt.Println(res.Markdown)
		return nil
	}

	// One-shot: stats.
	if opts.showStats {
		stats, err := fl.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	// Daemon mode.
	fl.Start(ctx)

	r := chi.NewRouter()
	// Body cap above the data cap: the JSON envelope also carries template
	// markup on PUT.
	for _, mw := range shield.APIStack(2 * cfg.MaxDataBytes) {
		r.Use(mw)
	}
	if opts.rateLimit > 0 {
		lim := shield.NewLimiter(opts.rateLimit, time.Minute, "/health")
		lim.StartGC(ctx)
		r.Use(lim.Middleware)
	}
	fl.RegisterHTTP(r)

	if opts.mcpStdio {
		srv := mcp.NewServer(&mcp.Implementation{Name: "domfill", Version: "0.1.0"}, nil)
		fl.RegisterMCP(srv)
		go func() {
			if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				logger.Error("domfill: mcp stdio stopped", "error", err)
			}
		}()
		logger.Info("domfill: mcp tools on stdio")
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("domfill: serving", "addr", opts.addr, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("domfill: server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("domfill: shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("domfill: shutdown", "error", err)
	}
	return nil
}

func resolveConfig(opts options) (*fill.Config, error) {
	var cfg *fill.Config
	if opts.configPath != "" {
		var err error
		cfg, err = fill.LoadConfigFile(opts.configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = &fill.Config{DBPath: opts.dbPath}
	}

	// Flags override the file.
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.templatesDir != "" {
		cfg.TemplatesDir = opts.templatesDir
	}

	if cfg.DBPath == "" {
		fmt.Fprintln(os.Stderr, "usage: domfill -config <file> | -db <path> [-addr :8080] [-mcp] [-render <template> -data <file|->] [-stats]")
		os.Exit(1)
	}
	return cfg, nil
}

// readData reads the one-shot render payload: a file, stdin for "-", or
// nil when no -data flag was given (renders the bare template).
func readData(path string) ([]byte, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
