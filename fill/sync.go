// CLAUDE:SUMMARY Keeps a directory of *.html files mirrored into the template store via fsnotify.
package fill

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// SyncDir mirrors *.html files in dir into the template store and blocks,
// following file events until ctx is cancelled. Each file is stored under
// its base name without the extension ("card.html" → "card"); removals and
// renames delete the template. Files that fail validation are logged and
// skipped, never fatal — an editor mid-save writes half files.
func (f *Filler) SyncDir(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fill: watch %s: %w", dir, err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("fill: watch %s: %w", dir, err)
	}

	// Initial sweep so templates present before startup are stored too.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("fill: read %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			f.syncFile(ctx, filepath.Join(dir, e.Name()))
		}
	}
	f.logger.Info("fill: templates dir sync started", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if templateName(event.Name) == "" {
				continue
			}
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				f.syncFile(ctx, event.Name)
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				name := templateName(event.Name)
				if err := f.DeleteTemplate(ctx, name); err == nil {
					f.logger.Info("fill: template removed with file", "template", name)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("fill: dir watch error", "dir", dir, "error", err)
		}
	}
}

// syncFile upserts one *.html file as a template.
func (f *Filler) syncFile(ctx context.Context, path string) {
	name := templateName(path)
	if name == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		f.logger.Warn("fill: read template file failed", "path", path, "error", err)
		return
	}
	if err := f.PutTemplate(ctx, name, string(data)); err != nil {
		f.logger.Warn("fill: template file rejected", "path", path, "error", err)
		return
	}
	f.logger.Info("fill: template synced from file", "template", name, "bytes", len(data))
}

// templateName maps a path to its template name, or "" for non-*.html
// files and dotfiles.
func templateName(path string) string {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, ".html") {
		return ""
	}
	return strings.TrimSuffix(base, ".html")
}
