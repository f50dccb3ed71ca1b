// CLAUDE:SUMMARY Parsed-template cache: name → DOM nodes, evicted on writes and flushed by the watcher.
package fill

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/hazyhaar/domfill/microdata"
)

// templateCache maps template names to their parsed DOM. Entries are the
// pristine parse — renders clone before applying data, so cached nodes are
// never mutated.
type templateCache struct {
	mu      sync.RWMutex
	entries map[string][]*html.Node
}

func newTemplateCache() *templateCache {
	return &templateCache{entries: make(map[string][]*html.Node)}
}

func (c *templateCache) get(name string) ([]*html.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nodes, ok := c.entries[name]
	return nodes, ok
}

func (c *templateCache) put(name string, nodes []*html.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = nodes
}

func (c *templateCache) evict(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// flush drops all entries and reports how many there were.
func (c *templateCache) flush() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string][]*html.Node)
	return n
}

func (c *templateCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// templateNodes resolves a template name to parsed nodes: cache first, then
// the store. A store row that no longer parses is surfaced as an error, not
// cached.
func (f *Filler) templateNodes(ctx context.Context, name string) ([]*html.Node, error) {
	if nodes, ok := f.cache.get(name); ok {
		return nodes, nil
	}

	t, err := f.store.Template(ctx, name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	nodes, err := microdata.ParseFragment(strings.NewReader(t.HTML))
	if err != nil {
		return nil, fmt.Errorf("fill: parse template %q: %w", name, err)
	}
	f.cache.put(name, nodes)
	return nodes, nil
}
