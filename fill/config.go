// CLAUDE:SUMMARY Configuration struct, defaults, and YAML loader for the domfill service.
package fill

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all domfill configuration.
type Config struct {
	// DBPath is the SQLite database holding templates and the render log.
	DBPath string `yaml:"db_path"`

	// TemplatesDir, when set, is kept in sync with the template store:
	// every *.html file in it is upserted under its base name, and file
	// changes follow into the store while the service runs.
	TemplatesDir string `yaml:"templates_dir"`

	// Sanitize controls whether rendered output passes through the
	// bluemonday policy. Unset means true.
	Sanitize *bool `yaml:"sanitize"`

	// StockHooks controls whether renders get the stock formatters
	// (humanized times, link hosts, grouped numbers). Unset means true.
	StockHooks *bool `yaml:"stock_hooks"`

	// TimeLayout is the fallback Go layout for <time> display text when
	// the element declares no data-format. Empty means the hooks default.
	TimeLayout string `yaml:"time_layout"`

	// MaxDataBytes caps the size of one render's JSON data.
	MaxDataBytes int64 `yaml:"max_data_bytes"`

	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig tunes the parsed-template cache watcher.
type CacheConfig struct {
	// PollInterval is how often the store is checked for out-of-process
	// template writes.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Debounce is the quiet period after a detected change before the
	// cache flushes.
	Debounce time.Duration `yaml:"debounce"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "domfill.db"
	}
	if c.MaxDataBytes <= 0 {
		c.MaxDataBytes = 1 << 20
	}
	if c.Cache.PollInterval <= 0 {
		c.Cache.PollInterval = time.Second
	}
	if c.Cache.Debounce < 0 {
		c.Cache.Debounce = 0
	}
}

func (c *Config) sanitizeEnabled() bool {
	return c.Sanitize == nil || *c.Sanitize
}

func (c *Config) stockHooksEnabled() bool {
	return c.StockHooks == nil || *c.StockHooks
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("fill: parse config %s: %w", path, err)
	}
	return cfg, nil
}
