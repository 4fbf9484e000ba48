package host

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
)

// DefaultPluginDir is where plugins are looked for when no directory is
// configured.
const DefaultPluginDir = "./plugins"

// Config is the host configuration.
type Config struct {
	Log       LogConfig `yaml:"log"`
	PluginDir string    `yaml:"plugin_dir"`
	Lockfile  string    `yaml:"lockfile,omitempty"`
	Include   []string  `yaml:"include,omitempty"`

	// Verify rejects libraries that are not pinned in the lockfile.
	Verify bool `yaml:"verify,omitempty"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		PluginDir: DefaultPluginDir,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a YAML config file. Unset fields keep their defaults and
// unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = DefaultPluginDir
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.PluginDir == "" {
		return fmt.Errorf("plugin_dir is required")
	}
	if c.Verify && c.Lockfile == "" {
		return fmt.Errorf("verify requires a lockfile")
	}
	for _, p := range c.Include {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid include pattern %q", p)
		}
	}
	if c.lockfileInPluginDir() {
		return fmt.Errorf("lockfile %s would be discovered as a plugin; move it out of plugin_dir or narrow include", c.Lockfile)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// lockfileInPluginDir reports whether discovery would try to open the
// lockfile, or the temporary file it is written through, as a library.
func (c Config) lockfileInPluginDir() bool {
	if c.Lockfile == "" {
		return false
	}
	lockDir, err := filepath.Abs(filepath.Dir(c.Lockfile))
	if err != nil {
		return false
	}
	pluginDir, err := filepath.Abs(c.PluginDir)
	if err != nil || lockDir != pluginDir {
		return false
	}
	if len(c.Include) == 0 {
		return true
	}
	for _, name := range []string{filepath.Base(c.Lockfile), ".lockfile-0"} {
		for _, p := range c.Include {
			if ok, _ := doublestar.Match(p, name); ok {
				return true
			}
		}
	}
	return false
}
