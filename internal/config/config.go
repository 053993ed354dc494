package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Store contains the database connection settings.
type Store struct {
	Driver        string `toml:"driver"`
	Path          string `toml:"path"`
	DSN           string `toml:"dsn"`
	Table         string `toml:"table"`
	Username      string `toml:"username"`
	Password      string `toml:"password"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms"`
}

// Queue selects the queue and its engine behaviour.
type Queue struct {
	ID      string `toml:"id"`
	Cache   bool   `toml:"cache"`
	MaxSize int    `toml:"max_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for pqueue.
//
// Configuration sections:
//   - Store: database driver, location and credentials
//   - Queue: queue id, caching, and the length bound
//   - Logging: log format, level, and optional log directory
type Config struct {
	Store   Store   `toml:"store"`
	Queue   Queue   `toml:"queue"`
	Logging Logging `toml:"logging"`
}

// Override adjusts a decoded configuration before it is normalized and
// validated. Command-line flags are applied this way.
type Override func(*Config)

// WithQueueID replaces queue.id when id is not blank.
func WithQueueID(id string) Override {
	return func(c *Config) {
		if strings.TrimSpace(id) != "" {
			c.Queue.ID = id
		}
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pqueue/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file is not an error; defaults and
// environment fallbacks are used instead.
func Load(path string, overrides ...Override) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	for _, override := range overrides {
		if override != nil {
			override(&cfg)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pqueue.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ConnectionString returns store.dsn, or store.path when no DSN is configured.
func (c *Config) ConnectionString() string {
	if c.Store.DSN != "" {
		return c.Store.DSN
	}
	return c.Store.Path
}

// DatabasePath returns the database file on disk, or an empty string when the
// store is in memory or addressed through a DSN.
func (c *Config) DatabasePath() string {
	if c.Store.DSN != "" || c.Store.Path == memoryPath {
		return ""
	}
	return c.Store.Path
}

// BusyTimeout returns store.busy_timeout_ms as a duration.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.Store.BusyTimeoutMS) * time.Millisecond
}

// EnsureDirectories creates the database and log directories.
func (c *Config) EnsureDirectories() error {
	dirs := make([]string, 0, 2)
	if path := c.DatabasePath(); path != "" {
		dirs = append(dirs, filepath.Dir(path))
	}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
