package testsupport

import (
	"path/filepath"
	"testing"

	"pqueue/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose database lives in a unique temp
// directory per test. It defaults the queue id to "test" and applies any
// provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Store.Path = filepath.Join(base, "queue.db")
	cfgVal.Queue.ID = "test"
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return builder.cfg
}

// WithQueueID overrides the queue id on the test config.
func WithQueueID(id string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.ID = id
	}
}

// WithCache enables the in-memory mirror on the test config.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.Cache = true
	}
}

// WithMaxSize bounds the queue length on the test config.
func WithMaxSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.MaxSize = n
	}
}

// WithTable overrides the backing table name on the test config.
func WithTable(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Table = name
	}
}

// WithDriver selects the database/sql driver on the test config.
func WithDriver(driver string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Driver = driver
	}
}

// WithDatabasePath points the test config at an existing database file,
// letting several configs share one database.
func WithDatabasePath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Path = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Store.Path)
}
