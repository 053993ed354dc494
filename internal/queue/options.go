package queue

import (
	"database/sql"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultTable is the shared table used when Options.Table is empty.
	DefaultTable = "persistent_queue"
	// DefaultDriver is the database/sql driver used when Options.Driver is empty.
	DefaultDriver = DriverSQLite
	// DefaultBusyTimeout is the backend lock wait applied to connections the engine opens.
	DefaultBusyTimeout = 5 * time.Second
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Credentials are substituted into the {username} and {password}
// placeholders of a DSN.
type Credentials struct {
	Username string
	Password string
}

// Options describes engine construction parameters. Either DB or DSN must be
// set, and ID is always required.
type Options struct {
	// DB is a live handle owned by the caller. When set, DSN, Driver,
	// Credentials and BusyTimeout are ignored and Close leaves the handle open.
	DB *sql.DB
	// Driver selects the database/sql driver used to open DSN.
	Driver string
	// DSN is the connection string, used when DB is nil.
	DSN         string
	Credentials Credentials
	// ID is the queue identifier stored in the qkey column.
	ID string
	// Table overrides DefaultTable.
	Table string
	// Cache enables the in-memory mirror for this instance.
	Cache bool
	// MaxSize bounds the queue length; 0 means unbounded.
	MaxSize     int
	BusyTimeout time.Duration
	Logger      *slog.Logger
}

// withDefaults returns a copy of the options with empty fields defaulted and
// string fields trimmed.
func (o Options) withDefaults() Options {
	o.ID = strings.TrimSpace(o.ID)
	o.DSN = strings.TrimSpace(o.DSN)
	o.Table = strings.TrimSpace(o.Table)
	if o.Table == "" {
		o.Table = DefaultTable
	}
	o.Driver = strings.ToLower(strings.TrimSpace(o.Driver))
	if o.Driver == "" {
		o.Driver = DefaultDriver
	}
	if o.BusyTimeout <= 0 {
		o.BusyTimeout = DefaultBusyTimeout
	}
	return o
}

// validate reports the first construction problem as an ErrConfig error.
func (o Options) validate() error {
	if o.ID == "" {
		return configError("queue id is required")
	}
	if len(o.ID) > 255 {
		return configError("queue id exceeds 255 bytes")
	}
	if o.DB == nil && o.DSN == "" {
		return configError("either a database handle or a dsn is required")
	}
	if o.DB == nil && !knownDriver(o.Driver) {
		return configError("unsupported driver %q", o.Driver)
	}
	if !tableNamePattern.MatchString(o.Table) {
		return configError("invalid table name %q", o.Table)
	}
	if o.MaxSize < 0 {
		return configError("max size must not be negative (got %d)", o.MaxSize)
	}
	return nil
}

// connectionString expands credential placeholders in the DSN.
func (o Options) connectionString() string {
	if o.Credentials.Username == "" && o.Credentials.Password == "" {
		return o.DSN
	}
	replacer := strings.NewReplacer(
		"{username}", url.QueryEscape(o.Credentials.Username),
		"{password}", url.QueryEscape(o.Credentials.Password),
	)
	return replacer.Replace(o.DSN)
}
