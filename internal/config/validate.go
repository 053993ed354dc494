package config

import (
	"errors"
	"fmt"
	"regexp"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case driverSQLite, driverSQLite3:
	default:
		return fmt.Errorf("store.driver: unsupported value %q (use %q or %q)", c.Store.Driver, driverSQLite, driverSQLite3)
	}
	if c.ConnectionString() == "" {
		return errors.New("store.path or store.dsn must be set")
	}
	if !tableNamePattern.MatchString(c.Store.Table) {
		return fmt.Errorf("store.table: %q is not a valid table name", c.Store.Table)
	}
	if c.Store.BusyTimeoutMS <= 0 {
		return errors.New("store.busy_timeout_ms must be positive")
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.ID == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/pqueue/config.toml"
		}
		return fmt.Errorf("queue.id is required. Pass --queue, set PQUEUE_QUEUE, or edit %s (create with 'pqueue config init')", defaultPath)
	}
	if len(c.Queue.ID) > maxQueueIDBytes {
		return fmt.Errorf("queue.id must be at most %d bytes", maxQueueIDBytes)
	}
	if c.Queue.MaxSize < 0 {
		return errors.New("queue.max_size must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
}
