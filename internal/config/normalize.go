package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

func (c *Config) normalize() error {
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeQueue()
	return c.normalizeLogging()
}

func (c *Config) normalizeStore() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = defaultDriver
	}
	c.Store.DSN = strings.TrimSpace(c.Store.DSN)
	if c.Store.DSN == "" {
		if value, ok := os.LookupEnv("PQUEUE_DSN"); ok {
			c.Store.DSN = strings.TrimSpace(value)
		}
	}
	c.Store.Path = strings.TrimSpace(c.Store.Path)
	if c.Store.Path == "" {
		c.Store.Path = defaultDatabasePath
	}
	if c.Store.Path != memoryPath {
		var err error
		if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
			return fmt.Errorf("store.path: %w", err)
		}
	}
	c.Store.Table = strings.TrimSpace(c.Store.Table)
	if c.Store.Table == "" {
		c.Store.Table = defaultTable
	}
	c.Store.Username = strings.TrimSpace(c.Store.Username)
	if c.Store.Password == "" {
		if value, ok := os.LookupEnv("PQUEUE_PASSWORD"); ok {
			c.Store.Password = value
		}
	}
	if c.Store.BusyTimeoutMS == 0 {
		c.Store.BusyTimeoutMS = defaultBusyTimeoutMS
	}
	return nil
}

// normalizeQueue NFC-normalizes the queue id so visually identical ids
// typed on different systems select the same rows.
func (c *Config) normalizeQueue() {
	id := strings.TrimSpace(c.Queue.ID)
	if id == "" {
		if value, ok := os.LookupEnv("PQUEUE_QUEUE"); ok {
			id = strings.TrimSpace(value)
		}
	}
	c.Queue.ID = norm.NFC.String(id)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
