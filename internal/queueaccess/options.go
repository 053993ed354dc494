package queueaccess

import (
	"log/slog"

	"pqueue/internal/config"
	"pqueue/internal/queue"
)

// QueueOptions translates the store and queue sections of cfg into engine
// construction options.
func QueueOptions(cfg *config.Config, logger *slog.Logger) queue.Options {
	return queue.Options{
		Driver: cfg.Store.Driver,
		DSN:    cfg.ConnectionString(),
		Credentials: queue.Credentials{
			Username: cfg.Store.Username,
			Password: cfg.Store.Password,
		},
		ID:          cfg.Queue.ID,
		Table:       cfg.Store.Table,
		Cache:       cfg.Queue.Cache,
		MaxSize:     cfg.Queue.MaxSize,
		BusyTimeout: cfg.BusyTimeout(),
		Logger:      logger,
	}
}

// LockPath returns the advisory lock file guarding the configured database,
// or an empty string when the store has no local file.
func LockPath(cfg *config.Config) string {
	path := cfg.DatabasePath()
	if path == "" {
		return ""
	}
	return path + ".lock"
}
