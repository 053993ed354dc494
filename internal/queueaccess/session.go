package queueaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"

	"pqueue/internal/config"
	"pqueue/internal/logging"
	"pqueue/internal/queue"
)

// ErrLocked is returned when another process holds the database lock.
var ErrLocked = errors.New("queue database is locked by another pqueue process")

// Session pairs an open engine with the advisory lock taken for it.
type Session struct {
	Queue *queue.Queue
	lock  *flock.Flock
	log   *slog.Logger
}

// Open creates the configured directories, takes the database lock when
// exclusive is set, and opens the queue engine. The lock is advisory; it
// only serializes pqueue processes that also ask for it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, exclusive bool) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("open queue: configuration unavailable")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	session := &Session{log: logger}
	if lockPath := LockPath(cfg); exclusive && lockPath != "" {
		lock := flock.New(lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w (%s)", ErrLocked, lockPath)
		}
		session.lock = lock
		logger.Debug("queue lock acquired", logging.String("lock", lockPath))
	}

	q, err := queue.Open(ctx, QueueOptions(cfg, logger))
	if err != nil {
		session.unlock()
		return nil, err
	}
	session.Queue = q
	return session, nil
}

// Close closes the engine and releases the lock.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.Queue != nil {
		err = s.Queue.Close()
		s.Queue = nil
	}
	s.unlock()
	return err
}

func (s *Session) unlock() {
	if s.lock == nil {
		return
	}
	if err := s.lock.Unlock(); err != nil {
		s.log.Warn("failed to release queue lock", logging.Error(err))
	}
	s.lock = nil
}
