package queue

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pqueue/internal/logging"
)

// Queue is a FIFO queue persisted as rows of a shared table, partitioned by
// its queue id. When caching is enabled the instance keeps a private mirror
// of the values that serves all reads; the mirror is a snapshot taken at Open
// (or Reload) and advanced only by operations performed through this
// instance.
//
// A Queue is not safe for concurrent use.
type Queue struct {
	db      *sql.DB
	ownsDB  bool
	driver  string
	id      string
	table   string
	maxSize int
	rows    rowStore
	mirror  *mirror
	logger  *slog.Logger
}

// Open validates opts, connects when no handle is supplied, ensures the
// table exists and, when caching, loads the mirror.
func Open(ctx context.Context, opts Options) (*Queue, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	db := opts.DB
	owns := false
	if db == nil {
		var err error
		db, err = openDB(ctx, opts)
		if err != nil {
			return nil, err
		}
		owns = true
	}

	logger := logging.ForQueue(opts.Logger, opts.ID, opts.Table, uuid.NewString())

	q := &Queue{
		db:      db,
		ownsDB:  owns,
		driver:  opts.Driver,
		id:      opts.ID,
		table:   opts.Table,
		maxSize: opts.MaxSize,
		rows:    newRowStore(opts.Table),
		logger:  logger,
	}

	created, err := ensureSchema(ctx, db, opts.Table)
	if err != nil {
		q.closeOwned()
		return nil, err
	}
	if created {
		logger.Info("queue table created", logging.String(logging.FieldEventType, "queue_table_created"))
	}

	if opts.Cache {
		values, err := q.rows.readRange(ctx, db, q.id, 0, 0)
		if err != nil {
			q.closeOwned()
			return nil, wrap(ErrStorage, "load mirror", err)
		}
		q.mirror = newMirror(values)
	}

	logger.Debug("queue opened",
		logging.Bool("cache", opts.Cache),
		logging.Int("max_size", opts.MaxSize),
		logging.Bool("owns_connection", owns),
	)
	return q, nil
}

// ID returns the queue identifier stored in the qkey column.
func (q *Queue) ID() string { return q.id }

// Table returns the backing table name.
func (q *Queue) Table() string { return q.table }

// Cached reports whether reads are served from the in-memory mirror.
func (q *Queue) Cached() bool { return q.mirror != nil }

// MaxSize returns the configured length bound, 0 when unbounded.
func (q *Queue) MaxSize() int { return q.maxSize }

// Append adds values to the tail of the queue in order. When MaxSize is set
// and the queue would grow past it, the oldest values are evicted in the same
// transaction.
func (q *Queue) Append(ctx context.Context, values ...[]byte) error {
	if len(values) == 0 {
		return nil
	}
	start := time.Now()
	evicted := 0
	err := q.withTx(ctx, "append", func(tx *sql.Tx) error {
		n, err := q.rows.countRows(ctx, tx, q.id)
		if err != nil {
			return err
		}
		if err := q.rows.insertBatch(ctx, tx, q.id, n, values); err != nil {
			return err
		}
		if q.maxSize > 0 && n+len(values) > q.maxSize {
			evicted = n + len(values) - q.maxSize
			return q.rows.truncateFront(ctx, tx, q.id, evicted)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if q.mirror != nil {
		q.mirror.push(values...)
		q.mirror.dropFront(evicted)
		if q.maxSize > 0 {
			q.mirror.dropFront(q.mirror.len() - q.maxSize)
		}
	}
	q.logger.Debug("queue append",
		logging.Int("count", len(values)),
		logging.Int("evicted", evicted),
		logging.Duration("duration", time.Since(start)),
	)
	return nil
}

// Remove takes the oldest value off the queue. ok is false when the queue is
// empty.
func (q *Queue) Remove(ctx context.Context) (value []byte, ok bool, err error) {
	removed, err := q.RemoveN(ctx, 1)
	if err != nil || len(removed) == 0 {
		return nil, false, err
	}
	return removed[0], true, nil
}

// RemoveN takes up to n of the oldest values off the queue and returns them
// oldest first. Fewer values are returned when the queue is shorter than n.
func (q *Queue) RemoveN(ctx context.Context, n int) ([][]byte, error) {
	if n <= 0 {
		return [][]byte{}, nil
	}
	start := time.Now()
	var removed [][]byte
	err := q.withTx(ctx, "remove", func(tx *sql.Tx) error {
		values, err := q.rows.readRange(ctx, tx, q.id, 0, n)
		if err != nil {
			return err
		}
		removed = values
		return q.rows.truncateFront(ctx, tx, q.id, len(values))
	})
	if err != nil {
		return nil, err
	}

	if q.mirror != nil {
		popped := q.mirror.popFront(len(removed))
		if !equalValues(popped, removed) {
			logging.WarnWithContext(q.logger, "queue mirror diverged from stored rows", "queue_mirror_diverged",
				logging.Int("removed", len(removed)),
				logging.Int("mirror_popped", len(popped)),
				logging.String(logging.FieldErrorHint, "another writer modified this queue; call Reload or disable caching"),
				logging.String(logging.FieldImpact, "cached reads may not match stored rows"),
			)
		}
	}
	q.logger.Debug("queue remove",
		logging.Int("requested", n),
		logging.Int("removed", len(removed)),
		logging.Duration("duration", time.Since(start)),
	)
	return removed, nil
}

// ReadAll returns every value oldest first without modifying the queue.
func (q *Queue) ReadAll(ctx context.Context) ([][]byte, error) {
	if q.mirror != nil {
		return q.mirror.slice(0, 0), nil
	}
	values, err := q.rows.readRange(ctx, q.db, q.id, 0, 0)
	if err != nil {
		return nil, wrap(ErrStorage, "read all", err)
	}
	return values, nil
}

// ReadRange returns up to count values starting at position offset. Offsets
// outside the queue yield an empty result.
func (q *Queue) ReadRange(ctx context.Context, offset, count int) ([][]byte, error) {
	if offset < 0 || count <= 0 {
		return [][]byte{}, nil
	}
	if q.mirror != nil {
		return q.mirror.slice(offset, count), nil
	}
	values, err := q.rows.readRange(ctx, q.db, q.id, offset, count)
	if err != nil {
		return nil, wrap(ErrStorage, fmt.Sprintf("read range %d+%d", offset, count), err)
	}
	return values, nil
}

// At returns the value at position offset without removing it.
func (q *Queue) At(ctx context.Context, offset int) ([]byte, bool, error) {
	values, err := q.ReadRange(ctx, offset, 1)
	if err != nil || len(values) == 0 {
		return nil, false, err
	}
	return values[0], true, nil
}

// Len returns the number of values in the queue.
func (q *Queue) Len(ctx context.Context) (int, error) {
	if q.mirror != nil {
		return q.mirror.len(), nil
	}
	n, err := q.rows.countRows(ctx, q.db, q.id)
	if err != nil {
		return 0, wrap(ErrStorage, "length", err)
	}
	return n, nil
}

// Clear deletes every value of the queue. Other queues in the table are not
// affected.
func (q *Queue) Clear(ctx context.Context) error {
	var deleted int64
	err := q.withTx(ctx, "clear", func(tx *sql.Tx) error {
		n, err := q.rows.deleteAllRows(ctx, tx, q.id)
		deleted = n
		return err
	})
	if err != nil {
		return err
	}
	if q.mirror != nil {
		q.mirror.reset(nil)
	}
	q.logger.Debug("queue cleared", logging.Int64("deleted", deleted))
	return nil
}

// TableExists reports whether the backing table is present.
func (q *Queue) TableExists(ctx context.Context) (bool, error) {
	exists, err := tableExists(ctx, q.db, q.table)
	if err != nil {
		return false, wrap(ErrSchema, "check table "+q.table, err)
	}
	return exists, nil
}

// Reload replaces the mirror with the stored values. It is a no-op for
// instances without caching.
func (q *Queue) Reload(ctx context.Context) error {
	if q.mirror == nil {
		return nil
	}
	values, err := q.rows.readRange(ctx, q.db, q.id, 0, 0)
	if err != nil {
		return wrap(ErrStorage, "reload mirror", err)
	}
	q.mirror.reset(values)
	q.logger.Debug("queue mirror reloaded", logging.Int("count", len(values)))
	return nil
}

// Close releases the connection when Open created it. Handles supplied
// through Options.DB are left open.
func (q *Queue) Close() error {
	if q == nil || !q.ownsDB || q.db == nil {
		return nil
	}
	err := q.db.Close()
	q.db = nil
	return err
}

func (q *Queue) closeOwned() {
	if q.ownsDB && q.db != nil {
		_ = q.db.Close()
		q.db = nil
	}
}

// withTx runs fn in a transaction. The rollback is deferred before fn runs,
// so every failure path rolls back; only a nil result commits.
func (q *Queue) withTx(ctx context.Context, operation string, fn func(tx *sql.Tx) error) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(ErrStorage, operation+": begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return wrap(ErrStorage, operation, err)
	}
	if err := tx.Commit(); err != nil {
		return wrap(ErrStorage, operation+": commit", err)
	}
	return nil
}
