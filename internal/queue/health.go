package queue

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Health captures diagnostic information about the engine's table and queue.
type Health struct {
	Driver         string
	Table          string
	QueueID        string
	DatabaseOK     bool
	TableExists    bool
	ColumnsPresent []string
	MissingColumns []string
	IntegrityCheck bool
	Rows           int
	Length         int
	Contiguous     bool
	Cached         bool
	MirrorLength   int
	MirrorCoherent bool
	Error          string
}

// Healthy reports whether every check passed.
func (h Health) Healthy() bool {
	return h.DatabaseOK && h.TableExists && len(h.MissingColumns) == 0 &&
		h.IntegrityCheck && h.Contiguous && (!h.Cached || h.MirrorCoherent)
}

// Health inspects the backing table and this queue's rows. Only rows with the
// engine's queue id are counted. A failed check is recorded in the returned
// Health as well as returned as an error.
func (q *Queue) Health(ctx context.Context) (Health, error) {
	health := Health{
		Driver:  q.driver,
		Table:   q.table,
		QueueID: q.id,
		Cached:  q.mirror != nil,
	}
	if q.db == nil {
		health.Error = "queue database connection unavailable"
		return health, wrap(ErrStorage, "health", errors.New(health.Error))
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	fail := func(marker error, operation string, err error) (Health, error) {
		health.Error = err.Error()
		return health, wrap(marker, operation, err)
	}

	if err := q.db.PingContext(connCtx); err != nil {
		return fail(ErrStorage, "ping database", err)
	}
	health.DatabaseOK = true

	exists, err := tableExists(connCtx, q.db, q.table)
	if err != nil {
		return fail(ErrSchema, "check table", err)
	}
	health.TableExists = exists

	if exists {
		columns, err := tableColumns(connCtx, q.db, q.table)
		if err != nil {
			return fail(ErrSchema, "inspect table", err)
		}
		health.ColumnsPresent = columns
		health.MissingColumns = missingColumns(columns)
	}

	var integrity string
	if err := q.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		return fail(ErrStorage, "integrity check", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrity, "ok")

	if !exists || len(health.MissingColumns) > 0 {
		return health, nil
	}

	if health.Rows, err = q.rows.physicalRows(connCtx, q.db, q.id); err != nil {
		return fail(ErrStorage, "count rows", err)
	}
	if health.Length, err = q.rows.countRows(connCtx, q.db, q.id); err != nil {
		return fail(ErrStorage, "count rows", err)
	}
	health.Contiguous = health.Rows == health.Length

	if q.mirror != nil {
		health.MirrorLength = q.mirror.len()
		health.MirrorCoherent = health.MirrorLength == health.Length
	}
	return health, nil
}
