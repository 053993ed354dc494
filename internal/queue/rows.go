package queue

import (
	"context"
	"database/sql"
	"fmt"
	"math"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowStore holds the statements for one table. Every statement is scoped by
// qkey; none of them touches rows belonging to another queue.
type rowStore struct {
	selectFrom  string
	selectRange string
	count       string
	rowCount    string
	insert      string
	deleteBelow string
	shiftOut    string
	shiftIn     string
	deleteAll   string
}

func newRowStore(table string) rowStore {
	t := quoteIdent(table)
	return rowStore{
		selectFrom:  fmt.Sprintf("SELECT value FROM %s WHERE qkey = ? AND idx >= ? ORDER BY idx", t),
		selectRange: fmt.Sprintf("SELECT value FROM %s WHERE qkey = ? AND idx >= ? AND idx < ? ORDER BY idx", t),
		count:       fmt.Sprintf("SELECT COALESCE(MAX(idx) + 1, 0) FROM %s WHERE qkey = ?", t),
		rowCount:    fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE qkey = ?", t),
		insert:      fmt.Sprintf("INSERT INTO %s (qkey, idx, value) VALUES (?, ?, ?)", t),
		deleteBelow: fmt.Sprintf("DELETE FROM %s WHERE qkey = ? AND idx < ?", t),
		// Remaining rows first move into a disjoint negative range, then fold
		// back to 0..n-1. Neither step can produce a duplicate (qkey, idx)
		// regardless of the order the backend visits rows in.
		shiftOut:  fmt.Sprintf("UPDATE %s SET idx = ? - 1 - idx WHERE qkey = ? AND idx >= ?", t),
		shiftIn:   fmt.Sprintf("UPDATE %s SET idx = -1 - idx WHERE qkey = ? AND idx < 0", t),
		deleteAll: fmt.Sprintf("DELETE FROM %s WHERE qkey = ?", t),
	}
}

// readRange returns values with idx >= offset, limited to limit values when
// limit is positive, in ascending index order. A limit reaching past
// math.MaxInt reads through the end.
func (s rowStore) readRange(ctx context.Context, db dbtx, qkey string, offset, limit int) ([][]byte, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 && limit <= math.MaxInt-offset {
		rows, err = db.QueryContext(ctx, s.selectRange, qkey, offset, offset+limit)
	} else {
		rows, err = db.QueryContext(ctx, s.selectFrom, qkey, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("select values: %w", err)
	}
	defer rows.Close()

	values := make([][]byte, 0)
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate values: %w", err)
	}
	return values, nil
}

// countRows derives the queue length from the highest index rather than
// counting rows.
func (s rowStore) countRows(ctx context.Context, db dbtx, qkey string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, s.count, qkey).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// physicalRows counts the stored rows for qkey. Health compares it with
// countRows to detect gaps.
func (s rowStore) physicalRows(ctx context.Context, db dbtx, qkey string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, s.rowCount, qkey).Scan(&n); err != nil {
		return 0, fmt.Errorf("count physical rows: %w", err)
	}
	return n, nil
}

func (s rowStore) insertBatch(ctx context.Context, db dbtx, qkey string, start int, values [][]byte) error {
	stmt, err := db.PrepareContext(ctx, s.insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, value := range values {
		var arg any // nil binds as NULL
		if value != nil {
			arg = value
		}
		if _, err := stmt.ExecContext(ctx, qkey, start+i, arg); err != nil {
			return fmt.Errorf("insert index %d: %w", start+i, err)
		}
	}
	return nil
}

func (s rowStore) deleteBelowIndex(ctx context.Context, db dbtx, qkey string, threshold int) error {
	if _, err := db.ExecContext(ctx, s.deleteBelow, qkey, threshold); err != nil {
		return fmt.Errorf("delete below %d: %w", threshold, err)
	}
	return nil
}

// shiftIndices decrements every remaining index by `by`. It must run in the
// same transaction as the preceding deleteBelowIndex(by).
func (s rowStore) shiftIndices(ctx context.Context, db dbtx, qkey string, by int) error {
	if by <= 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, s.shiftOut, by, qkey, by); err != nil {
		return fmt.Errorf("shift indices by %d: %w", by, err)
	}
	if _, err := db.ExecContext(ctx, s.shiftIn, qkey); err != nil {
		return fmt.Errorf("shift indices by %d: %w", by, err)
	}
	return nil
}

// truncateFront removes the oldest `by` rows and reindexes the rest.
func (s rowStore) truncateFront(ctx context.Context, db dbtx, qkey string, by int) error {
	if by <= 0 {
		return nil
	}
	if err := s.deleteBelowIndex(ctx, db, qkey, by); err != nil {
		return err
	}
	return s.shiftIndices(ctx, db, qkey, by)
}

func (s rowStore) deleteAllRows(ctx context.Context, db dbtx, qkey string) (int64, error) {
	res, err := db.ExecContext(ctx, s.deleteAll, qkey)
	if err != nil {
		return 0, fmt.Errorf("delete all: %w", err)
	}
	return res.RowsAffected()
}
