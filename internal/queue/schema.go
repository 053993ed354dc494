package queue

import (
	"context"
	"fmt"
	"strings"
)

const tableDDL = `CREATE TABLE IF NOT EXISTS %s (
  qkey  VARCHAR(255) NOT NULL,
  idx   INTEGER UNSIGNED NOT NULL,
  value BLOB,
  PRIMARY KEY (qkey, idx)
)`

// requiredColumns lists the columns every engine statement references.
var requiredColumns = []string{"qkey", "idx", "value"}

// quoteIdent quotes an identifier already validated against tableNamePattern.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// tableExists matches name case-insensitively, as SQLite resolves identifiers.
func tableExists(ctx context.Context, db dbtx, name string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE",
		name,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func tableColumns(ctx context.Context, db dbtx, name string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(name)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid     int
			column  string
			typeStr string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &column, &typeStr, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		columns = append(columns, strings.ToLower(column))
	}
	return columns, rows.Err()
}

func missingColumns(present []string) []string {
	seen := make(map[string]struct{}, len(present))
	for _, col := range present {
		seen[col] = struct{}{}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := seen[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// ensureSchema creates the shared table when it is absent and otherwise
// verifies that it carries the columns the engine needs. Safe to call on
// every construction.
func ensureSchema(ctx context.Context, db dbtx, name string) (created bool, err error) {
	exists, err := tableExists(ctx, db, name)
	if err != nil {
		return false, wrap(ErrSchema, "check table "+name, err)
	}
	if !exists {
		if _, err := db.ExecContext(ctx, fmt.Sprintf(tableDDL, quoteIdent(name))); err != nil {
			return false, wrap(ErrSchema, "create table "+name, err)
		}
		return true, nil
	}

	columns, err := tableColumns(ctx, db, name)
	if err != nil {
		return false, wrap(ErrSchema, "inspect table "+name, err)
	}
	if missing := missingColumns(columns); len(missing) > 0 {
		return false, wrap(ErrSchema, fmt.Sprintf("table %s is missing columns: %s", name, strings.Join(missing, ", ")), nil)
	}
	return false, nil
}
