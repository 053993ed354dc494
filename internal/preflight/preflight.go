package preflight

import (
	"path/filepath"

	"pqueue/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the free space below which the database volume check fails.
const minFreeBytes = 64 << 20

// RunAll executes the filesystem checks that apply to cfg. In-memory and
// DSN-addressed stores have no local file to check.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if path := cfg.DatabasePath(); path != "" {
		dir := filepath.Dir(path)
		results = append(results,
			CheckDirectoryAccess("Database directory", dir),
			CheckDatabaseFile("Database file", path),
			CheckFreeSpace("Database volume", dir, minFreeBytes),
		)
	}

	if cfg.Logging.Dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}

	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
