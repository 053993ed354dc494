// Package preflight provides readiness checks for the filesystem paths a
// pqueue store depends on.
//
// The CLI "pqueue health" command runs RunAll next to the engine's own
// database health report. Stores addressed through a DSN or held in memory
// skip the file checks.
package preflight
