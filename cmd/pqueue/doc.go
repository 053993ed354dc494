// Package main hosts the pqueue CLI entrypoint and command graph.
//
// The Cobra-based command tree opens the configured queue for one operation
// per invocation: pushing and popping values, peeking and listing without
// removal, clearing, and health reporting. It centralizes configuration
// resolution, logger setup, and locking so subcommands only deal with
// presenting results.
//
// Keep this package lean: queue semantics live in internal/queue and are
// surfaced here through dedicated commands or flags.
package main
