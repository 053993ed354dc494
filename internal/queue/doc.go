// Package queue implements a FIFO queue persisted in a SQLite table.
//
// Many queues share one table, each partitioned by its queue id (the qkey
// column). For a queue of length n the stored indices are always exactly
// 0..n-1 in insertion order: Append writes at the tail, Remove and max-size
// eviction delete from the head and shift the remaining indices down inside
// the same transaction.
//
// Every mutating call runs as a single transaction and either commits fully
// or rolls back. The engine does not retry; a conflicting writer surfaces as
// an ErrStorage error.
//
// With Options.Cache set, an instance keeps a private in-memory copy of its
// queue that serves ReadAll, ReadRange, At and Len. The copy is loaded once at
// Open and only reflects writes made through the same instance; call Reload
// to pick up changes from other writers.
package queue
