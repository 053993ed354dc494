package testsupport

import (
	"context"
	"testing"

	"pqueue/internal/config"
	"pqueue/internal/logging"
	"pqueue/internal/queue"
	"pqueue/internal/queueaccess"
)

// MustOpen opens a queue engine for cfg and registers cleanup.
func MustOpen(t testing.TB, cfg *config.Config) *queue.Queue {
	t.Helper()

	q, err := queue.Open(context.Background(), queueaccess.QueueOptions(cfg, logging.NewNop()))
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = q.Close()
	})
	return q
}

// MustAppend appends string values to q.
func MustAppend(t testing.TB, q *queue.Queue, values ...string) {
	t.Helper()

	if err := q.Append(context.Background(), Bytes(values...)...); err != nil {
		t.Fatalf("Append: %v", err)
	}
}

// MustReadAll returns every value of q as strings.
func MustReadAll(t testing.TB, q *queue.Queue) []string {
	t.Helper()

	values, err := q.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return Strings(values)
}

// Bytes converts string values into queue payloads.
func Bytes(values ...string) [][]byte {
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out
}

// Strings converts queue payloads into strings.
func Strings(values [][]byte) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
