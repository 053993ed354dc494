package queue_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"pqueue/internal/queue"
	"pqueue/internal/testsupport"
)

// openSharedDB opens a caller-owned handle on a fresh database file.
func openSharedDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open(queue.DriverSQLite, filepath.Join(t.TempDir(), "shared.db"))
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustOpenOnDB(t *testing.T, db *sql.DB, id string, mutate ...func(*queue.Options)) *queue.Queue {
	t.Helper()

	opts := queue.Options{DB: db, ID: id}
	for _, m := range mutate {
		m(&opts)
	}
	q, err := queue.Open(context.Background(), opts)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func withCache(o *queue.Options) { o.Cache = true }

// storedIndices returns the idx column for id in ascending order.
func storedIndices(t *testing.T, db *sql.DB, table, id string) []int {
	t.Helper()

	rows, err := db.Query(fmt.Sprintf(`SELECT idx FROM %q WHERE qkey = ? ORDER BY idx`, table), id)
	if err != nil {
		t.Fatalf("select indices: %v", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			t.Fatalf("scan index: %v", err)
		}
		out = append(out, idx)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate indices: %v", err)
	}
	return out
}

func requireContiguous(t *testing.T, db *sql.DB, q *queue.Queue) {
	t.Helper()

	indices := storedIndices(t, db, q.Table(), q.ID())
	for i, idx := range indices {
		if idx != i {
			t.Fatalf("indices not contiguous: %v", indices)
		}
	}
	n, err := q.Len(context.Background())
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != len(indices) {
		t.Fatalf("Len = %d, stored rows = %d", n, len(indices))
	}
}

func requireValues(t *testing.T, q *queue.Queue, want ...string) {
	t.Helper()

	got := testsupport.MustReadAll(t, q)
	if len(want) == 0 {
		want = []string{}
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadAll = %q, want %q", got, want)
	}
}

func TestExampleScenario(t *testing.T) {
	for _, cached := range []bool{false, true} {
		t.Run("cache="+strconv.FormatBool(cached), func(t *testing.T) {
			ctx := context.Background()
			db := openSharedDB(t)
			opts := []func(*queue.Options){}
			if cached {
				opts = append(opts, withCache)
			}
			q := queue.NewTyped[any](mustOpenOnDB(t, db, "example", opts...), nil)

			if err := q.Append(ctx, "a", "b", "c", "lol", "dongs"); err != nil {
				t.Fatalf("Append: %v", err)
			}
			all, err := q.ReadAll(ctx)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if !reflect.DeepEqual(all, []any{"a", "b", "c", "lol", "dongs"}) {
				t.Fatalf("ReadAll = %v", all)
			}

			first, ok, err := q.Remove(ctx)
			if err != nil || !ok || first != "a" {
				t.Fatalf("Remove = %v, %v, %v; want a", first, ok, err)
			}

			if err := q.Append(ctx, 1, 2, 3); err != nil {
				t.Fatalf("Append: %v", err)
			}
			if n, err := q.Len(ctx); err != nil || n != 7 {
				t.Fatalf("Len = %d, %v; want 7", n, err)
			}

			three, err := q.RemoveN(ctx, 3)
			if err != nil {
				t.Fatalf("RemoveN(3): %v", err)
			}
			if !reflect.DeepEqual(three, []any{"b", "c", "lol"}) {
				t.Fatalf("RemoveN(3) = %v", three)
			}

			four, err := q.RemoveN(ctx, 4)
			if err != nil {
				t.Fatalf("RemoveN(4): %v", err)
			}
			if !reflect.DeepEqual(four, []any{"dongs", float64(1), float64(2), float64(3)}) {
				t.Fatalf("RemoveN(4) = %v", four)
			}

			all, err = q.ReadAll(ctx)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if len(all) != 0 {
				t.Fatalf("expected empty queue, got %v", all)
			}
			requireContiguous(t, db, q.Queue())
		})
	}
}

func TestMaxSizeEviction(t *testing.T) {
	for _, cached := range []bool{false, true} {
		t.Run("cache="+strconv.FormatBool(cached), func(t *testing.T) {
			ctx := context.Background()
			db := openSharedDB(t)
			q := mustOpenOnDB(t, db, "bounded", func(o *queue.Options) {
				o.MaxSize = 15
				o.Cache = cached
			})

			testsupport.MustAppend(t, q, "stale")
			if err := q.Clear(ctx); err != nil {
				t.Fatalf("Clear: %v", err)
			}

			values := make([]string, 0, 20)
			for i := 1; i <= 20; i++ {
				values = append(values, strconv.Itoa(i))
			}
			testsupport.MustAppend(t, q, values...)

			if n, err := q.Len(ctx); err != nil || n != 15 {
				t.Fatalf("Len = %d, %v; want 15", n, err)
			}
			requireValues(t, q, values[5:]...)
			requireContiguous(t, db, q)

			// One at a time past the bound keeps only the newest values.
			testsupport.MustAppend(t, q, "21")
			testsupport.MustAppend(t, q, "22")
			want := append(append([]string{}, values[7:]...), "21", "22")
			requireValues(t, q, want...)
			requireContiguous(t, db, q)
		})
	}
}

func TestIndexContiguityAcrossOperations(t *testing.T) {
	ctx := context.Background()
	db := openSharedDB(t)
	q := mustOpenOnDB(t, db, "contiguous")

	var model []string
	next := 0
	push := func(n int) {
		batch := make([]string, n)
		for i := range batch {
			batch[i] = "v" + strconv.Itoa(next)
			next++
		}
		testsupport.MustAppend(t, q, batch...)
		model = append(model, batch...)
	}
	pop := func(n int) {
		got, err := q.RemoveN(ctx, n)
		if err != nil {
			t.Fatalf("RemoveN(%d): %v", n, err)
		}
		k := n
		if k > len(model) {
			k = len(model)
		}
		if want := model[:k]; !reflect.DeepEqual(testsupport.Strings(got), want) {
			t.Fatalf("RemoveN(%d) = %q, want %q", n, testsupport.Strings(got), want)
		}
		model = model[k:]
	}

	steps := []struct {
		push, pop int
	}{
		{5, 0}, {0, 2}, {3, 1}, {10, 7}, {0, 20}, {1, 0}, {4, 4}, {8, 3}, {2, 1},
	}
	for _, step := range steps {
		if step.push > 0 {
			push(step.push)
		}
		if step.pop > 0 {
			pop(step.pop)
		}
		requireContiguous(t, db, q)
		requireValues(t, q, model...)
	}
}

func TestRemoveSemantics(t *testing.T) {
	ctx := context.Background()
	q := testsupport.MustOpen(t, testsupport.NewConfig(t))

	value, ok, err := q.Remove(ctx)
	if err != nil {
		t.Fatalf("Remove on empty queue: %v", err)
	}
	if ok || value != nil {
		t.Fatalf("expected empty result, got %q ok=%v", value, ok)
	}

	removed, err := q.RemoveN(ctx, 3)
	if err != nil {
		t.Fatalf("RemoveN on empty queue: %v", err)
	}
	if len(removed) != 0 {
		t.Fatalf("expected no values, got %q", removed)
	}

	testsupport.MustAppend(t, q, "x", "y")
	removed, err = q.RemoveN(ctx, 0)
	if err != nil || len(removed) != 0 {
		t.Fatalf("RemoveN(0) = %q, %v", removed, err)
	}
	removed, err = q.RemoveN(ctx, -2)
	if err != nil || len(removed) != 0 {
		t.Fatalf("RemoveN(-2) = %q, %v", removed, err)
	}

	removed, err = q.RemoveN(ctx, 5)
	if err != nil {
		t.Fatalf("RemoveN(5): %v", err)
	}
	if got := testsupport.Strings(removed); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("RemoveN(5) = %q", got)
	}
	requireValues(t, q)
}

func TestReadRangeAndAt(t *testing.T) {
	for _, cached := range []bool{false, true} {
		t.Run("cache="+strconv.FormatBool(cached), func(t *testing.T) {
			ctx := context.Background()
			opts := []testsupport.ConfigOption{}
			if cached {
				opts = append(opts, testsupport.WithCache())
			}
			q := testsupport.MustOpen(t, testsupport.NewConfig(t, opts...))
			testsupport.MustAppend(t, q, "a", "b", "c", "d")

			cases := []struct {
				offset, count int
				want          []string
			}{
				{0, 2, []string{"a", "b"}},
				{1, 10, []string{"b", "c", "d"}},
				{3, 1, []string{"d"}},
				{4, 1, []string{}},
				{9, 3, []string{}},
				{-1, 2, []string{}},
				{0, 0, []string{}},
				{0, math.MaxInt, []string{"a", "b", "c", "d"}},
				{1, math.MaxInt, []string{"b", "c", "d"}},
				{3, math.MaxInt - 2, []string{"d"}},
				{4, math.MaxInt, []string{}},
			}
			for _, tc := range cases {
				got, err := q.ReadRange(ctx, tc.offset, tc.count)
				if err != nil {
					t.Fatalf("ReadRange(%d, %d): %v", tc.offset, tc.count, err)
				}
				if s := testsupport.Strings(got); !reflect.DeepEqual(s, tc.want) {
					t.Fatalf("ReadRange(%d, %d) = %q, want %q", tc.offset, tc.count, s, tc.want)
				}
			}

			value, ok, err := q.At(ctx, 2)
			if err != nil || !ok || string(value) != "c" {
				t.Fatalf("At(2) = %q, %v, %v", value, ok, err)
			}
			if _, ok, err := q.At(ctx, 4); err != nil || ok {
				t.Fatalf("At(4) ok=%v err=%v; want absent", ok, err)
			}
			requireValues(t, q, "a", "b", "c", "d")
		})
	}
}

func TestRoundTripAcrossInstances(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpen(t, cfg)
	testsupport.MustAppend(t, first, "one", "two", "three")
	if _, _, err := first.Remove(context.Background()); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := testsupport.MustOpen(t, cfg)
	requireValues(t, second, "two", "three")

	cachedCfg := *cfg
	cachedCfg.Queue.Cache = true
	cached := testsupport.MustOpen(t, &cachedCfg)
	if !cached.Cached() {
		t.Fatal("expected caching instance")
	}
	requireValues(t, cached, "two", "three")
}

func TestCacheDivergence(t *testing.T) {
	ctx := context.Background()
	db := openSharedDB(t)
	a := mustOpenOnDB(t, db, "shared")
	testsupport.MustAppend(t, a, "1", "2", "3")

	b := mustOpenOnDB(t, db, "shared", withCache)
	requireValues(t, b, "1", "2", "3")

	if err := a.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	requireValues(t, a)
	requireValues(t, b, "1", "2", "3")
	if n, err := b.Len(ctx); err != nil || n != 3 {
		t.Fatalf("cached Len = %d, %v; want 3", n, err)
	}

	if err := b.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	requireValues(t, b)
}

func TestStaleCacheStaysWithinMaxSize(t *testing.T) {
	ctx := context.Background()
	db := openSharedDB(t)
	writer := mustOpenOnDB(t, db, "bounded")
	testsupport.MustAppend(t, writer, "a", "b", "c")

	cached := mustOpenOnDB(t, db, "bounded", withCache, func(o *queue.Options) { o.MaxSize = 3 })
	if err := writer.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	testsupport.MustAppend(t, cached, "d")
	if n, err := cached.Len(ctx); err != nil || n != 3 {
		t.Fatalf("cached Len = %d, %v; want 3", n, err)
	}
	requireValues(t, cached, "b", "c", "d")
	requireValues(t, writer, "d")
}

func TestCachedRemoveReturnsStoredValues(t *testing.T) {
	ctx := context.Background()
	db := openSharedDB(t)
	writer := mustOpenOnDB(t, db, "shared")
	cached := mustOpenOnDB(t, db, "shared", withCache)

	testsupport.MustAppend(t, writer, "external")
	testsupport.MustAppend(t, cached, "own")

	value, ok, err := cached.Remove(ctx)
	if err != nil || !ok {
		t.Fatalf("Remove = %v, %v", ok, err)
	}
	if string(value) != "external" {
		t.Fatalf("expected stored head value, got %q", value)
	}
	requireContiguous(t, db, writer)
}

func TestQueuesShareTableIndependently(t *testing.T) {
	ctx := context.Background()
	db := openSharedDB(t)
	jobs := mustOpenOnDB(t, db, "jobs")
	mail := mustOpenOnDB(t, db, "mail")

	testsupport.MustAppend(t, jobs, "j1", "j2", "j3")
	testsupport.MustAppend(t, mail, "m1")
	if _, err := jobs.RemoveN(ctx, 2); err != nil {
		t.Fatalf("RemoveN: %v", err)
	}
	testsupport.MustAppend(t, mail, "m2")
	if err := jobs.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	requireValues(t, jobs)
	requireValues(t, mail, "m1", "m2")
	requireContiguous(t, db, mail)
}

func TestAppendZeroValuesIsNoop(t *testing.T) {
	q := testsupport.MustOpen(t, testsupport.NewConfig(t))
	if err := q.Append(context.Background()); err != nil {
		t.Fatalf("Append(): %v", err)
	}
	requireValues(t, q)
}

func TestNilValueStoredAsNull(t *testing.T) {
	ctx := context.Background()
	db := openSharedDB(t)
	q := mustOpenOnDB(t, db, "nulls")

	if err := q.Append(ctx, nil, []byte("x")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	var nulls int
	if err := db.QueryRow(`SELECT COUNT(1) FROM persistent_queue WHERE qkey = 'nulls' AND value IS NULL`).Scan(&nulls); err != nil {
		t.Fatalf("count nulls: %v", err)
	}
	if nulls != 1 {
		t.Fatalf("expected one NULL value, got %d", nulls)
	}
	value, ok, err := q.Remove(ctx)
	if err != nil || !ok || value != nil {
		t.Fatalf("Remove = %q, %v, %v; want nil value", value, ok, err)
	}
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	q := testsupport.MustOpen(t, testsupport.NewConfig(t, testsupport.WithCache()))

	payload := []byte("abc")
	if err := q.Append(ctx, payload); err != nil {
		t.Fatalf("Append: %v", err)
	}
	payload[0] = 'z'

	values, err := q.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	values[0][1] = 'z'
	requireValues(t, q, "abc")
}

// installAbortTrigger makes the backend reject statements of the given kind
// on the queue table.
func installAbortTrigger(t *testing.T, db *sql.DB, event, when string) {
	t.Helper()

	stmt := fmt.Sprintf(`CREATE TRIGGER reject_%s BEFORE %s ON persistent_queue WHEN %s
BEGIN SELECT RAISE(ABORT, 'rejected by test'); END`, strings.ToLower(event), event, when)
	if _, err := db.Exec(stmt); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
}

func TestFailedAppendRollsBackBatch(t *testing.T) {
	ctx := context.Background()
	db := openSharedDB(t)
	q := mustOpenOnDB(t, db, "atomic", withCache)
	testsupport.MustAppend(t, q, "keep")

	installAbortTrigger(t, db, "INSERT", "NEW.value = CAST('boom' AS BLOB)")

	err := q.Append(ctx, []byte("a"), []byte("b"), []byte("boom"), []byte("c"))
	if err == nil {
		t.Fatal("expected append to fail")
	}
	if !errors.Is(err, queue.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if queue.Kind(err) != "storage" {
		t.Fatalf("Kind = %q", queue.Kind(err))
	}

	if indices := storedIndices(t, db, "persistent_queue", "atomic"); !reflect.DeepEqual(indices, []int{0}) {
		t.Fatalf("expected only the original row, got indices %v", indices)
	}
	requireValues(t, q, "keep")
	if err := q.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	requireValues(t, q, "keep")
}

func TestFailedEvictionRollsBackAppend(t *testing.T) {
	ctx := context.Background()
	db := openSharedDB(t)
	q := mustOpenOnDB(t, db, "bounded", func(o *queue.Options) { o.MaxSize = 2 })
	testsupport.MustAppend(t, q, "a", "b")

	installAbortTrigger(t, db, "UPDATE", "1")

	if err := q.Append(ctx, []byte("c"), []byte("d")); err == nil {
		t.Fatal("expected append with failing eviction to fail")
	}
	requireValues(t, q, "a", "b")
	requireContiguous(t, db, q)
}

func TestFailedRemoveRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openSharedDB(t)
	q := mustOpenOnDB(t, db, "atomic", withCache)
	testsupport.MustAppend(t, q, "a", "b", "c")

	installAbortTrigger(t, db, "UPDATE", "1")

	if _, err := q.RemoveN(ctx, 1); !errors.Is(err, queue.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	requireValues(t, q, "a", "b", "c")
	if err := q.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	requireValues(t, q, "a", "b", "c")
	requireContiguous(t, db, q)
}

func TestOpenValidation(t *testing.T) {
	db := openSharedDB(t)
	cases := []struct {
		name string
		opts queue.Options
	}{
		{"missing id", queue.Options{DB: db}},
		{"blank id", queue.Options{DB: db, ID: "   "}},
		{"long id", queue.Options{DB: db, ID: strings.Repeat("q", 256)}},
		{"no connection", queue.Options{ID: "q"}},
		{"unknown driver", queue.Options{ID: "q", DSN: ":memory:", Driver: "postgres"}},
		{"bad table", queue.Options{DB: db, ID: "q", Table: `x"; DROP TABLE y; --`}},
		{"negative max size", queue.Options{DB: db, ID: "q", MaxSize: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := queue.Open(context.Background(), tc.opts)
			if !errors.Is(err, queue.ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
			if queue.Kind(err) != "configuration" {
				t.Fatalf("Kind = %q", queue.Kind(err))
			}
		})
	}
}

func TestOpenCreatesTableOnce(t *testing.T) {
	ctx := context.Background()
	db := openSharedDB(t)
	q := mustOpenOnDB(t, db, "q", func(o *queue.Options) { o.Table = "jobs_queue" })

	exists, err := q.TableExists(ctx)
	if err != nil || !exists {
		t.Fatalf("TableExists = %v, %v", exists, err)
	}
	testsupport.MustAppend(t, q, "kept")

	again := mustOpenOnDB(t, db, "q", func(o *queue.Options) { o.Table = "JOBS_QUEUE" })
	requireValues(t, again, "kept")
}

func TestOpenRejectsTableMissingColumns(t *testing.T) {
	db := openSharedDB(t)
	if _, err := db.Exec(`CREATE TABLE legacy (qkey TEXT, position INTEGER)`); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}

	_, err := queue.Open(context.Background(), queue.Options{DB: db, ID: "q", Table: "legacy"})
	if !errors.Is(err, queue.ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
	if !strings.Contains(err.Error(), "idx") || !strings.Contains(err.Error(), "value") {
		t.Fatalf("expected missing columns in error, got %v", err)
	}
}

func TestOpenWithDSNAndCredentials(t *testing.T) {
	dir := t.TempDir()
	q, err := queue.Open(context.Background(), queue.Options{
		DSN:         filepath.Join(dir, "{username}.db"),
		Credentials: queue.Credentials{Username: "svc"},
		ID:          "q",
	})
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	testsupport.MustAppend(t, q, "a")
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpen(t, testsupport.NewConfig(t, testsupport.WithDatabasePath(filepath.Join(dir, "svc.db")), testsupport.WithQueueID("q")))
	requireValues(t, reopened, "a")
}

func TestOpenWithCgoDriver(t *testing.T) {
	q, err := queue.Open(context.Background(), queue.Options{
		Driver: queue.DriverSQLite3,
		DSN:    filepath.Join(t.TempDir(), "cgo.db"),
		ID:     "q",
	})
	if err != nil {
		if strings.Contains(err.Error(), "cgo") {
			t.Skipf("sqlite3 driver unavailable: %v", err)
		}
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() { _ = q.Close() })

	testsupport.MustAppend(t, q, "a", "b", "c")
	if _, err := q.RemoveN(context.Background(), 2); err != nil {
		t.Fatalf("RemoveN: %v", err)
	}
	requireValues(t, q, "c")
}

func TestCloseLeavesSuppliedHandleOpen(t *testing.T) {
	db := openSharedDB(t)
	q := mustOpenOnDB(t, db, "q")
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("expected supplied handle to stay open: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	db := openSharedDB(t)
	q := mustOpenOnDB(t, db, "health", withCache)
	testsupport.MustAppend(t, q, "a", "b", "c")

	health, err := q.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !health.Healthy() {
		t.Fatalf("expected healthy queue, got %+v", health)
	}
	if health.Rows != 3 || health.Length != 3 || health.MirrorLength != 3 {
		t.Fatalf("unexpected counts: %+v", health)
	}

	if _, err := db.Exec(`DELETE FROM persistent_queue WHERE qkey = 'health' AND idx = 1`); err != nil {
		t.Fatalf("punch gap: %v", err)
	}
	health, err = q.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Contiguous || health.Healthy() {
		t.Fatalf("expected gap to be reported, got %+v", health)
	}
}

func TestTypedJSONStructs(t *testing.T) {
	type job struct {
		Name    string `json:"name"`
		Retries int    `json:"retries"`
	}
	ctx := context.Background()
	q := queue.NewTyped[job](testsupport.MustOpen(t, testsupport.NewConfig(t)), queue.JSONCodec[job]{})

	if err := q.Append(ctx, job{Name: "build", Retries: 1}, job{Name: "deploy"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	head, ok, err := q.At(ctx, 0)
	if err != nil || !ok || head.Name != "build" || head.Retries != 1 {
		t.Fatalf("At(0) = %+v, %v, %v", head, ok, err)
	}
	all, err := q.ReadAll(ctx)
	if err != nil || len(all) != 2 || all[1].Name != "deploy" {
		t.Fatalf("ReadAll = %+v, %v", all, err)
	}

	if err := q.Queue().Append(ctx, []byte("{not json")); err != nil {
		t.Fatalf("raw Append: %v", err)
	}
	if _, err := q.ReadRange(ctx, 2, 1); !errors.Is(err, queue.ErrCodec) {
		t.Fatalf("expected ErrCodec, got %v", err)
	}
}
