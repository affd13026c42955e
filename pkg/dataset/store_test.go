package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/workbench/tablestore/internal/objectstore"
	"github.com/workbench/tablestore/pkg/table"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	local := objectstore.NewLocalStore(t.TempDir())
	if err := local.EnsureBucket(context.Background(), "test-bucket"); err != nil {
		t.Fatalf("ensure bucket: %v", err)
	}
	s, err := New(Config{Bucket: "test-bucket"},
		WithLogger(quietLogger()),
		WithObjectStore(local),
	)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func mustTable(t *testing.T, cols ...table.Column) *table.Table {
	t.Helper()
	tbl, err := table.New(cols...)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return tbl
}

func TestUpsertGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	orig := mustTable(t,
		table.Ints("id", []int64{1, 2}),
		table.Strings("name", []string{"a", "b"}),
		table.Times("seen", []time.Time{ts, ts.Add(time.Hour)}),
	)

	if err := s.Upsert(ctx, "test_data", orig); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Get(ctx, "test_data")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !orig.Equal(got) {
		t.Fatal("round trip mismatch")
	}
}

func TestUpsertSeriesNormalization(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	col := table.Ints("series", []int64{1, 2, 3, 4})
	if err := s.Upsert(ctx, "test_series", col); err != nil {
		t.Fatalf("upsert column: %v", err)
	}

	got, err := s.Get(ctx, "test_series")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.NumCols() != 1 {
		t.Fatalf("expected a one-column table, got %d cols", got.NumCols())
	}
	if !got.Col(0).Equal(col) {
		t.Fatal("stored column does not match the input")
	}
}

func TestUpsertOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustTable(t, table.Ints("v", []int64{1}))
	second := mustTable(t, table.Ints("v", []int64{2, 3}))

	if err := s.Upsert(ctx, "data", first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.Upsert(ctx, "data", second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.Get(ctx, "data")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !second.Equal(got) {
		t.Fatal("overwrite did not replace prior content")
	}

	names := s.List(ctx)
	if len(names) != 1 || names[0] != "data" {
		t.Fatalf("expected exactly one entry named data, got %v", names)
	}
}

func TestGetAbsentIsEmptyNotError(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get(context.Background(), "never_written")
	if err != nil {
		t.Fatalf("absence must not be an error, got %v", err)
	}
	if !got.IsEmpty() {
		t.Fatal("expected the empty-table sentinel")
	}
}

func TestUpsertRejectsInvalidInput(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, "data", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for nil payload, got %v", err)
	}
	if err := s.Upsert(ctx, "data", table.Empty()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a table without columns, got %v", err)
	}
	if len(s.List(ctx)) != 0 {
		t.Fatal("invalid input must not reach the remote store")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Absent name: logs and returns, never panics or errors.
	s.Delete(ctx, "never_written")

	if err := s.Upsert(ctx, "data", mustTable(t, table.Ints("v", []int64{1}))); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	s.Delete(ctx, "data")

	got, err := s.Get(ctx, "data")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if !got.IsEmpty() {
		t.Fatal("expected an empty table after delete")
	}

	// Second delete of the same name is a no-op.
	s.Delete(ctx, "data")
}

func TestEmptyStoreListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if names := s.List(ctx); len(names) != 0 {
		t.Fatalf("expected no names, got %v", names)
	}
	if records := s.Details(ctx); len(records) != 0 {
		t.Fatalf("expected no records, got %v", records)
	}
	if rows := s.Summary(ctx); len(rows) != 0 {
		t.Fatalf("expected no summary rows, got %v", rows)
	}
}

func TestDetailsMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, "abc_features", mustTable(t, table.Ints("v", []int64{1, 2, 3}))); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	records := s.Details(ctx)
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	r := records[0]
	if r.Name != "abc_features" {
		t.Fatalf("unexpected name %q", r.Name)
	}
	if r.URI != "s3://test-bucket/df_store/abc_features.parquet" {
		t.Fatalf("unexpected uri %q", r.URI)
	}
	if r.SizeBytes == 0 {
		t.Fatal("expected a non-zero object size")
	}
	if r.ModifiedAt.IsZero() {
		t.Fatal("expected a modification time")
	}
}

func TestDetailsSkipsForeignObjects(t *testing.T) {
	local := objectstore.NewLocalStore(t.TempDir())
	ctx := context.Background()
	if err := local.EnsureBucket(ctx, "test-bucket"); err != nil {
		t.Fatalf("ensure bucket: %v", err)
	}
	// A foreign object under the namespace must not abort enumeration.
	if err := local.PutObject(ctx, "test-bucket", "df_store/rogue.csv", []byte("x")); err != nil {
		t.Fatalf("put foreign object: %v", err)
	}

	s, err := New(Config{Bucket: "test-bucket"},
		WithLogger(quietLogger()),
		WithObjectStore(local),
	)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := s.Upsert(ctx, "good", mustTable(t, table.Ints("v", []int64{1}))); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	names := s.List(ctx)
	if len(names) != 1 || names[0] != "good" {
		t.Fatalf("expected only the managed object, got %v", names)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(Config{}, WithLogger(quietLogger()))
	if !errors.Is(err, ErrNoBucket) {
		t.Fatalf("expected ErrNoBucket, got %v", err)
	}
}

type staticParams map[string]string

func (p staticParams) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

func TestNewResolvesBucketFromParams(t *testing.T) {
	local := objectstore.NewLocalStore(t.TempDir())
	s, err := New(Config{},
		WithLogger(quietLogger()),
		WithObjectStore(local),
		WithParams(staticParams{BucketParamKey: "from-params"}),
	)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if s.bucket != "from-params" {
		t.Fatalf("expected bucket from params, got %q", s.bucket)
	}
}

func TestExplicitBucketWinsOverParams(t *testing.T) {
	local := objectstore.NewLocalStore(t.TempDir())
	s, err := New(Config{Bucket: "explicit"},
		WithLogger(quietLogger()),
		WithObjectStore(local),
		WithParams(staticParams{BucketParamKey: "from-params"}),
	)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if s.bucket != "explicit" {
		t.Fatalf("expected the explicit bucket, got %q", s.bucket)
	}
}

// failingStore simulates a remote store that rejects every call.
type failingStore struct {
	err error
}

func (f *failingStore) Ping(ctx context.Context) error { return f.err }
func (f *failingStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return false, f.err
}
func (f *failingStore) EnsureBucket(ctx context.Context, bucket string) error { return f.err }
func (f *failingStore) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	return f.err
}
func (f *failingStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	return nil, f.err
}
func (f *failingStore) StatPrefix(ctx context.Context, bucket, prefix string) ([]objectstore.ObjectInfo, error) {
	return nil, f.err
}
func (f *failingStore) DeleteObject(ctx context.Context, bucket, key string) error { return f.err }
func (f *failingStore) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	return f.err
}

func permissionDenied() error {
	return &objectstore.Error{Code: objectstore.CodePermissionDenied, Err: errors.New("denied")}
}

func newFailingStore(t *testing.T, err error) *Store {
	t.Helper()
	s, err2 := New(Config{Bucket: "test-bucket"},
		WithLogger(quietLogger()),
		WithObjectStore(&failingStore{err: err}),
	)
	if err2 != nil {
		t.Fatalf("failed to create store: %v", err2)
	}
	return s
}

func TestDetailsTolerantOnRemoteFailure(t *testing.T) {
	s := newFailingStore(t, permissionDenied())

	// Enumeration is best-effort: failures degrade to empty, not errors.
	if records := s.Details(context.Background()); len(records) != 0 {
		t.Fatalf("expected empty details, got %v", records)
	}
	if names := s.List(context.Background()); len(names) != 0 {
		t.Fatalf("expected empty list, got %v", names)
	}
}

func TestGetPropagatesFatalErrors(t *testing.T) {
	s := newFailingStore(t, permissionDenied())

	_, err := s.Get(context.Background(), "data")
	if err == nil {
		t.Fatal("expected a permission failure to propagate")
	}
	var coded *objectstore.Error
	if !errors.As(err, &coded) || coded.Code != objectstore.CodePermissionDenied {
		t.Fatalf("expected the original coded error, got %v", err)
	}
}

func TestUpsertStrictOnRemoteFailure(t *testing.T) {
	s := newFailingStore(t, permissionDenied())

	err := s.Upsert(context.Background(), "data", mustTable(t, table.Ints("v", []int64{1})))
	if err == nil {
		t.Fatal("a failed write must be visible to the caller")
	}
}

func TestDeleteSwallowsRemoteFailure(t *testing.T) {
	s := newFailingStore(t, permissionDenied())

	// Best-effort cleanup: must not panic or surface the failure.
	s.Delete(context.Background(), "data")
}
