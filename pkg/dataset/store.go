// Package dataset stores named tables as compressed Parquet objects under
// a fixed namespace in an S3-compatible bucket. Read paths tolerate
// absence and most remote failures by returning empty results; the write
// path always surfaces failures.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/workbench/tablestore/internal/codec"
	"github.com/workbench/tablestore/internal/objectstore"
	"github.com/workbench/tablestore/pkg/table"
)

// ErrInvalidInput rejects write payloads before any remote interaction.
var ErrInvalidInput = errors.New("invalid payload")

// Record is the read-only projection of one stored dataset's remote
// metadata. It is computed on demand and never persisted.
type Record struct {
	Name       string
	URI        string
	SizeBytes  uint64
	ModifiedAt time.Time
}

// Store is the dataset store. It holds no mutable state beyond the client
// handle, so one instance may be shared across goroutines; concurrent
// upserts to the same name race and the last accepted write wins.
type Store struct {
	log    *slog.Logger
	store  objectstore.Store
	bucket string
	names  NameCodec
	nf     *Classifier
}

type options struct {
	log      *slog.Logger
	params   Params
	store    objectstore.Store
	notFound CodeSet
}

// Option configures a Store at construction time.
type Option func(*options)

// WithLogger injects the logging handle used by the store and its error
// classifier.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithParams injects the external configuration lookup consulted for the
// bucket name when Config.Bucket is empty.
func WithParams(p Params) Option {
	return func(o *options) { o.params = p }
}

// WithObjectStore injects a pre-built object store, bypassing the
// endpoint-based selection. Used by tests and embedding services.
func WithObjectStore(s objectstore.Store) Option {
	return func(o *options) { o.store = s }
}

// WithNotFoundCodes overrides the set of remote error codes treated as
// "resource absent" on read paths.
func WithNotFoundCodes(codes CodeSet) Option {
	return func(o *options) { o.notFound = codes }
}

// New builds a dataset store. The bucket comes from cfg.Bucket or, when
// empty, from the Params lookup under BucketParamKey; with neither
// available, New fails with ErrNoBucket.
func New(cfg Config, opts ...Option) (*Store, error) {
	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	bucket := cfg.Bucket
	if bucket == "" && o.params != nil {
		if v, ok := o.params.Get(BucketParamKey); ok {
			bucket = v
		}
	}
	if bucket == "" {
		return nil, fmt.Errorf("%w: set Config.Bucket or provide %q", ErrNoBucket, BucketParamKey)
	}

	st := o.store
	if st == nil {
		if strings.HasPrefix(cfg.EndpointURL, "http://") || strings.HasPrefix(cfg.EndpointURL, "https://") {
			client, err := objectstore.NewS3Client(objectstore.S3Config{
				EndpointURL:     cfg.EndpointURL,
				Region:          cfg.Region,
				UseSSL:          cfg.UseSSL,
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
			})
			if err != nil {
				return nil, err
			}
			st = client
		} else {
			st = objectstore.NewLocalStore(cfg.LocalRoot)
		}
	}

	return &Store{
		log:    o.log,
		store:  st,
		bucket: bucket,
		names:  defaultNameCodec(),
		nf:     NewClassifier(o.log, "dataset", o.notFound),
	}, nil
}

// Details enumerates all stored datasets with their remote metadata.
// Enumeration is a best-effort read: remote failures are logged and yield
// an empty slice. Keys under the namespace that do not match the layout
// are skipped and logged, never aborting the listing. No ordering is
// guaranteed.
func (s *Store) Details(ctx context.Context) []Record {
	infos, err := NotFoundAsEmpty(s.nf, func() ([]objectstore.ObjectInfo, error) {
		return s.store.StatPrefix(ctx, s.bucket, s.names.Prefix)
	})
	if err != nil {
		s.log.Error("failed to list datasets", "bucket", s.bucket, "error", err)
		return []Record{}
	}

	records := make([]Record, 0, len(infos))
	for _, info := range infos {
		name, decErr := s.names.Decode(info.Key)
		if decErr != nil {
			s.log.Warn("skipping foreign object under namespace", "key", info.Key, "error", decErr)
			continue
		}
		records = append(records, Record{
			Name:       name,
			URI:        s.names.URI(s.bucket, info.Key),
			SizeBytes:  uint64(info.Size),
			ModifiedAt: info.LastModified,
		})
	}
	return records
}

// List returns the stored dataset names, the name projection of Details.
// Callers must treat the result as an unordered set.
func (s *Store) List(ctx context.Context) []string {
	records := s.Details(ctx)
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names
}

// Get fetches a dataset by name. Absence is a normal outcome: a name that
// was never written yields an empty table and a nil error. Any other
// remote failure propagates unchanged.
func (s *Store) Get(ctx context.Context, name string) (*table.Table, error) {
	key, err := s.names.Encode(name)
	if err != nil {
		return nil, err
	}
	blob, err := NotFoundAsEmpty(s.nf.For(name), func() ([]byte, error) {
		return s.store.GetObject(ctx, s.bucket, key)
	})
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return table.Empty(), nil
	}
	t, err := codec.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("decode dataset %q: %w", name, err)
	}
	return t, nil
}

// Upsert stores a table or a single column (normalized to a one-column
// table) under name, fully replacing any prior content. A failed write is
// always surfaced to the caller.
func (s *Store) Upsert(ctx context.Context, name string, data table.Data) error {
	t, err := table.Normalize(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	key, err := s.names.Encode(name)
	if err != nil {
		return err
	}
	blob, err := codec.Encode(t)
	if err != nil {
		if errors.Is(err, codec.ErrNoColumns) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return fmt.Errorf("encode dataset %q: %w", name, err)
	}

	if err := s.store.PutObject(ctx, s.bucket, key, blob); err != nil {
		s.log.Error("failed to upsert dataset", "name", name, "error", err)
		return err
	}
	s.log.Info("dataset stored", "name", name, "bytes", len(blob))
	return nil
}

// Delete removes a dataset by name. Deleting an absent name is an
// idempotent no-op; deletion failures are logged but never surfaced,
// matching the tolerant read path.
func (s *Store) Delete(ctx context.Context, name string) {
	key, err := s.names.Encode(name)
	if err != nil {
		s.log.Warn("cannot delete dataset", "name", name, "error", err)
		return
	}

	infos, err := NotFoundAsEmpty(s.nf.For(name), func() ([]objectstore.ObjectInfo, error) {
		return s.store.StatPrefix(ctx, s.bucket, key)
	})
	if err != nil {
		s.log.Error("failed to check dataset before delete", "name", name, "error", err)
		return
	}
	if len(infos) == 0 {
		s.log.Warn("dataset does not exist, nothing to delete", "name", name)
		return
	}

	if err := s.store.DeletePrefix(ctx, s.bucket, key); err != nil {
		s.log.Error("failed to delete dataset", "name", name, "error", err)
		return
	}
	s.log.Info("dataset deleted", "name", name)
}

// Check probes connectivity, bucket presence, and write permissions.
func (s *Store) Check(ctx context.Context) error {
	return objectstore.Check(ctx, s.store, s.bucket, s.names.Prefix)
}
