package objectstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Check verifies connectivity, bucket presence, and write/delete
// permissions by round-tripping a probe object under the given prefix.
func Check(ctx context.Context, s Store, bucket, prefix string) error {
	if err := s.Ping(ctx); err != nil {
		return err
	}
	exists, err := s.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		return wrapError(CodeBucketNotFound, false, fmt.Errorf("bucket %s not found", bucket))
	}

	probeKey := fmt.Sprintf("%sprobe-%s.txt", prefix, uuid.NewString())
	if err := s.PutObject(ctx, bucket, probeKey, []byte("probe")); err != nil {
		return err
	}
	if _, err := s.GetObject(ctx, bucket, probeKey); err != nil {
		return err
	}
	return s.DeleteObject(ctx, bucket, probeKey)
}
