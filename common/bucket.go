package common

/*

Buckets are deliberately not pooled the way readers and writers are.
Closing a shared bucket in one code path stops it working for every
other code path holding the same instance, so callers open them as
one-offs and close them when they are done.

*/

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
)

// OpenBucket opens a gocloud.dev/blob Bucket (METS caches, dimension
// data, published documents). The caller is responsible for closing it.
func OpenBucket(ctx context.Context, uri string) (*blob.Bucket, error) {

	bucket, err := blob.OpenBucket(ctx, uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to open bucket '%s', %w", uri, err)
	}

	return bucket, nil
}
