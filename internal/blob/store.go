// Package blob provides the key-value blob store used for corpus and
// topic-record persistence. Keys are logical paths like
// "topics/extracted_topics.json".
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("blob not found")

// Store is a minimal blob store. Implementations: FS (local files) and S3.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}
