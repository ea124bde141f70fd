package store

import (
	"context"
	"time"
)

// Store is a durable key/value slot. Each key holds one serialized document
// that callers rewrite as a whole.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pruner is implemented by slots that can drop keys under a prefix whose
// last write is older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, prefix string, before time.Time) (int, error)
}
