package repositories

import (
	"context"
)

// Repository stores opaque state blobs by key with last-write-wins
// semantics.
type Repository interface {
	Close(ctx context.Context) error
	SaveBlob(ctx context.Context, key string, value []byte) error
	LoadBlob(ctx context.Context, key string) ([]byte, error)
}
