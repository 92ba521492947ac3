package ports

import "context"

// KeyValueStore is a synchronous string store. Get returns domain.ErrKeyNotFound
// for absent keys and Delete is idempotent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// DatabaseRegistry addresses embedded databases by name.
type DatabaseRegistry interface {
	Delete(ctx context.Context, name string) error
}
