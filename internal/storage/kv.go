package storage

import "context"

// KV is the raw persistence primitive the store is built on: get, set and
// delete of string values by key. Backends live under internal/store.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
