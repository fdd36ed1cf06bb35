package storage

import "context"

// KV is the contract every persistence backend (SQLite, in-memory, ...) must
// satisfy. Values are opaque byte payloads; callers own serialization. A
// missing key is reported through the found flag, never as an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close()
}
