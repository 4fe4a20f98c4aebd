package repository

import "context"

// KeyValue is the durable store port. The engine's only I/O goes through it:
// whole records read and written under fixed keys, no partial updates.
//
// Implementations return domain.ErrNotFound for missing keys and
// domain.ErrStorageFull when the backing store rejects a write for capacity.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}
