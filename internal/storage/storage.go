// Package storage holds the durable key-value port the cart store persists
// through, with in-memory, file and redis implementations.
package storage

import "context"

// CartStorage is the persistence port for cart payloads. Load reports whether
// a payload exists for the key; absence is not an error.
type CartStorage interface {
	Load(c context.Context, key string) ([]byte, bool, error)
	Save(c context.Context, key string, payload []byte) error
	Delete(c context.Context, key string) error
}
