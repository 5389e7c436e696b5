package repositories

import "context"

// ObjectReader defines read operations on the key-value object store.
type ObjectReader interface {
	// Get returns the bytes stored at key, or apperrors.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns every key starting with prefix, sorted ascending.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ObjectWriter defines write operations on the key-value object store.
// There is no compare-and-swap; the last Set wins.
type ObjectWriter interface {
	// Set stores data at key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// ObjectStore is the only persistence substrate of the ledger.
type ObjectStore interface {
	ObjectReader
	ObjectWriter
}
