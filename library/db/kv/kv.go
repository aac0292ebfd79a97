// Package kv provides the key-value storage layer that backs every
// record and file blob in the application.
package kv

import (
	"context"

	errors "github.com/Laisky/errors/v2"
)

var errKeyNotFound = errors.New("key not found")

// Interface is the contract every kv backend implements.
//
// Keys are opaque strings namespaced by prefix (`history:`, `file:`);
// values are opaque bytes, typically JSON documents. Per-key put/get/del
// are atomic; nothing stronger is assumed.
type Interface interface {
	// Get returns the value stored at key, or a not-found error.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the value at key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Del removes the key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error
	// Keys lists every stored key that starts with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// IsNotFound reports whether err means the requested key does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, errKeyNotFound)
}
