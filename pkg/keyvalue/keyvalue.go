// Package keyvalue provides the durable byte-slot storage used by the cart
// subsystem: one key, one opaque value, written through on every mutation.
package keyvalue

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("keyvalue: key not found")

// Store is the minimal durable slot surface the cart store writes through.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
