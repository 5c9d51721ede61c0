// Package kv stores the service's durable records as opaque blobs under string keys.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record exists for the key.
var ErrNotFound = errors.New("kv: key not found")

// Backend is a keyed blob store. Put overwrites; Delete of a missing key is not an error.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
