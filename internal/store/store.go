// Package store holds the key/value persistence behind the remembered city.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no value is stored under a key.
	ErrNotFound = errors.New("no value stored for key")
)

// KeyValue is the contract every store satisfies.
type KeyValue interface {
	GetData(ctx context.Context, key string) (string, error)
	StoreData(ctx context.Context, key, value string) error
	Close() error
}
