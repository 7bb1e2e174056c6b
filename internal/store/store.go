package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("storage unavailable")

	ErrInvalidNamespace = errors.New("namespace must be non-empty and must not contain '-'")
)

// Backend defines the raw key-value operations a persistence backend provides.
// Keys arrive fully qualified; namespacing and encoding live in Adapter.
type Backend interface {
	// Get returns ErrNotFound when the key is unset.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetIfAbsent stores value only when key is unset and reports whether it did.
	SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error)
	Delete(ctx context.Context, key string) error
	// List returns every entry whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Entry, error)

	// Lifecycle
	Close() error
}
