package store

import "context"

var _ Backend = unavailable{}

// unavailable stands in for a backing store that cannot be reached.
type unavailable struct{}

// Unavailable returns a Backend whose every operation fails with ErrUnavailable.
func Unavailable() Backend {
	return unavailable{}
}

func (unavailable) Get(context.Context, string) ([]byte, error) { return nil, ErrUnavailable }

func (unavailable) Set(context.Context, string, []byte) error { return ErrUnavailable }

func (unavailable) SetIfAbsent(context.Context, string, []byte) (bool, error) {
	return false, ErrUnavailable
}

func (unavailable) Delete(context.Context, string) error { return ErrUnavailable }

func (unavailable) List(context.Context, string) ([]Entry, error) { return nil, ErrUnavailable }

func (unavailable) Close() error { return nil }
