// Package analytics provides sinks for the (category, action, label, value)
// events the engine emits on activation and conversion.
package analytics

import (
	"context"
	"errors"
	"time"
)

// Event is one analytics tuple. Value is optional.
type Event struct {
	Category  string
	Action    string
	Label     string
	Value     *int
	CreatedAt time.Time
}

type Sink interface {
	Track(ctx context.Context, e Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e Event) error

func (f SinkFunc) Track(ctx context.Context, e Event) error {
	return f(ctx, e)
}

type multi []Sink

// Multi fans every event out to all sinks, joining their errors.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Track(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Track(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
