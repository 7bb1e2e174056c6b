package analytics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink counts events in a counter vector labelled by category,
// action and label.
type PrometheusSink struct {
	events *prometheus.CounterVec
}

func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mvtees",
		Name:      "analytics_events_total",
		Help:      "Analytics events emitted by experiment activations and conversions.",
	}, []string{"category", "action", "label"})

	if err := reg.Register(events); err != nil {
		return nil, fmt.Errorf("failed to register analytics counter: %w", err)
	}
	return &PrometheusSink{events: events}, nil
}

func (s *PrometheusSink) Track(_ context.Context, e Event) error {
	s.events.WithLabelValues(e.Category, e.Action, e.Label).Inc()
	return nil
}

// Collector exposes the underlying counter, mainly for tests.
func (s *PrometheusSink) Collector() *prometheus.CounterVec {
	return s.events
}
