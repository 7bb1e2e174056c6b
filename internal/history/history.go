// Package history keeps the in-process log of experiment runs. It is never
// persisted and never consulted when choosing a variant.
package history

import "sync"

// Record is one experiment run: which variant was activated.
type Record struct {
	Experiment string `json:"experiment"`
	Variant    string `json:"variant"`
}

type Tracker struct {
	mu      sync.Mutex
	records []Record
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Append(r Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, r)
}

// Records returns a copy of the log in append order.
func (t *Tracker) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
