package experiment

import (
	"sync"

	"go.uber.org/zap"
)

// Registry holds validated experiments in insertion order. Duplicate names
// are accepted; lookups by name return the first one registered.
type Registry struct {
	mu          sync.RWMutex
	experiments []*Experiment
	logger      *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// Add validates def and appends it. An invalid definition is logged and
// returned as an error, and the registry is left unchanged.
func (r *Registry) Add(def Definition) (*Experiment, error) {
	exp, err := Validate(def, r.logger)
	if err != nil {
		r.logger.Warn("rejected experiment", zap.String("experiment", def.Name), zap.Error(err))
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(exp.name) >= 0 {
		r.logger.Debug("duplicate experiment name, lookups return the first",
			zap.String("experiment", exp.name))
	}
	r.experiments = append(r.experiments, exp)
	return exp, nil
}

func (r *Registry) All() []*Experiment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Experiment, len(r.experiments))
	copy(out, r.experiments)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.experiments)
}

func (r *Registry) ByIndex(i int) (*Experiment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i < 0 || i >= len(r.experiments) {
		return nil, false
	}
	return r.experiments[i], true
}

func (r *Registry) ByName(name string) (*Experiment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(name); i >= 0 {
		return r.experiments[i], true
	}
	return nil, false
}

func (r *Registry) indexOf(name string) int {
	for i, e := range r.experiments {
		if e.name == name {
			return i
		}
	}
	return -1
}
