package experiment

import (
	"sort"

	"github.com/pattonwebz/mvtees/internal/store"
)

// Variant is the capability set every variant exposes to the engine.
type Variant interface {
	// OnChosen runs each time the variant is activated for the visitor.
	OnChosen()
	// OnEvent runs when a conversion event is recorded against the variant.
	OnEvent(name string)
}

// Hooks is a Variant built from optional functions plus free-form metadata.
type Hooks struct {
	Chosen func()
	Event  func(name string)
	Meta   map[string]any
}

func (h Hooks) OnChosen() {
	if h.Chosen != nil {
		h.Chosen()
	}
}

func (h Hooks) OnEvent(name string) {
	if h.Event != nil {
		h.Event(name)
	}
}

func (h Hooks) Metadata() map[string]any {
	return h.Meta
}

// Noop is the Variant substituted for entries that carry no hooks at all.
type Noop struct{}

func (Noop) OnChosen()      {}
func (Noop) OnEvent(string) {}

// Metadata returns the metadata a variant carries, if it exposes any.
func Metadata(v Variant) map[string]any {
	if m, ok := v.(interface{ Metadata() map[string]any }); ok {
		return m.Metadata()
	}
	return nil
}

// Experiment is a validated experiment definition. It is only built by
// Validate and is read-only afterwards.
type Experiment struct {
	name       string
	variants   map[string]Variant
	order      []string
	sampleRate float64
	storage    *store.Adapter
	data       any
}

func (e *Experiment) Name() string {
	return e.name
}

// VariantNames returns the variant names in selection order (sorted by name).
func (e *Experiment) VariantNames() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Experiment) NumVariants() int {
	return len(e.order)
}

func (e *Experiment) Variant(name string) (Variant, bool) {
	v, ok := e.variants[name]
	return v, ok
}

// SampleRate is the fraction of visitors the experiment is meant for.
func (e *Experiment) SampleRate() float64 {
	return e.sampleRate
}

// Storage returns the experiment's storage override, or nil to use the default.
func (e *Experiment) Storage() *store.Adapter {
	return e.storage
}

func (e *Experiment) Data() any {
	return e.data
}

func sortedNames(variants map[string]Variant) []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
