// Package engine assigns visitors to experiment variants and keeps those
// assignments sticky.
//
// For each experiment run the engine resolves the visitor, looks up the
// stored assignment under "<visitor>-<experiment>", and on a miss picks a
// variant uniformly at random and stores it with a persist-if-absent write.
// The chosen variant is activated, an analytics event is emitted for first
// activations, and the run is appended to the history log.
//
// Storage failures never abort a run: the engine falls back to an
// unremembered choice. The only error Run, RunAll and RecordEvent return is
// ErrAnalyticsSinkMissing.
package engine

import (
	"context"
	"errors"
	"math/rand"

	"go.uber.org/zap"

	"github.com/pattonwebz/mvtees/internal/analytics"
	"github.com/pattonwebz/mvtees/internal/experiment"
	"github.com/pattonwebz/mvtees/internal/history"
	"github.com/pattonwebz/mvtees/internal/identity"
	"github.com/pattonwebz/mvtees/internal/store"
)

// DefaultNamespace prefixes every storage key when no store is supplied.
const DefaultNamespace = "mvtees"

// TotalEvent is the event name used in the label of first-activation events.
const TotalEvent = "Total"

var ErrAnalyticsSinkMissing = errors.New("analytics sink is not configured")

// Chooser draws a uniformly random index in [0, n). Out-of-range results
// are logged and wrapped into range.
type Chooser interface {
	Intn(n int) int
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(n int) int

func (f ChooserFunc) Intn(n int) int { return f(n) }

// Options wires an Engine. Only Sink is needed for runs to succeed; every
// other field has a working default.
type Options struct {
	// Store is the default persistence adapter. Nil uses an in-memory
	// store under DefaultNamespace.
	Store    *store.Adapter
	Registry *experiment.Registry
	// Identity defaults to a provider backed by Store.
	Identity *identity.Provider
	History  *history.Tracker
	Sink     analytics.Sink
	Chooser  Chooser
	Logger   *zap.Logger
}

type Engine struct {
	store    *store.Adapter
	registry *experiment.Registry
	identity *identity.Provider
	history  *history.Tracker
	sink     analytics.Sink
	chooser  Chooser
	logger   *zap.Logger
}

func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		store:    opts.Store,
		registry: opts.Registry,
		identity: opts.Identity,
		history:  opts.History,
		sink:     opts.Sink,
		chooser:  opts.Chooser,
		logger:   logger,
	}

	if e.store == nil {
		logger.Warn("no store configured, assignments will not outlive the process")
		e.store = store.NewAdapter(store.NewMemory(), DefaultNamespace, logger)
	}
	if e.registry == nil {
		e.registry = experiment.NewRegistry(logger)
	}
	if e.identity == nil {
		e.identity = identity.New(e.store, nil, logger)
	}
	if e.history == nil {
		e.history = history.NewTracker()
	}
	if e.chooser == nil {
		e.chooser = ChooserFunc(rand.Intn)
	}
	return e
}

func (e *Engine) Registry() *experiment.Registry {
	return e.registry
}

func (e *Engine) Namespace() string {
	return e.store.Namespace()
}

func (e *Engine) VisitorID(ctx context.Context) string {
	return e.identity.VisitorID(ctx)
}

// History returns the runs performed by this engine, in order.
func (e *Engine) History() []history.Record {
	return e.history.Records()
}

// Do registers def and runs every registered experiment.
func (e *Engine) Do(ctx context.Context, def experiment.Definition) error {
	if _, err := e.registry.Add(def); err != nil {
		return err
	}
	return e.RunAll(ctx)
}

// RunAll runs every registered experiment in registration order, stopping at
// the first error.
func (e *Engine) RunAll(ctx context.Context) error {
	for _, exp := range e.registry.All() {
		if err := e.Run(ctx, exp); err != nil {
			return err
		}
	}
	return nil
}

// Run activates the visitor's variant for exp, choosing and storing one on
// the first run. Experiments without variants are skipped.
func (e *Engine) Run(ctx context.Context, exp *experiment.Experiment) error {
	if exp == nil || exp.NumVariants() == 0 {
		e.logger.Debug("nothing to run, experiment has no variants")
		return nil
	}

	name, fresh, err := e.resolve(ctx, exp)
	if err != nil {
		return err
	}

	variant, _ := exp.Variant(name)
	if fresh {
		e.track(ctx, exp.Name(), name, TotalEvent)
	}
	variant.OnChosen()

	e.history.Append(history.Record{Experiment: exp.Name(), Variant: name})
	e.logger.Debug("ran experiment",
		zap.String("experiment", exp.Name()),
		zap.String("variant", name),
		zap.Bool("first_activation", fresh))
	return nil
}

// RecordEvent reports a conversion event to the visitor's assigned variant of
// the named experiment. It does nothing if the experiment is unknown or the
// visitor has no assignment yet.
func (e *Engine) RecordEvent(ctx context.Context, experimentName, eventName string) error {
	exp, ok := e.registry.ByName(experimentName)
	if !ok {
		e.logger.Debug("event for unknown experiment ignored", zap.String("experiment", experimentName))
		return nil
	}

	name, ok := e.lookup(ctx, exp)
	if !ok {
		return nil
	}

	if e.sink == nil {
		return ErrAnalyticsSinkMissing
	}

	variant, _ := exp.Variant(name)
	variant.OnEvent(eventName)
	e.track(ctx, exp.Name(), name, eventName)
	return nil
}

// Assignment returns the visitor's stored variant for a registered experiment.
func (e *Engine) Assignment(ctx context.Context, experimentName string) (string, bool) {
	exp, ok := e.registry.ByName(experimentName)
	if !ok {
		return "", false
	}
	return e.lookup(ctx, exp)
}

// lookup reads the stored assignment for exp, ignoring names that are no
// longer variants of the experiment.
func (e *Engine) lookup(ctx context.Context, exp *experiment.Experiment) (string, bool) {
	var name string
	if !e.storeFor(exp).Get(ctx, e.key(ctx, exp), &name) {
		return "", false
	}
	if _, ok := exp.Variant(name); !ok {
		return "", false
	}
	return name, true
}

// resolve returns the variant to activate and whether it was chosen by this call.
func (e *Engine) resolve(ctx context.Context, exp *experiment.Experiment) (string, bool, error) {
	st := e.storeFor(exp)
	key := e.key(ctx, exp)

	var stored string
	hasStored := st.Get(ctx, key, &stored)
	if hasStored {
		if _, ok := exp.Variant(stored); ok {
			return stored, false, nil
		}
		e.logger.Warn("stored variant no longer exists, reassigning",
			zap.String("experiment", exp.Name()), zap.String("variant", stored))
	}

	// First activation must be reported, so refuse before persisting anything.
	if e.sink == nil {
		return "", false, ErrAnalyticsSinkMissing
	}

	chosen := e.choose(exp)

	if hasStored {
		st.Set(ctx, key, chosen)
		return chosen, true, nil
	}

	if !st.SetIfAbsent(ctx, key, chosen) {
		// Either another writer got there first or the store is down.
		if st.Get(ctx, key, &stored) {
			if _, ok := exp.Variant(stored); ok {
				return stored, false, nil
			}
		}
		e.logger.Warn("assignment not persisted, choice will not be remembered",
			zap.String("experiment", exp.Name()), zap.String("variant", chosen))
	}
	return chosen, true, nil
}

func (e *Engine) choose(exp *experiment.Experiment) string {
	names := exp.VariantNames()
	if len(names) == 1 {
		return names[0]
	}
	n := len(names)
	i := e.chooser.Intn(n)
	if i < 0 || i >= n {
		e.logger.Error("chooser returned an index out of range",
			zap.String("experiment", exp.Name()), zap.Int("index", i), zap.Int("variants", n))
		i = ((i % n) + n) % n
	}
	return names[i]
}

func (e *Engine) track(ctx context.Context, experimentName, variant, event string) {
	err := e.sink.Track(ctx, analytics.Event{
		Category: e.store.Namespace(),
		Action:   experimentName,
		Label:    variant + " | " + event,
	})
	if err != nil {
		e.logger.Warn("analytics event dropped",
			zap.String("experiment", experimentName), zap.String("variant", variant), zap.Error(err))
	}
}

func (e *Engine) key(ctx context.Context, exp *experiment.Experiment) string {
	return e.identity.VisitorID(ctx) + "-" + exp.Name()
}

func (e *Engine) storeFor(exp *experiment.Experiment) *store.Adapter {
	if s := exp.Storage(); s != nil {
		return s
	}
	return e.store
}
