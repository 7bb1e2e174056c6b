package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pattonwebz/mvtees/internal/analytics"
	"github.com/pattonwebz/mvtees/internal/config"
	"github.com/pattonwebz/mvtees/internal/engine"
	"github.com/pattonwebz/mvtees/internal/experiment"
	"github.com/pattonwebz/mvtees/internal/store"
)

// session bundles what a command needs for one invocation.
type session struct {
	store  *store.Adapter
	engine *engine.Engine
	// events is nil unless the backend is SQLite.
	events *analytics.SQLiteSink
	// metrics counts the events emitted during this invocation.
	metrics *prometheus.Registry
}

// withSession opens the configured backend, builds an engine over it,
// executes the function, and handles cleanup. When withExperiments is set the
// experiments file is loaded into the engine's registry first.
func withSession(out io.Writer, withExperiments bool, fn func(*session) error) error {
	backend, err := store.Open(store.Options{
		Kind:      store.BackendKind(backendKind),
		DBPath:    dbPath,
		BadgerDir: badgerDir,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer backend.Close()

	s := &session{
		store:   store.NewAdapter(backend, namespace, logger),
		metrics: prometheus.NewRegistry(),
	}

	counters, err := analytics.NewPrometheusSink(s.metrics)
	if err != nil {
		return err
	}

	sinks := []analytics.Sink{analytics.NewLogSink(logger), counters}
	if sq, ok := backend.(*store.SQLiteBackend); ok {
		s.events = analytics.NewSQLiteSink(sq.DB())
		sinks = append(sinks, s.events)
	}

	s.engine = engine.New(engine.Options{
		Store:  s.store,
		Sink:   analytics.Multi(sinks...),
		Logger: logger,
	})

	if withExperiments {
		if err := registerExperiments(s.engine.Registry(), out); err != nil {
			return err
		}
	}

	return fn(s)
}

func registerExperiments(reg *experiment.Registry, out io.Writer) error {
	specs, err := config.LoadExperiments(experimentsPath)
	if err != nil {
		return err
	}

	for _, spec := range specs {
		if _, err := reg.Add(spec.Definition(printingVariant(out))); err != nil {
			fmt.Fprintf(out, "Skipping experiment %q: %v\n", spec.Name, err)
		}
	}
	return nil
}

// printingVariant builds variants whose hooks report to out.
func printingVariant(out io.Writer) config.VariantBuilder {
	return func(exp, variant string, meta map[string]any) experiment.Variant {
		return experiment.Hooks{
			Chosen: func() {
				fmt.Fprintf(out, "%s: showing %s%s\n", exp, variant, describeMeta(meta))
			},
			Event: func(name string) {
				fmt.Fprintf(out, "%s: %s converted on %q\n", exp, variant, name)
			},
			Meta: meta,
		}
	}
}

func describeMeta(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, meta[k])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// printMetrics writes every counter gathered from reg as "name{labels} value".
func printMetrics(out io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			fmt.Fprintf(out, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
		}
	}
	return nil
}

// splitLabel breaks an analytics label "<variant> | <event>" into its parts.
func splitLabel(label string) (variant, event string) {
	variant, event, found := strings.Cut(label, " | ")
	if !found {
		return label, ""
	}
	return variant, event
}
