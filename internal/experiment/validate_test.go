package experiment_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pattonwebz/mvtees/internal/experiment"
	"github.com/pattonwebz/mvtees/internal/store"
)

func ptr(f float64) *float64 { return &f }

func TestValidate_Rules(t *testing.T) {
	one := map[string]experiment.Variant{"red": experiment.Noop{}}

	tests := []struct {
		name    string
		def     experiment.Definition
		wantErr error
	}{
		{"valid", experiment.Definition{Name: "cta", Variants: one}, nil},
		{"missing name", experiment.Definition{Variants: one}, experiment.ErrMissingName},
		{"nil variants", experiment.Definition{Name: "cta"}, experiment.ErrMissingVariants},
		{"empty variants", experiment.Definition{Name: "cta", Variants: map[string]experiment.Variant{}}, experiment.ErrMissingVariants},
		{"name checked before variants", experiment.Definition{}, experiment.ErrMissingName},
		{"sample too high", experiment.Definition{Name: "cta", Variants: one, Sample: ptr(1.5)}, experiment.ErrInvalidSampleRate},
		{"sample negative", experiment.Definition{Name: "cta", Variants: one, Sample: ptr(-0.1)}, experiment.ErrInvalidSampleRate},
		{"sample zero", experiment.Definition{Name: "cta", Variants: one, Sample: ptr(0)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := experiment.Validate(tt.def, nil)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got err %v, want %v", err, tt.wantErr)
				assert.Nil(t, exp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.def.Name, exp.Name())
		})
	}
}

func TestValidate_AppliesDefaults(t *testing.T) {
	exp, err := experiment.Validate(experiment.Definition{
		Name:     "cta",
		Variants: map[string]experiment.Variant{"red": experiment.Noop{}},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, exp.SampleRate())
	assert.Nil(t, exp.Storage())
	assert.Nil(t, exp.Data())
}

func TestValidate_KeepsOverrides(t *testing.T) {
	override := store.NewAdapter(store.NewMemory(), "custom", nil)
	exp, err := experiment.Validate(experiment.Definition{
		Name:     "cta",
		Variants: map[string]experiment.Variant{"red": experiment.Noop{}},
		Sample:   ptr(0.25),
		Storage:  override,
		Data:     map[string]string{"owner": "growth"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.25, exp.SampleRate())
	assert.Same(t, override, exp.Storage())
	assert.Equal(t, map[string]string{"owner": "growth"}, exp.Data())
}

func TestValidate_VariantOrderIsSorted(t *testing.T) {
	exp, err := experiment.Validate(experiment.Definition{
		Name: "cta",
		Variants: map[string]experiment.Variant{
			"red":   experiment.Noop{},
			"blue":  experiment.Noop{},
			"green": experiment.Noop{},
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"blue", "green", "red"}, exp.VariantNames())
	assert.Equal(t, 3, exp.NumVariants())
}

func TestValidate_ToleratesMissingHooks(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	exp, err := experiment.Validate(experiment.Definition{
		Name: "cta",
		Variants: map[string]experiment.Variant{
			"bare":  nil,
			"hooks": experiment.Hooks{Meta: map[string]any{"type": "color"}},
		},
	}, zap.New(core))
	require.NoError(t, err)

	bare, ok := exp.Variant("bare")
	require.True(t, ok)
	assert.Equal(t, experiment.Noop{}, bare)
	bare.OnChosen()

	hooks, ok := exp.Variant("hooks")
	require.True(t, ok)
	hooks.OnChosen()
	hooks.OnEvent("click")
	assert.Equal(t, "color", experiment.Metadata(hooks)["type"])

	assert.Equal(t, 1, logs.FilterMessage("variant has no hooks, using no-op").Len())
	assert.Equal(t, 1, logs.FilterMessage("variant has no onChosen hook").Len())
	assert.Equal(t, 1, logs.FilterMessage("variant has no onEvent hook").Len())
}

func TestValidate_CopiesVariants(t *testing.T) {
	variants := map[string]experiment.Variant{"red": experiment.Noop{}}
	exp, err := experiment.Validate(experiment.Definition{Name: "cta", Variants: variants}, nil)
	require.NoError(t, err)

	variants["blue"] = experiment.Noop{}
	_, ok := exp.Variant("blue")
	assert.False(t, ok)

	names := exp.VariantNames()
	names[0] = "mutated"
	assert.Equal(t, []string{"red"}, exp.VariantNames())
}

func TestMerge_ShallowOverride(t *testing.T) {
	defaultVariants := map[string]experiment.Variant{"a": experiment.Noop{}, "b": experiment.Noop{}}
	d := experiment.Defaults{Name: "base", SampleRate: 0.5, Variants: defaultVariants}

	t.Run("unset fields keep defaults", func(t *testing.T) {
		got := experiment.Merge(d, experiment.Definition{})
		assert.Equal(t, "base", got.Name)
		assert.Len(t, got.Variants, 2)
		require.NotNil(t, got.Sample)
		assert.Equal(t, 0.5, *got.Sample)
	})

	t.Run("variants replaced whole", func(t *testing.T) {
		got := experiment.Merge(d, experiment.Definition{
			Name:     "cta",
			Variants: map[string]experiment.Variant{"c": experiment.Noop{}},
		})
		assert.Equal(t, "cta", got.Name)
		assert.Len(t, got.Variants, 1)
		assert.Contains(t, got.Variants, "c")
	})
}

func TestHooks_InvokeFunctions(t *testing.T) {
	chosen := 0
	var events []string
	h := experiment.Hooks{
		Chosen: func() { chosen++ },
		Event:  func(name string) { events = append(events, name) },
	}

	h.OnChosen()
	h.OnEvent("signup")

	assert.Equal(t, 1, chosen)
	assert.Equal(t, []string{"signup"}, events)
	assert.Nil(t, experiment.Metadata(experiment.Noop{}))
}
