package experiment

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pattonwebz/mvtees/internal/store"
)

var (
	ErrMissingName       = errors.New("experiment name is required")
	ErrMissingVariants   = errors.New("experiment needs at least one variant")
	ErrInvalidSampleRate = errors.New("sample rate must be between 0 and 1")
)

var validate = validator.New()

// Definition is the raw registration input for an experiment.
type Definition struct {
	Name     string             `validate:"required"`
	Variants map[string]Variant `validate:"required,min=1"`
	// Sample is the eligible fraction of visitors; nil means the default.
	Sample  *float64       `validate:"omitempty,gte=0,lte=1"`
	Storage *store.Adapter `validate:"-"`
	Data    any            `validate:"-"`
}

// Defaults holds the values an experiment starts from before its definition
// is overlaid. Every field is replaced whole when the definition sets it;
// nothing is deep-merged. Name and Variants have no usable default, so a
// definition that leaves them unset fails validation.
type Defaults struct {
	Name       string
	SampleRate float64
	Storage    *store.Adapter
	Variants   map[string]Variant
}

// DefaultValues are the defaults applied by Validate.
var DefaultValues = Defaults{SampleRate: 1}

// Merge overlays def onto d. It does not validate.
func Merge(d Defaults, def Definition) Definition {
	out := Definition{
		Name:     d.Name,
		Variants: d.Variants,
		Storage:  d.Storage,
		Data:     def.Data,
	}
	sample := d.SampleRate
	out.Sample = &sample

	if def.Name != "" {
		out.Name = def.Name
	}
	if def.Variants != nil {
		out.Variants = def.Variants
	}
	if def.Sample != nil {
		s := *def.Sample
		out.Sample = &s
	}
	if def.Storage != nil {
		out.Storage = def.Storage
	}
	return out
}

// Validate checks def and returns the canonical Experiment. Rules are checked
// in order: name, variants, sample rate. Variants without hooks are accepted;
// nil entries are replaced with Noop.
func Validate(def Definition, logger *zap.Logger) (*Experiment, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	merged := Merge(DefaultValues, def)
	if err := structErr(validate.Struct(merged)); err != nil {
		if def.Name != "" {
			return nil, fmt.Errorf("experiment %q: %w", def.Name, err)
		}
		return nil, err
	}

	variants := make(map[string]Variant, len(merged.Variants))
	for name, v := range merged.Variants {
		switch h := v.(type) {
		case nil:
			logger.Debug("variant has no hooks, using no-op",
				zap.String("experiment", merged.Name), zap.String("variant", name))
			v = Noop{}
		case Hooks:
			if h.Chosen == nil {
				logger.Debug("variant has no onChosen hook",
					zap.String("experiment", merged.Name), zap.String("variant", name))
			}
			if h.Event == nil {
				logger.Debug("variant has no onEvent hook",
					zap.String("experiment", merged.Name), zap.String("variant", name))
			}
		}
		variants[name] = v
	}

	return &Experiment{
		name:       merged.Name,
		variants:   variants,
		order:      sortedNames(variants),
		sampleRate: *merged.Sample,
		storage:    merged.Storage,
		data:       merged.Data,
	}, nil
}

// structErr maps validator failures onto the package's sentinel errors,
// reporting the first failing rule in check order.
func structErr(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate experiment: %w", err)
	}

	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.Field()] = true
	}

	switch {
	case failed["Name"]:
		return ErrMissingName
	case failed["Variants"]:
		return ErrMissingVariants
	case failed["Sample"]:
		return ErrInvalidSampleRate
	}
	return fmt.Errorf("failed to validate experiment: %w", err)
}
