package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pattonwebz/mvtees/internal/experiment"
)

// ExperimentFile is the on-disk format for experiment definitions.
type ExperimentFile struct {
	Experiments []ExperimentSpec `yaml:"experiments"`
}

// ExperimentSpec describes one experiment. Variant values are free-form
// metadata; behaviour is attached by the caller when building definitions.
type ExperimentSpec struct {
	Name     string                    `yaml:"name"`
	Sample   *float64                  `yaml:"sample,omitempty"`
	Data     any                       `yaml:"data,omitempty"`
	Variants map[string]map[string]any `yaml:"variants"`
}

// VariantBuilder attaches hooks to a variant read from a file.
type VariantBuilder func(experimentName, variantName string, meta map[string]any) experiment.Variant

func LoadExperiments(path string) ([]ExperimentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiments file: %w", err)
	}
	return ParseExperiments(data)
}

func ParseExperiments(data []byte) ([]ExperimentSpec, error) {
	var file ExperimentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse experiments: %w", err)
	}
	return file.Experiments, nil
}

// Definition converts s into a registration input. Validation is left
// to the registry, so an entry without variants yields a definition without
// variants.
func (s ExperimentSpec) Definition(build VariantBuilder) experiment.Definition {
	def := experiment.Definition{
		Name:   s.Name,
		Sample: s.Sample,
		Data:   s.Data,
	}

	if s.Variants != nil {
		def.Variants = make(map[string]experiment.Variant, len(s.Variants))
		for name, meta := range s.Variants {
			if build == nil {
				def.Variants[name] = experiment.Hooks{Meta: meta}
				continue
			}
			def.Variants[name] = build(s.Name, name, meta)
		}
	}
	return def
}
