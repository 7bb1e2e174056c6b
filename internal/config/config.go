package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"

	"github.com/pattonwebz/mvtees/internal/store"
)

type Config struct {
	// Namespace prefixes every storage key and is the analytics category.
	Namespace string `env:"MVTEES_NAMESPACE" envDefault:"mvtees"`

	// Storage
	Backend   string `env:"MVTEES_BACKEND" envDefault:"sqlite"`
	DBPath    string `env:"MVTEES_DB_PATH" envDefault:"./mvtees.db"`
	BadgerDir string `env:"MVTEES_BADGER_DIR" envDefault:"./mvtees-badger"`

	// Experiment definitions file
	Experiments string `env:"MVTEES_EXPERIMENTS" envDefault:"./experiments.yaml"`

	Debug bool `env:"MVTEES_DEBUG"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := store.ValidateNamespace(cfg.Namespace); err != nil {
		return nil, fmt.Errorf("invalid MVTEES_NAMESPACE: %w", err)
	}
	return cfg, nil
}
