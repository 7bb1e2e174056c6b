package store

import (
	"fmt"

	"go.uber.org/zap"
)

// Options selects and configures a backend for Open.
type Options struct {
	Kind      BackendKind
	DBPath    string // sqlite
	BadgerDir string // badger
	Logger    *zap.Logger
}

// Open opens the backend named by opts.Kind.
func Open(opts Options) (Backend, error) {
	switch opts.Kind {
	case BackendSQLite, "":
		s, err := OpenSQLite(opts.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendBadger:
		b, err := OpenBadger(BadgerConfig{
			Dir:        opts.BadgerDir,
			SyncWrites: true,
			Logger:     opts.Logger,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case BackendMemory:
		return NewMemory(), nil
	case BackendDisabled:
		return Unavailable(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want sqlite, badger, memory or disabled)", opts.Kind)
	}
}
