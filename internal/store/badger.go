package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

var _ Backend = (*BadgerBackend)(nil)

// maxConflictRetries bounds how often SetIfAbsent retries after a
// transaction conflict before giving up.
const maxConflictRetries = 3

// BadgerConfig holds configuration for a Badger-backed store.
type BadgerConfig struct {
	// Dir is the directory for Badger files. Ignored when InMemory is true.
	Dir string

	// InMemory keeps all data in RAM. Useful for testing.
	InMemory bool

	// SyncWrites flushes every commit to disk before returning.
	SyncWrites bool

	// Logger receives Badger's internal log output. Nil disables it.
	Logger *zap.Logger
}

type BadgerBackend struct {
	db *badger.DB
}

// badgerLogger adapts zap to Badger's Logger interface.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.sugar.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.sugar.Infof(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.sugar.Debugf(format, args...) }

func OpenBadger(cfg BadgerConfig) (*BadgerBackend, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("badger directory is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create badger directory %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{sugar: cfg.Logger.Named("badger").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerBackend{db: db}, nil
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}

func (b *BadgerBackend) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return value, nil
}

func (b *BadgerBackend) Set(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func (b *BadgerBackend) SetIfAbsent(_ context.Context, key string, value []byte) (bool, error) {
	for attempt := 0; ; attempt++ {
		stored := false
		err := b.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get([]byte(key))
			if err == nil {
				return nil
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			stored = true
			return txn.Set([]byte(key), value)
		})

		// A conflicting commit may have written the key; re-check it.
		if errors.Is(err, badger.ErrConflict) && attempt < maxConflictRetries {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to insert key: %w", err)
		}
		return stored, nil
	}
}

func (b *BadgerBackend) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			return err
		}
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

func (b *BadgerBackend) List(_ context.Context, prefix string) ([]Entry, error) {
	var entries []Entry
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			entries = append(entries, Entry{Key: string(item.KeyCopy(nil)), Value: value})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return entries, nil
}
