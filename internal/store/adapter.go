package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Adapter is the namespaced persistence layer the engine talks to. Values are
// stored JSON-encoded under "<namespace>-<key>".
//
// Adapter never returns backend failures from Get, Set or SetIfAbsent: a read
// failure looks like an unset key and a write failure is dropped. Both are
// reported on the logger instead, so callers keep working against a store
// that is missing or broken.
type Adapter struct {
	backend   Backend
	namespace string
	logger    *zap.Logger
}

// ValidateNamespace reports whether namespace can own a key range on its own.
// A '-' would let "shop" claim the keys of "shop-eu".
func ValidateNamespace(namespace string) error {
	if namespace == "" || strings.Contains(namespace, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidNamespace, namespace)
	}
	return nil
}

// NewAdapter wraps backend under namespace. A nil backend behaves as
// Unavailable, and so does any backend under an invalid namespace.
func NewAdapter(backend Backend, namespace string, logger *zap.Logger) *Adapter {
	if backend == nil {
		backend = Unavailable()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := ValidateNamespace(namespace); err != nil {
		logger.Error("invalid namespace, storage disabled", zap.Error(err))
		backend = Unavailable()
	}
	return &Adapter{
		backend:   backend,
		namespace: namespace,
		logger:    logger.With(zap.String("namespace", namespace)),
	}
}

func (a *Adapter) Namespace() string {
	return a.namespace
}

// Key returns the fully qualified backend key for key.
func (a *Adapter) Key(key string) string {
	return a.namespace + "-" + key
}

// Get decodes the value stored under key into dst and reports whether one was found.
func (a *Adapter) Get(ctx context.Context, key string, dst any) bool {
	raw, err := a.backend.Get(ctx, a.Key(key))
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		a.logger.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		a.logger.Warn("stored value is not valid JSON", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores value under key, overwriting any prior value.
func (a *Adapter) Set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		a.logger.Warn("value is not JSON-serializable", zap.String("key", key), zap.Error(err))
		return
	}

	if err := a.backend.Set(ctx, a.Key(key), raw); err != nil {
		a.logger.Warn("storage write dropped", zap.String("key", key), zap.Error(err))
	}
}

// SetIfAbsent stores value under key only if nothing is stored there yet. It
// reports false both when the key was already set and when the write failed.
func (a *Adapter) SetIfAbsent(ctx context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		a.logger.Warn("value is not JSON-serializable", zap.String("key", key), zap.Error(err))
		return false
	}

	stored, err := a.backend.SetIfAbsent(ctx, a.Key(key), raw)
	if err != nil {
		a.logger.Warn("storage write dropped", zap.String("key", key), zap.Error(err))
		return false
	}
	return stored
}

// Entries lists every entry in the namespace. Keys are returned without the
// namespace prefix.
func (a *Adapter) Entries(ctx context.Context) ([]Entry, error) {
	prefix := a.Key("")
	entries, err := a.backend.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list namespace %s: %w", a.namespace, err)
	}

	for i := range entries {
		entries[i].Key = strings.TrimPrefix(entries[i].Key, prefix)
	}
	return entries, nil
}

// Clear deletes every entry in the namespace and returns how many were removed.
func (a *Adapter) Clear(ctx context.Context) (int, error) {
	entries, err := a.backend.List(ctx, a.Key(""))
	if err != nil {
		return 0, fmt.Errorf("failed to list namespace %s: %w", a.namespace, err)
	}

	removed := 0
	for _, e := range entries {
		err := a.backend.Delete(ctx, e.Key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", e.Key, err)
		}
		removed++
	}
	return removed, nil
}
