// Package identity issues the stable visitor identifier that every sticky
// assignment is keyed on.
package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pattonwebz/mvtees/internal/store"
)

// IDKey is the logical storage key holding the visitor identifier.
const IDKey = "uuid"

// Generator produces a fresh visitor identifier.
type Generator func() (string, error)

// NewV4 returns a random (version 4) UUID drawn from crypto/rand.
func NewV4() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type Provider struct {
	store    *store.Adapter
	generate Generator
	logger   *zap.Logger

	// fallback holds an identifier minted while the store could not keep it,
	// so repeated calls in one process agree with each other.
	fallback string
}

// New returns a Provider persisting through s. A nil generate uses NewV4.
func New(s *store.Adapter, generate Generator, logger *zap.Logger) *Provider {
	if generate == nil {
		generate = NewV4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{store: s, generate: generate, logger: logger}
}

// VisitorID returns the stored identifier, creating and persisting one on
// first use.
func (p *Provider) VisitorID(ctx context.Context) string {
	var id string
	if p.store.Get(ctx, IDKey, &id) && id != "" {
		return id
	}

	if p.fallback != "" {
		return p.fallback
	}

	id, err := p.generate()
	if err != nil {
		// uuid.NewString panics if crypto/rand itself is broken.
		p.logger.Error("visitor id generator failed, using default source", zap.Error(err))
		id = uuid.NewString()
	}

	if !p.store.SetIfAbsent(ctx, IDKey, id) {
		var existing string
		if p.store.Get(ctx, IDKey, &existing) && existing != "" {
			return existing
		}
		p.fallback = id
	}

	p.logger.Debug("issued visitor id", zap.String("visitor_id", id))
	return id
}
