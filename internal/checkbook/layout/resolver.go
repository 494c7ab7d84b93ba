package layout

import (
	"context"
	"errors"
	"fmt"

	"chequeprint/internal/checkbook/models"
	"chequeprint/pkg/platform/sentinel"
)

// OverrideStore returns persisted per-field overrides for a document type.
// A document type with no stored overrides returns an empty map, not an error.
type OverrideStore interface {
	Overrides(ctx context.Context, docType models.DocumentType) (models.LayoutOverrides, error)
}

// Resolver produces complete layouts and paper geometry.
type Resolver struct {
	cfg   *Config
	store OverrideStore
}

// NewResolver builds a resolver. A nil store means built-in layouts only.
func NewResolver(cfg *Config, store OverrideStore) *Resolver {
	if cfg == nil {
		cfg = Defaults()
	}
	return &Resolver{cfg: cfg, store: store}
}

// Overrides returns the stored overrides for docType, or nil when none are
// configured.
func (r *Resolver) Overrides(ctx context.Context, docType models.DocumentType) (models.LayoutOverrides, error) {
	if r.store == nil {
		return nil, nil
	}
	overrides, err := r.store.Overrides(ctx, docType)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load layout overrides: %w", err)
	}
	return overrides, nil
}

// Geometry returns the paper size for docType.
func (r *Resolver) Geometry(docType models.DocumentType) (models.PaperGeometry, error) {
	return r.cfg.Geometry(docType)
}
