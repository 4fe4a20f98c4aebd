package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"hotspot-voucher-manager/internal/domain"
	"hotspot-voucher-manager/internal/domain/model"
	"hotspot-voucher-manager/internal/domain/ports/repository"
)

const bundleKey = "bundles"

var _ repository.BundleRepository = (*BundleRepo)(nil)

// BundleRepo persists the editable catalog. Unlike vouchers, an absent or
// corrupt record falls back to the built-in default table, so the generator
// always has something to issue against.
type BundleRepo struct {
	kv  repository.KeyValue
	log *zerolog.Logger
}

func NewBundleRepo(kv repository.KeyValue, logger *zerolog.Logger) *BundleRepo {
	repoLog := logger.With().Str("component", "BundleRepo").Logger()
	return &BundleRepo{kv: kv, log: &repoLog}
}

func (r *BundleRepo) LoadAll(ctx context.Context) ([]*model.Bundle, error) {
	raw, err := r.kv.Get(ctx, bundleKey)
	if errors.Is(err, domain.ErrNotFound) {
		return model.DefaultBundles(), nil
	}
	if err != nil {
		return nil, err
	}
	var bundles []*model.Bundle
	if err := json.Unmarshal([]byte(raw), &bundles); err != nil {
		r.log.Warn().Err(err).Msg("discarding corrupt bundle record, using defaults")
		return model.DefaultBundles(), nil
	}
	if len(bundles) == 0 {
		return model.DefaultBundles(), nil
	}
	return bundles, nil
}

func (r *BundleRepo) SaveAll(ctx context.Context, bundles []*model.Bundle) error {
	data, err := json.Marshal(bundles)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, bundleKey, data)
}
