package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"hotspot-voucher-manager/internal/domain"
	"hotspot-voucher-manager/internal/domain/model"
	"hotspot-voucher-manager/internal/domain/ports/repository"
)

var _ BundleFinder = (*BundleUseCase)(nil)

// BundleUseCase manages the bundle catalog. The catalog is read by the
// voucher engine at creation time only and edited independently through
// Save; voucher operations never touch it.
type BundleUseCase struct {
	mu      sync.Mutex
	bundles []*model.Bundle

	repo repository.BundleRepository
	log  *zerolog.Logger
}

func NewBundleUseCase(repo repository.BundleRepository, logger *zerolog.Logger) *BundleUseCase {
	ucLog := logger.With().Str("component", "BundleUseCase").Logger()
	return &BundleUseCase{repo: repo, log: &ucLog}
}

// Load hydrates the catalog; the repository already falls back to the
// default table when nothing is persisted.
func (uc *BundleUseCase) Load(ctx context.Context) error {
	bundles, err := uc.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load bundles: %w", err)
	}
	uc.mu.Lock()
	uc.bundles = bundles
	uc.mu.Unlock()
	uc.log.Info().Int("count", len(bundles)).Msg("bundle catalog loaded")
	return nil
}

// List returns the catalog in its stored order.
func (uc *BundleUseCase) List(ctx context.Context) ([]*model.Bundle, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]*model.Bundle, len(uc.bundles))
	for i, b := range uc.bundles {
		c := *b
		out[i] = &c
	}
	return out, nil
}

// Find returns the bundle with the given id or domain.ErrNotFound.
func (uc *BundleUseCase) Find(ctx context.Context, id string) (*model.Bundle, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, b := range uc.bundles {
		if b.ID == id {
			c := *b
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Save inserts or replaces a bundle and writes the catalog through.
func (uc *BundleUseCase) Save(ctx context.Context, bundle *model.Bundle) error {
	if bundle.IsZero() {
		return domain.ErrInvalidArgument
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()

	replaced := false
	for i, b := range uc.bundles {
		if b.ID == bundle.ID {
			uc.bundles[i] = bundle
			replaced = true
			break
		}
	}
	if !replaced {
		uc.bundles = append(uc.bundles, bundle)
	}
	if err := uc.repo.SaveAll(ctx, uc.bundles); err != nil {
		return fmt.Errorf("persist bundles: %w", err)
	}
	uc.log.Info().Str("bundle", bundle.ID).Msg("bundle saved")
	return nil
}
