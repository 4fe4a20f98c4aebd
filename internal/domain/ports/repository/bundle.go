package repository

import (
	"context"

	"hotspot-voucher-manager/internal/domain/model"
)

// BundleRepository persists the editable bundle catalog. LoadAll falls back
// to the default table when the record is missing or corrupt.
type BundleRepository interface {
	LoadAll(ctx context.Context) ([]*model.Bundle, error)
	SaveAll(ctx context.Context, bundles []*model.Bundle) error
}
