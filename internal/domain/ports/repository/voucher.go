package repository

import (
	"context"

	"hotspot-voucher-manager/internal/domain/model"
)

// VoucherRepository persists the voucher collection as a single record.
// LoadAll recovers from a corrupt payload by returning an empty collection.
type VoucherRepository interface {
	LoadAll(ctx context.Context) ([]*model.Voucher, error)
	SaveAll(ctx context.Context, vouchers []*model.Voucher) error
}
