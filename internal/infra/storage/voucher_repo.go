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

// voucherKey is the fixed record name holding the whole voucher collection.
const voucherKey = "vouchers"

var _ repository.VoucherRepository = (*VoucherRepo)(nil)

// VoucherRepo serializes the voucher collection as one JSON array under a
// fixed key. Reads are whole-collection, writes are whole-collection; there
// is no partial update, matching the write-through contract of the engine.
type VoucherRepo struct {
	kv  repository.KeyValue
	log *zerolog.Logger
}

func NewVoucherRepo(kv repository.KeyValue, logger *zerolog.Logger) *VoucherRepo {
	repoLog := logger.With().Str("component", "VoucherRepo").Logger()
	return &VoucherRepo{kv: kv, log: &repoLog}
}

// LoadAll reads the persisted collection. A missing record yields an empty
// collection; a corrupt one is discarded with a warning rather than failing
// startup.
func (r *VoucherRepo) LoadAll(ctx context.Context) ([]*model.Voucher, error) {
	raw, err := r.kv.Get(ctx, voucherKey)
	if errors.Is(err, domain.ErrNotFound) {
		return []*model.Voucher{}, nil
	}
	if err != nil {
		return nil, err
	}
	var vouchers []*model.Voucher
	if err := json.Unmarshal([]byte(raw), &vouchers); err != nil {
		r.log.Warn().Err(err).Msg("discarding corrupt voucher record")
		return []*model.Voucher{}, nil
	}
	if vouchers == nil {
		vouchers = []*model.Voucher{}
	}
	return vouchers, nil
}

func (r *VoucherRepo) SaveAll(ctx context.Context, vouchers []*model.Voucher) error {
	data, err := json.Marshal(vouchers)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, voucherKey, data)
}
