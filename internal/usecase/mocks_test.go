package usecase

import (
	"context"
	"sync"

	"hotspot-voucher-manager/internal/domain"
	"hotspot-voucher-manager/internal/domain/model"
)

// memVoucherRepo is an in-memory VoucherRepository that records every
// write-through, so tests can assert when the engine persisted.
type memVoucherRepo struct {
	mu        sync.Mutex
	saved     []*model.Voucher
	saveCalls int
	failFull  bool // next SaveAll returns ErrStorageFull
}

func newMemVoucherRepo() *memVoucherRepo {
	return &memVoucherRepo{saved: []*model.Voucher{}}
}

func (m *memVoucherRepo) LoadAll(ctx context.Context) ([]*model.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Voucher, len(m.saved))
	for i, v := range m.saved {
		out[i] = v.Clone()
	}
	return out, nil
}

func (m *memVoucherRepo) SaveAll(ctx context.Context, vouchers []*model.Voucher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.failFull {
		return domain.ErrStorageFull
	}
	m.saved = make([]*model.Voucher, len(vouchers))
	for i, v := range vouchers {
		m.saved[i] = v.Clone()
	}
	return nil
}

// memBundleRepo is an in-memory BundleRepository seeded with the default
// catalog, matching the fallback behavior of the real repo.
type memBundleRepo struct {
	mu      sync.Mutex
	bundles []*model.Bundle
}

func newMemBundleRepo() *memBundleRepo {
	return &memBundleRepo{bundles: model.DefaultBundles()}
}

func (m *memBundleRepo) LoadAll(ctx context.Context) ([]*model.Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Bundle, len(m.bundles))
	for i, b := range m.bundles {
		c := *b
		out[i] = &c
	}
	return out, nil
}

func (m *memBundleRepo) SaveAll(ctx context.Context, bundles []*model.Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles = make([]*model.Bundle, len(bundles))
	for i, b := range bundles {
		c := *b
		m.bundles[i] = &c
	}
	return nil
}
