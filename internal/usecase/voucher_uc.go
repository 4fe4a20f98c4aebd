package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"hotspot-voucher-manager/internal/domain"
	"hotspot-voucher-manager/internal/domain/model"
	"hotspot-voucher-manager/internal/domain/ports/repository"
	"hotspot-voucher-manager/internal/infra/metrics"
)

// maxCodeAttempts bounds code regeneration when a freshly drawn code collides
// with one already in the collection.
const maxCodeAttempts = 5

// BundleFinder is the slice of the catalog the engine needs at creation time.
type BundleFinder interface {
	Find(ctx context.Context, id string) (*model.Bundle, error)
}

// Stats is the derived dashboard view. Revenue sums the snapshotted price of
// every voucher that left the Available state, so later catalog edits never
// shift past revenue.
type Stats struct {
	Available    int   `json:"available"`
	Active       int   `json:"active"`
	Used         int   `json:"used"`
	Expired      int   `json:"expired"`
	TotalRevenue int64 `json:"totalRevenue"`
}

// VoucherUseCase owns the voucher collection and every transition on it.
// All entry points serialize on one mutex: the HTTP surface and the sweep
// worker are separate goroutines, and the durable copy must only ever see
// one writer.
//
// Persistence is write-through. When the store rejects a write for capacity
// the in-memory mutation is kept and the error surfaced, an accepted window
// of inconsistency until the operator clears terminal vouchers.
type VoucherUseCase struct {
	mu       sync.Mutex
	vouchers []*model.Voucher

	repo     repository.VoucherRepository
	catalog  BundleFinder
	maxBatch int
	now      func() time.Time
	log      *zerolog.Logger
}

func NewVoucherUseCase(repo repository.VoucherRepository, catalog BundleFinder, maxBatch int, logger *zerolog.Logger) *VoucherUseCase {
	if maxBatch <= 0 {
		maxBatch = 50
	}
	ucLog := logger.With().Str("component", "VoucherUseCase").Logger()
	return &VoucherUseCase{
		repo:     repo,
		catalog:  catalog,
		maxBatch: maxBatch,
		now:      time.Now,
		log:      &ucLog,
	}
}

// Load hydrates the in-memory collection from the durable store. Must be
// called once before any other operation.
func (uc *VoucherUseCase) Load(ctx context.Context) error {
	vouchers, err := uc.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load vouchers: %w", err)
	}
	uc.mu.Lock()
	uc.vouchers = vouchers
	uc.mu.Unlock()
	uc.log.Info().Int("count", len(vouchers)).Msg("voucher collection loaded")
	return nil
}

// CreateBatch issues count new Available vouchers stamped with the bundle's
// current attributes. An unknown bundle creates nothing and returns
// domain.ErrNotFound.
func (uc *VoucherUseCase) CreateBatch(ctx context.Context, bundleID string, count int) ([]*model.Voucher, error) {
	if count < 1 || count > uc.maxBatch {
		return nil, fmt.Errorf("%w: count must be in [1,%d]", domain.ErrInvalidArgument, uc.maxBatch)
	}
	bundle, err := uc.catalog.Find(ctx, bundleID)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	taken := make(map[string]struct{}, len(uc.vouchers)+count)
	for _, v := range uc.vouchers {
		taken[v.Code] = struct{}{}
	}

	now := uc.now()
	created := make([]*model.Voucher, 0, count)
	for i := 0; i < count; i++ {
		code, err := uc.uniqueCode(taken)
		if err != nil {
			return nil, err
		}
		v, err := model.NewVoucher(code, bundle, now)
		if err != nil {
			return nil, err
		}
		taken[code] = struct{}{}
		created = append(created, v)
	}
	uc.vouchers = append(uc.vouchers, created...)

	if err := uc.persist(ctx); err != nil {
		return created, err
	}
	metrics.IncVouchersCreated(bundle.ID, count)
	uc.log.Info().Str("bundle", bundle.ID).Int("count", count).Msg("batch created")

	snapshot := make([]*model.Voucher, len(created))
	for i, v := range created {
		snapshot[i] = v.Clone()
	}
	return snapshot, nil
}

// uniqueCode draws codes until one misses the taken set, giving up after a
// bounded number of attempts. The keyspace is ~1M codes; with realistic fleet
// sizes exhaustion means something is badly wrong, so the last draw is kept
// and logged rather than failing the batch.
func (uc *VoucherUseCase) uniqueCode(taken map[string]struct{}) (string, error) {
	var code string
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		c, err := model.GenerateCode()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		code = c
		if _, dup := taken[code]; !dup {
			return code, nil
		}
	}
	uc.log.Warn().Str("code", code).Msg("code collision retries exhausted")
	return code, nil
}

// Activate opens the timed window on an Available voucher.
func (uc *VoucherUseCase) Activate(ctx context.Context, id string) (*model.Voucher, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	v := uc.find(id)
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if err := v.Activate(uc.now()); err != nil {
		return nil, err
	}
	if err := uc.persist(ctx); err != nil {
		return v.Clone(), err
	}
	uc.log.Info().Str("voucher", v.ID).Str("code", v.Code).Msg("voucher activated")
	return v.Clone(), nil
}

// MarkUsed flags an Available voucher as handed out, without a countdown.
func (uc *VoucherUseCase) MarkUsed(ctx context.Context, id string) (*model.Voucher, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	v := uc.find(id)
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if err := v.MarkUsed(); err != nil {
		return nil, err
	}
	if err := uc.persist(ctx); err != nil {
		return v.Clone(), err
	}
	uc.log.Info().Str("voucher", v.ID).Str("code", v.Code).Msg("voucher marked used")
	return v.Clone(), nil
}

// Delete removes the voucher unconditionally, leaving the relative order of
// the rest untouched.
func (uc *VoucherUseCase) Delete(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	idx := -1
	for i, v := range uc.vouchers {
		if v.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	uc.vouchers = append(uc.vouchers[:idx], uc.vouchers[idx+1:]...)
	if err := uc.persist(ctx); err != nil {
		return err
	}
	uc.log.Info().Str("voucher", id).Msg("voucher deleted")
	return nil
}

// SweepExpirations flips every Active voucher whose window has closed
// (strictly before now) to Expired. It writes only when something flipped,
// so back-to-back sweeps with no time movement are free.
func (uc *VoucherUseCase) SweepExpirations(ctx context.Context, now time.Time) (int, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	flipped := 0
	for _, v := range uc.vouchers {
		if v.Expire(now) {
			flipped++
		}
	}
	if flipped == 0 {
		return 0, nil
	}
	if err := uc.persist(ctx); err != nil {
		return flipped, err
	}
	return flipped, nil
}

// ClearExpired removes every Expired voucher.
func (uc *VoucherUseCase) ClearExpired(ctx context.Context) (int, error) {
	return uc.clear(ctx, func(v *model.Voucher) bool {
		return v.Status == model.VoucherStatusExpired
	})
}

// ClearUsed removes every terminal voucher, both Used and Expired.
func (uc *VoucherUseCase) ClearUsed(ctx context.Context) (int, error) {
	return uc.clear(ctx, func(v *model.Voucher) bool {
		return v.IsTerminal()
	})
}

func (uc *VoucherUseCase) clear(ctx context.Context, drop func(*model.Voucher) bool) (int, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	kept := uc.vouchers[:0:0]
	removed := 0
	for _, v := range uc.vouchers {
		if drop(v) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	uc.vouchers = kept
	if err := uc.persist(ctx); err != nil {
		return removed, err
	}
	if removed > 0 {
		uc.log.Info().Int("count", removed).Msg("vouchers cleared")
	}
	return removed, nil
}

// Stats derives the dashboard counters from the current collection.
func (uc *VoucherUseCase) Stats(ctx context.Context) (Stats, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var s Stats
	for _, v := range uc.vouchers {
		switch v.Status {
		case model.VoucherStatusAvailable:
			s.Available++
		case model.VoucherStatusActive:
			s.Active++
		case model.VoucherStatusUsed:
			s.Used++
		case model.VoucherStatusExpired:
			s.Expired++
		}
		if v.Status != model.VoucherStatusAvailable {
			s.TotalRevenue += v.Price
		}
	}
	return s, nil
}

// List returns a deep-copy snapshot of the collection in insertion order,
// optionally filtered by status.
func (uc *VoucherUseCase) List(ctx context.Context, status model.VoucherStatus) ([]*model.Voucher, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]*model.Voucher, 0, len(uc.vouchers))
	for _, v := range uc.vouchers {
		if status != "" && v.Status != status {
			continue
		}
		out = append(out, v.Clone())
	}
	return out, nil
}

// persist writes the whole collection through to the durable store.
// Callers hold the mutex.
func (uc *VoucherUseCase) persist(ctx context.Context) error {
	if err := uc.repo.SaveAll(ctx, uc.vouchers); err != nil {
		if errors.Is(err, domain.ErrStorageFull) {
			metrics.IncStorageWrite("full")
			uc.log.Warn().Msg("durable store full; in-memory state ahead of persisted copy")
			return err
		}
		metrics.IncStorageWrite("error")
		return fmt.Errorf("persist vouchers: %w", err)
	}
	metrics.IncStorageWrite("ok")
	counts := make(map[model.VoucherStatus]int, 4)
	for _, v := range uc.vouchers {
		counts[v.Status]++
	}
	metrics.SetVouchersTotal(counts)
	return nil
}

// find returns the live record for id. Callers hold the mutex.
func (uc *VoucherUseCase) find(id string) *model.Voucher {
	for _, v := range uc.vouchers {
		if v.ID == id {
			return v
		}
	}
	return nil
}
