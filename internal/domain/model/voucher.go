package model

import (
	"time"

	"github.com/google/uuid"

	"hotspot-voucher-manager/internal/domain"
)

type VoucherStatus string

const (
	VoucherStatusAvailable VoucherStatus = "available"
	VoucherStatusActive    VoucherStatus = "active"
	VoucherStatusUsed      VoucherStatus = "used"
	VoucherStatusExpired   VoucherStatus = "expired"
)

// Voucher is an issued access code. The bundle attributes are copied at
// creation time so later catalog edits never touch already-issued vouchers.
// Timestamps are epoch milliseconds, matching the persisted layout.
type Voucher struct {
	ID              string        `json:"id"`
	Code            string        `json:"code"`
	BundleID        string        `json:"bundleId"`
	BundleName      string        `json:"bundleName"`
	DurationMinutes int           `json:"durationMinutes"`
	Price           int64         `json:"price"`
	Status          VoucherStatus `json:"status"`
	CreatedAt       int64         `json:"createdAt"`
	ActivatedAt     *int64        `json:"activatedAt,omitempty"`
	ExpiresAt       *int64        `json:"expiresAt,omitempty"`
}

// NewVoucher stamps a fresh Available voucher with the bundle's current values.
func NewVoucher(code string, bundle *Bundle, now time.Time) (*Voucher, error) {
	if code == "" || bundle.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &Voucher{
		ID:              uuid.NewString(),
		Code:            code,
		BundleID:        bundle.ID,
		BundleName:      bundle.Name,
		DurationMinutes: bundle.DurationMinutes,
		Price:           bundle.Price,
		Status:          VoucherStatusAvailable,
		CreatedAt:       now.UnixMilli(),
	}, nil
}

// Activate opens the timed access window. Only an Available voucher can be
// activated; every other state returns ErrInvalidTransition.
func (v *Voucher) Activate(now time.Time) error {
	if v.Status != VoucherStatusAvailable {
		return domain.ErrInvalidTransition
	}
	at := now.UnixMilli()
	ex := at + int64(v.DurationMinutes)*60_000
	v.Status = VoucherStatusActive
	v.ActivatedAt = &at
	v.ExpiresAt = &ex
	return nil
}

// MarkUsed flags a voucher as handed out without starting a countdown.
func (v *Voucher) MarkUsed() error {
	if v.Status != VoucherStatusAvailable {
		return domain.ErrInvalidTransition
	}
	v.Status = VoucherStatusUsed
	return nil
}

// Expire transitions an Active voucher whose window has closed. The boundary
// is strict: a voucher expiring exactly at `now` is still active.
func (v *Voucher) Expire(now time.Time) bool {
	if v.Status != VoucherStatusActive || v.ExpiresAt == nil {
		return false
	}
	if now.UnixMilli() <= *v.ExpiresAt {
		return false
	}
	v.Status = VoucherStatusExpired
	return true
}

// IsTerminal reports whether the voucher can never transition again.
func (v *Voucher) IsTerminal() bool {
	return v.Status == VoucherStatusUsed || v.Status == VoucherStatusExpired
}

// Clone returns a deep copy, safe to hand out as a read-only snapshot.
func (v *Voucher) Clone() *Voucher {
	c := *v
	if v.ActivatedAt != nil {
		at := *v.ActivatedAt
		c.ActivatedAt = &at
	}
	if v.ExpiresAt != nil {
		ex := *v.ExpiresAt
		c.ExpiresAt = &ex
	}
	return &c
}
