package model

import (
	"time"

	"hotspot-voucher-manager/internal/domain"
)

// Bundle represents a purchasable offer with a fixed access duration and
// price in Tzs.
type Bundle struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"durationMinutes"`
	Price           int64     `json:"price"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (b *Bundle) IsZero() bool { return b == nil || b.ID == "" }

// NewBundle validates and constructs a bundle.
func NewBundle(id, name string, durationMinutes int, price int64) (*Bundle, error) {
	if id == "" || name == "" || durationMinutes <= 0 || price < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Bundle{
		ID:              id,
		Name:            name,
		DurationMinutes: durationMinutes,
		Price:           price,
		CreatedAt:       time.Now(),
	}, nil
}

// DefaultBundles is the catalog seeded on first run, before any edits.
func DefaultBundles() []*Bundle {
	return []*Bundle{
		{ID: "b1", Name: "SAA 1 (High Speed)", DurationMinutes: 60, Price: 200},
		{ID: "b2", Name: "SAA 6 UNLIMITED", DurationMinutes: 360, Price: 500},
		{ID: "b3", Name: "SAA 24 UNLIMITED", DurationMinutes: 1440, Price: 1000},
		{ID: "b4", Name: "WIKI 1 UNLIMITED", DurationMinutes: 10080, Price: 5000},
	}
}
