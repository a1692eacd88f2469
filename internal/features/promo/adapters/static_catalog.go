package adapters

import (
	"context"
	"sync"
	"time"

	"astro-checkout/internal/features/promo/domain"

	"github.com/shopspring/decimal"
)

// StaticCatalog is an in-memory promo catalog.
type StaticCatalog struct {
	mu      sync.RWMutex
	entries map[string]domain.Entry
}

// NewStaticCatalog creates a catalog holding entries, keyed by normalized code.
func NewStaticCatalog(entries ...domain.Entry) *StaticCatalog {
	c := &StaticCatalog{entries: make(map[string]domain.Entry, len(entries))}
	for _, e := range entries {
		c.Put(e)
	}
	return c
}

// DefaultEntries returns the promos the app ships with when no remote catalog is configured.
func DefaultEntries() []domain.Entry {
	diwali := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	return []domain.Entry{
		{
			Code:        "WELCOME10",
			Kind:        domain.DiscountKindPercentage,
			Amount:      decimal.NewFromInt(10),
			Description: "10% off your first order",
		},
		{
			Code:        "STARS15",
			Kind:        domain.DiscountKindPercentage,
			Amount:      decimal.NewFromInt(15),
			Description: "15% off gemstones and yantras",
		},
		{
			Code:        "ASTRO200",
			Kind:        domain.DiscountKindFixed,
			Amount:      decimal.NewFromInt(200),
			Description: "Flat 200 off any consultation pack",
		},
		{
			Code:        "DIWALI2025",
			Kind:        domain.DiscountKindFixed,
			Amount:      decimal.NewFromInt(500),
			ExpiresAt:   &diwali,
			Description: "Festival offer",
		},
	}
}

// Put adds or replaces an entry.
func (c *StaticCatalog) Put(e domain.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[domain.NormalizeCode(e.Code)] = e
}

// Lookup implements ports.Catalog.
func (c *StaticCatalog) Lookup(_ context.Context, code string) (*domain.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[domain.NormalizeCode(code)]
	if !ok {
		return nil, nil
	}
	return &e, nil
}
