package ports

import (
	"context"

	"astro-checkout/internal/features/promo/domain"
)

// Catalog looks promo codes up in the marketplace's promo catalog.
// This is a Secondary Port (Driven Port).
type Catalog interface {
	// Lookup returns the entry for a normalized code, or nil with no error when
	// the catalog has no such code.
	Lookup(ctx context.Context, code string) (*domain.Entry, error)
}
