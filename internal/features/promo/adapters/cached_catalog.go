package adapters

import (
	"context"
	"time"

	"astro-checkout/internal/core/cache"
	"astro-checkout/internal/core/logger"
	"astro-checkout/internal/features/promo/domain"
	"astro-checkout/internal/features/promo/ports"

	"go.uber.org/zap"
)

const promoKeyPrefix = "promo:"

// CachedCatalog caches successful lookups of another catalog.
// Unknown codes are not cached so a newly published promo is visible immediately.
type CachedCatalog struct {
	next  ports.Catalog
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedCatalog wraps next with a cache whose entries live for ttl.
func NewCachedCatalog(next ports.Catalog, c cache.Cache, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		next:  next,
		cache: c,
		ttl:   ttl,
	}
}

// Lookup serves from the cache, falling back to the wrapped catalog.
// Cache failures are logged and never fail the lookup.
func (c *CachedCatalog) Lookup(ctx context.Context, code string) (*domain.Entry, error) {
	key := promoKeyPrefix + code
	log := logger.Named("promo")

	var cached domain.Entry
	found, err := cache.GetJSON(ctx, c.cache, key, &cached)
	if err != nil {
		log.Warn("Promo cache read failed", zap.String("code", code), zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	entry, err := c.next.Lookup(ctx, code)
	if err != nil || entry == nil {
		return entry, err
	}

	if err := cache.SetJSON(ctx, c.cache, key, entry, c.ttl); err != nil {
		log.Warn("Promo cache write failed", zap.String("code", code), zap.Error(err))
	}

	return entry, nil
}
