package adapters

import (
	"context"
	"fmt"
	"time"

	"astro-checkout/internal/core/cache"
	"astro-checkout/internal/features/cart/domain"
)

const cartKeyPrefix = "cart:"

// RedisCartRepository implements ports.CartRepository on top of the cache.
type RedisCartRepository struct {
	cache cache.Cache
}

// NewRedisCartRepository creates a new RedisCartRepository.
func NewRedisCartRepository(c cache.Cache) *RedisCartRepository {
	return &RedisCartRepository{
		cache: c,
	}
}

// Save stores the cart state. A zero ttl keeps it until deleted.
func (r *RedisCartRepository) Save(ctx context.Context, sessionID string, state domain.State, ttl time.Duration) error {
	if err := cache.SetJSON(ctx, r.cache, cartKey(sessionID), state, ttl); err != nil {
		return fmt.Errorf("failed to save cart to cache: %w", err)
	}
	return nil
}

// Get loads the cart state, returning nil, nil when the session has none.
func (r *RedisCartRepository) Get(ctx context.Context, sessionID string) (*domain.State, error) {
	var state domain.State
	found, err := cache.GetJSON(ctx, r.cache, cartKey(sessionID), &state)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart from cache: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &state, nil
}

// Delete removes the cart state.
func (r *RedisCartRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.cache.Delete(ctx, cartKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete cart from cache: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}
