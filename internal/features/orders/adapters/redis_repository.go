package adapters

import (
	"context"
	"fmt"

	"astro-checkout/internal/core/cache"
	"astro-checkout/internal/features/orders/domain"
)

const orderKeyPrefix = "order:"

// RedisOrderRepository implements ports.OrderRepository on top of the cache.
// Orders never expire.
type RedisOrderRepository struct {
	cache cache.Cache
}

// NewRedisOrderRepository creates a new RedisOrderRepository.
func NewRedisOrderRepository(c cache.Cache) *RedisOrderRepository {
	return &RedisOrderRepository{
		cache: c,
	}
}

// Save stores the order.
func (r *RedisOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if err := cache.SetJSON(ctx, r.cache, orderKeyPrefix+order.ID, order, 0); err != nil {
		return fmt.Errorf("failed to save order to cache: %w", err)
	}
	return nil
}

// Get loads an order, returning nil, nil when it is unknown.
func (r *RedisOrderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	found, err := cache.GetJSON(ctx, r.cache, orderKeyPrefix+orderID, &order)
	if err != nil {
		return nil, fmt.Errorf("failed to get order from cache: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &order, nil
}
