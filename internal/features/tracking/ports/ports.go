package ports

import (
	"context"

	ordersdomain "astro-checkout/internal/features/orders/domain"
	"astro-checkout/internal/features/tracking/domain"
)

// OrderReader loads placed orders. The orders service satisfies it.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (*ordersdomain.Order, error)
}

// TrackingService defines the primary port for order tracking.
type TrackingService interface {
	// GetTimeline returns the delivery timeline of an order.
	GetTimeline(ctx context.Context, orderID string) (*domain.Timeline, error)
}
