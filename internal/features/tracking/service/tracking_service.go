package service

import (
	"context"

	"astro-checkout/internal/features/tracking/domain"
	"astro-checkout/internal/features/tracking/ports"
)

// TrackingServiceImpl derives timelines from stored orders.
type TrackingServiceImpl struct {
	orders ports.OrderReader
}

// NewTrackingService creates a new TrackingServiceImpl.
func NewTrackingService(orders ports.OrderReader) *TrackingServiceImpl {
	return &TrackingServiceImpl{
		orders: orders,
	}
}

// GetTimeline loads the order and builds its timeline. Nothing is cached;
// the timeline always reflects the stored history.
func (s *TrackingServiceImpl) GetTimeline(ctx context.Context, orderID string) (*domain.Timeline, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return domain.BuildTimeline(order), nil
}

var _ ports.TrackingService = (*TrackingServiceImpl)(nil)
