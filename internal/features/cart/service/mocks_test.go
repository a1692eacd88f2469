package service

import (
	"context"
	"time"

	"astro-checkout/internal/features/cart/domain"
	promodomain "astro-checkout/internal/features/promo/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPromoValidator is a mock implementation of ports.PromoValidator
type MockPromoValidator struct {
	mock.Mock
}

func (m *MockPromoValidator) Validate(ctx context.Context, rawCode string, subtotal decimal.Decimal, applied *promodomain.DiscountRule) (*promodomain.DiscountRule, error) {
	args := m.Called(ctx, rawCode, subtotal, applied)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promodomain.DiscountRule), args.Error(1)
}

// MockCartSource is a mock implementation of ports.CartSource
type MockCartSource struct {
	mock.Mock
}

func (m *MockCartSource) FetchCart(ctx context.Context, sessionID string) ([]domain.LineItem, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LineItem), args.Error(1)
}

// MockCartRepository is a mock implementation of ports.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Get(ctx context.Context, sessionID string) (*domain.State, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.State), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, sessionID string, state domain.State, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, state, ttl)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
