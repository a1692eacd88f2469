package service

import (
	"context"

	cartports "astro-checkout/internal/features/cart/ports"
	"astro-checkout/internal/features/orders/domain"
	"astro-checkout/internal/features/orders/ports"

	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of ports.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// MockOrderGateway is a mock implementation of ports.OrderGateway
type MockOrderGateway struct {
	mock.Mock
}

func (m *MockOrderGateway) PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderGateway) FetchOrderStatus(ctx context.Context, orderID string) (*ports.RemoteStatus, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RemoteStatus), args.Error(1)
}

func (m *MockOrderGateway) CancelOrderRemote(ctx context.Context, orderID string) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *MockOrderGateway) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockPaymentGateway is a mock implementation of ports.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Charge(ctx context.Context, req ports.ChargeRequest) (*ports.Charge, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Charge), args.Error(1)
}

// MockCheckoutCart is a mock implementation of ports.CheckoutCart
type MockCheckoutCart struct {
	mock.Mock
}

// Consume hands fn the snapshot set up for the call, or returns the configured error
// without calling fn.
func (m *MockCheckoutCart) Consume(ctx context.Context, sessionID string, fn func(cartports.Snapshot) error) error {
	args := m.Called(ctx, sessionID)
	if err := args.Error(1); err != nil {
		return err
	}
	return fn(args.Get(0).(cartports.Snapshot))
}
