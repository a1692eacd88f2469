package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	cartdomain "astro-checkout/internal/features/cart/domain"
	cartports "astro-checkout/internal/features/cart/ports"
	"astro-checkout/internal/features/orders/domain"
	"astro-checkout/internal/features/orders/ports"
	pricingdomain "astro-checkout/internal/features/pricing/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutMocks struct {
	cart     *MockCheckoutCart
	payments *MockPaymentGateway
	gateway  *MockOrderGateway
	repo     *MockOrderRepository
}

func newTestCheckout() (*CheckoutServiceImpl, checkoutMocks) {
	m := checkoutMocks{
		cart:     new(MockCheckoutCart),
		payments: new(MockPaymentGateway),
		gateway:  new(MockOrderGateway),
		repo:     new(MockOrderRepository),
	}
	svc := NewCheckoutService(m.cart, m.payments, m.gateway, m.repo)
	svc.now = func() time.Time { return placedAt }
	svc.newID = func() string { return "ord-42" }
	return svc, m
}

func cartSnapshot() cartports.Snapshot {
	items := []cartdomain.LineItem{{ProductID: "ring", UnitPrice: decimal.NewFromInt(500), Quantity: 2}}
	return cartports.Snapshot{Items: items, Breakdown: pricingdomain.Compute(items, nil)}
}

func checkoutInput() ports.CheckoutInput {
	return ports.CheckoutInput{
		SessionID:        "s1",
		ShippingAddress:  domain.Address{Name: "Asha Rao", City: "Pune"},
		PaymentMethodRef: "pm_card_visa",
	}
}

func TestCheckoutService_Checkout(t *testing.T) {
	svc, m := newTestCheckout()

	m.cart.On("Consume", mock.Anything, "s1").Return(cartSnapshot(), nil).Once()
	m.payments.On("Charge", mock.Anything, mock.MatchedBy(func(req ports.ChargeRequest) bool {
		return req.OrderID == "ord-42" && req.PaymentMethodRef == "pm_card_visa" && req.Amount.Equal(decimal.NewFromInt(1280))
	})).Return(&ports.Charge{ID: "ch_1"}, nil).Once()
	m.gateway.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.ID == "ord-42" && o.ChargeID == "ch_1"
	})).Return(&domain.Order{ID: "ord-42"}, nil).Once()
	m.repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	order, err := svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)

	assert.Equal(t, "ord-42", order.ID)
	assert.Equal(t, placedAt, order.PlacedAt)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "1280.00", order.Breakdown.Total.StringFixed(2))
	assert.Equal(t, "Pune", order.ShippingAddress.City)

	m.cart.AssertExpectations(t)
	m.payments.AssertExpectations(t)
	m.gateway.AssertExpectations(t)
	m.repo.AssertExpectations(t)
}

func TestCheckoutService_EmptyCart(t *testing.T) {
	svc, m := newTestCheckout()
	m.cart.On("Consume", mock.Anything, "s1").Return(cartports.Snapshot{}, nil).Once()

	_, err := svc.Checkout(context.Background(), checkoutInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart is empty")
	m.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

func TestCheckoutService_CartUnavailable(t *testing.T) {
	svc, m := newTestCheckout()
	m.cart.On("Consume", mock.Anything, "s1").Return(cartports.Snapshot{}, errors.New("redis down")).Once()

	_, err := svc.Checkout(context.Background(), checkoutInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	m.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

func TestCheckoutService_ChargeFailureKeepsCart(t *testing.T) {
	svc, m := newTestCheckout()
	cart := newSessionCart(cartSnapshot())
	svc.cart = cart
	m.payments.On("Charge", mock.Anything, mock.Anything).Return(nil, errors.New("card declined")).Once()

	_, err := svc.Checkout(context.Background(), checkoutInput())
	require.Error(t, err)
	m.gateway.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	assert.False(t, cart.current().IsEmpty())
}

func TestCheckoutService_PlacementFailureKeepsCart(t *testing.T) {
	svc, m := newTestCheckout()
	cart := newSessionCart(cartSnapshot())
	svc.cart = cart
	m.payments.On("Charge", mock.Anything, mock.Anything).Return(&ports.Charge{ID: "ch_1"}, nil).Once()
	m.gateway.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, errors.New("502")).Once()

	_, err := svc.Checkout(context.Background(), checkoutInput())
	require.Error(t, err)
	m.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.False(t, cart.current().IsEmpty())
}

func TestCheckoutService_SaveFailureKeepsCart(t *testing.T) {
	svc, m := newTestCheckout()
	cart := newSessionCart(cartSnapshot())
	svc.cart = cart
	m.payments.On("Charge", mock.Anything, mock.Anything).Return(&ports.Charge{ID: "ch_1"}, nil).Once()
	m.gateway.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, nil).Once()
	m.repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	_, err := svc.Checkout(context.Background(), checkoutInput())
	require.Error(t, err)
	assert.False(t, cart.current().IsEmpty())
}

func TestCheckoutService_SuccessEmptiesCart(t *testing.T) {
	svc, m := newTestCheckout()
	cart := newSessionCart(cartSnapshot())
	svc.cart = cart
	m.payments.On("Charge", mock.Anything, mock.Anything).Return(&ports.Charge{ID: "ch_1"}, nil).Once()
	m.gateway.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, nil).Once()
	m.repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)
	assert.True(t, cart.current().IsEmpty())
}

func TestCheckoutService_ConcurrentCheckoutChargesOnce(t *testing.T) {
	svc, m := newTestCheckout()
	svc.cart = newSessionCart(cartSnapshot())

	m.payments.On("Charge", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(20 * time.Millisecond) }).
		Return(&ports.Charge{ID: "ch_1"}, nil).Maybe()
	m.gateway.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	m.repo.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(context.Background(), checkoutInput())
		}(i)
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Error(), "cart is empty")
	m.payments.AssertNumberOfCalls(t, "Charge", 1)
	m.gateway.AssertNumberOfCalls(t, "PlaceOrder", 1)
	m.repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestCheckoutService_MissingPaymentMethod(t *testing.T) {
	svc, m := newTestCheckout()
	in := checkoutInput()
	in.PaymentMethodRef = ""

	_, err := svc.Checkout(context.Background(), in)
	assert.Error(t, err)
	m.cart.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything)
}

func TestCheckoutService_OrderIsFrozen(t *testing.T) {
	svc, m := newTestCheckout()
	snap := cartSnapshot()
	m.cart.On("Consume", mock.Anything, "s1").Return(snap, nil).Once()
	m.payments.On("Charge", mock.Anything, mock.Anything).Return(&ports.Charge{ID: "ch_1"}, nil).Once()
	m.gateway.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, nil).Once()
	m.repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	order, err := svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)

	snap.Items[0].Quantity = 50
	assert.Equal(t, 2, order.Items[0].Quantity)
}

// sessionCart holds one session's cart and serializes Consume like the cart service.
type sessionCart struct {
	mu   sync.Mutex
	snap cartports.Snapshot
}

func newSessionCart(snap cartports.Snapshot) *sessionCart {
	return &sessionCart{snap: snap}
}

func (c *sessionCart) Consume(_ context.Context, _ string, fn func(cartports.Snapshot) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(c.snap); err != nil {
		return err
	}
	c.snap = cartports.Snapshot{}
	return nil
}

func (c *sessionCart) current() cartports.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}
