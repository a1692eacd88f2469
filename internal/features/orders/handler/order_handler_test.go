package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"astro-checkout/internal/core/httpapi"
	cartdomain "astro-checkout/internal/features/cart/domain"
	"astro-checkout/internal/features/orders/domain"
	"astro-checkout/internal/features/orders/ports"
	"astro-checkout/internal/features/orders/service"
	pricingdomain "astro-checkout/internal/features/pricing/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of ports.OrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*domain.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.order(m.Called(ctx, orderID))
}

func (m *MockOrderService) Transition(ctx context.Context, orderID, status string) (*domain.Order, error) {
	return m.order(m.Called(ctx, orderID, status))
}

func (m *MockOrderService) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.order(m.Called(ctx, orderID))
}

func (m *MockOrderService) Sync(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.order(m.Called(ctx, orderID))
}

// MockCheckoutService is a mock implementation of ports.CheckoutService
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Checkout(ctx context.Context, in ports.CheckoutInput) (*domain.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func setupApp(orders *MockOrderService, checkout *MockCheckoutService) *fiber.App {
	app := fiber.New()
	NewOrderHandler(orders, checkout).Register(app)
	return app
}

func sampleAddress() domain.Address {
	return domain.Address{
		Name:       "Asha Rao",
		Phone:      "+91 98450 00000",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
		Country:    "IN",
	}
}

func sampleOrder(t *testing.T) *domain.Order {
	t.Helper()
	items := []cartdomain.LineItem{{ProductID: "ring", UnitPrice: decimal.NewFromInt(500), Quantity: 2}}
	o, err := domain.NewOrder("ord-1", time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), items,
		pricingdomain.Compute(items, nil), sampleAddress(), "pm_upi")
	require.NoError(t, err)
	return o
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(httpapi.SessionHeader, "s1")
	return req
}

func decodeError(t *testing.T, resp *http.Response) httpapi.ErrorResponse {
	t.Helper()
	var body httpapi.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// TestOrderHandler_Checkout verifies checkout handling.
func TestOrderHandler_Checkout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		orders, checkout := new(MockOrderService), new(MockCheckoutService)
		app := setupApp(orders, checkout)

		checkout.On("Checkout", mock.Anything, ports.CheckoutInput{
			SessionID:        "s1",
			ShippingAddress:  sampleAddress(),
			PaymentMethodRef: "pm_upi",
		}).Return(sampleOrder(t), nil).Once()

		resp, err := app.Test(jsonRequest("POST", "/checkout", CheckoutRequest{
			ShippingAddress:  sampleAddress(),
			PaymentMethodRef: "pm_upi",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body struct {
			ID        string            `json:"id"`
			Status    string            `json:"status"`
			Breakdown map[string]string `json:"breakdown"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ord-1", body.ID)
		assert.Equal(t, "pending", body.Status)
		assert.Equal(t, "1280", body.Breakdown["total"])
		checkout.AssertExpectations(t)
	})

	t.Run("MissingAddressField", func(t *testing.T) {
		orders, checkout := new(MockOrderService), new(MockCheckoutService)
		app := setupApp(orders, checkout)

		addr := sampleAddress()
		addr.Line1 = ""
		resp, err := app.Test(jsonRequest("POST", "/checkout", CheckoutRequest{
			ShippingAddress:  addr,
			PaymentMethodRef: "pm_upi",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Message, "shipping_address.line1 is required")
		checkout.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
	})

	t.Run("ChargeFailure", func(t *testing.T) {
		orders, checkout := new(MockOrderService), new(MockCheckoutService)
		app := setupApp(orders, checkout)

		checkout.On("Checkout", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("charge declined")).Once()

		resp, err := app.Test(jsonRequest("POST", "/checkout", CheckoutRequest{
			ShippingAddress:  sampleAddress(),
			PaymentMethodRef: "pm_upi",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "internal server error", decodeError(t, resp).Message)
	})
}

// TestOrderHandler_GetOrder verifies order retrieval.
func TestOrderHandler_GetOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		orders, checkout := new(MockOrderService), new(MockCheckoutService)
		app := setupApp(orders, checkout)

		orders.On("GetOrder", mock.Anything, "ord-1").Return(sampleOrder(t), nil).Once()

		resp, err := app.Test(jsonRequest("GET", "/orders/ord-1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		orders.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		orders, checkout := new(MockOrderService), new(MockCheckoutService)
		app := setupApp(orders, checkout)

		orders.On("GetOrder", mock.Anything, "ghost").Return(nil, service.ErrOrderNotFound).Once()

		resp, err := app.Test(jsonRequest("GET", "/orders/ghost", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "order_not_found", decodeError(t, resp).Reason)
	})
}

// TestOrderHandler_Transition verifies status change handling.
func TestOrderHandler_Transition(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		orders, checkout := new(MockOrderService), new(MockCheckoutService)
		app := setupApp(orders, checkout)

		confirmed := sampleOrder(t)
		confirmed.Status = domain.OrderStatusConfirmed
		orders.On("Transition", mock.Anything, "ord-1", "confirmed").Return(confirmed, nil).Once()

		resp, err := app.Test(jsonRequest("POST", "/orders/ord-1/transitions", TransitionRequest{Status: "confirmed"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		orders.AssertExpectations(t)
	})

	t.Run("InvalidTransition", func(t *testing.T) {
		orders, checkout := new(MockOrderService), new(MockCheckoutService)
		app := setupApp(orders, checkout)

		orders.On("Transition", mock.Anything, "ord-1", "delivered").Return(nil, domain.ErrInvalidTransition).Once()

		resp, err := app.Test(jsonRequest("POST", "/orders/ord-1/transitions", TransitionRequest{Status: "delivered"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "invalid_transition", decodeError(t, resp).Reason)
	})

	t.Run("MissingStatus", func(t *testing.T) {
		orders, checkout := new(MockOrderService), new(MockCheckoutService)
		app := setupApp(orders, checkout)

		resp, err := app.Test(jsonRequest("POST", "/orders/ord-1/transitions", map[string]string{}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestOrderHandler_Cancel(t *testing.T) {
	orders, checkout := new(MockOrderService), new(MockCheckoutService)
	app := setupApp(orders, checkout)

	orders.On("Cancel", mock.Anything, "ord-1").Return(nil, domain.ErrInvalidTransition).Once()

	resp, err := app.Test(jsonRequest("POST", "/orders/ord-1/cancel", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	orders.AssertExpectations(t)
}

func TestOrderHandler_Sync(t *testing.T) {
	orders, checkout := new(MockOrderService), new(MockCheckoutService)
	app := setupApp(orders, checkout)

	orders.On("Sync", mock.Anything, "ord-1").Return(sampleOrder(t), nil).Once()

	resp, err := app.Test(jsonRequest("POST", "/orders/ord-1/sync", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	orders.AssertExpectations(t)
}
