package ports

import (
	"context"

	cartports "astro-checkout/internal/features/cart/ports"
	"astro-checkout/internal/features/orders/domain"

	"github.com/shopspring/decimal"
)

// RemoteStatus is the marketplace's view of an order's progress.
type RemoteStatus struct {
	Status        domain.OrderStatus
	StatusHistory []domain.StatusChange
}

// OrderGateway is the marketplace backend that owns placed orders.
// This is a Secondary Port (Driven Port).
type OrderGateway interface {
	// PlaceOrder submits a frozen order and returns the marketplace's record of it.
	PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// FetchOrderStatus returns the current status and history of an order.
	FetchOrderStatus(ctx context.Context, orderID string) (*RemoteStatus, error)
	// CancelOrderRemote asks the marketplace to cancel an order.
	CancelOrderRemote(ctx context.Context, orderID string) error
	// HealthCheck verifies that the marketplace API is reachable and credentials are valid.
	HealthCheck(ctx context.Context) error
}

// ChargeRequest describes a payment to capture.
type ChargeRequest struct {
	PaymentMethodRef string
	Amount           decimal.Decimal
	OrderID          string
}

// Charge is a captured payment.
type Charge struct {
	ID string
}

// PaymentGateway captures payments. It is an opaque external collaborator.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// OrderRepository defines the secondary port for local order storage.
// Get returns nil, nil when the order is unknown.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
}

// CheckoutCart is the part of the cart service checkout needs. Consume hands fn the
// session's cart and empties it once fn succeeds; a cart is consumed at most once.
type CheckoutCart interface {
	Consume(ctx context.Context, sessionID string, fn func(cartports.Snapshot) error) error
}

// OrderService defines the primary port for placed orders.
type OrderService interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	Transition(ctx context.Context, orderID, status string) (*domain.Order, error)
	Cancel(ctx context.Context, orderID string) (*domain.Order, error)
	Sync(ctx context.Context, orderID string) (*domain.Order, error)
}

// CheckoutInput is what the customer supplies at checkout.
type CheckoutInput struct {
	SessionID        string
	ShippingAddress  domain.Address
	PaymentMethodRef string
}

// CheckoutService defines the primary port for turning a cart into an order.
type CheckoutService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*domain.Order, error)
}
