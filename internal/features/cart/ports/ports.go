package ports

import (
	"context"
	"time"

	"astro-checkout/internal/features/cart/domain"
	pricingdomain "astro-checkout/internal/features/pricing/domain"
	promodomain "astro-checkout/internal/features/promo/domain"

	"github.com/shopspring/decimal"
)

// Snapshot is a consistent view of a cart: its lines, the applied discount and the
// breakdown computed from both.
type Snapshot struct {
	Items     []domain.LineItem         `json:"items"`
	Discount  *promodomain.DiscountRule `json:"discount,omitempty"`
	Breakdown pricingdomain.Breakdown   `json:"breakdown"`
}

// IsEmpty reports whether the snapshot holds no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// AddItemInput describes an addOrIncrement request.
type AddItemInput struct {
	ProductID string
	UnitPrice decimal.Decimal
	Delta     int
	Variant   *domain.Variant
}

// CartService defines the primary port for session carts.
type CartService interface {
	Snapshot(ctx context.Context, sessionID string) (Snapshot, error)
	AddOrIncrement(ctx context.Context, sessionID string, in AddItemInput) (Snapshot, error)
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (Snapshot, error)
	Remove(ctx context.Context, sessionID, productID string) (Snapshot, error)
	ApplyPromo(ctx context.Context, sessionID, code string) (Snapshot, error)
	ClearPromo(ctx context.Context, sessionID string) (Snapshot, error)
	Reload(ctx context.Context, sessionID string) (Snapshot, error)
	// Consume runs fn on the cart while holding the session, then empties the cart if
	// fn succeeded. Concurrent calls on one session run one after the other.
	Consume(ctx context.Context, sessionID string, fn func(Snapshot) error) error
}

// PromoValidator turns a raw promo code into a discount rule or a rejection.
type PromoValidator interface {
	Validate(ctx context.Context, rawCode string, subtotal decimal.Decimal, applied *promodomain.DiscountRule) (*promodomain.DiscountRule, error)
}

// CartSource fetches the server-side cart a session starts from.
type CartSource interface {
	FetchCart(ctx context.Context, sessionID string) ([]domain.LineItem, error)
}

// CartRepository defines the secondary port for cart session storage.
// Get returns nil, nil when the session has no stored cart.
type CartRepository interface {
	Get(ctx context.Context, sessionID string) (*domain.State, error)
	Save(ctx context.Context, sessionID string, state domain.State, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}
