package domain

import (
	"astro-checkout/internal/core/apperror"
	promodomain "astro-checkout/internal/features/promo/domain"

	"github.com/shopspring/decimal"
)

// ErrItemNotInCart is returned when an operation names a product the cart does not hold.
var ErrItemNotInCart = apperror.New(apperror.CodeNotFound, "item_not_in_cart", "item not in cart")

// Variant is an optional product option, e.g. {"Metal", "Silver"}.
type Variant struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LineItem is a single product line in the cart.
// UnitPrice is fixed once the line exists; a price change requires re-fetching the cart.
type LineItem struct {
	ProductID string          `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Variant   *Variant        `json:"variant,omitempty"`
}

// LineTotal is UnitPrice times Quantity, zero for non-positive quantities.
func (li LineItem) LineTotal() decimal.Decimal {
	if li.Quantity <= 0 {
		return decimal.Zero
	}
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Validate rejects lines that can never be priced.
func (li LineItem) Validate() error {
	if li.ProductID == "" {
		return apperror.InvalidArgument("product id is required")
	}
	if li.UnitPrice.IsNegative() {
		return apperror.InvalidArgument("unit price for %s cannot be negative", li.ProductID)
	}
	if li.Quantity < 0 {
		return apperror.InvalidArgument("quantity for %s cannot be negative", li.ProductID)
	}
	return nil
}

// Clone returns a deep copy of li.
func (li LineItem) Clone() LineItem {
	if li.Variant != nil {
		v := *li.Variant
		li.Variant = &v
	}
	return li
}

// CloneItems deep-copies a slice of lines.
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, li := range items {
		out[i] = li.Clone()
	}
	return out
}

// State is the persisted part of a cart: its lines and the applied discount.
// The breakdown is derived and never stored.
type State struct {
	Items    []LineItem                `json:"items"`
	Discount *promodomain.DiscountRule `json:"discount,omitempty"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{Items: CloneItems(s.Items)}
	if s.Discount != nil {
		d := *s.Discount
		out.Discount = &d
	}
	return out
}
