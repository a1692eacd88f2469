// Package domain holds the pricing engine: the single place a cart's subtotal,
// discount, shipping, tax and total are computed.
package domain

import (
	cartdomain "astro-checkout/internal/features/cart/domain"
	promodomain "astro-checkout/internal/features/promo/domain"

	"github.com/shopspring/decimal"
)

// moneyPlaces is the number of decimal places every breakdown field is rounded to.
const moneyPlaces = 2

var (
	// FreeShippingThreshold is the pre-discount subtotal that must be exceeded for free shipping.
	FreeShippingThreshold = decimal.NewFromInt(1000)
	// FlatShippingFee is charged when the subtotal does not exceed the threshold.
	FlatShippingFee = decimal.NewFromInt(100)
	// TaxRate applies to the discounted subtotal.
	TaxRate = decimal.RequireFromString("0.18")
)

var hundred = decimal.NewFromInt(100)

// Breakdown is the derived price summary of a cart or order.
// Total always equals Subtotal - Discount + Shipping + Tax and no field is negative.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ZeroBreakdown is the breakdown of an empty cart.
func ZeroBreakdown() Breakdown {
	return Breakdown{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Shipping: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}
}

// Reconciles reports whether b satisfies the breakdown invariant.
func (b Breakdown) Reconciles() bool {
	for _, v := range []decimal.Decimal{b.Subtotal, b.Discount, b.Shipping, b.Tax, b.Total} {
		if v.IsNegative() {
			return false
		}
	}
	if b.Discount.GreaterThan(b.Subtotal) {
		return false
	}
	return b.Total.Equal(b.Subtotal.Sub(b.Discount).Add(b.Shipping).Add(b.Tax))
}

// Policy holds the shipping and tax constants the engine applies.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPolicy returns the marketplace's pricing policy.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: FreeShippingThreshold,
		FlatShippingFee:       FlatShippingFee,
		TaxRate:               TaxRate,
	}
}

// Compute prices items under the default policy.
func Compute(items []cartdomain.LineItem, discount *promodomain.DiscountRule) Breakdown {
	return DefaultPolicy().Compute(items, discount)
}

// Compute prices items with an optional discount rule.
//
// Lines with a non-positive quantity are ignored; a cart without positive lines prices
// to all zeros whatever the rule. The discount is capped at the subtotal, the shipping
// threshold is compared against the pre-discount subtotal, and tax applies after discount.
// Every field is rounded half away from zero to two decimals before the total is summed,
// so the total reconciles exactly with the displayed fields.
func (p Policy) Compute(items []cartdomain.LineItem, discount *promodomain.DiscountRule) Breakdown {
	subtotal := decimal.Zero
	priced := 0
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(item.LineTotal())
		priced++
	}

	if priced == 0 {
		return ZeroBreakdown()
	}

	subtotal = round(subtotal)
	discountAmount := decimal.Min(rawDiscount(subtotal, discount), subtotal)
	if discountAmount.IsNegative() {
		discountAmount = decimal.Zero
	}

	shipping := p.FlatShippingFee
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	shipping = round(shipping)

	tax := round(subtotal.Sub(discountAmount).Mul(p.TaxRate))

	return Breakdown{
		Subtotal: subtotal,
		Discount: discountAmount,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Sub(discountAmount).Add(shipping).Add(tax),
	}
}

// rawDiscount is the uncapped reduction a rule grants on subtotal.
func rawDiscount(subtotal decimal.Decimal, rule *promodomain.DiscountRule) decimal.Decimal {
	if rule == nil {
		return decimal.Zero
	}

	switch rule.Kind {
	case promodomain.DiscountKindPercentage:
		return round(subtotal.Mul(rule.Amount).Div(hundred))
	case promodomain.DiscountKindFixed:
		return round(rule.Amount)
	default:
		return decimal.Zero
	}
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}
