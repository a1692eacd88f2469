package domain

import (
	"math/rand"
	"testing"

	cartdomain "astro-checkout/internal/features/cart/domain"
	promodomain "astro-checkout/internal/features/promo/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(id, price string, qty int) cartdomain.LineItem {
	return cartdomain.LineItem{ProductID: id, UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func percent(amount string) *promodomain.DiscountRule {
	return &promodomain.DiscountRule{Code: "PCT", Kind: promodomain.DiscountKindPercentage, Amount: decimal.RequireFromString(amount)}
}

func fixed(amount string) *promodomain.DiscountRule {
	return &promodomain.DiscountRule{Code: "FIX", Kind: promodomain.DiscountKindFixed, Amount: decimal.RequireFromString(amount)}
}

func assertBreakdown(t *testing.T, b Breakdown, subtotal, discount, shipping, tax, total string) {
	t.Helper()
	assert.Equal(t, subtotal, b.Subtotal.StringFixed(2), "subtotal")
	assert.Equal(t, discount, b.Discount.StringFixed(2), "discount")
	assert.Equal(t, shipping, b.Shipping.StringFixed(2), "shipping")
	assert.Equal(t, tax, b.Tax.StringFixed(2), "tax")
	assert.Equal(t, total, b.Total.StringFixed(2), "total")
	assert.True(t, b.Reconciles(), "breakdown must reconcile")
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		items    []cartdomain.LineItem
		discount *promodomain.DiscountRule
		want     [5]string
	}{
		{
			name:  "threshold is not exceeded at exactly 1000",
			items: []cartdomain.LineItem{item("ring", "500", 2)},
			want:  [5]string{"1000.00", "0.00", "100.00", "180.00", "1280.00"},
		},
		{
			name:     "ten percent off keeps pre-discount shipping",
			items:    []cartdomain.LineItem{item("ring", "500", 2)},
			discount: percent("10"),
			want:     [5]string{"1000.00", "100.00", "100.00", "162.00", "1162.00"},
		},
		{
			name:  "free shipping above threshold",
			items: []cartdomain.LineItem{item("ring", "500", 2), item("gem", "0.01", 1)},
			want:  [5]string{"1000.01", "0.00", "0.00", "180.00", "1180.01"},
		},
		{
			name:     "fixed discount capped at subtotal",
			items:    []cartdomain.LineItem{item("candle", "150", 1)},
			discount: fixed("500"),
			want:     [5]string{"150.00", "150.00", "100.00", "0.00", "100.00"},
		},
		{
			name:     "fixed discount below subtotal",
			items:    []cartdomain.LineItem{item("candle", "150", 2)},
			discount: fixed("200"),
			want:     [5]string{"300.00", "200.00", "100.00", "18.00", "218.00"},
		},
		{
			name:     "full percentage discount",
			items:    []cartdomain.LineItem{item("book", "1200", 1)},
			discount: percent("100"),
			want:     [5]string{"1200.00", "1200.00", "0.00", "0.00", "0.00"},
		},
		{
			name:     "rounding half away from zero",
			items:    []cartdomain.LineItem{item("incense", "33.33", 1)},
			discount: percent("15"),
			// discount 4.9995 -> 5.00, tax (33.33-5.00)*0.18 = 5.0994 -> 5.10
			want: [5]string{"33.33", "5.00", "100.00", "5.10", "133.43"},
		},
		{
			name:  "zero quantity lines are ignored",
			items: []cartdomain.LineItem{item("ring", "500", 0), item("gem", "10", 3)},
			want:  [5]string{"30.00", "0.00", "100.00", "5.40", "135.40"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Compute(tt.items, tt.discount)
			assertBreakdown(t, b, tt.want[0], tt.want[1], tt.want[2], tt.want[3], tt.want[4])
		})
	}
}

func TestCompute_EmptyCart(t *testing.T) {
	for _, items := range [][]cartdomain.LineItem{nil, {}, {item("ring", "500", 0)}} {
		b := Compute(items, percent("10"))
		assertBreakdown(t, b, "0.00", "0.00", "0.00", "0.00", "0.00")
	}
}

func TestCompute_CustomPolicy(t *testing.T) {
	p := Policy{
		FreeShippingThreshold: decimal.NewFromInt(50),
		FlatShippingFee:       decimal.NewFromInt(7),
		TaxRate:               decimal.Zero,
	}

	assertBreakdown(t, p.Compute([]cartdomain.LineItem{item("a", "50", 1)}, nil), "50.00", "0.00", "7.00", "0.00", "57.00")
	assertBreakdown(t, p.Compute([]cartdomain.LineItem{item("a", "51", 1)}, nil), "51.00", "0.00", "0.00", "0.00", "51.00")
}

func TestCompute_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rules := []*promodomain.DiscountRule{nil, percent("0"), percent("12.5"), percent("100"), fixed("0"), fixed("75.55"), fixed("5000")}

	for i := 0; i < 500; i++ {
		n := rng.Intn(5)
		items := make([]cartdomain.LineItem, n)
		priced := false
		for j := range items {
			items[j] = cartdomain.LineItem{
				ProductID: "p",
				UnitPrice: decimal.New(1+rng.Int63n(200000), -2),
				Quantity:  rng.Intn(4),
			}
			priced = priced || items[j].Quantity > 0
		}
		rule := rules[rng.Intn(len(rules))]

		b := Compute(items, rule)

		assert.True(t, b.Reconciles(), "iteration %d: %+v", i, b)
		assert.True(t, b.Discount.LessThanOrEqual(b.Subtotal), "iteration %d", i)
		if !priced {
			assert.True(t, b.Total.IsZero(), "iteration %d", i)
			continue
		}
		if b.Subtotal.GreaterThan(FreeShippingThreshold) {
			assert.True(t, b.Shipping.IsZero(), "iteration %d", i)
		} else {
			assert.True(t, b.Shipping.Equal(FlatShippingFee), "iteration %d", i)
		}
	}
}

func TestBreakdown_Reconciles(t *testing.T) {
	assert.True(t, ZeroBreakdown().Reconciles())

	b := Compute([]cartdomain.LineItem{item("ring", "500", 2)}, nil)
	b.Total = b.Total.Add(decimal.NewFromInt(1))
	assert.False(t, b.Reconciles())

	neg := ZeroBreakdown()
	neg.Tax = decimal.NewFromInt(-1)
	neg.Total = decimal.NewFromInt(-1)
	assert.False(t, neg.Reconciles())
}
