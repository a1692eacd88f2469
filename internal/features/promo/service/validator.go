package service

import (
	"context"
	"fmt"
	"time"

	"astro-checkout/internal/features/promo/domain"
	"astro-checkout/internal/features/promo/ports"

	"github.com/shopspring/decimal"
)

// Validator turns a user-typed promo code into a DiscountRule.
// It keeps no state between calls; persisting the rule is the caller's job.
type Validator struct {
	catalog ports.Catalog
	now     func() time.Time
}

// NewValidator creates a Validator backed by catalog.
func NewValidator(catalog ports.Catalog) *Validator {
	return &Validator{
		catalog: catalog,
		now:     time.Now,
	}
}

// NewValidatorWithClock creates a Validator that reads the time from now.
func NewValidatorWithClock(catalog ports.Catalog, now func() time.Time) *Validator {
	return &Validator{
		catalog: catalog,
		now:     now,
	}
}

// Validate checks code against the catalog and the rule currently applied to the cart.
// The subtotal is accepted for minimum-spend rules; no current promo uses it.
//
// Errors: an InvalidArgument for malformed codes or rules, a rejection carrying a
// domain.RejectionReason, or a wrapped catalog failure.
func (v *Validator) Validate(ctx context.Context, rawCode string, subtotal decimal.Decimal, applied *domain.DiscountRule) (*domain.DiscountRule, error) {
	code := domain.NormalizeCode(rawCode)
	if err := domain.ValidateCode(code); err != nil {
		return nil, err
	}

	if applied != nil && applied.Code == code {
		return nil, domain.Reject(code, domain.ReasonAlreadyApplied)
	}

	entry, err := v.catalog.Lookup(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("promo: failed to look up %s: %w", code, err)
	}

	if entry == nil {
		return nil, domain.Reject(code, domain.ReasonNotFound)
	}

	if entry.ExpiredAt(v.now()) {
		return nil, domain.Reject(code, domain.ReasonExpired)
	}

	rule := entry.Rule()
	rule.Code = code
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	return &rule, nil
}
