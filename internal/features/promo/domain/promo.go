package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"astro-checkout/internal/core/apperror"

	"github.com/shopspring/decimal"
)

// DiscountKind tells the pricing engine how to read DiscountRule.Amount.
type DiscountKind string

const (
	// DiscountKindPercentage takes Amount percent (0-100) off the subtotal.
	DiscountKindPercentage DiscountKind = "percentage"
	// DiscountKindFixed takes Amount, a money value, off the subtotal.
	DiscountKindFixed DiscountKind = "fixed"
)

// RejectionReason explains why a well-formed promo code was declined.
type RejectionReason string

const (
	// ReasonNotFound means the catalog has no such code.
	ReasonNotFound RejectionReason = "not_found"
	// ReasonExpired means the code exists but is past its expiry.
	ReasonExpired RejectionReason = "expired"
	// ReasonAlreadyApplied means the cart already carries this exact code.
	ReasonAlreadyApplied RejectionReason = "already_applied"
)

var (
	// ErrNotFound matches rejections for unknown codes.
	ErrNotFound = apperror.New(apperror.CodeRejected, string(ReasonNotFound), "promo code not found")
	// ErrExpired matches rejections for expired codes.
	ErrExpired = apperror.New(apperror.CodeRejected, string(ReasonExpired), "promo code expired")
	// ErrAlreadyApplied matches rejections for a code applied twice.
	ErrAlreadyApplied = apperror.New(apperror.CodeRejected, string(ReasonAlreadyApplied), "promo code already applied")
	// ErrRejected matches any promo rejection.
	ErrRejected = apperror.New(apperror.CodeRejected, "", "promo code rejected")
)

const maxCodeLength = 32

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)

var hundred = decimal.NewFromInt(100)

// DiscountRule is a validated reduction held by the cart until cleared.
type DiscountRule struct {
	// Code is the normalized promo code that produced the rule.
	Code string `json:"code"`
	// Kind selects percentage or fixed.
	Kind DiscountKind `json:"kind"`
	// Amount is a percentage in [0,100] or a non-negative money amount.
	Amount decimal.Decimal `json:"amount"`
}

// Validate rejects rules the pricing engine must never see.
func (r DiscountRule) Validate() error {
	switch r.Kind {
	case DiscountKindPercentage:
		if r.Amount.IsNegative() || r.Amount.GreaterThan(hundred) {
			return apperror.InvalidArgument("percentage must be 0-100, got %s", r.Amount.String())
		}
	case DiscountKindFixed:
		if r.Amount.IsNegative() {
			return apperror.InvalidArgument("fixed discount cannot be negative, got %s", r.Amount.String())
		}
	default:
		return apperror.InvalidArgument("invalid discount kind %q", r.Kind)
	}
	return nil
}

// Entry is a promo as the catalog stores it.
type Entry struct {
	Code        string          `json:"code"`
	Kind        DiscountKind    `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Rule returns the discount rule the entry grants.
func (e Entry) Rule() DiscountRule {
	return DiscountRule{
		Code:   NormalizeCode(e.Code),
		Kind:   e.Kind,
		Amount: e.Amount,
	}
}

// ExpiredAt reports whether the entry is no longer valid at now.
// An entry expires at the instant ExpiresAt, not after it.
func (e Entry) ExpiredAt(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

// NormalizeCode trims whitespace and upper-cases a user-typed code.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidateCode checks that an already normalized code is well-formed.
func ValidateCode(code string) error {
	if code == "" {
		return apperror.InvalidArgument("promo code is required")
	}
	if len(code) > maxCodeLength || !codePattern.MatchString(code) {
		return apperror.InvalidArgument("promo code %q is malformed", code)
	}
	return nil
}

// Reject builds the rejection error for code.
func Reject(code string, reason RejectionReason) error {
	var msg string
	switch reason {
	case ReasonNotFound:
		msg = "not found"
	case ReasonExpired:
		msg = "has expired"
	case ReasonAlreadyApplied:
		msg = "is already applied"
	default:
		msg = string(reason)
	}
	return apperror.New(apperror.CodeRejected, string(reason), fmt.Sprintf("promo code %s %s", code, msg))
}

// RejectionReasonOf extracts the rejection reason from err, if it is a promo rejection.
func RejectionReasonOf(err error) (RejectionReason, bool) {
	appErr, ok := apperror.As(err)
	if !ok || appErr.Code != apperror.CodeRejected {
		return "", false
	}
	return RejectionReason(appErr.Reason), true
}
