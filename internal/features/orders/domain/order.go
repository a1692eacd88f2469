package domain

import (
	"fmt"
	"strings"
	"time"

	"astro-checkout/internal/core/apperror"
	cartdomain "astro-checkout/internal/features/cart/domain"
	pricingdomain "astro-checkout/internal/features/pricing/domain"
)

// OrderStatus represents the current state of an order.
type OrderStatus string

const (
	// OrderStatusPending indicates the order has been placed but not yet confirmed by the seller.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed indicates the seller accepted the order.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusShipped indicates the order has been handed to the courier.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the courier confirmed delivery.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled before dispatch.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ForwardSequence is the canonical path of an order that is never cancelled.
var ForwardSequence = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
}

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: nil,
	OrderStatusCancelled: nil,
}

// ParseStatus converts a case-insensitive status name into an OrderStatus.
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", apperror.InvalidArgument("unknown order status %q", raw)
	}
	return s, nil
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Allowed returns the statuses reachable from s in one step.
func (s OrderStatus) Allowed() []OrderStatus {
	return append([]OrderStatus(nil), transitions[s]...)
}

// CanTransitionTo reports whether to is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Label is the human-readable name of s.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Order placed"
	case OrderStatusConfirmed:
		return "Order confirmed"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// StatusChange is one entry of an order's append-only status history.
type StatusChange struct {
	Status OrderStatus `json:"status"`
	At     time.Time   `json:"at"`
}

// Address is the shipping destination of an order.
type Address struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required,len=2"`
}

// Order represents a placed order. Items and Breakdown are frozen at checkout.
type Order struct {
	// ID is the unique identifier for the order.
	ID string `json:"id"`
	// PlacedAt is the checkout time.
	PlacedAt time.Time `json:"placed_at"`
	// Items is the cart snapshot taken at checkout.
	Items []cartdomain.LineItem `json:"items"`
	// Breakdown is the price breakdown taken at checkout.
	Breakdown pricingdomain.Breakdown `json:"breakdown"`
	// ShippingAddress is where the order ships.
	ShippingAddress Address `json:"shipping_address"`
	// PaymentMethodRef is the opaque reference of the payment method charged.
	PaymentMethodRef string `json:"payment_method_ref"`
	// ChargeID is the payment gateway's id for the charge, when one was made.
	ChargeID string `json:"charge_id,omitempty"`
	// Status is the current lifecycle state.
	Status OrderStatus `json:"status"`
	// StatusHistory lists every status the order reached, oldest first.
	StatusHistory []StatusChange `json:"status_history"`
}

// NewOrder freezes items and breakdown into a pending order placed at placedAt.
func NewOrder(id string, placedAt time.Time, items []cartdomain.LineItem, breakdown pricingdomain.Breakdown, address Address, paymentMethodRef string) (*Order, error) {
	if id == "" {
		return nil, apperror.InvalidArgument("order id is required")
	}
	if len(items) == 0 {
		return nil, apperror.InvalidArgument("order must contain at least one item")
	}
	if paymentMethodRef == "" {
		return nil, apperror.InvalidArgument("payment method is required")
	}
	if !breakdown.Reconciles() {
		return nil, apperror.InvalidArgument("breakdown does not reconcile")
	}

	return &Order{
		ID:               id,
		PlacedAt:         placedAt,
		Items:            cartdomain.CloneItems(items),
		Breakdown:        breakdown,
		ShippingAddress:  address,
		PaymentMethodRef: paymentMethodRef,
		Status:           OrderStatusPending,
		StatusHistory:    []StatusChange{{Status: OrderStatusPending, At: placedAt}},
	}, nil
}

// Clone returns a deep copy of o.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = cartdomain.CloneItems(o.Items)
	c.StatusHistory = append([]StatusChange(nil), o.StatusHistory...)
	return &c
}

// LastChange returns the newest history entry.
func (o *Order) LastChange() (StatusChange, bool) {
	if len(o.StatusHistory) == 0 {
		return StatusChange{}, false
	}
	return o.StatusHistory[len(o.StatusHistory)-1], true
}

// Reached returns when o entered status, if it ever did.
func (o *Order) Reached(status OrderStatus) (time.Time, bool) {
	for _, change := range o.StatusHistory {
		if change.Status == status {
			return change.At, true
		}
	}
	return time.Time{}, false
}

// String identifies the order in logs.
func (o *Order) String() string {
	return fmt.Sprintf("order %s (%s)", o.ID, o.Status)
}
