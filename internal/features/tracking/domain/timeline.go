package domain

import (
	"time"

	ordersdomain "astro-checkout/internal/features/orders/domain"
)

// StepState is the display state of a tracking step.
type StepState string

const (
	// StepCompleted marks a status the order has passed or ended on.
	StepCompleted StepState = "completed"
	// StepCurrent marks the status the order is waiting in.
	StepCurrent StepState = "current"
	// StepPending marks a status the order has not reached yet.
	StepPending StepState = "pending"
)

// TrackingStep is one row of the delivery timeline.
type TrackingStep struct {
	// Status is the lifecycle status the step stands for.
	Status ordersdomain.OrderStatus `json:"status"`
	// Title is the short label shown for the step.
	Title string `json:"title"`
	// Description is the longer customer-facing text.
	Description string `json:"description"`
	// Timestamp is when the order reached the status; nil for pending steps.
	Timestamp *time.Time `json:"timestamp"`
	// State is completed, current or pending.
	State StepState `json:"state"`
}

// Timeline is the tracking view of one order.
type Timeline struct {
	OrderID string                   `json:"order_id"`
	Status  ordersdomain.OrderStatus `json:"status"`
	Steps   []TrackingStep           `json:"steps"`
}

var descriptions = map[ordersdomain.OrderStatus]string{
	ordersdomain.OrderStatusPending:   "We have received your order.",
	ordersdomain.OrderStatusConfirmed: "The seller has confirmed your order.",
	ordersdomain.OrderStatusShipped:   "Your order is on its way.",
	ordersdomain.OrderStatusDelivered: "Your order has been delivered.",
	ordersdomain.OrderStatusCancelled: "Your order was cancelled.",
}

// Build derives the timeline of o from its status history.
//
// A live order always yields one step per status of the forward sequence:
// the ones before the current status are completed, the current one is current
// (completed once delivered) and the rest are pending without a timestamp.
// A cancelled order lists the forward statuses it reached followed by the
// cancellation, all completed. Steps follow the canonical order, never the
// timestamps.
func Build(o *ordersdomain.Order) []TrackingStep {
	if o.Status == ordersdomain.OrderStatusCancelled {
		return buildCancelled(o)
	}

	current := indexOf(o.Status)
	if current < 0 {
		current = 0
	}

	steps := make([]TrackingStep, 0, len(ordersdomain.ForwardSequence))
	for i, status := range ordersdomain.ForwardSequence {
		var state StepState
		switch {
		case i < current:
			state = StepCompleted
		case i == current && status.IsTerminal():
			state = StepCompleted
		case i == current:
			state = StepCurrent
		default:
			state = StepPending
		}
		steps = append(steps, newStep(o, status, state))
	}
	return steps
}

// BuildTimeline wraps Build with the order's identity.
func BuildTimeline(o *ordersdomain.Order) *Timeline {
	return &Timeline{OrderID: o.ID, Status: o.Status, Steps: Build(o)}
}

func buildCancelled(o *ordersdomain.Order) []TrackingStep {
	steps := make([]TrackingStep, 0, len(ordersdomain.ForwardSequence))
	for _, status := range ordersdomain.ForwardSequence {
		if _, ok := o.Reached(status); !ok {
			break
		}
		steps = append(steps, newStep(o, status, StepCompleted))
	}
	return append(steps, newStep(o, ordersdomain.OrderStatusCancelled, StepCompleted))
}

func newStep(o *ordersdomain.Order, status ordersdomain.OrderStatus, state StepState) TrackingStep {
	step := TrackingStep{
		Status:      status,
		Title:       status.Label(),
		Description: descriptions[status],
		State:       state,
	}
	if state == StepPending {
		return step
	}
	if at, ok := o.Reached(status); ok {
		step.Timestamp = &at
	}
	return step
}

func indexOf(status ordersdomain.OrderStatus) int {
	for i, s := range ordersdomain.ForwardSequence {
		if s == status {
			return i
		}
	}
	return -1
}
