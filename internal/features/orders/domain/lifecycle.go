package domain

import (
	"time"

	"astro-checkout/internal/core/apperror"
)

var (
	// ErrInvalidTransition matches moves the transition table does not allow.
	ErrInvalidTransition = apperror.New(apperror.CodeFailedPrecondition, "invalid_transition", "invalid status transition")
	// ErrAlreadyInState matches requests for the status the order already has.
	ErrAlreadyInState = apperror.New(apperror.CodeFailedPrecondition, "already_in_state", "order already in requested status")
)

// Lifecycle applies status transitions to orders.
// It never mutates the order it is given: a successful transition returns an updated copy.
type Lifecycle struct {
	now func() time.Time
}

// NewLifecycle creates a Lifecycle stamping transitions with the wall clock.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{now: time.Now}
}

// NewLifecycleWithClock creates a Lifecycle that reads the time from now.
func NewLifecycleWithClock(now func() time.Time) *Lifecycle {
	return &Lifecycle{now: now}
}

// Check reports whether o may move to status, without changing anything.
func (l *Lifecycle) Check(o *Order, to OrderStatus) error {
	if !to.Valid() {
		return apperror.InvalidArgument("unknown order status %q", to)
	}
	if o.Status == to {
		return apperror.Newf(apperror.CodeFailedPrecondition, ErrAlreadyInState.Reason,
			"order %s is already %s", o.ID, to)
	}
	if !o.Status.CanTransitionTo(to) {
		return apperror.Newf(apperror.CodeFailedPrecondition, ErrInvalidTransition.Reason,
			"order %s cannot move from %s to %s", o.ID, o.Status, to)
	}
	return nil
}

// Transition moves o to status now.
func (l *Lifecycle) Transition(o *Order, to OrderStatus) (*Order, error) {
	return l.TransitionAt(o, to, l.now())
}

// TransitionAt moves o to status at the given time. A time earlier than the newest
// history entry is clamped to it so the history stays ordered.
func (l *Lifecycle) TransitionAt(o *Order, to OrderStatus, at time.Time) (*Order, error) {
	if err := l.Check(o, to); err != nil {
		return nil, err
	}

	if last, ok := o.LastChange(); ok && at.Before(last.At) {
		at = last.At
	}

	next := o.Clone()
	next.Status = to
	next.StatusHistory = append(next.StatusHistory, StatusChange{Status: to, At: at})
	return next, nil
}

// Cancel moves o to cancelled; only pending and confirmed orders can be cancelled.
func (l *Lifecycle) Cancel(o *Order) (*Order, error) {
	return l.Transition(o, OrderStatusCancelled)
}

// Replay applies changes in order on a copy of o, all or nothing.
func (l *Lifecycle) Replay(o *Order, changes []StatusChange) (*Order, error) {
	current := o
	for _, change := range changes {
		next, err := l.TransitionAt(current, change.Status, change.At)
		if err != nil {
			return nil, err
		}
		current = next
	}
	if current == o {
		return o.Clone(), nil
	}
	return current, nil
}
