package service

import (
	"context"
	"fmt"
	"time"

	"astro-checkout/internal/core/apperror"
	"astro-checkout/internal/core/logger"
	cartports "astro-checkout/internal/features/cart/ports"
	"astro-checkout/internal/features/orders/domain"
	"astro-checkout/internal/features/orders/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutServiceImpl implements ports.CheckoutService.
type CheckoutServiceImpl struct {
	cart     ports.CheckoutCart
	payments ports.PaymentGateway
	gateway  ports.OrderGateway
	repo     ports.OrderRepository
	now      func() time.Time
	newID    func() string
	log      *zap.Logger
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(cart ports.CheckoutCart, payments ports.PaymentGateway, gateway ports.OrderGateway, repo ports.OrderRepository) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		cart:     cart,
		payments: payments,
		gateway:  gateway,
		repo:     repo,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      logger.Named("checkout"),
	}
}

// Checkout freezes the session cart into a pending order.
//
// The whole checkout runs inside the cart's Consume: the total is charged, the order
// is placed with the marketplace and stored, and only then is the cart emptied. A
// concurrent checkout of the same session waits and finds the cart empty. The cart is
// untouched if any step fails. A placement failure after a successful charge is
// logged with the charge id.
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, in ports.CheckoutInput) (*domain.Order, error) {
	if in.PaymentMethodRef == "" {
		return nil, apperror.InvalidArgument("payment method is required")
	}

	var order *domain.Order
	err := s.cart.Consume(ctx, in.SessionID, func(snap cartports.Snapshot) error {
		placed, err := s.place(ctx, in, snap)
		if err != nil {
			return err
		}
		order = placed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("total", order.Breakdown.Total.StringFixed(2)),
		zap.Int("lines", len(order.Items)),
	)
	return order, nil
}

func (s *CheckoutServiceImpl) place(ctx context.Context, in ports.CheckoutInput, snap cartports.Snapshot) (*domain.Order, error) {
	if snap.IsEmpty() {
		return nil, apperror.InvalidArgument("cart is empty")
	}

	order, err := domain.NewOrder(s.newID(), s.now().UTC(), snap.Items, snap.Breakdown, in.ShippingAddress, in.PaymentMethodRef)
	if err != nil {
		return nil, err
	}

	charge, err := s.payments.Charge(ctx, ports.ChargeRequest{
		PaymentMethodRef: in.PaymentMethodRef,
		Amount:           order.Breakdown.Total,
		OrderID:          order.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to charge payment: %w", err)
	}
	order.ChargeID = charge.ID

	placed, err := s.gateway.PlaceOrder(ctx, order)
	if err != nil {
		s.log.Error("Order placement failed after charge",
			zap.String("order_id", order.ID),
			zap.String("charge_id", charge.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("service: failed to place order: %w", err)
	}
	if placed != nil && placed.ID != "" && placed.ID != order.ID {
		s.log.Warn("Marketplace assigned a different order id",
			zap.String("order_id", order.ID),
			zap.String("remote_id", placed.ID),
		)
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("service: failed to save order: %w", err)
	}
	return order, nil
}

var _ ports.CheckoutService = (*CheckoutServiceImpl)(nil)
