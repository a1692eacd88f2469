package service

import (
	"context"
	"fmt"
	"sync"

	"astro-checkout/internal/core/apperror"
	"astro-checkout/internal/core/logger"
	"astro-checkout/internal/features/orders/domain"
	"astro-checkout/internal/features/orders/ports"

	"go.uber.org/zap"
)

// ErrOrderNotFound is returned when the order does not exist.
var ErrOrderNotFound = apperror.New(apperror.CodeNotFound, "order_not_found", "order not found")

// OrderServiceImpl implements ports.OrderService.
//
// Changes to the same order are serialized in-process; the first writer wins and a
// late writer sees the rejection the lifecycle gives for the new state.
type OrderServiceImpl struct {
	repo      ports.OrderRepository
	gateway   ports.OrderGateway
	lifecycle *domain.Lifecycle
	log       *zap.Logger
	locks     keyedMutex
}

// NewOrderService creates a new OrderServiceImpl.
func NewOrderService(repo ports.OrderRepository, gateway ports.OrderGateway, lifecycle *domain.Lifecycle) *OrderServiceImpl {
	return &OrderServiceImpl{
		repo:      repo,
		gateway:   gateway,
		lifecycle: lifecycle,
		log:       logger.Named("orders"),
	}
}

// GetOrder retrieves an order by ID.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, apperror.InvalidArgument("order id is required")
	}

	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Transition moves an order to status and stores the result.
func (s *OrderServiceImpl) Transition(ctx context.Context, orderID, status string) (*domain.Order, error) {
	to, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := s.lifecycle.Transition(order, to)
	if err != nil {
		s.logRejected(order, to, err)
		return nil, err
	}

	return s.save(ctx, next, order.Status)
}

// Cancel cancels an order with the marketplace, then locally. The local order is only
// changed once the marketplace accepted the cancellation.
func (s *OrderServiceImpl) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.Check(order, domain.OrderStatusCancelled); err != nil {
		s.logRejected(order, domain.OrderStatusCancelled, err)
		return nil, err
	}

	if err := s.gateway.CancelOrderRemote(ctx, orderID); err != nil {
		return nil, fmt.Errorf("service: failed to cancel order remotely: %w", err)
	}

	next, err := s.lifecycle.Cancel(order)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, next, order.Status)
}

// Sync pulls the marketplace history and replays the statuses the local order has
// not reached yet, with their remote timestamps. Nothing is stored unless every
// replayed step is legal.
func (s *OrderServiceImpl) Sync(ctx context.Context, orderID string) (*domain.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	remote, err := s.gateway.FetchOrderStatus(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch order status: %w", err)
	}

	var unseen []domain.StatusChange
	for _, change := range remote.StatusHistory {
		if _, ok := order.Reached(change.Status); !ok {
			unseen = append(unseen, change)
		}
	}

	if len(unseen) == 0 {
		return order, nil
	}

	next, err := s.lifecycle.Replay(order, unseen)
	if err != nil {
		s.log.Warn("Remote status history does not replay",
			zap.String("order_id", orderID),
			zap.String("local_status", string(order.Status)),
			zap.String("remote_status", string(remote.Status)),
			zap.Error(err),
		)
		return nil, err
	}

	if remote.Status != "" && next.Status != remote.Status {
		s.log.Warn("Remote status differs from replayed history",
			zap.String("order_id", orderID),
			zap.String("replayed_status", string(next.Status)),
			zap.String("remote_status", string(remote.Status)),
		)
	}

	return s.save(ctx, next, order.Status)
}

func (s *OrderServiceImpl) save(ctx context.Context, order *domain.Order, from domain.OrderStatus) (*domain.Order, error) {
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("service: failed to save order: %w", err)
	}

	s.log.Info("Order status changed",
		zap.String("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(order.Status)),
	)
	return order, nil
}

func (s *OrderServiceImpl) logRejected(order *domain.Order, to domain.OrderStatus, err error) {
	s.log.Info("Order transition rejected",
		zap.String("order_id", order.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(to)),
		zap.String("reason", apperror.ReasonOf(err)),
	)
}

// keyedMutex hands out one lock per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// Lock acquires the lock for key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

var _ ports.OrderService = (*OrderServiceImpl)(nil)
