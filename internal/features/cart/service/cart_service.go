package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"astro-checkout/internal/core/apperror"
	"astro-checkout/internal/core/logger"
	"astro-checkout/internal/features/cart/ports"

	"go.uber.org/zap"
)

// ErrSessionRequired is returned when a request carries no session id.
var ErrSessionRequired = apperror.New(apperror.CodeInvalidArgument, "session_required", "session id is required")

// session pairs a Store with the lock that keeps mutate-then-persist atomic.
type session struct {
	mu       sync.Mutex
	store    *Store
	lastUsed time.Time
}

// CartServiceImpl implements ports.CartService.
//
// It keeps one Store per session in memory. A session seen for the first time is
// restored from the repository, or seeded from the remote cart when nothing is stored.
// Every successful mutation is written back with the session TTL.
type CartServiceImpl struct {
	repo      ports.CartRepository
	source    ports.CartSource
	validator ports.PromoValidator
	ttl       time.Duration
	now       func() time.Time
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewCartService creates a new CartServiceImpl.
func NewCartService(repo ports.CartRepository, source ports.CartSource, validator ports.PromoValidator, ttl time.Duration) *CartServiceImpl {
	return &CartServiceImpl{
		repo:      repo,
		source:    source,
		validator: validator,
		ttl:       ttl,
		now:       time.Now,
		log:       logger.Named("cart"),
		sessions:  make(map[string]*session),
	}
}

// Snapshot returns the session's cart.
func (s *CartServiceImpl) Snapshot(ctx context.Context, sessionID string) (ports.Snapshot, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return ports.Snapshot{}, err
	}
	return sess.store.Snapshot(), nil
}

// AddOrIncrement adds units of a product to the session's cart.
func (s *CartServiceImpl) AddOrIncrement(ctx context.Context, sessionID string, in ports.AddItemInput) (ports.Snapshot, error) {
	return s.mutate(ctx, sessionID, "add", func(store *Store) (ports.Snapshot, error) {
		return store.AddOrIncrement(in.ProductID, in.UnitPrice, in.Delta, in.Variant)
	})
}

// SetQuantity sets the quantity of a line in the session's cart.
func (s *CartServiceImpl) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (ports.Snapshot, error) {
	return s.mutate(ctx, sessionID, "set_quantity", func(store *Store) (ports.Snapshot, error) {
		return store.SetQuantity(productID, quantity)
	})
}

// Remove deletes a line from the session's cart.
func (s *CartServiceImpl) Remove(ctx context.Context, sessionID, productID string) (ports.Snapshot, error) {
	return s.mutate(ctx, sessionID, "remove", func(store *Store) (ports.Snapshot, error) {
		return store.Remove(productID)
	})
}

// ApplyPromo applies a promo code to the session's cart.
func (s *CartServiceImpl) ApplyPromo(ctx context.Context, sessionID, code string) (ports.Snapshot, error) {
	return s.mutate(ctx, sessionID, "apply_promo", func(store *Store) (ports.Snapshot, error) {
		return store.ApplyPromo(ctx, code)
	})
}

// ClearPromo removes the promo from the session's cart.
func (s *CartServiceImpl) ClearPromo(ctx context.Context, sessionID string) (ports.Snapshot, error) {
	return s.mutate(ctx, sessionID, "clear_promo", func(store *Store) (ports.Snapshot, error) {
		return store.ClearPromo(), nil
	})
}

// Reload replaces the session's lines with the remote cart, picking up price changes.
func (s *CartServiceImpl) Reload(ctx context.Context, sessionID string) (ports.Snapshot, error) {
	return s.mutate(ctx, sessionID, "reload", func(store *Store) (ports.Snapshot, error) {
		items, err := s.source.FetchCart(ctx, sessionID)
		if err != nil {
			return store.Snapshot(), fmt.Errorf("service: failed to fetch cart: %w", err)
		}
		return store.Load(items)
	})
}

// Consume hands fn the session's cart under the session lock and empties the cart
// once fn succeeds. Other mutations of the session wait for fn, and a second
// Consume sees the emptied cart. When fn fails the cart is left as it was.
// Failing to persist the emptied cart is logged; fn's outcome stands.
func (s *CartServiceImpl) Consume(ctx context.Context, sessionID string, fn func(ports.Snapshot) error) error {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap := sess.store.Snapshot()
	if err := fn(snap); err != nil {
		return err
	}

	sess.store.Clear()
	if err := s.persist(ctx, sessionID, sess.store); err != nil {
		s.log.Warn("Failed to persist consumed cart",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil
	}

	s.log.Info("Cart consumed",
		zap.String("session_id", sessionID),
		zap.Int("lines", len(snap.Items)),
		zap.String("total", snap.Breakdown.Total.StringFixed(2)),
	)
	return nil
}

// mutate applies op to the session's store and persists the result while holding
// the session lock, so stored state follows the same order as the mutations.
func (s *CartServiceImpl) mutate(ctx context.Context, sessionID, op string, fn func(*Store) (ports.Snapshot, error)) (ports.Snapshot, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return ports.Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap, err := fn(sess.store)
	if err != nil {
		s.log.Debug("Cart mutation rejected",
			zap.String("session_id", sessionID),
			zap.String("op", op),
			zap.Error(err),
		)
		return snap, err
	}

	if err := s.persist(ctx, sessionID, sess.store); err != nil {
		return snap, err
	}

	s.log.Info("Cart updated",
		zap.String("session_id", sessionID),
		zap.String("op", op),
		zap.Int("lines", len(snap.Items)),
		zap.String("total", snap.Breakdown.Total.StringFixed(2)),
	)
	return snap, nil
}

func (s *CartServiceImpl) persist(ctx context.Context, sessionID string, store *Store) error {
	state := store.state()
	if len(state.Items) == 0 {
		if err := s.repo.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("service: failed to delete cart: %w", err)
		}
		return nil
	}

	if err := s.repo.Save(ctx, sessionID, state, s.ttl); err != nil {
		return fmt.Errorf("service: failed to save cart: %w", err)
	}
	return nil
}

// session returns the live session, loading it on first use. Idle sessions older
// than the TTL are dropped from memory on the way.
func (s *CartServiceImpl) session(ctx context.Context, sessionID string) (*session, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	now := s.now()

	s.mu.Lock()
	s.evictIdle(now)
	if sess, ok := s.sessions[sessionID]; ok {
		sess.lastUsed = now
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	store, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have loaded the same session meanwhile.
	if sess, ok := s.sessions[sessionID]; ok {
		sess.lastUsed = now
		return sess, nil
	}

	sess := &session{store: store, lastUsed: now}
	s.sessions[sessionID] = sess
	return sess, nil
}

func (s *CartServiceImpl) load(ctx context.Context, sessionID string) (*Store, error) {
	store := NewStore(s.validator)

	state, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get cart: %w", err)
	}
	if state != nil {
		if _, err := store.restore(*state); err != nil {
			return nil, fmt.Errorf("service: stored cart is invalid: %w", err)
		}
		s.log.Debug("Cart restored", zap.String("session_id", sessionID))
		return store, nil
	}

	items, err := s.source.FetchCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch cart: %w", err)
	}
	if _, err := store.Load(items); err != nil {
		return nil, err
	}

	s.log.Debug("Cart fetched",
		zap.String("session_id", sessionID),
		zap.Int("lines", len(items)),
	)
	return store, nil
}

// evictIdle forgets sessions unused for longer than the TTL. Callers hold s.mu.
func (s *CartServiceImpl) evictIdle(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

var _ ports.CartService = (*CartServiceImpl)(nil)
