package service

import (
	"context"
	"sync"

	"astro-checkout/internal/core/apperror"
	"astro-checkout/internal/core/logger"
	"astro-checkout/internal/features/cart/domain"
	"astro-checkout/internal/features/cart/ports"
	pricingdomain "astro-checkout/internal/features/pricing/domain"
	promodomain "astro-checkout/internal/features/promo/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrCartEmpty is returned when a promo is applied to a cart without lines.
var ErrCartEmpty = apperror.New(apperror.CodeInvalidArgument, "cart_empty", "cart is empty")

// Listener receives every snapshot a mutation publishes.
// Listeners run while the store is locked and must not call back into it.
type Listener func(ports.Snapshot)

// Store owns the lines and discount of one cart.
//
// Every mutation runs under a single mutex and recomputes the breakdown before
// releasing it, so readers never observe lines and breakdown that disagree.
// A cart that becomes empty drops its discount.
type Store struct {
	mu        sync.Mutex
	validator ports.PromoValidator
	policy    pricingdomain.Policy

	items     []domain.LineItem
	discount  *promodomain.DiscountRule
	breakdown pricingdomain.Breakdown

	listeners map[int]Listener
	nextID    int
}

// NewStore creates an empty Store priced with the default policy.
func NewStore(validator ports.PromoValidator) *Store {
	return NewStoreWithPolicy(validator, pricingdomain.DefaultPolicy())
}

// NewStoreWithPolicy creates an empty Store priced with policy.
func NewStoreWithPolicy(validator ports.PromoValidator, policy pricingdomain.Policy) *Store {
	return &Store{
		validator: validator,
		policy:    policy,
		breakdown: pricingdomain.ZeroBreakdown(),
		listeners: make(map[int]Listener),
	}
}

// AddOrIncrement adds delta units of productID. A new line takes unitPrice, which must be
// positive, and variant; an existing line keeps its own. A resulting quantity of zero or
// less removes the line.
func (s *Store) AddOrIncrement(productID string, unitPrice decimal.Decimal, delta int, variant *domain.Variant) (ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		qty := s.items[i].Quantity + delta
		if qty <= 0 {
			s.removeAt(i)
		} else {
			s.items[i].Quantity = qty
		}
		return s.commit(), nil
	}

	if delta <= 0 {
		return s.snapshot(), apperror.InvalidArgument("cannot add %d units of %s", delta, productID)
	}
	if !unitPrice.IsPositive() {
		return s.snapshot(), apperror.InvalidArgument("unit price for %s must be positive", productID)
	}

	item := domain.LineItem{ProductID: productID, UnitPrice: unitPrice, Quantity: delta}
	if variant != nil {
		v := *variant
		item.Variant = &v
	}
	if err := item.Validate(); err != nil {
		return s.snapshot(), err
	}

	s.items = append(s.items, item)
	return s.commit(), nil
}

// SetQuantity sets the quantity of an existing line; zero removes it.
// Setting zero on an absent line is a no-op.
func (s *Store) SetQuantity(productID string, quantity int) (ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 0 {
		return s.snapshot(), apperror.InvalidArgument("quantity for %s cannot be negative", productID)
	}

	i := s.indexOf(productID)
	if i < 0 {
		if quantity == 0 {
			return s.snapshot(), nil
		}
		return s.snapshot(), domain.ErrItemNotInCart
	}

	if quantity == 0 {
		s.removeAt(i)
	} else {
		s.items[i].Quantity = quantity
	}
	return s.commit(), nil
}

// Remove deletes the line for productID.
func (s *Store) Remove(productID string) (ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return s.snapshot(), domain.ErrItemNotInCart
	}

	s.removeAt(i)
	return s.commit(), nil
}

// ApplyPromo validates code and stores the resulting rule. On any failure the cart
// is left exactly as it was.
func (s *Store) ApplyPromo(ctx context.Context, code string) (ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return s.snapshot(), ErrCartEmpty
	}

	rule, err := s.validator.Validate(ctx, code, s.breakdown.Subtotal, s.discount)
	if err != nil {
		return s.snapshot(), err
	}

	s.discount = cloneRule(rule)
	return s.commit(), nil
}

// ClearPromo drops the applied discount, if any.
func (s *Store) ClearPromo() ports.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.discount = nil
	return s.commit()
}

// Load replaces every line with items. Duplicate product ids are merged into the
// first occurrence and zero quantity lines are dropped. The discount is kept unless
// the cart ends up empty.
func (s *Store) Load(items []domain.LineItem) (ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := mergeItems(items)
	if err != nil {
		return s.snapshot(), err
	}

	s.items = merged
	return s.commit(), nil
}

// Clear empties the cart and drops the discount.
func (s *Store) Clear() ports.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.discount = nil
	return s.commit()
}

// Snapshot returns a deep copy of the current cart.
func (s *Store) Snapshot() ports.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// Subscribe registers fn for every future snapshot and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// restore installs persisted state without validating the discount again.
func (s *Store) restore(state domain.State) (ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := mergeItems(state.Items)
	if err != nil {
		return s.snapshot(), err
	}

	s.items = merged
	s.discount = nil
	if state.Discount != nil {
		if err := state.Discount.Validate(); err != nil {
			logger.Named("cart").Warn("Dropping invalid stored discount",
				zap.String("code", state.Discount.Code),
				zap.Error(err),
			)
		} else {
			d := *state.Discount
			s.discount = &d
		}
	}
	return s.commit(), nil
}

// state returns the persistable part of the cart.
func (s *Store) state() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.State{Items: s.items, Discount: s.discount}.Clone()
}

// commit recomputes the breakdown and notifies listeners. Callers hold s.mu.
func (s *Store) commit() ports.Snapshot {
	if len(s.items) == 0 {
		s.discount = nil
	}
	s.breakdown = s.policy.Compute(s.items, s.discount)

	snap := s.snapshot()
	for _, fn := range s.listeners {
		fn(s.snapshot())
	}
	return snap
}

// snapshot copies the current state. Callers hold s.mu.
func (s *Store) snapshot() ports.Snapshot {
	items := domain.CloneItems(s.items)
	if items == nil {
		items = []domain.LineItem{}
	}
	return ports.Snapshot{
		Items:     items,
		Discount:  cloneRule(s.discount),
		Breakdown: s.breakdown,
	}
}

func (s *Store) indexOf(productID string) int {
	for i, item := range s.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}

// mergeItems validates items, folds duplicate product ids and drops empty lines.
func mergeItems(items []domain.LineItem) ([]domain.LineItem, error) {
	var out []domain.LineItem
	index := make(map[string]int, len(items))

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if item.Quantity == 0 {
			continue
		}
		if i, ok := index[item.ProductID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(out)
		out = append(out, item.Clone())
	}
	return out, nil
}

func cloneRule(r *promodomain.DiscountRule) *promodomain.DiscountRule {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
