package orders

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// Repository persists orders
type Repository interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	// Transition applies update only if the stored status is still from.
	// It returns ErrNotFound or ErrInvalidTransition otherwise.
	Transition(ctx context.Context, id string, from Status, update Update) (*Order, error)
	// Counts returns the number of orders per status
	Counts(ctx context.Context) (map[Status]int, error)
	Close() error
}

// MemoryRepository keeps orders in a map
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*Order
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders: make(map[string]*Order),
		now:    time.Now,
	}
}

func (r *MemoryRepository) Create(_ context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	r.orders[order.ID] = clone(order)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(order), nil
}

func (r *MemoryRepository) Transition(_ context.Context, id string, from Status, update Update) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if order.Status != from {
		return nil, fmt.Errorf("%w: order is %s, expected %s", ErrInvalidTransition, order.Status, from)
	}

	update.apply(order, r.now().UTC())
	return clone(order), nil
}

func (r *MemoryRepository) Counts(_ context.Context) (map[Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[Status]int)
	for _, o := range r.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (r *MemoryRepository) Close() error { return nil }

// clone copies an order so callers never share state with the store
func clone(o *Order) *Order {
	c := *o
	c.ResumeData = slices.Clone(o.ResumeData)
	if o.ProviderInfo != nil {
		c.ProviderInfo = maps.Clone(o.ProviderInfo)
	}
	return &c
}
