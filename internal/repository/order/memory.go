package order

import (
	"context"
	"sort"
	"sync"

	"plugdrop/internal/domain"
	productrepo "plugdrop/internal/repository/product"
)

// Memory is the mock-data order store. It pairs with the memory catalog:
// checkout and cancel compose the catalog's all-or-nothing Reserve/Release
// with the order mutation, serialized on this store's mutex. Lock order is
// always orders-then-products, so the two stores cannot deadlock.
type Memory struct {
	mu       sync.RWMutex
	orders   map[string]domain.Order
	products *productrepo.Memory
}

func NewMemory(products *productrepo.Memory) *Memory {
	return &Memory{
		orders:   make(map[string]domain.Order),
		products: products,
	}
}

func (m *Memory) Create(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if err := m.products.Reserve(o.Lines); err != nil {
		return err
	}
	m.orders[o.ID] = copyOrder(*o)
	return nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := copyOrder(o)
	return &cp, nil
}

func (m *Memory) List(_ context.Context, f Filter) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Order
	for _, o := range m.orders {
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.CourierID != "" && o.CourierID != f.CourierID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus, courierID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != from {
		return domain.ValidationError{Reason: "order is no longer " + string(from)}
	}
	o.Status = to
	if courierID != "" {
		o.CourierID = courierID
	}
	m.orders[id] = o
	return nil
}

func (m *Memory) Cancel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != domain.StatusOpen {
		return domain.ValidationError{Reason: "only open orders can be cancelled"}
	}
	m.products.Release(o.Lines)
	o.Status = domain.StatusCancelled
	m.orders[id] = o
	return nil
}

func (m *Memory) AppendMessage(_ context.Context, id string, msg domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status.Terminal() {
		return domain.ValidationError{Reason: "chat is closed for this order"}
	}
	o.Chat = append(append([]domain.ChatMessage(nil), o.Chat...), msg)
	m.orders[id] = o
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func copyOrder(o domain.Order) domain.Order {
	o.Lines = append([]domain.OrderLine(nil), o.Lines...)
	o.Chat = append([]domain.ChatMessage(nil), o.Chat...)
	if o.Meetup != nil {
		meetup := *o.Meetup
		o.Meetup = &meetup
	}
	return o
}

var _ Repository = (*Memory)(nil)
