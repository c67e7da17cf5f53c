package product

import (
	"context"
	"sort"
	"sync"
	"time"

	"plugdrop/internal/domain"

	"github.com/google/uuid"
)

// Memory is the mock-data catalog store. All mutations are serialized on one
// mutex; reads hand out copies so callers never alias shared state.
//
// Reserve and Release are the stock halves of the order store's checkout and
// cancel transactions; they are all-or-nothing under the same mutex.
type Memory struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewMemory() *Memory {
	return &Memory{products: make(map[string]domain.Product)}
}

func (m *Memory) List(context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) GetByID(_ context.Context, id string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *Memory) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, ok := m.products[p.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.products[p.ID] = p
	cp := p
	return &cp, nil
}

func (m *Memory) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.products[p.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	m.products[p.ID] = p
	cp := p
	return &cp, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// Reserve decrements stock for every line, or for none: lines are validated
// against current stock first, and the first shortage aborts the whole
// reservation with no partial decrement.
func (m *Memory) Reserve(lines []domain.OrderLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lines {
		p, ok := m.products[l.ProductID]
		if !ok {
			return domain.ErrNotFound
		}
		if p.Stock < l.Quantity {
			return domain.StockConflictError{ProductID: l.ProductID, Requested: l.Quantity, Available: p.Stock}
		}
	}
	for _, l := range lines {
		p := m.products[l.ProductID]
		p.Stock -= l.Quantity
		m.products[l.ProductID] = p
	}
	return nil
}

// Release returns previously reserved quantities to stock. Products deleted
// by an admin in the meantime are skipped.
func (m *Memory) Release(lines []domain.OrderLine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lines {
		p, ok := m.products[l.ProductID]
		if !ok {
			continue
		}
		p.Stock += l.Quantity
		m.products[l.ProductID] = p
	}
}

var _ Repository = (*Memory)(nil)
