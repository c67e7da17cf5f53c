package cart

import (
	"context"
	"errors"
	"sync"

	"plugdrop/internal/domain"
)

type catalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Service keeps each customer's working set of cart lines. Carts are
// per-actor state: nothing here touches stock. Product data is looked up
// live on every read, so prices and availability always reflect the current
// catalog until checkout freezes them.
type Service struct {
	mu       sync.Mutex
	carts    map[string][]domain.CartLine
	products catalog
}

func New(products catalog) *Service {
	return &Service{
		carts:    make(map[string][]domain.CartLine),
		products: products,
	}
}

// LineView is a cart line joined with its live product.
type LineView struct {
	Product        domain.Product `json:"product"`
	Quantity       int            `json:"quantity"`
	LineTotalCents int64          `json:"lineTotalCents"`
}

// View is the rendered cart: live products, live subtotal, and whether the
// cart would survive checkout against current stock.
type View struct {
	Lines         []LineView `json:"lines"`
	SubtotalCents int64      `json:"subtotalCents"`
	Satisfiable   bool       `json:"satisfiable"`
}

// Add puts one unit of the product in the customer's cart, or increments an
// existing line. Rejected when the product is sold out or the line already
// holds everything in stock.
func (s *Service) Add(ctx context.Context, customerID, productID string) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[customerID]
	for i, l := range lines {
		if l.ProductID != productID {
			continue
		}
		if l.Quantity >= p.Stock {
			return domain.StockConflictError{ProductID: productID, Requested: l.Quantity + 1, Available: p.Stock}
		}
		lines[i].Quantity++
		return nil
	}
	if p.SoldOut() {
		return domain.StockConflictError{ProductID: productID, Requested: 1, Available: 0}
	}
	s.carts[customerID] = append(lines, domain.CartLine{ProductID: productID, Quantity: 1})
	return nil
}

// SetQuantity pins a line to qty, clamped to [1, stock]. Zero removes the
// line. A sold-out product cannot be kept in the cart at any quantity.
func (s *Service) SetQuantity(ctx context.Context, customerID, productID string, qty int) error {
	if qty <= 0 {
		s.Remove(customerID, productID)
		return nil
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p.SoldOut() {
		s.Remove(customerID, productID)
		return domain.StockConflictError{ProductID: productID, Requested: qty, Available: 0}
	}
	if qty > p.Stock {
		qty = p.Stock
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[customerID]
	for i, l := range lines {
		if l.ProductID == productID {
			lines[i].Quantity = qty
			return nil
		}
	}
	s.carts[customerID] = append(lines, domain.CartLine{ProductID: productID, Quantity: qty})
	return nil
}

func (s *Service) Remove(customerID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[customerID]
	for i, l := range lines {
		if l.ProductID == productID {
			s.carts[customerID] = append(lines[:i], lines[i+1:]...)
			return
		}
	}
}

// Get renders the cart against the live catalog. Lines whose product was
// deleted, or whose quantity now exceeds stock, mark the cart
// unsatisfiable; checkout re-validates regardless, since stock is shared
// mutable state.
func (s *Service) Get(ctx context.Context, customerID string) (View, error) {
	view := View{Satisfiable: true}
	for _, l := range s.Lines(customerID) {
		p, err := s.products.GetByID(ctx, l.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				view.Satisfiable = false
				continue
			}
			return View{}, err
		}
		if l.Quantity > p.Stock {
			view.Satisfiable = false
		}
		lineTotal := p.PriceCents * int64(l.Quantity)
		view.Lines = append(view.Lines, LineView{Product: *p, Quantity: l.Quantity, LineTotalCents: lineTotal})
		view.SubtotalCents += lineTotal
	}
	return view, nil
}

// Lines returns a copy of the customer's raw cart lines.
func (s *Service) Lines(customerID string) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.carts[customerID]...)
}

// Clear drops the customer's cart. Called after a committed checkout.
func (s *Service) Clear(customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, customerID)
}
