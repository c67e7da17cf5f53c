package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"plugdrop/internal/domain"
	"plugdrop/internal/event"
	"plugdrop/internal/notify"
	orderrepo "plugdrop/internal/repository/order"

	"github.com/google/uuid"
)

type catalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type carts interface {
	Lines(customerID string) []domain.CartLine
	Clear(customerID string)
}

// Service drives the order lifecycle: checkout, the courier pipeline,
// cancellation, chat, and the notifications and change-feed events each of
// those produces.
type Service struct {
	orders   orderrepo.Repository
	products catalog
	carts    carts
	notifier notify.Notifier
	events   event.Publisher
	logger   *log.Logger
	now      func() time.Time
}

func New(orders orderrepo.Repository, products catalog, carts carts, notifier notify.Notifier, events event.Publisher, logger *log.Logger) *Service {
	if notifier == nil {
		notifier = notify.NewLog(nil)
	}
	if events == nil {
		events = event.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:   orders,
		products: products,
		carts:    carts,
		notifier: notifier,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckoutInput is everything the customer supplies at checkout. The lines
// come from their cart, not from the request.
type CheckoutInput struct {
	Meetup  *domain.MeetupPoint  `json:"meetup"`
	Note    string               `json:"note"`
	Payment domain.PaymentMethod `json:"payment"`
}

// Checkout turns the customer's cart into an open order. Lines are frozen
// from the live catalog, stock is reserved atomically, and the cart is
// cleared only once the order is committed.
func (s *Service) Checkout(ctx context.Context, actor domain.User, in CheckoutInput) (*domain.Order, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, domain.AuthorizationError{Reason: "only customers check out"}
	}
	if in.Meetup == nil {
		return nil, domain.ValidationError{Reason: "meetup point required"}
	}
	if in.Payment != domain.PayCash && in.Payment != domain.PayCrypto {
		return nil, domain.ValidationError{Reason: "payment must be cash or crypto"}
	}
	cartLines := s.carts.Lines(actor.ID)
	if len(cartLines) == 0 {
		return nil, domain.ValidationError{Reason: "cart is empty"}
	}

	var (
		lines    []domain.OrderLine
		subtotal int64
	)
	for _, cl := range cartLines {
		p, err := s.products.GetByID(ctx, cl.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ValidationError{Reason: "cart references a product that no longer exists"}
			}
			return nil, err
		}
		lines = append(lines, domain.OrderLine{
			ProductID:      p.ID,
			Name:           p.Name,
			UnitPriceCents: p.PriceCents,
			Quantity:       cl.Quantity,
		})
		subtotal += p.PriceCents * int64(cl.Quantity)
	}

	rate := domain.DiscountRate(subtotal, in.Payment)
	o := &domain.Order{
		ID:              uuid.NewString(),
		CustomerID:      actor.ID,
		Lines:           lines,
		Meetup:          in.Meetup,
		Note:            strings.TrimSpace(in.Note),
		Payment:         in.Payment,
		SubtotalCents:   subtotal,
		DiscountRate:    rate,
		FinalPriceCents: domain.FinalPriceCents(subtotal, rate),
		Status:          domain.StatusOpen,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	s.carts.Clear(actor.ID)
	s.publishStock(ctx, o.Lines)

	s.notifier.Notify(ctx, notify.Notification{
		Title:     "New order placed",
		Body:      fmt.Sprintf("Order for %d item(s), %d cents", len(o.Lines), o.FinalPriceCents),
		Recipient: domain.RoleAdmin,
		OrderID:   o.ID,
	})
	s.publish(ctx, o.ID, event.ActionCreated)
	return o, nil
}

// Get returns an order to its customer, its courier, or an admin.
func (s *Service) Get(ctx context.Context, actor domain.User, id string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSee(actor, o) {
		// Hide the order's existence from strangers.
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// List returns the orders the actor is entitled to see. Customers get their
// own, couriers get the open pool plus their assignments, admins get
// everything.
func (s *Service) List(ctx context.Context, actor domain.User) ([]domain.Order, error) {
	switch actor.Role {
	case domain.RoleCustomer:
		return s.orders.List(ctx, orderrepo.Filter{CustomerID: actor.ID})
	case domain.RoleCourier:
		open, err := s.orders.List(ctx, orderrepo.Filter{Status: domain.StatusOpen})
		if err != nil {
			return nil, err
		}
		mine, err := s.orders.List(ctx, orderrepo.Filter{CourierID: actor.ID})
		if err != nil {
			return nil, err
		}
		return append(open, mine...), nil
	case domain.RoleAdmin:
		return s.orders.List(ctx, orderrepo.Filter{})
	default:
		return nil, domain.AuthorizationError{Reason: "unknown role"}
	}
}

// Accept claims an open order for the courier. First claim wins; the
// conditional update rejects the second courier.
func (s *Service) Accept(ctx context.Context, actor domain.User, id string) (*domain.Order, error) {
	if actor.Role != domain.RoleCourier {
		return nil, domain.AuthorizationError{Reason: "only couriers accept orders"}
	}
	if err := s.orders.UpdateStatus(ctx, id, domain.StatusOpen, domain.StatusAccepted, actor.ID); err != nil {
		return nil, err
	}
	s.notifyCustomer(ctx, id, "Your order was accepted", "A courier is preparing your order")
	s.publish(ctx, id, event.ActionUpdated)
	return s.orders.GetByID(ctx, id)
}

// Advance moves an order one step along the courier pipeline. Only the
// assigned courier may advance, and only along the allowed edges.
func (s *Service) Advance(ctx context.Context, actor domain.User, id string, to domain.OrderStatus) (*domain.Order, error) {
	if actor.Role != domain.RoleCourier {
		return nil, domain.AuthorizationError{Reason: "only couriers advance orders"}
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CourierID != actor.ID {
		return nil, domain.AuthorizationError{Reason: "order is assigned to another courier"}
	}
	if to == domain.StatusCancelled || !domain.CanTransition(o.Status, to) {
		return nil, domain.ValidationError{Reason: fmt.Sprintf("cannot move order from %s to %s", o.Status, to)}
	}
	if err := s.orders.UpdateStatus(ctx, id, o.Status, to, ""); err != nil {
		return nil, err
	}
	s.notifyCustomer(ctx, id, statusTitle(to), "")
	s.publish(ctx, id, event.ActionUpdated)
	return s.orders.GetByID(ctx, id)
}

// Cancel withdraws the customer's own order while it is still open, putting
// the reserved stock back on the shelf.
func (s *Service) Cancel(ctx context.Context, actor domain.User, id string) error {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleCustomer || o.CustomerID != actor.ID {
		return domain.AuthorizationError{Reason: "only the ordering customer may cancel"}
	}
	if err := s.orders.Cancel(ctx, id); err != nil {
		return err
	}
	s.publishStock(ctx, o.Lines)
	s.notifier.Notify(ctx, notify.Notification{
		Title:     "Order cancelled",
		Recipient: domain.RoleAdmin,
		OrderID:   id,
	})
	s.publish(ctx, id, event.ActionUpdated)
	return nil
}

// AppendChat adds a message to the order's chat and pings the other side.
func (s *Service) AppendChat(ctx context.Context, actor domain.User, id, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ValidationError{Reason: "message text required"}
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSee(actor, o) {
		return nil, domain.ErrNotFound
	}
	msg := domain.ChatMessage{
		SenderID:   actor.ID,
		SenderRole: actor.Role,
		Text:       text,
		SentAt:     s.now().UTC(),
	}
	if err := s.orders.AppendMessage(ctx, id, msg); err != nil {
		return nil, err
	}

	recipient := domain.RoleCustomer
	if actor.Role == domain.RoleCustomer {
		recipient = domain.RoleCourier
	}
	s.notifier.Notify(ctx, notify.Notification{
		Title:     "New message on your order",
		Body:      text,
		Recipient: recipient,
		OrderID:   id,
	})
	s.publish(ctx, id, event.ActionUpdated)
	return &msg, nil
}

// Delete purges an order and its chat. Admin cleanup, not cancellation:
// reserved stock stays reserved.
func (s *Service) Delete(ctx context.Context, actor domain.User, id string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.AuthorizationError{Reason: "only admins delete orders"}
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, event.ActionDeleted)
	return nil
}

func canSee(actor domain.User, o *domain.Order) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleCustomer:
		return o.CustomerID == actor.ID
	case domain.RoleCourier:
		return o.Status == domain.StatusOpen || o.CourierID == actor.ID
	}
	return false
}

func statusTitle(to domain.OrderStatus) string {
	switch to {
	case domain.StatusEnRoute:
		return "Your order is on the way"
	case domain.StatusArrived:
		return "Your courier has arrived"
	case domain.StatusCompleted:
		return "Order completed"
	default:
		return "Order updated"
	}
}

func (s *Service) notifyCustomer(ctx context.Context, orderID, title, body string) {
	s.notifier.Notify(ctx, notify.Notification{
		Title:     title,
		Body:      body,
		Recipient: domain.RoleCustomer,
		OrderID:   orderID,
	})
}

// publishStock tells catalog viewers that reserved or released quantities
// moved the listed products' stock.
func (s *Service) publishStock(ctx context.Context, lines []domain.OrderLine) {
	for _, l := range lines {
		if err := s.events.Publish(ctx, event.Change{
			Entity: event.EntityProduct,
			ID:     l.ProductID,
			Action: event.ActionUpdated,
			At:     s.now().UTC(),
		}); err != nil {
			s.logger.Printf("publish stock change: %v", err)
		}
	}
}

func (s *Service) publish(ctx context.Context, id string, action event.Action) {
	if err := s.events.Publish(ctx, event.Change{
		Entity: event.EntityOrder,
		ID:     id,
		Action: action,
		At:     s.now().UTC(),
	}); err != nil {
		s.logger.Printf("publish order change: %v", err)
	}
}
