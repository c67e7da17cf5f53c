package domain

import "time"

type PaymentMethod string

const (
	PayCash   PaymentMethod = "cash"
	PayCrypto PaymentMethod = "crypto"
)

// OrderStatus tracks an order through the delivery pipeline.
type OrderStatus string

const (
	StatusOpen      OrderStatus = "open"
	StatusAccepted  OrderStatus = "accepted"
	StatusEnRoute   OrderStatus = "en_route"
	StatusArrived   OrderStatus = "arrived"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusOpen:      {StatusAccepted: true, StatusCancelled: true},
	StatusAccepted:  {StatusEnRoute: true},
	StatusEnRoute:   {StatusArrived: true},
	StatusArrived:   {StatusCompleted: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// Terminal reports whether the status admits no further transitions.
// Chat on a terminal order is closed.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// MeetupPoint is the geographic handoff location picked by the customer.
type MeetupPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OrderLine is a cart line frozen at checkout. Name and unit price are
// copied from the catalog so later product edits do not rewrite history.
type OrderLine struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
}

// ChatMessage is one entry in an order's append-only chat.
type ChatMessage struct {
	SenderID   string    `json:"senderId"`
	SenderRole Role      `json:"senderRole"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

type Order struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"customerId"`
	CourierID       string        `json:"courierId,omitempty"`
	Lines           []OrderLine   `json:"lines"`
	Meetup          *MeetupPoint  `json:"meetup,omitempty"`
	Note            string        `json:"note,omitempty"`
	Payment         PaymentMethod `json:"payment"`
	SubtotalCents   int64         `json:"subtotalCents"`
	DiscountRate    float64       `json:"discountRate"`
	FinalPriceCents int64         `json:"finalPriceCents"`
	Status          OrderStatus   `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	Chat            []ChatMessage `json:"chat"`
}
