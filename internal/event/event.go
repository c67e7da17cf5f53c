// Package event defines the change feed the storefront core emits for every
// committed mutation of shared state. Viewers of the catalog and the order
// lists subscribe through a transport-specific implementation; delivery
// guarantees beyond "eventually consistent with the latest write" belong to
// the transport, not the core.
package event

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Entities carried on the feed.
const (
	EntityProduct = "product"
	EntityOrder   = "order"
)

// Change describes one committed mutation.
type Change struct {
	Entity string    `json:"entity"`
	ID     string    `json:"id"`
	Action Action    `json:"action"`
	At     time.Time `json:"at"`
}

// Publisher emits one Change per committed mutation.
type Publisher interface {
	Publish(ctx context.Context, ch Change) error
}

// Nop discards all changes. Used when no feed transport is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Change) error { return nil }
