package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted after a committed mutation.
const (
	CartCreated     = "cart.created"
	CartItemAdded   = "cart.item_added"
	CartItemUpdated = "cart.item_updated"
	CartItemRemoved = "cart.item_removed"
	CartDeleted     = "cart.deleted"

	OrderCreated     = "order.created"
	OrderItemAdded   = "order.item_added"
	OrderItemUpdated = "order.item_updated"
	OrderItemRemoved = "order.item_removed"
	OrderDeleted     = "order.deleted"
)

type Event struct {
	Type          string         `json:"type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   uuid.UUID      `json:"aggregate_id"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Data          map[string]any `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...Event) error { return nil }
