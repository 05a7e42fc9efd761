// Package events publishes order lifecycle events.
package events

import (
	"context"
	"time"

	"food-storefront/models"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

type Event struct {
	Type           string             `json:"type"`
	OrderID        string             `json:"orderId"`
	OrderNumber    string             `json:"orderNumber"`
	CustomerID     string             `json:"customer"`
	RestaurantID   string             `json:"restaurant"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previousStatus,omitempty"`
	Total          float64            `json:"total"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

// NewOrderEvent snapshots an order for publication.
func NewOrderEvent(kind string, o *models.Order, previous models.OrderStatus) Event {
	return Event{
		Type:           kind,
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerID:     o.CustomerID,
		RestaurantID:   o.RestaurantID,
		Status:         o.Status,
		PreviousStatus: previous,
		Total:          o.Pricing.Total,
		OccurredAt:     time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
