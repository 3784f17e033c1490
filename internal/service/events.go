package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OrderEvent describes a change in an order's lifecycle.
type OrderEvent struct {
	Type              string     `json:"type"`
	OrderID           uuid.UUID  `json:"order_id"`
	UserID            uuid.UUID  `json:"user_id"`
	OrderNumber       string     `json:"order_number"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	PickupTime        *time.Time `json:"pickup_time,omitempty"`
	OccurredAt        time.Time  `json:"occurred_at"`
}

// Publisher delivers order events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

// Publishers fans an event out to several publishers. Every publisher is
// tried; the returned error joins all failures.
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, ev OrderEvent) error {
	var errs []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newOrderEvent(typ string, o *Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:              typ,
		OrderID:           o.ID,
		UserID:            o.UserID,
		OrderNumber:       o.OrderNumber,
		FulfillmentStatus: o.FulfillmentStatus,
		PickupTime:        o.PickupTime,
		OccurredAt:        at,
	}
}
