package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/peseat/api/internal/auth"
	"github.com/peseat/api/internal/database"
	"github.com/peseat/api/internal/enum"
)

// Action is a staff-initiated fulfillment step.
type Action string

const (
	ActionMarkReady     Action = enum.ActionMarkReady
	ActionMarkCollected Action = enum.ActionMarkCollected
)

type transitionKey struct {
	from   database.FulfillmentStatus
	action Action
}

// transitions is the complete set of legal fulfillment moves.
var transitions = map[transitionKey]database.FulfillmentStatus{
	{database.FulfillmentStatusMaking, ActionMarkReady}:    database.FulfillmentStatusReady,
	{database.FulfillmentStatusReady, ActionMarkCollected}: database.FulfillmentStatusCollected,
}

// NextStatus resolves the target status of applying action to an order in
// the given placement and fulfillment state.
func NextStatus(placement database.PlacementStatus, from database.FulfillmentStatus, action Action) (database.FulfillmentStatus, error) {
	if placement != database.PlacementStatusPlaced {
		return "", ErrNotPlaced
	}
	if to, ok := transitions[transitionKey{from, action}]; ok {
		return to, nil
	}
	switch {
	case action == ActionMarkReady && from == database.FulfillmentStatusReady:
		return "", ErrAlreadyReady
	case action == ActionMarkCollected && from == database.FulfillmentStatusMaking:
		return "", ErrNotReady
	}
	return "", ErrInvalidTransition
}

// MarkReady moves a placed order from making to ready.
func (s *OrderService) MarkReady(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*Order, error) {
	return s.transition(ctx, p, orderID, ActionMarkReady)
}

// MarkCollected moves a ready order to collected and completes it, which
// releases the customer's single active order.
func (s *OrderService) MarkCollected(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*Order, error) {
	return s.transition(ctx, p, orderID, ActionMarkCollected)
}

func (s *OrderService) transition(ctx context.Context, p auth.Principal, orderID uuid.UUID, action Action) (*Order, error) {
	if !p.IsStaff() {
		return nil, ErrForbidden
	}

	store := s.newStore(s.pool)
	current, err := store.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	to, err := NextStatus(current.PlacementStatus, current.FulfillmentStatus, action)
	if err != nil {
		return nil, err
	}

	// Conditional on the status we just read; a concurrent transition makes this miss.
	row, err := store.UpdateFulfillmentStatus(ctx, database.UpdateFulfillmentStatusParams{
		ID:                  orderID,
		FulfillmentStatus:   to,
		FulfillmentStatus_2: current.FulfillmentStatus,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("update fulfillment status: %w", err)
	}

	order, err := orderFromRow(row)
	if err != nil {
		return nil, err
	}

	evType := enum.EventOrderReady
	if to == database.FulfillmentStatusCollected {
		evType = enum.EventOrderCollected
	}
	ev := newOrderEvent(evType, order, s.now())
	s.background(func(ctx context.Context) {
		s.publish(ctx, ev)
	})

	return order, nil
}
