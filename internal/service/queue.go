package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/peseat/api/internal/auth"
)

// ListQueue returns the kitchen queue for staff: placed orders still being
// made or awaiting collection, in pickup order. includeDone adds finished orders.
func (s *OrderService) ListQueue(ctx context.Context, p auth.Principal, includeDone bool) ([]Order, error) {
	if !p.IsStaff() {
		return nil, ErrForbidden
	}

	rows, err := s.newStore(s.pool).ListQueueOrders(ctx, includeDone)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	orders, err := ordersFromRows(rows)
	if err != nil {
		return nil, err
	}

	SortQueue(orders)
	return orders, nil
}

// SortQueue orders by pickup time (missing last), then by the numeric
// order-number suffix, then by placement time.
func SortQueue(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]

		switch {
		case a.PickupTime == nil && b.PickupTime != nil:
			return false
		case a.PickupTime != nil && b.PickupTime == nil:
			return true
		case a.PickupTime != nil && b.PickupTime != nil && !a.PickupTime.Equal(*b.PickupTime):
			return a.PickupTime.Before(*b.PickupTime)
		}

		if sa, sb := OrderNumberSuffix(a.OrderNumber), OrderNumberSuffix(b.OrderNumber); sa != sb {
			return sa < sb
		}

		if a.PlacedAt != nil && b.PlacedAt != nil {
			return a.PlacedAt.Before(*b.PlacedAt)
		}
		return false
	})
}
