package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/peseat/api/internal/database"
	"github.com/peseat/api/internal/enum"
	"github.com/shopspring/decimal"
)

// sideEffectTimeout bounds the post-checkout and post-transition work.
const sideEffectTimeout = 10 * time.Second

// Errors returned by the cart and order services.
var (
	// validation
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidPickupTime  = errors.New("pickup time is missing or invalid")
	ErrPickupTooSoon      = errors.New("pickup time must be at least 30 minutes from now")
	ErrPickupNotToday     = errors.New("pickup time must be today")
	ErrPickupOutsideHours = errors.New("pickup time must be between 08:00 and 17:00")
	ErrQuantityTooLarge   = fmt.Errorf("quantity per item cannot exceed %d", enum.MaxLineQuantity)

	// not found
	ErrItemNotFound  = errors.New("item not found")
	ErrNotInCart     = errors.New("item not in cart")
	ErrOrderNotFound = errors.New("order not found")

	// state conflicts
	ErrActiveOrderExists = errors.New("you already have an active order")
	ErrCartConflict      = errors.New("cart was modified concurrently, please retry")
	ErrNotPlaced         = errors.New("order has not been placed")
	ErrAlreadyReady      = errors.New("order is already ready")
	ErrNotReady          = errors.New("order is not ready for collection")
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrForbidden = errors.New("staff access required")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed for checkout, fulfillment and order reads.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	LockCustomerCheckout(ctx context.Context, userID uuid.UUID) error
	CountActiveOrders(ctx context.Context, userID uuid.UUID) (int64, error)
	GetCartForUpdate(ctx context.Context, userID uuid.UUID) (database.Order, error)
	AllocateDailySequence(ctx context.Context, dateKey string) (int32, error)
	SealCart(ctx context.Context, arg database.SealCartParams) (database.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetLastOrder(ctx context.Context, userID uuid.UUID) (database.Order, error)
	ListOrdersByUser(ctx context.Context, arg database.ListOrdersByUserParams) ([]database.Order, error)
	ListQueueOrders(ctx context.Context, includeDone bool) ([]database.Order, error)
	UpdateFulfillmentStatus(ctx context.Context, arg database.UpdateFulfillmentStatusParams) (database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// ItemStatsStore records how often catalog items are ordered.
type ItemStatsStore interface {
	IncrementItemOrders(ctx context.Context, arg database.IncrementItemOrdersParams) error
}

// Pool is a connection pool that can both run queries and open transactions.
// Satisfied by *pgxpool.Pool.
type Pool interface {
	TxBeginner
	database.DBTX
}

// Order is a placed (or still open) order as seen by customers and staff.
type Order struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	OrderNumber       string          `json:"order_number"`
	OrderDayKey       string          `json:"order_day_key"`
	PlacementStatus   string          `json:"status"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	PaymentStatus     string          `json:"payment_status"`
	Items             []LineItem      `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
	PickupTime        *time.Time      `json:"pickup_time"`
	PlacedAt          *time.Time      `json:"placed_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CheckoutRequest is the input for converting a cart into an order.
type CheckoutRequest struct {
	UserID     uuid.UUID
	PickupTime string
}

// OrderConfig carries the canteen-specific knobs of the order service.
type OrderConfig struct {
	OrderPrefix string
	Pickup      PickupPolicy
	Now         func() time.Time
}

// OrderService handles checkout, fulfillment and order reads.
type OrderService struct {
	pool      Pool
	newStore  NewOrderStore
	stats     ItemStatsStore
	publisher Publisher
	prefix    string
	pickup    PickupPolicy
	now       func() time.Time

	wg sync.WaitGroup
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(pool Pool, newStore NewOrderStore, stats ItemStatsStore, publisher Publisher, cfg OrderConfig) *OrderService {
	if cfg.OrderPrefix == "" {
		cfg.OrderPrefix = enum.DefaultOrderPrefix
	}
	if cfg.Pickup.Location == nil {
		cfg.Pickup = DefaultPickupPolicy()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &OrderService{
		pool:      pool,
		newStore:  newStore,
		stats:     stats,
		publisher: publisher,
		prefix:    cfg.OrderPrefix,
		pickup:    cfg.Pickup,
		now:       cfg.Now,
	}
}

// Wait blocks until all background side effects have finished.
func (s *OrderService) Wait() {
	s.wg.Wait()
}

// Checkout validates the customer's cart and pickup time, allocates the day's
// order number and seals the cart into a placed order, all in one transaction.
func (s *OrderService) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	order, err := s.checkoutTx(ctx, req)
	if err != nil {
		if isActiveOrderConflict(err) {
			return nil, ErrActiveOrderExists
		}
		return nil, err
	}

	s.afterCheckout(order)
	return order, nil
}

func (s *OrderService) checkoutTx(ctx context.Context, req CheckoutRequest) (*Order, error) {
	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Serialize checkouts of the same customer ---
	if err := store.LockCustomerCheckout(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("lock checkout: %w", err)
	}

	// --- Single active order ---
	active, err := store.CountActiveOrders(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("count active orders: %w", err)
	}
	if active > 0 {
		return nil, ErrActiveOrderExists
	}

	// --- Cart must have lines ---
	cart, err := store.GetCartForUpdate(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	items, err := decodeItems(cart.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	// --- Pickup window ---
	now := s.now()
	pickup, err := ParsePickupTime(req.PickupTime, s.pickup.Location)
	if err != nil {
		return nil, err
	}
	if err := s.pickup.Validate(pickup, now); err != nil {
		return nil, err
	}

	// --- Freeze lines and totals ---
	items, totals := RecomputeTotals(items)
	raw, err := encodeItems(items)
	if err != nil {
		return nil, err
	}

	// --- Order number ---
	dateKey := DateKey(now, s.pickup.Location)
	counter, err := Allocate(ctx, store, dateKey)
	if err != nil {
		return nil, err
	}
	orderNumber := FormatOrderNumber(s.prefix, counter)

	// --- Seal ---
	row, err := store.SealCart(ctx, database.SealCartParams{
		ID:          cart.ID,
		OrderDayKey: pgtype.Text{String: dateKey, Valid: true},
		OrderNumber: pgtype.Text{String: orderNumber, Valid: true},
		Items:       raw,
		Subtotal:    decimalToNumeric(totals.Subtotal),
		Tax:         decimalToNumeric(totals.Tax),
		Total:       decimalToNumeric(totals.Total),
		PickupTime:  pgtype.Timestamptz{Time: pickup, Valid: true},
		PlacedAt:    pgtype.Timestamptz{Time: now, Valid: true},
		Version:     cart.Version,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartConflict
		}
		return nil, fmt.Errorf("seal cart: %w", err)
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return orderFromRow(row)
}

// afterCheckout bumps catalog popularity and announces the order. Both are
// best-effort and never affect the checkout result.
func (s *OrderService) afterCheckout(order *Order) {
	s.background(func(ctx context.Context) {
		if s.stats != nil {
			for _, li := range order.Items {
				err := s.stats.IncrementItemOrders(ctx, database.IncrementItemOrdersParams{
					Count: int64(li.Quantity),
					ID:    li.ItemID,
				})
				if err != nil {
					log.Printf("WARNING: increment total_orders for item %s: %v", li.ItemID, err)
				}
			}
		}
		s.publish(ctx, newOrderEvent(enum.EventOrderPlaced, order, s.now()))
	})
}

func (s *OrderService) background(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (s *OrderService) publish(ctx context.Context, ev OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("WARNING: publish %s for order %s: %v", ev.Type, ev.OrderID, err)
	}
}

// LastOrder returns the customer's most recently placed order, or nil.
func (s *OrderService) LastOrder(ctx context.Context, owner uuid.UUID) (*Order, error) {
	row, err := s.newStore(s.pool).GetLastOrder(ctx, owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last order: %w", err)
	}
	return orderFromRow(row)
}

// ListOrders returns the customer's placed orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, owner uuid.UUID, limit, offset int32) ([]Order, error) {
	rows, err := s.newStore(s.pool).ListOrdersByUser(ctx, database.ListOrdersByUserParams{
		UserID: owner,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return ordersFromRows(rows)
}

// PickupSlots lists the pickup times still selectable today.
func (s *OrderService) PickupSlots() []time.Time {
	return s.pickup.Slots(s.now())
}

// --- Helpers ---

// isActiveOrderConflict reports whether err is the unique violation raised by
// the one-active-order-per-customer index.
func isActiveOrderConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_one_active_per_user"
	}
	return false
}

func orderFromRow(row database.Order) (*Order, error) {
	items, err := decodeItems(row.Items)
	if err != nil {
		return nil, err
	}
	return &Order{
		ID:                row.ID,
		UserID:            row.UserID,
		OrderNumber:       row.OrderNumber.String,
		OrderDayKey:       row.OrderDayKey.String,
		PlacementStatus:   string(row.PlacementStatus),
		FulfillmentStatus: string(row.FulfillmentStatus),
		PaymentStatus:     string(row.PaymentStatus),
		Items:             items,
		Subtotal:          numericToDecimal(row.Subtotal),
		Tax:               numericToDecimal(row.Tax),
		Total:             numericToDecimal(row.Total),
		PickupTime:        timestamptzPtr(row.PickupTime),
		PlacedAt:          timestamptzPtr(row.PlacedAt),
		CompletedAt:       timestamptzPtr(row.CompletedAt),
		CreatedAt:         row.CreatedAt,
	}, nil
}

func ordersFromRows(rows []database.Order) ([]Order, error) {
	out := make([]Order, 0, len(rows))
	for _, r := range rows {
		o, err := orderFromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

func timestamptzPtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
