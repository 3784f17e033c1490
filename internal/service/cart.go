package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/peseat/api/internal/database"
	"github.com/peseat/api/internal/enum"
	"github.com/shopspring/decimal"
)

const maxCartRetries = 3

// LineItem is a snapshot of a catalog item inside a cart or order.
// Name, price and image are copied when the item is added and never
// re-read from the catalog afterwards.
type LineItem struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int32           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// Totals are the derived money fields of a cart or order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Cart is a customer's open, mutable cart.
type Cart struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Items     []LineItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Version   int32           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RecomputeTotals returns a copy of items with line totals recalculated,
// plus the cart totals. Tax is currently always zero.
func RecomputeTotals(items []LineItem) ([]LineItem, Totals) {
	out := make([]LineItem, len(items))
	subtotal := decimal.Zero
	for i, li := range items {
		li.LineTotal = li.UnitPrice.Mul(decimal.NewFromInt32(li.Quantity))
		subtotal = subtotal.Add(li.LineTotal)
		out[i] = li
	}
	tax := decimal.Zero
	return out, Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// CartStore defines the DB methods needed by the cart service.
// Satisfied by *database.Queries.
type CartStore interface {
	GetCart(ctx context.Context, userID uuid.UUID) (database.Order, error)
	CreateCart(ctx context.Context, userID uuid.UUID) (database.Order, error)
	UpdateCartItems(ctx context.Context, arg database.UpdateCartItemsParams) (database.Order, error)
	GetItem(ctx context.Context, id uuid.UUID) (database.Item, error)
}

// CartService manages the open cart of each customer.
type CartService struct {
	store CartStore
}

// NewCartService creates a new CartService.
func NewCartService(store CartStore) *CartService {
	return &CartService{store: store}
}

// GetOrCreate returns the customer's open cart, creating an empty one on first use.
func (s *CartService) GetOrCreate(ctx context.Context, owner uuid.UUID) (*Cart, error) {
	row, err := s.openCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	return cartFromRow(row)
}

// AddItem adds quantity units of a catalog item. Quantities below 1 are treated as 1.
// A line may never hold more than enum.MaxLineQuantity units.
func (s *CartService) AddItem(ctx context.Context, owner, itemID uuid.UUID, quantity int32) (*Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	if quantity > enum.MaxLineQuantity {
		return nil, ErrQuantityTooLarge
	}
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return s.mutate(ctx, owner, func(items []LineItem) ([]LineItem, bool, error) {
		for i := range items {
			if items[i].ItemID == itemID {
				if int64(items[i].Quantity)+int64(quantity) > enum.MaxLineQuantity {
					return nil, false, ErrQuantityTooLarge
				}
				items[i].Quantity += quantity
				return items, true, nil
			}
		}
		return append(items, LineItem{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: numericToDecimal(item.Price),
			Quantity:  quantity,
			ImageURL:  item.ImageUrl.String,
		}), true, nil
	})
}

// SetQuantity sets the quantity of a line already in the cart.
// A quantity of zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, owner, itemID uuid.UUID, quantity int32) (*Cart, error) {
	if quantity > enum.MaxLineQuantity {
		return nil, ErrQuantityTooLarge
	}
	return s.mutate(ctx, owner, func(items []LineItem) ([]LineItem, bool, error) {
		idx := indexOfItem(items, itemID)
		if idx < 0 {
			return nil, false, ErrNotInCart
		}
		if quantity <= 0 {
			return append(items[:idx], items[idx+1:]...), true, nil
		}
		if items[idx].Quantity == quantity {
			return items, false, nil
		}
		items[idx].Quantity = quantity
		return items, true, nil
	})
}

// RemoveItem drops a line from the cart. Removing an absent item is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, owner, itemID uuid.UUID) (*Cart, error) {
	return s.mutate(ctx, owner, func(items []LineItem) ([]LineItem, bool, error) {
		idx := indexOfItem(items, itemID)
		if idx < 0 {
			return items, false, nil
		}
		return append(items[:idx], items[idx+1:]...), true, nil
	})
}

// mutate applies fn to a fresh copy of the cart lines and persists the result
// with a version check. A lost update re-reads the cart and reapplies fn.
func (s *CartService) mutate(ctx context.Context, owner uuid.UUID, fn func([]LineItem) ([]LineItem, bool, error)) (*Cart, error) {
	for attempt := 0; attempt < maxCartRetries; attempt++ {
		row, err := s.openCart(ctx, owner)
		if err != nil {
			return nil, err
		}
		items, err := decodeItems(row.Items)
		if err != nil {
			return nil, err
		}

		next, changed, err := fn(items)
		if err != nil {
			return nil, err
		}
		if !changed {
			return cartFromRow(row)
		}

		next, totals := RecomputeTotals(next)
		raw, err := encodeItems(next)
		if err != nil {
			return nil, err
		}

		updated, err := s.store.UpdateCartItems(ctx, database.UpdateCartItemsParams{
			ID:       row.ID,
			Items:    raw,
			Subtotal: decimalToNumeric(totals.Subtotal),
			Tax:      decimalToNumeric(totals.Tax),
			Total:    decimalToNumeric(totals.Total),
			Version:  row.Version,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("update cart: %w", err)
		}
		return cartFromRow(updated)
	}
	return nil, ErrCartConflict
}

// openCart reads the open cart, inserting one if missing. A concurrent insert
// makes CreateCart return no row, in which case the winner's cart is re-read.
func (s *CartService) openCart(ctx context.Context, owner uuid.UUID) (database.Order, error) {
	row, err := s.store.GetCart(ctx, owner)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return database.Order{}, fmt.Errorf("get cart: %w", err)
	}

	row, err = s.store.CreateCart(ctx, owner)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return database.Order{}, fmt.Errorf("create cart: %w", err)
	}

	row, err = s.store.GetCart(ctx, owner)
	if err != nil {
		return database.Order{}, fmt.Errorf("get cart: %w", err)
	}
	return row, nil
}

func indexOfItem(items []LineItem, itemID uuid.UUID) int {
	for i := range items {
		if items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

func cartFromRow(row database.Order) (*Cart, error) {
	items, err := decodeItems(row.Items)
	if err != nil {
		return nil, err
	}
	return &Cart{
		ID:        row.ID,
		UserID:    row.UserID,
		Items:     items,
		Subtotal:  numericToDecimal(row.Subtotal),
		Tax:       numericToDecimal(row.Tax),
		Total:     numericToDecimal(row.Total),
		Version:   row.Version,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func decodeItems(raw []byte) ([]LineItem, error) {
	items := []LineItem{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}

func encodeItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode line items: %w", err)
	}
	return raw, nil
}
