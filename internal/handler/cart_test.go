package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/peseat/api/internal/auth"
	"github.com/peseat/api/internal/handler"
	"github.com/peseat/api/internal/service"
	"github.com/shopspring/decimal"
)

// --- Mock CartServicer ---

type mockCartService struct {
	getFn    func(ctx context.Context, owner uuid.UUID) (*service.Cart, error)
	addFn    func(ctx context.Context, owner, itemID uuid.UUID, qty int32) (*service.Cart, error)
	setFn    func(ctx context.Context, owner, itemID uuid.UUID, qty int32) (*service.Cart, error)
	removeFn func(ctx context.Context, owner, itemID uuid.UUID) (*service.Cart, error)
}

func (m *mockCartService) GetOrCreate(ctx context.Context, owner uuid.UUID) (*service.Cart, error) {
	return m.getFn(ctx, owner)
}

func (m *mockCartService) AddItem(ctx context.Context, owner, itemID uuid.UUID, qty int32) (*service.Cart, error) {
	return m.addFn(ctx, owner, itemID, qty)
}

func (m *mockCartService) SetQuantity(ctx context.Context, owner, itemID uuid.UUID, qty int32) (*service.Cart, error) {
	return m.setFn(ctx, owner, itemID, qty)
}

func (m *mockCartService) RemoveItem(ctx context.Context, owner, itemID uuid.UUID) (*service.Cart, error) {
	return m.removeFn(ctx, owner, itemID)
}

func setupCartRouter(svc *mockCartService) *chi.Mux {
	return authedRouter(func(r chi.Router) {
		r.Route("/cart", handler.NewCartHandler(svc).RegisterRoutes)
	})
}

func sampleCart(owner uuid.UUID, lines ...service.LineItem) *service.Cart {
	items, totals := service.RecomputeTotals(lines)
	return &service.Cart{
		ID:       uuid.New(),
		UserID:   owner,
		Items:    items,
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Total:    totals.Total,
		Version:  1,
	}
}

type cartBody struct {
	ID    uuid.UUID `json:"id"`
	Items []struct {
		ItemID    uuid.UUID `json:"item_id"`
		Quantity  int32     `json:"quantity"`
		LineTotal string    `json:"line_total"`
	} `json:"items"`
	Total string `json:"total"`
}

func TestGetCart(t *testing.T) {
	owner := uuid.New()
	svc := &mockCartService{
		getFn: func(_ context.Context, got uuid.UUID) (*service.Cart, error) {
			if got != owner {
				t.Errorf("owner: got %s, want %s", got, owner)
			}
			return sampleCart(owner), nil
		},
	}

	rr := doRequest(t, setupCartRouter(svc), http.MethodGet, "/cart", nil, tokenFor(t, owner, auth.RoleCustomer))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rr.Code, rr.Body.String())
	}
	var body cartBody
	decodeBody(t, rr, &body)
	if body.Items == nil {
		t.Error("empty cart should encode items as [], not null")
	}
	if body.Total != "0" {
		t.Errorf("total: got %q", body.Total)
	}
}

func TestAddCartItem(t *testing.T) {
	owner, itemID := uuid.New(), uuid.New()
	var gotQty int32
	svc := &mockCartService{
		addFn: func(_ context.Context, o, i uuid.UUID, qty int32) (*service.Cart, error) {
			if o != owner || i != itemID {
				t.Errorf("unexpected ids %s %s", o, i)
			}
			gotQty = qty
			return sampleCart(owner, service.LineItem{
				ItemID: itemID, Name: "Samosa", UnitPrice: decimal.NewFromInt(25), Quantity: qty,
			}), nil
		},
	}
	r := setupCartRouter(svc)
	token := tokenFor(t, owner, auth.RoleCustomer)

	rr := doRequest(t, r, http.MethodPost, "/cart/items", map[string]interface{}{
		"item_id": itemID.String(), "quantity": 2,
	}, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rr.Code, rr.Body.String())
	}
	if gotQty != 2 {
		t.Errorf("quantity: got %d, want 2", gotQty)
	}
	var body cartBody
	decodeBody(t, rr, &body)
	if len(body.Items) != 1 || body.Items[0].LineTotal != "50" || body.Total != "50" {
		t.Errorf("unexpected cart: %+v", body)
	}

	t.Run("invalid item id", func(t *testing.T) {
		rr := doRequest(t, r, http.MethodPost, "/cart/items", map[string]interface{}{"item_id": "nope"}, token)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d, want 400", rr.Code)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		svc.addFn = func(context.Context, uuid.UUID, uuid.UUID, int32) (*service.Cart, error) {
			return nil, service.ErrItemNotFound
		}
		rr := doRequest(t, r, http.MethodPost, "/cart/items", map[string]interface{}{"item_id": uuid.NewString()}, token)
		expectError(t, rr, http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("lost update", func(t *testing.T) {
		svc.addFn = func(context.Context, uuid.UUID, uuid.UUID, int32) (*service.Cart, error) {
			return nil, service.ErrCartConflict
		}
		rr := doRequest(t, r, http.MethodPost, "/cart/items", map[string]interface{}{"item_id": uuid.NewString()}, token)
		expectError(t, rr, http.StatusConflict, "CART_CONFLICT")
	})

	t.Run("too many", func(t *testing.T) {
		svc.addFn = func(context.Context, uuid.UUID, uuid.UUID, int32) (*service.Cart, error) {
			return nil, service.ErrQuantityTooLarge
		}
		rr := doRequest(t, r, http.MethodPost, "/cart/items", map[string]interface{}{"item_id": uuid.NewString(), "quantity": 1000}, token)
		expectError(t, rr, http.StatusBadRequest, "QUANTITY_TOO_LARGE")
	})
}

func TestSetCartQuantity(t *testing.T) {
	owner, itemID := uuid.New(), uuid.New()
	var gotQty int32 = -1
	svc := &mockCartService{
		setFn: func(_ context.Context, _, i uuid.UUID, qty int32) (*service.Cart, error) {
			if i != itemID {
				return nil, service.ErrNotInCart
			}
			gotQty = qty
			return sampleCart(owner), nil
		},
	}
	r := setupCartRouter(svc)
	token := tokenFor(t, owner, auth.RoleCustomer)

	rr := doRequest(t, r, http.MethodPatch, "/cart/items/"+itemID.String(), map[string]int{"quantity": 0}, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (body: %s)", rr.Code, rr.Body.String())
	}
	if gotQty != 0 {
		t.Errorf("zero quantity should be passed through, got %d", gotQty)
	}

	t.Run("missing quantity", func(t *testing.T) {
		rr := doRequest(t, r, http.MethodPatch, "/cart/items/"+itemID.String(), map[string]int{}, token)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d, want 400", rr.Code)
		}
	})

	t.Run("not in cart", func(t *testing.T) {
		rr := doRequest(t, r, http.MethodPatch, "/cart/items/"+uuid.NewString(), map[string]int{"quantity": 3}, token)
		expectError(t, rr, http.StatusNotFound, "NOT_IN_CART")
	})

	t.Run("too many", func(t *testing.T) {
		svc.setFn = func(context.Context, uuid.UUID, uuid.UUID, int32) (*service.Cart, error) {
			return nil, service.ErrQuantityTooLarge
		}
		rr := doRequest(t, r, http.MethodPatch, "/cart/items/"+itemID.String(), map[string]int{"quantity": 500}, token)
		expectError(t, rr, http.StatusBadRequest, "QUANTITY_TOO_LARGE")
	})

	t.Run("bad path id", func(t *testing.T) {
		rr := doRequest(t, r, http.MethodPatch, "/cart/items/xyz", map[string]int{"quantity": 3}, token)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d, want 400", rr.Code)
		}
	})
}

func TestRemoveCartItem(t *testing.T) {
	owner, itemID := uuid.New(), uuid.New()
	called := false
	svc := &mockCartService{
		removeFn: func(_ context.Context, o, i uuid.UUID) (*service.Cart, error) {
			called = o == owner && i == itemID
			return sampleCart(owner), nil
		},
	}

	rr := doRequest(t, setupCartRouter(svc), http.MethodDelete, "/cart/items/"+itemID.String(), nil, tokenFor(t, owner, auth.RoleCustomer))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if !called {
		t.Error("service not called with owner and item")
	}
}

func TestCartRequiresToken(t *testing.T) {
	svc := &mockCartService{}
	rr := doRequest(t, setupCartRouter(svc), http.MethodGet, "/cart", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rr.Code)
	}
}

func TestCartInternalError(t *testing.T) {
	svc := &mockCartService{
		getFn: func(context.Context, uuid.UUID) (*service.Cart, error) {
			return nil, errors.New("pool exhausted")
		},
	}
	rr := doRequest(t, setupCartRouter(svc), http.MethodGet, "/cart", nil, tokenFor(t, uuid.New(), auth.RoleCustomer))
	expectError(t, rr, http.StatusInternalServerError, "")
}
