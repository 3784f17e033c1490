package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/peseat/api/internal/middleware"
	"github.com/peseat/api/internal/service"
)

// CartServicer defines the cart operations used by the cart handlers.
// Satisfied by *service.CartService.
type CartServicer interface {
	GetOrCreate(ctx context.Context, owner uuid.UUID) (*service.Cart, error)
	AddItem(ctx context.Context, owner, itemID uuid.UUID, quantity int32) (*service.Cart, error)
	SetQuantity(ctx context.Context, owner, itemID uuid.UUID, quantity int32) (*service.Cart, error)
	RemoveItem(ctx context.Context, owner, itemID uuid.UUID) (*service.Cart, error)
}

// CartHandler serves the authenticated customer's cart.
type CartHandler struct {
	svc CartServicer
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(svc CartServicer) *CartHandler {
	return &CartHandler{svc: svc}
}

// RegisterRoutes registers cart endpoints. Expected to be mounted at /cart
// behind customer authentication.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/items", h.AddItem)
	r.Patch("/items/{itemId}", h.SetQuantity)
	r.Delete("/items/{itemId}", h.RemoveItem)
}

type addCartItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int32  `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int32 `json:"quantity"`
}

// Get handles GET /cart, creating an empty cart on first use.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	cart, err := h.svc.GetOrCreate(r.Context(), owner)
	if err != nil {
		writeServiceError(w, "get cart", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item_id", "")
		return
	}

	cart, err := h.svc.AddItem(r.Context(), owner, itemID, req.Quantity)
	if err != nil {
		writeServiceError(w, "add cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// SetQuantity handles PATCH /cart/items/{itemId}. A quantity of zero removes the line.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID", "")
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "quantity is required", "")
		return
	}

	cart, err := h.svc.SetQuantity(r.Context(), owner, itemID, *req.Quantity)
	if err != nil {
		writeServiceError(w, "set cart quantity", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /cart/items/{itemId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID", "")
		return
	}

	cart, err := h.svc.RemoveItem(r.Context(), owner, itemID)
	if err != nil {
		writeServiceError(w, "remove cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// callerID returns the authenticated user's ID or writes a 401.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated", "")
		return uuid.Nil, false
	}
	return claims.UserID, true
}
