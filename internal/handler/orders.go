package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/peseat/api/internal/service"
)

// OrderServicer defines the customer-facing order methods.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.Order, error)
	LastOrder(ctx context.Context, owner uuid.UUID) (*service.Order, error)
	ListOrders(ctx context.Context, owner uuid.UUID, limit, offset int32) ([]service.Order, error)
	PickupSlots() []time.Time
}

// OrderHandler handles customer order endpoints.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders behind customer authentication.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/checkout", h.Checkout)
	r.Get("/last", h.Last)
	r.Get("/pickup-slots", h.PickupSlots)
	r.Get("/", h.List)
}

// --- Request / Response types ---

type checkoutRequest struct {
	PickupTime string `json:"pickup_time"`
}

type checkoutResponse struct {
	OrderNumber string         `json:"order_number"`
	Order       *service.Order `json:"order"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []service.Order `json:"orders"`
	Limit  int32           `json:"limit"`
	Offset int32           `json:"offset"`
}

type pickupSlotsResponse struct {
	Slots []time.Time `json:"slots"`
}

// --- Handlers ---

// Checkout handles POST /orders/checkout.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}

	// An empty body checks out without a pickup time.
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	order, err := h.svc.Checkout(r.Context(), service.CheckoutRequest{
		UserID:     owner,
		PickupTime: req.PickupTime,
	})
	if err != nil {
		writeServiceError(w, "checkout", err)
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{OrderNumber: order.OrderNumber, Order: order})
}

// Last handles GET /orders/last. Responds with null when nothing was ever placed.
func (h *OrderHandler) Last(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}

	order, err := h.svc.LastOrder(r.Context(), owner)
	if err != nil {
		writeServiceError(w, "last order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// List handles GET /orders with limit/offset pagination.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}

	limit, offset, ok := parsePagination(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit or offset", "")
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), owner, limit, offset)
	if err != nil {
		writeServiceError(w, "list orders", err)
		return
	}
	if orders == nil {
		orders = []service.Order{}
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: orders, Limit: limit, Offset: offset})
}

// PickupSlots handles GET /orders/pickup-slots.
func (h *OrderHandler) PickupSlots(w http.ResponseWriter, r *http.Request) {
	slots := h.svc.PickupSlots()
	if slots == nil {
		slots = []time.Time{}
	}
	writeJSON(w, http.StatusOK, pickupSlotsResponse{Slots: slots})
}
