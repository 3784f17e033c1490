package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/peseat/api/internal/auth"
	"github.com/peseat/api/internal/middleware"
	"github.com/peseat/api/internal/service"
)

// QueueServicer defines the staff-side order methods.
// Satisfied by *service.OrderService.
type QueueServicer interface {
	ListQueue(ctx context.Context, p auth.Principal, includeDone bool) ([]service.Order, error)
	MarkReady(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*service.Order, error)
	MarkCollected(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*service.Order, error)
}

// StaffHandler serves the kitchen queue and the fulfillment actions.
type StaffHandler struct {
	svc QueueServicer
}

func NewStaffHandler(svc QueueServicer) *StaffHandler {
	return &StaffHandler{svc: svc}
}

// RegisterRoutes registers staff order endpoints. Expected to be mounted at /staff/orders.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Queue)
	r.Put("/{id}/ready", h.MarkReady)
	r.Put("/{id}/collect", h.MarkCollected)
}

type queueResponse struct {
	Orders []service.Order `json:"orders"`
}

// Queue handles GET /staff/orders. include_done=true adds collected and cancelled orders.
func (h *StaffHandler) Queue(w http.ResponseWriter, r *http.Request) {
	p, ok := callerPrincipal(w, r)
	if !ok {
		return
	}

	includeDone := false
	if v := r.URL.Query().Get("include_done"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid include_done", "")
			return
		}
		includeDone = b
	}

	orders, err := h.svc.ListQueue(r.Context(), p, includeDone)
	if err != nil {
		writeServiceError(w, "list queue", err)
		return
	}
	if orders == nil {
		orders = []service.Order{}
	}
	writeJSON(w, http.StatusOK, queueResponse{Orders: orders})
}

// MarkReady handles PUT /staff/orders/{id}/ready.
func (h *StaffHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "mark ready", h.svc.MarkReady)
}

// MarkCollected handles PUT /staff/orders/{id}/collect.
func (h *StaffHandler) MarkCollected(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "mark collected", h.svc.MarkCollected)
}

func (h *StaffHandler) transition(w http.ResponseWriter, r *http.Request, op string,
	fn func(context.Context, auth.Principal, uuid.UUID) (*service.Order, error)) {
	p, ok := callerPrincipal(w, r)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID", "")
		return
	}

	order, err := fn(r.Context(), p, orderID)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func callerPrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated", "")
		return auth.Principal{}, false
	}
	return claims.Principal(), true
}
