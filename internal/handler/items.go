package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/peseat/api/internal/database"
	"github.com/peseat/api/internal/enum"
	"github.com/shopspring/decimal"
)

const maxTrendingLimit = 20

// ItemStore defines the catalog reads needed by item handlers.
// Satisfied by *database.Queries.
type ItemStore interface {
	ListItems(ctx context.Context, arg database.ListItemsParams) ([]database.Item, error)
	ListTrendingItems(ctx context.Context, limit int32) ([]database.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (database.Item, error)
}

// ItemHandler serves the public menu.
type ItemHandler struct {
	store ItemStore
}

func NewItemHandler(store ItemStore) *ItemHandler {
	return &ItemHandler{store: store}
}

// RegisterRoutes registers item endpoints. Expected to be mounted at /items.
func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/trending", h.Trending)
	r.Get("/{id}", h.Get)
}

type itemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	ImageURL    *string   `json:"image_url"`
	Rating      string    `json:"rating"`
	TotalOrders int64     `json:"total_orders"`
}

type itemListResponse struct {
	Items  []itemResponse `json:"items"`
	Limit  int32          `json:"limit"`
	Offset int32          `json:"offset"`
}

func toItemResponse(i database.Item) itemResponse {
	return itemResponse{
		ID:          i.ID,
		Name:        i.Name,
		Price:       numericToString(i.Price),
		ImageURL:    textPtr(i.ImageUrl),
		Rating:      numericToString(i.Rating),
		TotalOrders: i.TotalOrders,
	}
}

func toItemResponses(items []database.Item) []itemResponse {
	resp := make([]itemResponse, len(items))
	for i, it := range items {
		resp[i] = toItemResponse(it)
	}
	return resp
}

// List handles GET /items.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := parsePagination(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit or offset", "")
		return
	}

	items, err := h.store.ListItems(r.Context(), database.ListItemsParams{Limit: limit, Offset: offset})
	if err != nil {
		log.Printf("ERROR: list items: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}
	writeJSON(w, http.StatusOK, itemListResponse{Items: toItemResponses(items), Limit: limit, Offset: offset})
}

// Trending handles GET /items/trending, most ordered first.
func (h *ItemHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit := enum.DefaultTrendingLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit", "")
			return
		}
		limit = min(n, maxTrendingLimit)
	}

	items, err := h.store.ListTrendingItems(r.Context(), int32(limit))
	if err != nil {
		log.Printf("ERROR: list trending items: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponses(items))
}

// Get handles GET /items/{id}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID", "")
		return
	}

	item, err := h.store.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "item not found", "NOT_FOUND")
			return
		}
		log.Printf("ERROR: get item: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
