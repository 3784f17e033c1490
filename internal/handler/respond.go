package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/peseat/api/internal/enum"
	"github.com/peseat/api/internal/service"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// serviceErrors maps service sentinels to an HTTP status and a machine code.
var serviceErrors = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrEmptyCart, http.StatusBadRequest, "EMPTY_CART"},
	{service.ErrInvalidPickupTime, http.StatusBadRequest, "INVALID_PICKUP_TIME"},
	{service.ErrPickupTooSoon, http.StatusBadRequest, "PICKUP_TOO_SOON"},
	{service.ErrPickupNotToday, http.StatusBadRequest, "PICKUP_NOT_TODAY"},
	{service.ErrPickupOutsideHours, http.StatusBadRequest, "PICKUP_OUTSIDE_HOURS"},
	{service.ErrInvalidPhone, http.StatusBadRequest, "INVALID_PHONE"},
	{service.ErrQuantityTooLarge, http.StatusBadRequest, "QUANTITY_TOO_LARGE"},

	{service.ErrItemNotFound, http.StatusNotFound, "NOT_FOUND"},
	{service.ErrOrderNotFound, http.StatusNotFound, "NOT_FOUND"},
	{service.ErrNotInCart, http.StatusNotFound, "NOT_IN_CART"},
	{service.ErrStaffNotFound, http.StatusNotFound, "STAFF_NOT_FOUND"},

	{service.ErrActiveOrderExists, http.StatusConflict, "ACTIVE_ORDER_EXISTS"},
	{service.ErrCartConflict, http.StatusConflict, "CART_CONFLICT"},
	{service.ErrNotPlaced, http.StatusConflict, "NOT_PLACED"},
	{service.ErrAlreadyReady, http.StatusConflict, "ALREADY_READY"},
	{service.ErrNotReady, http.StatusConflict, "NOT_READY"},
	{service.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},

	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{service.ErrOTPInvalid, http.StatusUnauthorized, "OTP_INVALID"},
	{service.ErrOTPTooManyAttempts, http.StatusTooManyRequests, "OTP_TOO_MANY_ATTEMPTS"},
	{service.ErrOTPResendTooSoon, http.StatusTooManyRequests, "OTP_RESEND_TOO_SOON"},
}

// writeServiceError translates err into a response. Anything unrecognised is
// logged and reported as a 500 without leaking details.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	for _, e := range serviceErrors {
		if errors.Is(err, e.err) {
			writeError(w, e.status, e.err.Error(), e.code)
			return
		}
	}
	log.Printf("ERROR: %s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal server error", "")
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// parsePagination reads limit/offset query params with the order-list defaults.
func parsePagination(r *http.Request) (limit, offset int32, ok bool) {
	limit = enum.DefaultOrderPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		if n > enum.MaxOrderPageLimit {
			n = enum.MaxOrderPageLimit
		}
		limit = int32(n)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		offset = int32(n)
	}
	return limit, offset, true
}
