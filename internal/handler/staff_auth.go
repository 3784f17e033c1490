package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/peseat/api/internal/auth"
	"github.com/peseat/api/internal/database"
)

// StaffAuthServicer defines the OTP login methods needed by staff auth handlers.
// Satisfied by *service.StaffAuthService.
type StaffAuthServicer interface {
	SendOTP(ctx context.Context, rawPhone string) error
	VerifyOTP(ctx context.Context, rawPhone, code string) (database.Staff, error)
}

// StaffAuthHandler handles the staff one-time-code login.
type StaffAuthHandler struct {
	svc       StaffAuthServicer
	jwtSecret string
}

func NewStaffAuthHandler(svc StaffAuthServicer, jwtSecret string) *StaffAuthHandler {
	return &StaffAuthHandler{svc: svc, jwtSecret: jwtSecret}
}

func (h *StaffAuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/staff/send-otp", h.SendOTP)
	r.Post("/auth/staff/verify-otp", h.VerifyOTP)
}

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// SendOTP handles POST /auth/staff/send-otp.
func (h *StaffAuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if req.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required", "")
		return
	}

	if err := h.svc.SendOTP(r.Context(), req.Phone); err != nil {
		writeServiceError(w, "send otp", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "code sent"})
}

// VerifyOTP handles POST /auth/staff/verify-otp and returns staff tokens.
func (h *StaffAuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if req.Phone == "" || req.OTP == "" {
		writeError(w, http.StatusBadRequest, "phone and otp are required", "")
		return
	}

	staff, err := h.svc.VerifyOTP(r.Context(), req.Phone, req.OTP)
	if err != nil {
		writeServiceError(w, "verify otp", err)
		return
	}
	writeTokens(w, h.jwtSecret, http.StatusOK, staff.ID, auth.RoleStaff, staffProfile(staff))
}
