package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/peseat/api/internal/auth"
	"github.com/peseat/api/internal/database"
	"github.com/peseat/api/internal/middleware"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	GetStaffByID(ctx context.Context, id uuid.UUID) (database.Staff, error)
}

// AuthHandler handles customer authentication and token refresh for both roles.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret}
}

// RegisterRoutes registers the unauthenticated auth endpoints.
// GET /auth/me needs a token and is mounted by the router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type registerRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	StudentID   string `json:"student_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         profileResp `json:"user"`
}

// profileResp describes either a customer or a staff member.
type profileResp struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	StudentID   *string   `json:"student_id,omitempty"`
	Role        auth.Role `json:"role"`
}

func customerProfile(u database.User) profileResp {
	return profileResp{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: textPtr(u.PhoneNumber),
		StudentID:   textPtr(u.StudentID),
		Role:        auth.RoleCustomer,
	}
}

func staffProfile(s database.Staff) profileResp {
	phone := s.Phone
	return profileResp{
		ID:          s.ID,
		FullName:    s.Name,
		PhoneNumber: &phone,
		Role:        auth.RoleStaff,
	}
}

// --- Handlers ---

// Register creates a customer account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "full_name, email and password are required", "")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email", "")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		FullName:       req.FullName,
		Email:          req.Email,
		PhoneNumber:    optionalText(req.PhoneNumber),
		StudentID:      optionalText(req.StudentID),
		HashedPassword: string(hash),
	})
	if err != nil {
		if msg, ok := duplicateUserField(err); ok {
			writeError(w, http.StatusBadRequest, msg, "DUPLICATE")
			return
		}
		log.Printf("ERROR: create user: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	h.respondWithTokens(w, http.StatusCreated, user.ID, auth.RoleCustomer, customerProfile(user))
}

// Login handles email + password authentication.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required", "")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid credentials", "")
			return
		}
		log.Printf("ERROR: get user by email: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	h.respondWithTokens(w, http.StatusOK, user.ID, auth.RoleCustomer, customerProfile(user))
}

// Refresh exchanges a valid refresh token for a new access + refresh token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required", "")
		return
	}

	id, role, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token", "")
		return
	}

	profile, err := h.lookup(r.Context(), id, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "account not found", "")
			return
		}
		log.Printf("ERROR: refresh lookup: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	h.respondWithTokens(w, http.StatusOK, id, role, profile)
}

// Me returns the profile of the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated", "")
		return
	}

	profile, err := h.lookup(r.Context(), claims.UserID, claims.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "account not found", "NOT_FOUND")
			return
		}
		log.Printf("ERROR: get profile: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// --- Helpers ---

func (h *AuthHandler) lookup(ctx context.Context, id uuid.UUID, role auth.Role) (profileResp, error) {
	if role == auth.RoleStaff {
		s, err := h.store.GetStaffByID(ctx, id)
		if err != nil {
			return profileResp{}, err
		}
		return staffProfile(s), nil
	}
	u, err := h.store.GetUserByID(ctx, id)
	if err != nil {
		return profileResp{}, err
	}
	return customerProfile(u), nil
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, status int, id uuid.UUID, role auth.Role, profile profileResp) {
	writeTokens(w, h.jwtSecret, status, id, role, profile)
}

func writeTokens(w http.ResponseWriter, secret string, status int, id uuid.UUID, role auth.Role, profile profileResp) {
	accessToken, err := auth.GenerateToken(secret, id, role)
	if err != nil {
		log.Printf("ERROR: generate access token: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(secret, id, role)
	if err != nil {
		log.Printf("ERROR: generate refresh token: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	writeJSON(w, status, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         profile,
	})
}

// duplicateUserField turns a unique violation on users into a field message.
func duplicateUserField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return "", false
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return "email already registered", true
	case "users_phone_number_key":
		return "phone number already registered", true
	case "users_student_id_key":
		return "student ID already registered", true
	}
	return "account already exists", true
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	return pgtype.Text{String: s, Valid: s != ""}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}
