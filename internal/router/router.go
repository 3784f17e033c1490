package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/peseat/api/internal/auth"
	"github.com/peseat/api/internal/config"
	"github.com/peseat/api/internal/database"
	"github.com/peseat/api/internal/handler"
	mw "github.com/peseat/api/internal/middleware"
	"github.com/peseat/api/internal/service"
	"github.com/peseat/api/internal/ws"
)

// Services are the stateful domain services shared with the process lifecycle.
type Services struct {
	Orders    *service.OrderService
	Carts     *service.CartService
	StaffAuth *service.StaffAuthService
}

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, svc Services, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)
	handler.NewStaffAuthHandler(svc.StaffAuth, cfg.JWTSecret).RegisterRoutes(r)
	r.Route("/items", handler.NewItemHandler(queries).RegisterRoutes)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Get("/auth/me", authHandler.Me)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(auth.RoleCustomer))
			r.Route("/cart", handler.NewCartHandler(svc.Carts).RegisterRoutes)
			r.Route("/orders", handler.NewOrderHandler(svc.Orders).RegisterRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(auth.RoleStaff))
			r.Route("/staff/orders", handler.NewStaffHandler(svc.Orders).RegisterRoutes)
		})
	})

	return r
}
