package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/peseat/api/internal/config"
	"github.com/peseat/api/internal/database"
	"github.com/peseat/api/internal/notify"
	"github.com/peseat/api/internal/router"
	"github.com/peseat/api/internal/service"
	"github.com/peseat/api/internal/ws"
)

const (
	shutdownTimeout = 15 * time.Second
	otpPurgeEvery   = 10 * time.Minute
)

// notifier is what the broker (or its log-only stand-in) provides.
type notifier interface {
	service.Publisher
	service.MessageSender
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	var events notifier = notify.LogNotifier{}
	if cfg.AMQPURL != "" {
		broker, err := notify.Dial(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("Unable to connect to rabbitmq: %v", err)
		}
		defer broker.Close()
		events = broker
	} else {
		log.Println("WARNING: AMQP_URL not set, events and SMS are only logged")
	}

	queries := database.New(pool)
	hub := ws.NewHub()

	orderSvc := service.NewOrderService(
		pool,
		func(db database.DBTX) service.OrderStore { return database.New(db) },
		queries,
		service.Publishers{hub, events},
		service.OrderConfig{
			OrderPrefix: cfg.Canteen.OrderPrefix,
			Pickup: service.PickupPolicy{
				Location: cfg.Canteen.Location,
				MinLead:  cfg.Canteen.MinLeadTime,
				Open:     cfg.Canteen.OpenOffset,
				Close:    cfg.Canteen.CloseOffset,
			},
		},
	)
	staffAuthSvc := service.NewStaffAuthService(
		pool,
		func(db database.DBTX) service.StaffAuthStore { return database.New(db) },
		events,
	)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Port),
		Handler: router.New(cfg, queries, router.Services{
			Orders:    orderSvc,
			Carts:     service.NewCartService(queries),
			StaffAuth: staffAuthSvc,
		}, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		purgeExpiredOTPs(gctx, staffAuthSvc)
		return nil
	})

	g.Go(func() error {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		// Let in-flight post-checkout work finish before the pool closes.
		orderSvc.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("ERROR: %v", err)
	}
	log.Println("Server stopped")
}

// purgeExpiredOTPs removes expired staff login codes until ctx is done.
func purgeExpiredOTPs(ctx context.Context, svc *service.StaffAuthService) {
	ticker := time.NewTicker(otpPurgeEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.PurgeExpired(ctx)
			if err != nil {
				log.Printf("WARNING: purge expired otps: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("purged %d expired otps", n)
			}
		}
	}
}
