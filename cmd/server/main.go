package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airportride/internal/api"
	"airportride/internal/catalog"
	"airportride/internal/config"
	"airportride/internal/db"
	"airportride/internal/gateway"
	"airportride/internal/repository"
	"airportride/internal/service"
	"airportride/internal/templates"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"
	"golang.org/x/sync/errgroup"
)

const finishedRetention = 30 * 24 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer conn.Close()
	if err := conn.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := db.Migrate(ctx, conn); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	var (
		drafts      service.PaymentDraftStore
		memoryStore *repository.MemoryDraftStore
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		drafts = repository.NewRedisDraftStore(rdb, cfg.SessionTTL)
	} else {
		log.Printf("REDIS_ADDR not set, keeping booking drafts in memory")
		memoryStore = repository.NewMemoryDraftStore(cfg.SessionTTL)
		drafts = memoryStore
	}

	stripe.Key = cfg.StripeSecretKey

	airports, err := catalog.Load(cfg.AirportsFile)
	if err != nil {
		log.Fatalf("Failed to load airports: %v", err)
	}
	emailTmpl, err := templates.BookingEmail()
	if err != nil {
		log.Fatalf("Failed to parse email template: %v", err)
	}

	remote := gateway.NewClient(&http.Client{Timeout: cfg.GatewayTimeout}, cfg.APIBase)
	stripeService := service.NewStripeService()

	reconciliationRepo := repository.NewReconciliationRepository(conn)
	jobRepo := repository.NewJobRepository(conn)
	adminRepo := repository.NewAdminRepository(conn)
	stripeRepo := repository.NewStripeRepository(conn)
	adminAuthRepo := repository.NewAdminAuthRepository(conn)

	messenger := service.NewMessenger(service.NotifyConfig{
		SendGridAPIKey:    cfg.SendGridAPIKey,
		SendGridFromEmail: cfg.SendGridFromEmail,
		SendGridFromName:  cfg.SendGridFromName,
		TwilioAccountSID:  cfg.TwilioAccountSID,
		TwilioAuthToken:   cfg.TwilioAuthToken,
		TwilioFromNumber:  cfg.TwilioFromNumber,
	})
	sender := service.NewSenderService(messenger, emailTmpl, cfg.OpsAlertEmail)

	bookingService := service.NewBookingService(drafts, remote, remote, airports)
	paymentService := service.NewPaymentService(drafts, remote, stripeService, remote, reconciliationRepo, sender, cfg.Currency, cfg.ConfirmationDelay)
	jobService := service.NewJobService(jobRepo, reconciliationRepo, remote, stripeService, sender, cfg.ReconcileMaxAttempts)
	adminService := service.NewAdminService(adminRepo, stripeRepo, jobService)
	adminAuthService := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)

	if err := adminAuthService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create bootstrap admin: %v", err)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.ReconcileSchedule, func() {
		if err := jobService.RetryPendingBookings(ctx); err != nil {
			log.Printf("[JOB] %v", err)
		}
	}); err != nil {
		log.Fatalf("Invalid RECONCILE_SCHEDULE %q: %v", cfg.ReconcileSchedule, err)
	}
	if _, err := c.AddFunc("@daily", func() {
		if _, err := jobService.PurgeResolved(ctx, time.Now().Add(-finishedRetention)); err != nil {
			log.Printf("[JOB] %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule purge: %v", err)
	}
	if memoryStore != nil {
		if _, err := c.AddFunc("@every 10m", func() {
			if n := memoryStore.Sweep(); n > 0 {
				log.Printf("[JOB] swept %d expired drafts", n)
			}
		}); err != nil {
			log.Fatalf("Failed to schedule draft sweep: %v", err)
		}
	}
	c.Start()
	defer c.Stop()

	router := api.NewRouter(
		api.RouterConfig{SessionSecret: cfg.SessionSecret, JWTSecret: cfg.JWTSecret, SecureCookies: cfg.SecureCookies},
		api.NewBookingHandler(bookingService, paymentService, airports.All(), api.PublicConfig{
			StripePublishableKey: cfg.StripePublishableKey,
			GoogleMapsKey:        cfg.GoogleMapsKey,
			Currency:             cfg.Currency,
		}),
		api.NewAdminHandler(adminService),
		api.NewAdminAuthHandler(adminAuthService),
		api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, adminService),
	)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Request-Id"}),
		handlers.AllowCredentials(),
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handlers.CombinedLoggingHandler(os.Stdout, cors(router))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
