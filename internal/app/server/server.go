package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talenthub/internal/domain/attendance"
	"talenthub/internal/domain/audit"
	"talenthub/internal/domain/auth"
	"talenthub/internal/domain/core"
	"talenthub/internal/domain/finance"
	"talenthub/internal/domain/gamification"
	"talenthub/internal/domain/notifications"
	"talenthub/internal/domain/recruiting"
	"talenthub/internal/domain/reports"
	"talenthub/internal/domain/shop"
	"talenthub/internal/platform/config"
	"talenthub/internal/platform/crypto"
	"talenthub/internal/platform/db"
	"talenthub/internal/platform/email"
	"talenthub/internal/platform/jobs"
	"talenthub/internal/platform/metrics"
	attendancehandler "talenthub/internal/transport/http/handlers/attendance"
	audithandler "talenthub/internal/transport/http/handlers/audit"
	authhandler "talenthub/internal/transport/http/handlers/auth"
	corehandler "talenthub/internal/transport/http/handlers/core"
	financehandler "talenthub/internal/transport/http/handlers/finance"
	gamificationhandler "talenthub/internal/transport/http/handlers/gamification"
	notificationshandler "talenthub/internal/transport/http/handlers/notifications"
	recruitinghandler "talenthub/internal/transport/http/handlers/recruiting"
	reportshandler "talenthub/internal/transport/http/handlers/reports"
	shophandler "talenthub/internal/transport/http/handlers/shop"
	"talenthub/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New connects, migrates, seeds and wires the full router. Callers own
// the returned App and must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	cryptoSvc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	authStore := auth.NewStore(pool)
	coreStore := core.NewStore(pool, cryptoSvc)
	attendanceStore := attendance.NewStore(pool)
	financeService := finance.NewService(finance.NewStore(pool))
	gamificationStore := gamification.NewStore(pool)
	builder := gamification.NewBuilder(pool, gamificationStore, attendanceStore)
	shopStore := shop.NewStore(pool)
	recruitingStore := recruiting.NewStore(pool)
	reportsService := reports.NewService(pool)
	auditService := audit.New(pool)
	mailer := email.New(cfg)
	notifyService := notifications.New(notifications.NewStore(pool), mailer, cfg.EmailFrom)

	jobsService := jobs.New(pool, cfg, builder)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Get("/metrics", metricsHandler(collector))
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(pool, cfg.JWTSecret, cryptoSvc, mailer, cfg.EmailFrom, cfg.AllowSelfSignup, cfg.SignupTenantName)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/auth/request-reset", authHandler.HandleRequestReset)
		r.Post("/auth/reset", authHandler.HandleResetPassword)
		r.Post("/auth/mfa/setup", authHandler.HandleMFASetup)
		r.Post("/auth/mfa/enable", authHandler.HandleMFAEnable)
		r.Post("/auth/mfa/disable", authHandler.HandleMFADisable)

		corehandler.NewHandler(coreStore, auditService).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceStore, coreStore).RegisterRoutes(r)
		financehandler.NewHandler(financeService, coreStore, auditService).RegisterRoutes(r)
		gamificationhandler.NewHandler(gamificationStore, builder, coreStore, jobsService, notifyService).RegisterRoutes(r)
		shophandler.NewHandler(pool, shopStore, coreStore, auditService, notifyService).RegisterRoutes(r)
		recruitinghandler.NewHandler(pool, recruitingStore, coreStore, auditService, notifyService).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService, coreStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifyService).RegisterRoutes(r)
		audithandler.NewHandler(auditService, coreStore).RegisterRoutes(r)
	})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Jobs:    jobsService,
		Metrics: collector,
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run is the blocking entrypoint used by cmd/server.
func Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	log.Printf("talenthub server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func metricsHandler(collector *metrics.Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(collector.Snapshot()); err != nil {
			log.Printf("metrics write failed: %v", err)
		}
	}
}
