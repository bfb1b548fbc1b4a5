// cmd/server/server.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/api"
	"github.com/codr1/Opsboard/internal/api/auth"
	"github.com/codr1/Opsboard/internal/api/dashboard"
	healthapi "github.com/codr1/Opsboard/internal/api/health"
	"github.com/codr1/Opsboard/internal/api/lowratings"
	"github.com/codr1/Opsboard/internal/api/media"
	"github.com/codr1/Opsboard/internal/api/repairs"
	"github.com/codr1/Opsboard/internal/api/returns"
	shipmentsapi "github.com/codr1/Opsboard/internal/api/shipments"
	stockapi "github.com/codr1/Opsboard/internal/api/stock"
	"github.com/codr1/Opsboard/internal/config"
	"github.com/codr1/Opsboard/internal/db"
	"github.com/codr1/Opsboard/internal/email"
	"github.com/codr1/Opsboard/internal/health"
	"github.com/codr1/Opsboard/internal/lowrating"
	"github.com/codr1/Opsboard/internal/ratelimit"
	"github.com/codr1/Opsboard/internal/scheduler"
	"github.com/codr1/Opsboard/internal/shipments"
	"github.com/codr1/Opsboard/internal/stock"
	"github.com/codr1/Opsboard/internal/storage"
	"github.com/codr1/Opsboard/internal/upstream"
)

const refreshJobTimeout = 2 * time.Minute

// app owns the long-lived dependencies built at startup.
type app struct {
	database *db.DB
	sessions auth.SessionStore
	limiter  *ratelimit.Limiter
	registry *health.Registry
}

// newApp builds every dependency and initializes the handler packages.
// Object storage and email are optional; without them uploads are rejected
// and receipts are skipped.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{database: database}

	var objects storage.ObjectStore
	if cfg.Storage.Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		objects = s3Store
	} else {
		log.Warn().Msg("Object storage not configured; media uploads are disabled")
	}

	var mailer email.EmailSender
	if cfg.Email.Sender != "" {
		ses, err := email.NewSESClient(cfg.Storage.AccessKeyID, cfg.Storage.SecretAccessKey, cfg.Email.Region, cfg.Email.Sender)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init email: %w", err)
		}
		mailer = ses
	} else {
		log.Warn().Msg("Email sender not configured; receipts are disabled")
	}

	a.sessions, err = auth.NewSessionStore(ctx, cfg.Auth)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init session store: %w", err)
	}
	a.limiter = ratelimit.New(ratelimit.DefaultConfig())
	auth.InitHandlers(cfg, a.sessions, a.limiter, auth.InitClerk(cfg.Auth.ClerkSecretKey))

	fetch := cfg.Dashboards.Fetch
	client := upstream.New(nil, upstream.Config{Attempts: fetch.Attempts, Timeout: fetch.Timeout, Delay: fetch.Delay})
	loc := cfg.Dashboards.Location()

	a.registry, err = health.NewRegistry(cfg.Dashboards, client, nil)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init dashboards: %w", err)
	}
	shipmentService, err := shipments.NewService(cfg.Shipments.Sources, cfg.Dashboards.Shops, client, loc)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init shipments: %w", err)
	}

	if err := scheduler.Init(); err != nil {
		a.Close()
		return nil, fmt.Errorf("init scheduler: %w", err)
	}
	if err := scheduler.RegisterRefreshJob(a.registry, cfg.Dashboards.Refresh.Cron, refreshJobTimeout); err != nil {
		a.Close()
		return nil, fmt.Errorf("register refresh job: %w", err)
	}

	healthapi.InitHandlers(a.registry, loc)
	shipmentsapi.InitHandlers(shipmentService, loc)
	lowratings.InitHandlers(lowrating.NewService(cfg.LowRatings.Endpoint, client), cfg.Dashboards.Shops)
	stockapi.InitHandlers(stock.NewService(cfg.Stock.Endpoint, cfg.Stock.PageLimit, client))
	returns.InitHandlers(database.Queries, objects, mailer, cfg.App.Name)
	repairs.InitHandlers(database.Queries, objects, mailer, cfg.App.Name, loc)
	media.InitHandlers(objects, cfg.Storage.SignedURLTTL)
	dashboard.InitHandlers(cfg.App.Name, a.registry, shipmentService)

	return a, nil
}

// Close releases what newApp opened. It is safe to call more than once.
func (a *app) Close() {
	if a.limiter != nil {
		a.limiter.Close()
		a.limiter = nil
	}
	switch s := a.sessions.(type) {
	case interface{ Close() error }:
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close session store")
		}
	case interface{ Close() }:
		s.Close()
	}
	a.sessions = nil
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
		a.database = nil
	}
}

func newServer(cfg *config.Config, a *app) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain; the last entry is outermost.
	handler := api.ChainMiddleware(
		router,
		api.WithAuth,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	// Register routes
	registerRoutes(router, cfg.App.StaticDir)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, staticDir string) {
	protected := func(h http.HandlerFunc) http.Handler {
		return api.RequireAuth(h)
	}

	// Pages
	mux.HandleFunc("GET /{$}", auth.HandleLoginPage)
	mux.Handle("GET /home", protected(dashboard.HandleHomePage))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth
	mux.HandleFunc("POST /sessionLogin", auth.HandleSessionLogin)
	mux.HandleFunc("POST /login", auth.HandleLocalLogin)
	mux.HandleFunc("POST /logout", auth.HandleLogout)

	// Return and repair submissions
	mux.Handle("POST /returns", protected(returns.HandleSubmit))
	mux.Handle("POST /repairs", protected(repairs.HandleSubmit))
	mux.Handle("GET /api/returns", protected(returns.HandleList))
	mux.Handle("POST /api/updateReturn", protected(returns.HandleUpdate))
	mux.Handle("POST /api/deleteReturn", protected(returns.HandleDelete))
	mux.Handle("GET /api/repairs", protected(repairs.HandleList))
	mux.Handle("POST /api/updateRepair", protected(repairs.HandleUpdate))
	mux.Handle("POST /api/deleteRepair", protected(repairs.HandleDelete))
	mux.Handle("GET /api/signedUrl", protected(media.HandleSignedURL))

	// Account health dashboards
	mux.Handle("GET /api/v1/health/{platform}", protected(healthapi.HandlePanel))
	mux.Handle("GET /api/v1/health/{platform}/calendar", protected(healthapi.HandleCalendar))
	mux.Handle("GET /api/v1/health/{platform}/data", protected(healthapi.HandleData))
	mux.Handle("GET /api/v1/health/{platform}/messages", protected(healthapi.HandleMessages))
	mux.Handle("GET /api/v1/health/{platform}/export.xlsx", protected(healthapi.HandleExport))
	mux.Handle("POST /api/v1/health/{platform}/select", protected(healthapi.HandleSelect))
	mux.Handle("POST /api/v1/health/{platform}/week", protected(healthapi.HandleWeek))
	mux.Handle("POST /api/v1/health/{platform}/refresh", protected(healthapi.HandleRefresh))
	mux.Handle("POST /api/v1/health/{platform}/shop", protected(healthapi.HandleShop))
	mux.Handle("POST /api/v1/health/{platform}/sort", protected(healthapi.HandleSort))

	// Shipments, reviews and stock
	mux.Handle("GET /api/v1/shipments/{platform}", protected(shipmentsapi.HandleList))
	mux.Handle("POST /api/v1/shipments/{platform}/remark", protected(shipmentsapi.HandleRemark))
	mux.Handle("GET /api/v1/lowratings", protected(lowratings.HandleList))
	mux.Handle("GET /api/v1/stock", protected(stockapi.HandleList))

	fs := http.FileServer(http.Dir(staticDir))
	mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Ctx(r.Context()).Debug().
			Str("path", r.URL.Path).
			Str("static_dir", staticDir).
			Msg("Static file request")
		http.StripPrefix("/static/", fs).ServeHTTP(w, r)
	}))
}
