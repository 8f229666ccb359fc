package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"slices"
	"time"

	"github.com/Harshitk-cp/echosim/internal/api/handlers"
	mw "github.com/Harshitk-cp/echosim/internal/api/middleware"
	"github.com/Harshitk-cp/echosim/internal/buildconfig"
	"github.com/Harshitk-cp/echosim/internal/config"
	"github.com/Harshitk-cp/echosim/internal/service"
	"github.com/Harshitk-cp/echosim/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router      *chi.Mux
	Simulations *service.SimulationService
	Expirer     *service.ExpirerService
	sessions    *store.SessionStore
	startTime   time.Time
	stats       mw.RequestStats
	stopCh      chan struct{}
}

func NewApp(cfg *config.Config, logger *zap.Logger) *App {
	sessionStore := store.NewSessionStore()

	simSvc := service.NewSimulationService(sessionStore, service.Limits{
		MaxSessions:     cfg.MaxSessions,
		MaxAgents:       cfg.MaxAgents,
		MaxStepsPerCall: cfg.MaxStepsPerCall,
		MaxHistory:      cfg.MaxHistory,
	}, logger)

	expirerSvc := service.NewExpirerService(sessionStore, logger)
	if cfg.SessionTTL > 0 {
		expirerSvc.SetTTL(cfg.SessionTTL)
	}
	if cfg.ExpirerInterval > 0 {
		expirerSvc.SetInterval(cfg.ExpirerInterval)
	}

	simHandler := handlers.NewSimulationHandler(simSvc)

	r := chi.NewRouter()

	app := &App{
		Router:      r,
		Simulations: simSvc,
		Expirer:     expirerSvc,
		sessions:    sessionStore,
		startTime:   time.Now(),
		stopCh:      make(chan struct{}),
	}

	metricsCollector := mw.NewMetricsCollector(&app.stats)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, app.stopCh))
	r.Use(corsHandler(cfg.CORSOrigins).Handler)

	// Health and metrics (no auth)
	r.Get("/health", healthHandler)
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(cfg.APIKey))

		r.Get("/defaults", simHandler.Defaults)

		r.Route("/simulations", func(r chi.Router) {
			r.Post("/", simHandler.Create)
			r.Get("/", simHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", simHandler.GetByID)
				r.Delete("/", simHandler.Delete)
				r.Post("/step", simHandler.Step)
				r.Post("/reset", simHandler.Reset)
				r.Post("/start", simHandler.Start)
				r.Post("/pause", simHandler.Pause)
				r.Get("/state", simHandler.State)
				r.Get("/metrics", simHandler.Metrics)
				r.Get("/history", simHandler.History)
			})
		})
	})

	return app
}

// Start launches background workers.
func (app *App) Start() {
	app.Expirer.Start()
}

// Stop halts background workers and every simulation runner.
func (app *App) Stop(ctx context.Context) {
	close(app.stopCh)
	app.Expirer.Stop()
	app.Simulations.CloseAll(ctx)
}

func corsHandler(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"Content-Length",
			"Authorization",
			mw.RequestIDHeader,
		},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", mw.RequestIDHeader},
		AllowCredentials: !slices.Contains(origins, "*"),
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildconfig.Version(),
		"commit":  buildconfig.Commit(),
	})
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)
		simulations, _ := app.sessions.Count(r.Context())

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.stats.Requests.Load(),
			"error_count":    app.stats.ClientErrors.Load() + app.stats.ServerErrors.Load(),
			"server_errors":  app.stats.ServerErrors.Load(),
			"in_flight":      app.stats.InFlight.Load(),
			"simulations":    simulations,
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		writeJSON(w, http.StatusOK, response)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Ensure the store satisfies the service interface at compile time.
var _ service.SessionStore = (*store.SessionStore)(nil)
