// Package server provides the JSON API server for the coaching backend
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	userapp "github.com/fitforge/v1/internal/application/user"
	"github.com/fitforge/v1/internal/infrastructure/config"
	"github.com/fitforge/v1/internal/infrastructure/http/handlers"
	"github.com/fitforge/v1/internal/infrastructure/http/middleware"
	"github.com/fitforge/v1/internal/infrastructure/monitoring"
)

// APIServer serves the JSON API
type APIServer struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	handlers *handlers.APIHandlers
	users    *userapp.UserService
	db       *gorm.DB
}

// NewAPIServer creates the API server
func NewAPIServer(
	cfg *config.Config,
	apiHandlers *handlers.APIHandlers,
	users *userapp.UserService,
	db *gorm.DB,
	logger *zap.Logger,
) *APIServer {
	s := &APIServer{
		config:   cfg,
		logger:   logger.Named("api-server"),
		handlers: apiHandlers,
		users:    users,
		db:       db,
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

func (s *APIServer) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	r.Use(monitoring.HTTPMetrics())
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.JSONOnly())

	if s.config.RateLimit.Enable {
		r.Use(middleware.RateLimit(s.config.RateLimit.RequestsPerMin, s.config.RateLimit.BurstSize))
	}

	r.Get("/health", s.handleHealthCheck)
	r.Get("/ready", s.handleReadinessCheck)
	r.Handle("/metrics", monitoring.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handlers.Register)
			r.Post("/login", s.handlers.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthenticateAPI(s.users))
				r.Get("/me", s.handlers.Me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthenticateAPI(s.users))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", s.handlers.GetProfile)
				r.Put("/", s.handlers.UpdateProfile)
			})

			r.Route("/plans", func(r chi.Router) {
				r.Post("/diet", s.handlers.GenerateDiet)
				r.Get("/diet", s.handlers.CurrentDiet)
				r.Post("/workout", s.handlers.GenerateWorkout)
				r.Get("/workout", s.handlers.CurrentWorkout)
			})

			r.Route("/workouts", func(r chi.Router) {
				r.Post("/", s.handlers.LogWorkout)
				r.Get("/", s.handlers.ListWorkouts)
			})
		})
	})

	return r
}

func (s *APIServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","service":"%s","version":"%s"}`,
		s.config.App.Name, s.config.App.Version)
}

// handleReadinessCheck reports readiness, including a database ping
func (s *APIServer) handleReadinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		s.logger.Warn("Readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"status":"not_ready","reason":"database unreachable"}`)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ready"}`)
}

// Start begins listening for requests
func (s *APIServer) Start() error {
	s.logger.Info("Starting API server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
