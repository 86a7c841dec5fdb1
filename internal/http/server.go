package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Clark-Hu/popcorn-palace/internal/config"
	"github.com/Clark-Hu/popcorn-palace/internal/ratelimit"
	"github.com/Clark-Hu/popcorn-palace/internal/service"
	"github.com/Clark-Hu/popcorn-palace/internal/store"
)

// HealthChecker reports whether the backing database answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// poolReporter is implemented by health checkers that also expose pool counters.
type poolReporter interface {
	Stats() store.PoolStats
}

type healthResponse struct {
	Status string           `json:"status"`
	Pool   *store.PoolStats `json:"pool,omitempty"`
}

// Services bundles the domain services the handlers call into.
type Services struct {
	Catalog   *service.Catalog
	Scheduler *service.Scheduler
	Ledger    *service.Ledger
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg       config.Config
	health    HealthChecker
	catalog   *service.Catalog
	scheduler *service.Scheduler
	ledger    *service.Ledger
	limiter   ratelimit.Limiter
	logger    *log.Logger
	now       func() time.Time
	router    chi.Router
	httpSrv   *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithRateLimiter throttles mutating routes through limiter.
func WithRateLimiter(limiter ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = limiter }
}

// WithClock overrides the clock used by request validation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, health HealthChecker, svc Services, logger *log.Logger, opts ...Option) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:       cfg,
		health:    health,
		catalog:   svc.Catalog,
		scheduler: svc.Scheduler,
		ledger:    svc.Ledger,
		logger:    logger,
		now:       time.Now,
		router:    r,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/movies", func(r chi.Router) {
		r.Get("/all", s.handleListMovies)
		r.Group(func(r chi.Router) {
			s.throttle(r)
			r.Post("/", s.handleCreateMovie)
			r.Post("/update/{movieTitle}", s.handleUpdateMovie)
			r.Delete("/{movieTitle}", s.handleDeleteMovie)
		})
	})

	s.router.Route("/showtimes", func(r chi.Router) {
		r.Get("/{showtimeId}", s.handleGetShowtime)
		r.Group(func(r chi.Router) {
			s.throttle(r)
			r.Post("/", s.handleCreateShowtime)
			r.Post("/update/{showtimeId}", s.handleUpdateShowtime)
			r.Delete("/{showtimeId}", s.handleDeleteShowtime)
		})
	})

	s.router.Route("/bookings", func(r chi.Router) {
		s.throttle(r)
		r.Post("/", s.handleCreateBooking)
	})
}

func (s *Server) throttle(r chi.Router) {
	if s.limiter == nil {
		return
	}
	r.Use(ratelimit.Middleware(s.limiter, s.cfg.RateLimitCapacity, s.logger))
}

// Start boots the HTTP server and blocks until ctx ends or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health == nil {
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database not configured")
		return
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.Printf("health check failed: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
		return
	}
	resp := healthResponse{Status: "ok"}
	if pr, ok := s.health.(poolReporter); ok {
		stats := pr.Stats()
		resp.Pool = &stats
	}
	s.respondJSON(w, http.StatusOK, resp)
}
