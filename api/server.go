package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"phlock/application"
	"phlock/config"
)

// Server exposes the curation engine over HTTP. Every handler opens its own
// unit of work; nothing is cached between requests.
type Server struct {
	uowFactory application.UnitOfWorkFactory
	boundary   *application.DayBoundaryWorker
	limiter    *rateLimiter
	httpServer *http.Server
}

// NewServer creates the API server. The day-boundary worker backs the ops
// endpoint that triggers a run on demand.
func NewServer(cfg *config.Config, uowFactory application.UnitOfWorkFactory, boundary *application.DayBoundaryWorker) *Server {
	s := &Server{
		uowFactory: uowFactory,
		boundary:   boundary,
		limiter:    newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router assembles the route tree. The health check sits outside /v1 so
// probes bypass the rate limiter.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limiter.middleware)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/roster", s.handleGetRoster)
			r.Post("/roster/swaps", s.handleRequestSwap)
			r.Post("/roster/swaps/{position}/cancel", s.handleCancelSwap)
			r.Get("/playlist", s.handleGetPlaylist)

			r.Post("/picks", s.handleRecordPick)
			r.Get("/streak", s.handleGetStreak)

			r.Get("/social-currency", s.handleGetSocialCurrency)
			r.Get("/social-currency/audit", s.handleGetSocialCurrencyAudit)
			r.Get("/social-currency/verify", s.handleVerifySocialCurrency)
		})

		r.Post("/ops/day-boundary", s.handleRunDayBoundary)
	})

	return r
}

// Start begins serving and blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("API server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the rate limiter's cleanup
// goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	return s.httpServer.Shutdown(ctx)
}
