// Package http serves the JSON API over the record service.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	rlog "rinkbook/internal/log"
	"rinkbook/internal/services"
)

// Options tunes the middleware stack.
type Options struct {
	RequestTimeout time.Duration
	CORSOrigins    []string
	// WritesPerMinute caps mutating requests per client. Zero means 60.
	WritesPerMinute int
	Logger          *rlog.Logger
}

type Server struct {
	http.Server
	svc          *services.RecordService
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

func NewServer(addr string, svc *services.RecordService, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.WritesPerMinute <= 0 {
		opts.WritesPerMinute = 60
	}
	if opts.Logger == nil {
		opts.Logger = rlog.New(rlog.DefaultConfig()).WithComponent(rlog.ComponentHTTP)
	}

	s := &Server{
		svc:         svc,
		rateLimiter: newRateLimiter(opts.WritesPerMinute),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(rlog.RequestLogger(opts.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(opts.RequestTimeout))
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.rateLimiter.limitWrites)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", s.handleListPlayers)
			r.Post("/", s.handleCreatePlayer)
			r.Route("/{playerID}", func(r chi.Router) {
				r.Get("/", s.handleGetPlayer)
				r.Put("/", s.handleUpdatePlayer)

				r.Get("/games", s.handleListGames)
				r.Post("/games", s.handleRecordGame)
				r.Get("/summary", s.handleSeasonSummary)
				r.Get("/milestones", s.handleMilestones)

				r.Get("/expenses", s.handleListExpenses)
				r.Post("/expenses", s.handleAddExpense)
				r.Get("/expenses/summary", s.handleExpenseSummary)

				r.Get("/dashboard", s.handleDashboard)
			})
		})

		r.Route("/games/{gameID}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Put("/", s.handleUpdateGame)
			r.Delete("/", s.handleDeleteGame)
		})

		r.Route("/expenses/{expenseID}", func(r chi.Router) {
			r.Get("/", s.handleGetExpense)
			r.Put("/", s.handleUpdateExpense)
			r.Delete("/", s.handleDeleteExpense)
		})

		r.Get("/tournaments", s.handleListTournaments)
		r.Post("/tournaments", s.handleAddTournament)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
