package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/JANE7J/DreamBalance-v2/internal/account"
	"github.com/JANE7J/DreamBalance-v2/internal/analytics"
	"github.com/JANE7J/DreamBalance-v2/internal/auth"
	"github.com/JANE7J/DreamBalance-v2/internal/journal"
	"github.com/JANE7J/DreamBalance-v2/internal/logging"
	"github.com/JANE7J/DreamBalance-v2/internal/metrics"
	"github.com/JANE7J/DreamBalance-v2/internal/store"
)

// Server handles HTTP requests for the DreamBalance API
type Server struct {
	journal   *journal.Service
	accounts  *account.Service
	analytics *analytics.Service
	tokens    *auth.Tokens
	metrics   *metrics.Metrics
	limiter   *RateLimiter
	logger    zerolog.Logger
	addr      string
	now       func() time.Time
}

// Deps are the collaborators a Server is built from
type Deps struct {
	Journal   *journal.Service
	Accounts  *account.Service
	Analytics *analytics.Service
	Tokens    *auth.Tokens
	Metrics   *metrics.Metrics
	Limiter   *RateLimiter
	Logger    zerolog.Logger
}

// New creates a new API server
func New(d Deps, addr string) *Server {
	return &Server{
		journal:   d.Journal,
		accounts:  d.Accounts,
		analytics: d.Analytics,
		tokens:    d.Tokens,
		metrics:   d.Metrics,
		limiter:   d.Limiter,
		logger:    d.Logger,
		addr:      addr,
		now:       time.Now,
	}
}

// Handler returns the fully wrapped route tree
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("GET /health", s.health)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Accounts
	mux.Handle("POST /api/register", s.limited(http.HandlerFunc(s.register)))
	mux.Handle("POST /api/login", s.limited(http.HandlerFunc(s.login)))

	// Entries
	mux.Handle("GET /api/entries/calendar", s.tokens.Middleware(http.HandlerFunc(s.calendar)))
	mux.Handle("POST /api/entries", s.tokens.Middleware(http.HandlerFunc(s.addEntry)))
	mux.Handle("GET /api/entries/{id}", s.tokens.Middleware(http.HandlerFunc(s.getEntry)))
	mux.Handle("PUT /api/entries/{id}", s.tokens.Middleware(http.HandlerFunc(s.updateEntry)))
	mux.Handle("DELETE /api/entries/{id}", s.tokens.Middleware(http.HandlerFunc(s.deleteEntry)))

	// Analytics
	mux.Handle("GET /api/analytics", s.tokens.Middleware(http.HandlerFunc(s.weeklyAnalytics)))

	// The metrics middleware must see r.Pattern, so it wraps the mux directly
	var h http.Handler = mux
	if s.metrics != nil {
		h = s.metrics.Middleware(h)
	}
	h = logging.Middleware(s.logger)(h)
	return withCORS(h)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) limited(h http.Handler) http.Handler {
	if s.limiter == nil {
		return h
	}
	return s.limiter.Middleware(h)
}

// withCORS adds CORS headers for the browser frontend
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("DreamBalance v2 Backend is Running"))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail maps a service error to its HTTP status. Anything unrecognized is
// logged and reported as an opaque 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, journal.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Entry not found")
	case errors.Is(err, store.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, account.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Missing fields")
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
