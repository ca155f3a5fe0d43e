// internal/httpserver/server.go
//
// HTTP server wiring for remote play.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", POST /game/new.
//   - Session endpoints (token required): /game/{id}/..., including the WebSocket channel.
//   - Journal endpoints (admin basic auth when configured): /results, /results/summary.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - Each session's engine is only touched while holding the session lock.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/lemonle/internal/config"
	"github.com/robalobadob/lemonle/internal/journal"
	"github.com/robalobadob/lemonle/internal/store"
	"github.com/robalobadob/lemonle/internal/words"
)

const (
	sessionTTL    = 24 * time.Hour
	sweepInterval = 10 * time.Minute
)

// Recorder is the slice of the journal the server needs. A nil Recorder disables
// recording and the /results routes answer 503.
type Recorder interface {
	Record(ctx context.Context, r journal.Result) error
	Recent(ctx context.Context, limit int) ([]journal.Result, error)
	Summary(ctx context.Context) (journal.Summary, error)
}

// Server bundles router, session store and journal.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	store   store.Store
	journal Recorder

	tauntMu sync.Mutex
	taunts  *words.Picker
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, rec Recorder) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		store:   st,
		journal: rec,
		taunts:  words.NewPicker(cfg.Taunts),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)       // zerolog access line per request
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(s.cors)          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"lemonle","endpoints":["/health","POST /game/new","/game/{id}/*","/results"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.With(chimw.Timeout(10*time.Second)).Post("/game/new", s.handleNewGame)

	s.r.Route("/game/{id}", func(r chi.Router) {
		r.Use(s.requireSession)
		// The WebSocket lives as long as the client keeps it open: no handler timeout.
		r.Get("/ws", s.handleWS)
		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(10 * time.Second))
			r.Get("/", s.handleState)
			r.Post("/letter", s.handleOp(opLetter))
			r.Post("/backspace", s.handleOp(opBackspace))
			r.Post("/submit", s.handleOp(opSubmit))
			r.Post("/reset", s.handleOp(opReset))
			r.Get("/share", s.handleShare)
		})
	})

	s.mountResults()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
// Idle sessions are swept in the background meanwhile.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}

	go s.sweep(ctx)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

func (s *Server) sweep(ctx context.Context) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.store.Sweep(ctx, sessionTTL); n > 0 {
				log.Info().Int("dropped", n).Int("live", s.store.Len()).Msg("swept idle sessions")
			}
		}
	}
}

// nextTaunt is safe for concurrent handlers.
func (s *Server) nextTaunt() string {
	s.tauntMu.Lock()
	defer s.tauntMu.Unlock()
	return s.taunts.Next()
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http")
	})
}
