package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const adminUser = "admin"

// mountResults registers the journal views under /results.
func (s *Server) mountResults() {
	s.r.Route("/results", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/", s.handleRecent)
		r.Get("/summary", s.handleSummary)
	})
}

// requireAdmin enforces HTTP basic auth against the configured bcrypt hash.
// Without a configured hash the routes are open.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminHash == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pw, ok := r.BasicAuth()
		if !ok || user != adminUser || !checkPassword(s.cfg.AdminHash, pw) {
			w.Header().Set("WWW-Authenticate", `Basic realm="lemonle"`)
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// handleRecent returns the newest finished rounds (?limit=, default 20, max 100).
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, `{"error":"journal_disabled"}`, http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, `{"error":"bad_limit"}`, http.StatusBadRequest)
			return
		}
		limit = min(n, 100)
	}
	rows, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("recent results")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// handleSummary returns totals and the attempts distribution.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, `{"error":"journal_disabled"}`, http.StatusServiceUnavailable)
		return
	}
	sum, err := s.journal.Summary(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("results summary")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(sum)
}
