package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cinephile/internal/catalog"
	"cinephile/internal/logging"
	"cinephile/internal/metrics"
	"cinephile/internal/services"
)

// RequestIDHeader carries the per-request correlation identifier.
const RequestIDHeader = "X-Request-ID"

// TextResponse is the envelope for every query operation.
type TextResponse struct {
	Text string `json:"text"`
}

// SearchResponse lists fuzzy title matches.
type SearchResponse struct {
	Text    string   `json:"text"`
	Matches []string `json:"matches"`
}

// HealthResponse reports server readiness.
type HealthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	Breaker string `json:"breaker,omitempty"`
}

// Handler builds the router. It is safe to mount in tests without Start.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.observe)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/recommend", s.handleRecommend)
		r.Get("/compare", s.handleCompare)
		r.Get("/info", s.handleInfo)
		r.Get("/trivia", s.handleTrivia)
		r.Get("/search", s.handleSearch)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(started)
		metrics.RecordAPIRequest(r.Method, endpoint, status, elapsed)
		logging.WithContext(r.Context(), s.logger).Debug("api request",
			logging.String("method", r.Method),
			logging.String("endpoint", endpoint),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Records: s.svc.Store().Len()}
	if s.breaker != nil {
		resp.Breaker = s.breaker.BreakerState()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.writeJSON(w, http.StatusOK, TextResponse{Text: s.svc.Recommend(q.Get("genre"), q.Get("mood"))})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, b := strings.TrimSpace(q.Get("a")), strings.TrimSpace(q.Get("b"))
	if a == "" || b == "" {
		s.writeError(w, http.StatusBadRequest, "both a and b titles are required")
		return
	}
	s.writeJSON(w, http.StatusOK, TextResponse{Text: s.svc.Compare(a, b)})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, TextResponse{Text: s.svc.Info(r.URL.Query().Get("title"))})
}

func (s *Server) handleTrivia(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	s.writeJSON(w, http.StatusOK, TextResponse{Text: s.svc.Trivia(r.Context(), title)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := catalog.DefaultMaxResults
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	cutoff := catalog.DefaultCutoff
	if raw := q.Get("cutoff"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid cutoff")
			return
		}
		cutoff = parsed
	}
	matches := s.svc.Store().FuzzyLookup(q.Get("q"), limit, cutoff)
	text := "No close matches."
	if len(matches) > 0 {
		text = strings.Join(matches, "\n")
	}
	s.writeJSON(w, http.StatusOK, SearchResponse{Text: text, Matches: matches})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
