// Package api provides the HTTP server for Grit. It exposes the progression
// REST API consumed by frontends and trackers, plus health and metrics.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/gritforge/grit/internal/app/store"
	"github.com/gritforge/grit/internal/infra/sqlite"
)

// Version is the daemon version reported by /api/version.
const Version = "0.1.0"

// Server is the Grit HTTP API server.
type Server struct {
	store          *store.Store
	db             *sqlite.DB
	log            *logrus.Entry
	metricsEnabled bool
	rateLimit      *ipRateLimiter
}

// NewServer creates a new API server over the progression store.
func NewServer(st *store.Store, db *sqlite.DB, logger *logrus.Logger) *Server {
	return &Server{
		store:     st,
		db:        db,
		log:       logger.WithField("component", "api"),
		rateLimit: newIPRateLimiter(20, 60),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)
	r.Use(s.rateLimit.middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "Grit is running"})
	})
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": Version})
	})

	r.Route("/api/progression", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/streaks", s.handleStreaks)
		r.Get("/streaks/{stream}", s.handleStreak)
		r.Get("/energy", s.handleEnergy)
		r.Get("/history", s.handleHistory)
		r.Get("/events", s.handleEvents)
		r.Post("/events/{id}/shown", s.handleEventShown)

		r.Post("/activity", s.handleActivity)
		r.Post("/xp/credit", s.handleCreditXP)
		r.Post("/xp/debit", s.handleDebitXP)
		r.Post("/energy/spend", s.handleSpendEnergy)
		r.Post("/energy/restore", s.handleRestoreEnergy)
		r.Post("/reset", s.handleReset)

		r.Get("/shop", s.handleShop)
		r.Post("/shop/{id}/buy", s.handleBuy)
		r.Post("/shop/{id}/use", s.handleUse)
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", s.handleListTasks)
		r.Put("/{id}", s.handleUpsertTask)
		r.Delete("/{id}", s.handleDeleteTask)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local frontends.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
