package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lotscout/hibid-scanner/internal/models"
)

// RecordSource exposes the accumulated records to the status endpoints.
type RecordSource interface {
	Len() int
	Snapshot() []models.Record
}

// Tracker counts walked pages for the status endpoint. The page driver
// stores, the HTTP handlers load.
type Tracker struct {
	pages atomic.Int64
}

func (t *Tracker) PageDone(page int) {
	t.pages.Store(int64(page))
}

func (t *Tracker) Pages() int {
	return int(t.pages.Load())
}

// Server serves read-only run progress over HTTP while a scan is running.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type statusResponse struct {
	RunID     string    `json:"run_id"`
	BaseURL   string    `json:"base_url"`
	Company   string    `json:"company,omitempty"`
	EndDate   string    `json:"end_date,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Pages     int       `json:"pages"`
	Items     int       `json:"items"`
}

func NewServer(addr string, session *models.Session, records RecordSource, tracker *Tracker, logger *slog.Logger) *Server {
	s := &Server{logger: logger.With("component", "api")}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		company, endDate := session.Auction()
		s.respondJSON(w, http.StatusOK, statusResponse{
			RunID:     session.RunID,
			BaseURL:   session.BaseURL,
			Company:   company,
			EndDate:   endDate,
			StartedAt: session.StartedAt,
			Pages:     tracker.Pages(),
			Items:     records.Len(),
		})
	})

	r.Get("/api/records", func(w http.ResponseWriter, req *http.Request) {
		s.respondJSON(w, http.StatusOK, records.Snapshot())
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves in the background. A listen failure is logged, not fatal:
// status is a convenience surface, never a reason to stop a scan.
func (s *Server) Start() {
	go func() {
		s.logger.Info("status server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("status server failed", "error", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("status server shutdown failed", "error", err)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
