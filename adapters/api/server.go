// Package api exposes one evolution engine over HTTP.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"evoloop/adapters/report"
	"evoloop/app"
)

// Server wraps an engine behind a chi router. The engine is single-threaded;
// a mutex serializes all handler access to it.
type Server struct {
	mu     sync.Mutex
	engine *app.Engine
	router *chi.Mux
}

// NewServer creates a server around an engine.
func NewServer(engine *app.Engine) *Server {
	s := &Server{
		engine: engine,
		router: chi.NewRouter(),
	}
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/report", s.handleReport)
	s.router.Get("/api/report/html", s.handleReportHTML)
	s.router.Get("/api/history", s.handleHistory)
	s.router.Post("/api/generations", s.handleEvolve)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("evolution API listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rep := s.engine.Report()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rep := s.engine.Report()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.RenderHTML(rep)); err != nil {
		log.Printf("failed to write report HTML: %v", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	history := s.engine.History()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleEvolve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	summary := s.engine.EvolveGeneration()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
