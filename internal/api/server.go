// Package api exposes the running pipelines over HTTP: live discovery
// progress, the messaging engine's state and controls, and read access
// to leads and the contact queue.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/automation"
	"github.com/sells-group/outreach-cli/internal/discovery"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

// Server wires the HTTP surface over the running components. Any of
// the component references may be nil; their routes then report 404.
type Server struct {
	store     store.Store
	discovery *discovery.Pipeline
	engine    *automation.Engine
}

// New creates an API server over the given components.
func New(st store.Store, disc *discovery.Pipeline, eng *automation.Engine) *Server {
	return &Server{store: st, discovery: disc, engine: eng}
}

// Router builds the chi router with logging, recovery, and CORS.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/discovery/progress", s.handleProgress)
		r.Get("/automation", s.handleAutomationStats)
		r.Post("/automation/pause", s.handlePause)
		r.Post("/automation/resume", s.handleResume)
		r.Post("/automation/stop", s.handleStop)
		r.Get("/leads", s.handleLeads)
		r.Get("/contacts", s.handleContacts)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts it
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("api: listening", zap.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	if s.discovery == nil {
		writeError(w, http.StatusNotFound, "no discovery run active")
		return
	}
	writeJSON(w, http.StatusOK, s.discovery.Progress())
}

func (s *Server) handleAutomationStats(w http.ResponseWriter, _ *http.Request) {
	if s.engine == nil {
		writeError(w, http.StatusNotFound, "no automation engine active")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.control(w, "pause", func() bool { return s.engine.Pause() })
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request) {
	s.control(w, "resume", func() bool { return s.engine.Resume() })
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.control(w, "stop", func() bool { return s.engine.Stop() })
}

// control applies an engine control and reports whether the current
// state honored it. An ignored control is not an error; the caller
// learns the resulting state either way.
func (s *Server) control(w http.ResponseWriter, name string, apply func() bool) {
	if s.engine == nil {
		writeError(w, http.StatusNotFound, "no automation engine active")
		return
	}
	applied := apply()
	writeJSON(w, http.StatusOK, map[string]any{
		"action":  name,
		"applied": applied,
		"state":   s.engine.State(),
	})
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	filter := store.LeadFilter{
		Status: model.LeadStatus(r.URL.Query().Get("status")),
		Source: r.URL.Query().Get("source"),
		Limit:  queryInt(r, "limit", 100),
		Offset: queryInt(r, "offset", 0),
	}
	leads, err := s.store.ListLeads(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list leads", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list leads failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads, "count": len(leads)})
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.ListContacts(r.Context())
	if err != nil {
		zap.L().Error("api: list contacts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list contacts failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts, "count": len(contacts)})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
