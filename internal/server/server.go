// Package server exposes the calendar assistant over HTTP: a JSON turn
// endpoint, a WebSocket chat loop, and an event search endpoint.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/cal-pilot/internal/audit"
	"github.com/ziadkadry99/cal-pilot/internal/skills"
	"github.com/ziadkadry99/cal-pilot/internal/vectordb"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server is the assistant's HTTP surface.
type Server struct {
	cfg        Config
	hub        *skills.Hub
	index      vectordb.EventIndex
	audit      *audit.Store
	router     chi.Router
	httpServer *http.Server
}

// New creates a server around the skill hub.
func New(cfg Config, hub *skills.Hub, index vectordb.EventIndex) *Server {
	s := &Server{cfg: cfg, hub: hub, index: index}
	s.router = s.buildRouter()
	return s
}

// WithAudit exposes the audit trail under /v1/audit.
func (s *Server) WithAudit(store *audit.Store) *Server {
	s.audit = store
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/turns", s.handleTurn)
		r.Get("/events", s.handleSearchEvents)
		r.Get("/chat/ws", s.handleWebSocket)
		if s.audit != nil {
			audit.RegisterRoutes(r, s.audit)
		}
	})

	return r
}

// turnRequest is one user turn over the JSON API.
type turnRequest struct {
	ConversationID string `json:"conversationId,omitempty"`
	UserID         string `json:"userId"`
	Skill          string `json:"skill"`
	Message        string `json:"message"`
}

// turnResponse is the assistant's side of the turn.
type turnResponse struct {
	ConversationID string `json:"conversationId"`
	Reply          string `json:"reply"`
	Status         string `json:"status"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Skill == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "userId, skill and message are required")
		return
	}

	conversationID, action, err := s.hub.Process(r.Context(), req.ConversationID, req.UserID, req.Skill, req.Message)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, turnResponse{
		ConversationID: conversationID,
		Reply:          action.Reply,
		Status:         string(action.Status),
	})
}

// searchHit is one event match over the JSON API.
type searchHit struct {
	EventID    string    `json:"eventId"`
	Title      string    `json:"title"`
	StartDate  time.Time `json:"startDate"`
	Similarity float32   `json:"similarity"`
}

func (s *Server) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	query := r.URL.Query().Get("q")
	if userID == "" || query == "" {
		writeError(w, http.StatusBadRequest, "userId and q are required")
		return
	}

	now := time.Now()
	hits, err := s.index.SearchEvents(r.Context(), userID, query, now.AddDate(0, 0, -14), now.AddDate(0, 0, 28), 5)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	out := make([]searchHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, searchHit{EventID: h.EventID, Title: h.Title, StartDate: h.StartDate, Similarity: h.Similarity})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Router returns the chi router, for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("calpilot server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
