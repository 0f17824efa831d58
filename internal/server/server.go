// Package server provides the HTTP and realtime surface for the moveright backend.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/JosephGleason/moveright-backend/internal/analysis"
	"github.com/JosephGleason/moveright-backend/internal/capture"
	"github.com/JosephGleason/moveright-backend/internal/metrics"
	"github.com/JosephGleason/moveright-backend/internal/render"
	"github.com/JosephGleason/moveright-backend/internal/server/api"
	"github.com/JosephGleason/moveright-backend/internal/session"
	"github.com/JosephGleason/moveright-backend/internal/store"
)

// userHeader carries the externally authenticated user identity.
const userHeader = "X-User-ID"

// AgentBuilder constructs a capture agent for a user and source descriptor.
// The default builder opens a real device; tests substitute their own.
type AgentBuilder func(userID, source string) (*capture.Agent, error)

// Config holds the server configuration.
type Config struct {
	Store    *store.Store
	Registry *session.Registry
	Analyzer *analysis.Analyzer
	Renderer *render.Renderer
	Metrics  *metrics.Metrics

	PictureDir    string
	CaptureWidth  int
	CaptureHeight int
	StopTimeout   time.Duration
	StreamTick    time.Duration
	ProbeIndices  []int

	// NewAgent overrides capture agent construction when non-nil.
	NewAgent AgentBuilder
}

// Server routes REST and realtime traffic for the capture pipeline and the
// CRUD resources around it.
type Server struct {
	config   Config
	router   chi.Router
	realtime *RealtimeHandler
	newAgent AgentBuilder
	start    time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config:   config,
		router:   chi.NewRouter(),
		newAgent: config.NewAgent,
		start:    time.Now(),
	}
	if s.newAgent == nil {
		s.newAgent = s.defaultAgentBuilder
	}
	s.realtime = NewRealtimeHandler(RealtimeConfig{
		Registry: config.Registry,
		Analyzer: config.Analyzer,
		Renderer: config.Renderer,
		Metrics:  config.Metrics,
		Tick:     config.StreamTick,
	})
	s.setupRoutes()
	return s
}

// defaultAgentBuilder opens a real capture device at the configured
// resolution, auto-resolving a local camera when source is empty.
func (s *Server) defaultAgentBuilder(userID, source string) (*capture.Agent, error) {
	return capture.NewAgent(capture.AgentConfig{
		UserID:       userID,
		Source:       source,
		Width:        s.config.CaptureWidth,
		Height:       s.config.CaptureHeight,
		ProbeIndices: s.config.ProbeIndices,
		StopTimeout:  s.config.StopTimeout,
		Metrics:      s.config.Metrics,
	})
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.Use(chiMiddleware.RealIP)
	s.router.Use(chiMiddleware.Recoverer)

	s.router.Get("/api/health", s.handleHealth)

	if s.config.Metrics != nil {
		s.router.Handle("/metrics", s.config.Metrics.Handler())
	}

	s.router.Route("/api/camera", func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/start", s.handleCameraStart)
		r.Post("/stop", s.handleCameraStop)
		r.Post("/capture", s.handleCameraCapture)
		r.Get("/status", s.handleCameraStatus)
		r.Get("/preview", s.handleCameraPreview)
	})

	if s.config.Store != nil {
		s.router.Group(func(r chi.Router) {
			r.Use(requireUser)
			api.NewResultsHandler(s.config.Store).RegisterRoutes(r)
			api.NewReviewsHandler(s.config.Store).RegisterRoutes(r)
		})
	}

	s.router.Get("/ws", s.realtime.ServeHTTP)
}

// requireUser rejects requests that carry no authenticated user identity.
// Token verification happens upstream; by the time a request reaches this
// process the header holds a resolved user id.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(userHeader) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Missing user identity"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userID extracts the authenticated user id from a request.
func userID(r *http.Request) string {
	return r.Header.Get(userHeader)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
