package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/liftlog/internal/catalog"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   storage.Store
	catalog *catalog.Catalog
	engine  *session.Engine
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// disables authentication (local mode).
func New(store storage.Store, cat *catalog.Catalog, engine *session.Engine, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		catalog: cat,
		engine:  engine,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}

		// Exercise catalog
		r.Get("/exercises", s.handleListExercises)
		r.Post("/exercises", s.handleCreateExercise)
		r.Put("/exercises/{id}", s.handleUpdateExercise)
		r.Delete("/exercises/{id}", s.handleDeleteExercise)

		// Templates
		r.Get("/templates", s.handleListTemplates)
		r.Post("/templates", s.handleCreateTemplate)
		r.Delete("/templates/{id}", s.handleDeleteTemplate)

		// Active session
		r.Get("/session", s.handleSessionState)
		r.Post("/session/start", s.handleStartEmpty)
		r.Post("/session/start-template", s.handleStartFromTemplate)
		r.Post("/session/exercises", s.handleAddExercises)
		r.Delete("/session/exercises/{id}", s.handleRemoveExercise)
		r.Post("/session/sets", s.handleAddSet)
		r.Patch("/session/sets/{id}", s.handleUpdateSet)
		r.Delete("/session/sets/{id}", s.handleRemoveSet)
		r.Post("/session/finish", s.handleFinish)
		r.Post("/session/cancel", s.handleCancel)

		// History
		r.Get("/history", s.handleListHistory)
		r.Get("/history/sets", s.handleRecentSets)
		r.Get("/history/{id}", s.handleGetHistory)
		r.Get("/stats", s.handleStats)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
