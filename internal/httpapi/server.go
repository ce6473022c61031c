// Package httpapi exposes the progression engine over HTTP for web
// collaborators. Serialization and user identification live here; the engine
// stays wire-format free.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"momentum/internal/engine"
)

type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type Server struct {
	config Config
	svc    *engine.Service
	logger *zap.Logger

	httpServer *http.Server
	router     *http.ServeMux
}

func NewServer(config Config, svc *engine.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config: config,
		svc:    svc,
		logger: logger,
		router: http.NewServeMux(),
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:         config.Addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("POST /api/tasks", s.handleCreateTask)
	s.router.HandleFunc("GET /api/tasks", s.handleListTasks)
	s.router.HandleFunc("POST /api/tasks/{id}/complete", s.handleCompleteTask)
	s.router.HandleFunc("POST /api/tasks/{id}/start", s.handleStartTask)
	s.router.HandleFunc("POST /api/tasks/{id}/archive", s.handleArchiveTask)
	s.router.HandleFunc("POST /api/tasks/{id}/restore", s.handleRestoreTask)
	s.router.HandleFunc("GET /api/backlog", s.handleBacklog)
	s.router.HandleFunc("GET /api/profile", s.handleProfile)
	s.router.HandleFunc("GET /api/achievements", s.handleAchievements)
	s.router.HandleFunc("GET /api/stats", s.handleStats)
}

// Handler returns the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.config.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				writeJSONError(w, http.StatusInternalServerError, "internal", "internal server error")
			}
		}()

		next.ServeHTTP(w, r)

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

// userID resolves the acting user. Authentication is a collaborator's
// concern; this adapter only reads the identity it forwarded.
func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return engine.DefaultUserID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case engine.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case engine.IsAlreadyArchived(err):
		writeJSONError(w, http.StatusConflict, "already_archived", err.Error())
	case engine.IsInvalidCategory(err):
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid_category", err.Error())
	case engine.IsPersistence(err):
		s.logger.Error("persistence failure", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "persistence_failed", "completion could not be committed; safe to retry")
	default:
		writeJSONError(w, http.StatusBadRequest, "bad_request", err.Error())
	}
}
