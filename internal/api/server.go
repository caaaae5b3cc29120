// Package api exposes the read-only status surface: operator-facing counters
// for processed applications and failure classes.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/shsnge/job-application-monitor/internal/monitor"
)

// QueueReader reports the overflow queue depth.
type QueueReader interface {
	QueuedRecords(ctx context.Context) (int, error)
}

// Server handles status HTTP requests.
type Server struct {
	stats  *monitor.Stats
	queue  QueueReader
	logger *zap.Logger
}

// NewServer creates the status server.
func NewServer(stats *monitor.Stats, queue QueueReader, logger *zap.Logger) *Server {
	return &Server{
		stats:  stats,
		queue:  queue,
		logger: logger,
	}
}

// Router returns the HTTP router.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)

	return s.loggingMiddleware(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := s.stats.Snapshot()

	queued := -1
	if s.queue != nil {
		if n, err := s.queue.QueuedRecords(r.Context()); err == nil {
			queued = n
		} else {
			s.logger.Warn("overflow queue depth unavailable", zap.Error(err))
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"counters":       snapshot,
		"queued_records": queued,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
		)
		next.ServeHTTP(w, r)
	})
}
