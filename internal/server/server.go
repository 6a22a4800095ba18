package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nvallee/cityforge/internal/construction"
	"github.com/nvallee/cityforge/internal/handler"
	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/metrics"
	"github.com/nvallee/cityforge/internal/progression"
	"github.com/nvallee/cityforge/internal/region"
	"github.com/nvallee/cityforge/internal/unlock"
)

// Deps collects everything the router needs. Pinger and TaskList may be nil.
type Deps struct {
	Progression  progression.Service
	Assigner     unlock.Assigner
	Region       region.Service
	Construction construction.Service
	TaskList     handler.TaskLister
	Pinger       handler.Pinger
}

type Server struct {
	httpServer *http.Server
}

// NewServer builds the router and wraps it in an http.Server.
func NewServer(port int, deps Deps) *Server {
	r := chi.NewRouter()

	// Chi middleware executes in the order defined, outermost first.
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(deps.Pinger))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	constructionHandlers := handler.NewConstructionHandlers(deps.Construction, deps.Assigner, deps.Progression, deps.Region)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/player", func(r chi.Router) {
			r.Get("/", handler.HandleGetPlayer(deps.Progression))
			r.Post("/xp", handler.HandleAddExperience(deps.Progression))
		})

		r.Route("/region", func(r chi.Router) {
			r.Post("/select", handler.HandleSelectStartingArea(deps.Region))
			r.Post("/reapply", handler.HandleReapplyUnlockOrder(deps.Region))
			r.Get("/status", handler.HandleRegionStatus(deps.Region))
		})

		r.Route("/building", func(r chi.Router) {
			r.Post("/place", constructionHandlers.HandlePlace())
			r.Post("/sell", constructionHandlers.HandleSell())
			r.Post("/pause", constructionHandlers.HandlePause())
			r.Post("/resume", constructionHandlers.HandleResume())
			r.Get("/projects", constructionHandlers.HandleListProjects())

			r.Route("/quests", func(r chi.Router) {
				r.Post("/skip", constructionHandlers.HandleAddSkipQuests())
				r.Post("/complete", constructionHandlers.HandleCompleteQuest())
				r.Post("/delete", constructionHandlers.HandleDeleteQuest())
			})
		})

		if deps.TaskList != nil {
			r.Get("/tasks", handler.HandleListTasks(deps.TaskList))
		}
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info("Request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info("Server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
