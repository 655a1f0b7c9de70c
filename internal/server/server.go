// Package server exposes the exploration service as a JSON HTTP API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/akiliquest/akiliquest/internal/explore"
	"github.com/akiliquest/akiliquest/internal/metrics"
	"github.com/akiliquest/akiliquest/internal/models"
	"github.com/akiliquest/akiliquest/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Explorer is the service surface the API serves. *service.ExploreService implements it.
type Explorer interface {
	Explore(ctx context.Context, req service.ExploreRequest) (*service.ExploreResult, error)
	ExploreDeeper(ctx context.Context, req service.DeeperRequest) (*service.ExploreResult, error)
	Validate(ctx context.Context, input string) explore.Outcome[models.TopicValidation]
	Suggest(ctx context.Context, sessionID string, explored []string, count int) explore.Outcome[[]string]
	Search(ctx context.Context, query string, limit int) []models.Topic
	Popular(ctx context.Context, limit int) []models.Topic
	RecentTrails(ctx context.Context, limit int) []models.CuriosityTrail
	Topic(ctx context.Context, id string) (*models.Topic, error)
	Trail(ctx context.Context, topicID string) (*models.CuriosityTrail, error)
	Export(ctx context.Context, topicID string, format models.ExportFormat) ([]byte, string, error)
	UpdateSession(ctx context.Context, u models.SessionUpdate) (*models.UserSession, error)
	Session(ctx context.Context, id string) (*models.UserSession, error)
	Health(ctx context.Context) bool
	Stats(ctx context.Context) *models.Stats
	Model() string
}

// Server routes HTTP requests to an Explorer.
type Server struct {
	svc         Explorer
	logger      *slog.Logger
	collector   *metrics.Collector
	exporter    *metrics.Exporter
	corsOrigins []string
	version     string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics reports runtime metrics from c in /api/stats and /metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.collector = c }
}

// WithCORSOrigins sets the allowed browser origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a server for svc.
func New(svc Explorer, opts ...Option) *Server {
	s := &Server{
		svc:     svc,
		logger:  slog.Default(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.exporter = metrics.NewExporter(s.collector)
	return s
}

// Handler builds the router with middleware and all routes.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(stampStart)
	router.Use(LoggingMiddleware(s.logger, s.exporter))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", s.health)
	router.Method(http.MethodGet, "/metrics", s.exporter.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Route("/explore", func(r chi.Router) {
			r.Post("/", s.explore)
			r.Post("/deeper", s.exploreDeeper)
		})
		r.Route("/topics", func(r chi.Router) {
			r.Post("/validate", s.validateTopic)
			r.Post("/suggest", s.suggestTopics)
			r.Get("/search", s.searchTopics)
			r.Get("/popular", s.popularTopics)
			r.Get("/{id}", s.getTopic)
			r.Get("/{id}/trail", s.getTrail)
			r.Get("/{id}/trail/export", s.exportTrail)
		})
		r.Get("/trails/recent", s.recentTrails)
		r.Route("/sessions", func(r chi.Router) {
			r.Put("/{id}", s.updateSession)
			r.Get("/{id}", s.getSession)
		})
		r.Get("/stats", s.stats)
	})

	return router
}

// ListenAndServe serves Handler on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // long for LLM responses
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr, "version", s.version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stampStart(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), startKey{}, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
