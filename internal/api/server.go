package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"energy-agent/internal/config"
	"energy-agent/internal/justify"
	"energy-agent/internal/metrics"
	"energy-agent/internal/models"
	"energy-agent/internal/publish"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Recommender produces one recommendation per request.
type Recommender interface {
	Run(ctx context.Context, req models.OptimizationRequest) (*models.Recommendation, error)
}

type Deps struct {
	Recommender Recommender
	Catalog     *justify.Catalog
	Publisher   publish.Publisher
	Hub         http.Handler
	Metrics     *metrics.Metrics
}

type Server struct {
	server         *http.Server
	handler        http.Handler
	config         config.ServerConfig
	recommender    Recommender
	catalog        *justify.Catalog
	publisher      publish.Publisher
	metrics        *metrics.Metrics
	publishTimeout time.Duration
	accessLog      io.WriteCloser
	logger         *logrus.Logger
}

func NewServer(cfg *config.Config, deps Deps, logger *logrus.Logger) *Server {
	s := &Server{
		config:         cfg.Server,
		recommender:    deps.Recommender,
		catalog:        deps.Catalog,
		publisher:      deps.Publisher,
		metrics:        deps.Metrics,
		publishTimeout: time.Duration(cfg.Publish.TimeoutMs) * time.Millisecond,
		accessLog:      logger.WriterLevel(logrus.DebugLevel),
		logger:         logger,
	}
	if s.catalog == nil {
		s.catalog = justify.DefaultCatalog()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	s.handler = s.wrap(s.routes(deps.Hub))
	return s
}

func (s *Server) routes(hub http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestID)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	if hub != nil {
		r.Handle("/ws/recommendations", hub).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/optimize", s.handleOptimize).Methods(http.MethodPost)
	v1.HandleFunc("/optimization/recommend", s.handleRecommend).Methods(http.MethodPost)

	return r
}

func (s *Server) wrap(h http.Handler) http.Handler {
	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h = handlers.CombinedLoggingHandler(s.accessLog, h)
	h = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Accept-Language", headerRequestID}),
	)(h)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(s.logger), handlers.PrintRecoveryStack(true))(h)
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
	}

	s.logger.Infof("Starting HTTP server on %s", addr)

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func (s *Server) Stop() {
	if s.server != nil {
		s.server.Close()
	}
	s.accessLog.Close()
}
