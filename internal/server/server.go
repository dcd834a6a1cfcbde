// Package server exposes the widget API over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"store-feedback/internal/config"
	"store-feedback/internal/geo"
	"store-feedback/internal/jobs"
	"store-feedback/internal/models"
	"store-feedback/internal/review"
	"store-feedback/internal/storage"
	"store-feedback/internal/stores"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Archive is the read side of the review database used by the admin area.
type Archive interface {
	ListReviews(ctx context.Context, f storage.ReviewFilter) ([]models.AcceptedReview, error)
	CountByStore(ctx context.Context) ([]storage.StoreCount, error)
}

type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Stores   *stores.Directory
	Resolver *geo.Resolver
	Reviews  *review.Service
	// Archive is nil when the database backend is disabled.
	Archive Archive
	Jobs    *jobs.Store
}

type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	stores   *stores.Directory
	resolver *geo.Resolver
	reviews  *review.Service
	archive  Archive
	jobs     *jobs.Store

	router *gin.Engine
	srv    *http.Server
}

func New(o Options) *Server {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	jobStore := o.Jobs
	if jobStore == nil {
		jobStore = jobs.NewStore()
	}

	s := &Server{
		cfg:      o.Config,
		logger:   logger,
		stores:   o.Stores,
		resolver: o.Resolver,
		reviews:  o.Reviews,
		archive:  o.Archive,
		jobs:     jobStore,
	}
	s.router = s.setupRoutes()
	return s
}

// Handler returns the traced HTTP handler.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "store-feedback")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("web server shutdown", "err", err)
		}
	}()

	go s.pruneJobs(ctx)

	s.logger.Info("web server listening", "addr", s.srv.Addr, "stores", s.stores.Len())
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) pruneJobs(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.jobs.Prune(24 * time.Hour); n > 0 {
				s.logger.Debug("pruned export jobs", "count", n)
			}
		}
	}
}
