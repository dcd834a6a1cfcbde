package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"store-feedback/internal/config"
	"store-feedback/internal/geo"
	"store-feedback/internal/jobs"
	"store-feedback/internal/review"
	"store-feedback/internal/server"
	"store-feedback/internal/storage"
	"store-feedback/internal/stores"
	"store-feedback/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand(deps Dependencies) *cobra.Command {
	cfg := deps.Config

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the widget HTTP API.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return usageError("%v", err)
			}
			logger := cfg.Logger(cmd.ErrOrStderr())
			slog.SetDefault(logger)

			gin.SetMode(gin.ReleaseMode)
			telemetry.InitMetrics()
			if cfg.Tracing {
				shutdown, err := telemetry.InitTracer(deps.Version)
				if err != nil {
					return fmt.Errorf("init tracer: %w", err)
				}
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = shutdown(ctx)
				}()
			}

			dir, err := stores.Load(cfg.StoresFile)
			if err != nil {
				return err
			}

			sink, db, err := buildSink(cfg, logger)
			if err != nil {
				return err
			}
			var archive server.Archive
			if db != nil {
				defer db.Close()
				archive = db
			}

			svc, err := review.NewService(cfg.Policy, dir, sink, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting",
				"version", deps.Version,
				"backend", sink.Name(),
				"stores", dir.Len(),
				"minRating", cfg.Policy.MinRating,
				"maxRating", cfg.Policy.MaxRating,
			)
			srv := server.New(server.Options{
				Config:   cfg,
				Logger:   logger,
				Stores:   dir,
				Resolver: geo.NewResolver(cfg.Fallback),
				Reviews:  svc,
				Archive:  archive,
				Jobs:     jobs.NewStore(),
			})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.Port, "port", cfg.Port, "Listen port (PORT).")
	cmd.Flags().StringVar(&cfg.StoresFile, "stores", cfg.StoresFile, "Store directory file, .yaml/.xlsx/.xls (FEEDBACK_STORES_FILE).")
	cmd.Flags().StringVar(&cfg.Backend, "backend", cfg.Backend, "Review backend: webhook, database or both (FEEDBACK_BACKEND).")
	cmd.Flags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (FEEDBACK_DB).")
	cmd.Flags().BoolVar(&cfg.Tracing, "tracing", cfg.Tracing, "Print OpenTelemetry spans to stdout (FEEDBACK_TRACING).")
	return cmd
}

// buildSink returns the configured review sink. db is non-nil when the
// database backend is enabled and must be closed by the caller.
func buildSink(cfg *config.Config, logger *slog.Logger) (review.Sink, *storage.SQLiteAdapter, error) {
	var (
		sinks review.MultiSink
		db    *storage.SQLiteAdapter
	)
	if cfg.UsesDatabase() {
		var err error
		db, err = storage.NewSQLiteAdapter(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open review database: %w", err)
		}
		sinks = append(sinks, review.NewDatabaseSink(db))
	}
	if cfg.UsesWebhook() {
		if cfg.WebhookURL == "" {
			logger.Warn("WEBHOOK_ENDPOINT_URL is not set, webhook submissions will fail")
		}
		sinks = append(sinks, review.NewWebhookSink(cfg.WebhookURL, nil))
	}
	if len(sinks) == 1 {
		return sinks[0], db, nil
	}
	return sinks, db, nil
}
