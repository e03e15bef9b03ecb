package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/SscSPs/splitsettle/internal/cache"
	"github.com/SscSPs/splitsettle/internal/core/services"
	"github.com/SscSPs/splitsettle/internal/events/amqp"
	"github.com/SscSPs/splitsettle/internal/handlers"
	"github.com/SscSPs/splitsettle/internal/middleware"
	"github.com/SscSPs/splitsettle/internal/platform/metrics"
	"github.com/SscSPs/splitsettle/pkg/database"
)

const shutdownTimeout = 10 * time.Second

var errConsumerExited = errors.New("consumer exited")

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", true, "Apply pending migrations before serving")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runMigrations, _ := cmd.Flags().GetBool("migrate"); runMigrations {
		logger.Info("Running database migrations...")
		if err := migrateStorage(cfg, database.Up); err != nil {
			logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
			return err
		}
	}

	repos, closeRepos, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		return err
	}
	defer closeRepos()

	recorder := metrics.NewRecorder()
	infra := services.Infrastructure{Metrics: recorder, Logger: logger}
	if cfg.BalanceCacheSize > 0 {
		infra.Cache = cache.NewBalanceCache(cfg.BalanceCacheSize, cfg.BalanceCacheTTL)
	}

	var events *amqp.Client
	if cfg.EventsEnabled() {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to message broker", slog.String("error", err.Error()))
			return err
		}
		defer events.Close()
		infra.Publisher = events
	} else {
		logger.Info("AMQP_URL not set, ledger events disabled")
	}

	container := services.NewServiceContainer(cfg, repos, infra)

	var consumerErr <-chan error
	if events != nil {
		consumerErr = runConsumer(ctx, func(ctx context.Context) error {
			return events.Consume(ctx, container.Balance)
		})
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}
	if err := handlers.RegisterRoutes(r, cfg, container, recorder.Handler()); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("backend", cfg.StorageBackend))
		serveErr <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			return err
		}
		return nil
	case err := <-consumerErr:
		// Without the consumer, changes made on other instances never reach this cache.
		logger.Error("Ledger event consumer stopped, shutting down", slog.String("error", err.Error()))
		runErr = fmt.Errorf("ledger event consumer: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
		return err
	}
	return runErr
}

// runConsumer runs consume in the background. The returned channel receives the error
// that stopped it, unless ctx was cancelled first.
func runConsumer(ctx context.Context, consume func(context.Context) error) <-chan error {
	failed := make(chan error, 1)
	go func() {
		err := consume(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errConsumerExited
		}
		failed <- err
	}()
	return failed
}
