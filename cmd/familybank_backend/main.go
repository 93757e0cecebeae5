package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/family_bank/internal/auth"
	portsrepo "github.com/SscSPs/family_bank/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/SscSPs/family_bank/internal/core/services"
	"github.com/SscSPs/family_bank/internal/events/kafka"
	"github.com/SscSPs/family_bank/internal/handlers"
	"github.com/SscSPs/family_bank/internal/middleware"
	"github.com/SscSPs/family_bank/internal/platform/config"
	"github.com/SscSPs/family_bank/internal/platform/scheduler"
	"github.com/SscSPs/family_bank/internal/repositories/database/pgsql"
	"github.com/SscSPs/family_bank/internal/repositories/memory"
	"github.com/SscSPs/family_bank/pkg/database"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

// @title Family Bank API
// @version 1.0
// @description Virtual allowance accounts for families: parents manage child balances, interest accrues monthly.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the identity provider's JWT.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}

	var publisher portssvc.EntryPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if cerr := kp.Close(); cerr != nil {
				logger.Error("Error closing ledger event writer", slog.String("error", cerr.Error()))
			}
		}()
		publisher = kp
		logger.Info("Ledger events enabled", slog.Any("brokers", cfg.KafkaBrokers), slog.String("topic", cfg.KafkaTopic))
	}

	container := services.NewServiceContainer(cfg, repos, verifier, publisher)

	var sched *scheduler.Scheduler
	if cfg.InterestSchedulerEnabled {
		sched = scheduler.New(logger)
		if err := sched.Add("monthly-interest", cfg.InterestSchedule, interestJob(container.Interest)); err != nil {
			return err
		}
		sched.Start()
		if next, ok := sched.NextRun("monthly-interest"); ok {
			logger.Info("Interest scheduler started", slog.Time("next_run", next))
		}
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}
	handlers.RegisterRoutes(r, cfg, container, rateLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store_backend", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			logger.Error("Scheduler did not stop in time", slog.String("error", err.Error()))
		}
	}
	logger.Info("Server stopped")
	return nil
}

// openStore connects the configured backend and returns its repositories.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreBackend == config.StoreBackendMemory {
		logger.Warn("Using in-memory store; data is lost on restart")
		return portsrepo.RepositoryProvider{ItemStore: memory.NewItemStore()}, func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.",
		slog.String("table", cfg.StoreTable),
		slog.String("region", cfg.StoreRegion))

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		database.ClosePgxPool(dbPool)
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool, cfg.StoreTable), func() { database.ClosePgxPool(dbPool) }, nil
}

func newVerifier(cfg *config.Config) (*auth.Verifier, error) {
	if cfg.AuthIssuerURL == "" {
		return nil, errors.New("AUTH_ISSUER_URL is required")
	}
	cache := auth.NewKeyCache(
		auth.NewHTTPKeySetFetcher(cfg.AuthJWKSFetchTimeout),
		auth.WithRefreshInterval(cfg.AuthJWKSRefreshInterval),
		auth.WithFetchTimeout(cfg.AuthJWKSFetchTimeout),
	)
	return auth.NewVerifier(cache, auth.VerifierConfig{
		IssuerURL: cfg.AuthIssuerURL,
		JWKSURL:   cfg.JWKSURL(),
		Audience:  cfg.AuthAudience,
		TokenUse:  cfg.AuthTokenUse,
	}), nil
}

func interestJob(engine portssvc.InterestSvc) scheduler.Job {
	return func(ctx context.Context) error {
		summary, err := engine.Run(ctx)
		if summary != nil {
			middleware.GetLoggerFromCtx(ctx).Info("Interest run summary",
				slog.String("state", string(summary.State)),
				slog.Int("total", summary.Total),
				slog.Int("applied", summary.Applied),
				slog.Int("skipped", summary.Skipped),
				slog.Int("failed", summary.Failed))
		}
		return err
	}
}
