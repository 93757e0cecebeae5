// Command interest_runner applies one round of monthly interest and prints the run summary.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/SscSPs/family_bank/internal/core/services"
	"github.com/SscSPs/family_bank/internal/middleware"
	"github.com/SscSPs/family_bank/internal/platform/config"
	"github.com/SscSPs/family_bank/internal/repositories/database/pgsql"
	"github.com/SscSPs/family_bank/pkg/database"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	_ = godotenv.Load()

	v := viper.New()
	config.SetDefaults(v)
	v.AutomaticEnv()

	flags := pflag.NewFlagSet("interest_runner", pflag.ExitOnError)
	flags.String("pgsql-url", "", "PostgreSQL connection URL (overrides PGSQL_URL)")
	flags.String("store-table", "", "ledger item table (overrides STORE_TABLE)")
	flags.Bool("skip-migrations", false, "do not apply pending migrations before the run")
	flags.String("log-level", "", "log level (overrides LOG_LEVEL)")
	_ = flags.Parse(os.Args[1:])

	for key, flag := range map[string]string{
		"PGSQL_URL":   "pgsql-url",
		"STORE_TABLE": "store-table",
		"LOG_LEVEL":   "log-level",
	} {
		if flags.Changed(flag) {
			_ = v.BindPFlag(key, flags.Lookup(flag))
		}
	}
	// The runner only makes sense against the shared store.
	v.Set("STORE_BACKEND", config.StoreBackendPostgres)

	cfg, err := config.FromViper(v)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	skipMigrations, _ := flags.GetBool("skip-migrations")
	if err := run(cfg, logger, skipMigrations); err != nil {
		logger.Error("Interest run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, skipMigrations bool) error {
	ctx := middleware.WithLogger(context.Background(), logger.With(slog.String("job", "monthly-interest")))

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(dbPool)

	if !skipMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return err
		}
	}

	repos := pgsql.NewRepositoryProvider(dbPool, cfg.StoreTable)
	container := services.NewServiceContainer(cfg, repos, nil, nil)

	summary, runErr := container.Interest.Run(ctx)
	if summary != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	}
	return runErr
}
