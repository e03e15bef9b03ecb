package main

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	"github.com/SscSPs/splitsettle/internal/platform/config"
	"github.com/SscSPs/splitsettle/internal/repositories/database/pgsql"
	"github.com/SscSPs/splitsettle/internal/repositories/database/sqlite"
	"github.com/SscSPs/splitsettle/pkg/database"
)

// migrateStorage applies the embedded migrations of the configured backend.
func migrateStorage(cfg *config.Config, dir database.Direction) error {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		return database.MigrateSQLite(cfg.SQLitePath, sqlite.Migrations, dir)
	default:
		return database.MigratePostgres(cfg.DatabaseURL, pgsql.Migrations, dir)
	}
}

// openRepositories connects to the configured backend. The returned func releases it.
func openRepositories(ctx context.Context, cfg *config.Config) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("open sqlite: %w", err)
		}
		slog.Info("SQLite database opened.", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db), func() { db.Close() }, nil
	default:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("open postgres: %w", err)
		}
		slog.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
	}
}
