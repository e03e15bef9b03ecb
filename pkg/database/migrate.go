package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Direction selects which migrations to apply.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down:
		return d, nil
	default:
		return "", fmt.Errorf("unknown migration direction %q", s)
	}
}

// MigratePostgres applies the migrations found under "migrations" in fsys.
func MigratePostgres(databaseURL string, fsys fs.FS, dir Direction) error {
	// Using pgx/v5/stdlib driver to be compatible with the main pool
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping migration database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}
	return run(fsys, "postgres", driver, dir)
}

// MigrateSQLite applies the migrations found under "migrations" in fsys.
func MigrateSQLite(path string, fsys fs.FS, dir Direction) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	// Create a separate connection for migrations to avoid interfering with the main connection
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer db.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	return run(fsys, "sqlite", driver, dir)
}

func run(fsys fs.FS, dbName string, driver database.Driver, dir Direction) error {
	src, err := iofs.New(fsys, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dbName, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch dir {
	case Down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("No new migrations to apply.", slog.String("database", dbName))
		return nil
	}
	if err != nil {
		return fmt.Errorf("run %s migrations: %w", dir, err)
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		slog.Info("Database migrations applied.",
			slog.String("database", dbName),
			slog.Uint64("version", uint64(version)),
			slog.Bool("dirty", dirty))
	}
	return nil
}
