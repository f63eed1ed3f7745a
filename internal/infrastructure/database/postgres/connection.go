package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connection manages the PostgreSQL connection pool
type Connection struct {
	DB *sqlx.DB
}

// NewConnection opens and pings a PostgreSQL pool.
// connectionString accepts either a URL or a key=value DSN.
func NewConnection(ctx context.Context, connectionString string) (*Connection, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{DB: db}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.DB.Close()
}

// Ping checks the database is reachable
func (c *Connection) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Connection) newMigrate(migrationFS embed.FS) (*migrate.Migrate, error) {
	sub, err := fs.Sub(migrationFS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(c.DB.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending migration from migrationFS
func (c *Connection) RunMigrations(migrationFS embed.FS) error {
	m, err := c.newMigrate(migrationFS)
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		// A dirty empty schema means the first migration never landed.
		target := int(version)
		if c.isDatabaseEmpty() {
			target = -1
		}
		slog.Warn("clearing dirty migration state",
			slog.Uint64("version", uint64(version)),
			slog.Int("force_to", target))
		if err := m.Force(target); err != nil {
			return fmt.Errorf("failed to force dirty migration: %w", err)
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ = m.Version()
	slog.Info("database schema up to date", slog.Uint64("version", uint64(version)))
	return nil
}

// ForceMigrationVersion marks the schema as being at version without
// running anything. Only for recovering from a failed migration.
func (c *Connection) ForceMigrationVersion(migrationFS embed.FS, version int) error {
	m, err := c.newMigrate(migrationFS)
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return fmt.Errorf("failed to force migration version %d: %w", version, err)
	}
	return nil
}

// isDatabaseEmpty checks if the database has no application tables
func (c *Connection) isDatabaseEmpty() bool {
	var count int
	query := `SELECT COUNT(*) FROM information_schema.tables
              WHERE table_schema = 'public'
              AND table_name <> 'schema_migrations'`
	err := c.DB.Get(&count, query)
	return err == nil && count == 0
}
