package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	_ "github.com/lib/pq"
	"github.com/prajwalbharadwajbm/fundledger/internal/config"
)

// DB holds the database connection
type DB struct {
	*sql.DB
}

// Open connects to dsn with the default pool settings
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

// NewConnection creates a new database connection with connection pooling
func NewConnection(cfg config.DatabaseConfig) (*DB, error) {
	db, err := Open(cfg.DSN())
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	return db, nil
}

// HealthCheck performs a health check on the database connection
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// GetConnectionStats returns database connection statistics
func (db *DB) GetConnectionStats() sql.DBStats {
	return db.Stats()
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Initialize sets up the complete database with connection and migrations, and returns a cleanup function
func Initialize(cfg config.DatabaseConfig, logger log.Logger) (*DB, func(), error) {
	// Ensure database exists
	if err := EnsureDatabase(cfg, logger); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure database exists: %w", err)
	}

	// Run migrations
	migrationManager := NewMigrationManager(cfg.DSN(), cfg.MigrationsPath, logger)
	if err := migrationManager.Up(); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Connect to database
	db, err := NewConnection(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			level.Error(logger).Log("msg", "error closing database connection", "err", err)
		}
	}

	// Final health check
	if err := db.HealthCheck(context.Background()); err != nil {
		cleanup()
		return nil, nil, err
	}

	return db, cleanup, nil
}
