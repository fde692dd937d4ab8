package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	"github.com/prajwalbharadwajbm/fundledger/internal/config"
)

// MigrationManager handles database migrations
type MigrationManager struct {
	dsn           string
	migrationsDir string
	logger        log.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(dsn, migrationsDir string, logger log.Logger) *MigrationManager {
	return &MigrationManager{
		dsn:           dsn,
		migrationsDir: migrationsDir,
		logger:        logger,
	}
}

// Up runs all up migrations
func (m *MigrationManager) Up() error {
	migration, err := m.createMigrationInstance()
	if err != nil {
		return err
	}
	defer migration.Close()

	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run up migrations: %w", err)
	}

	level.Info(m.logger).Log("msg", "database migrations completed successfully")
	return nil
}

// Down runs all down migrations
func (m *MigrationManager) Down() error {
	migration, err := m.createMigrationInstance()
	if err != nil {
		return err
	}
	defer migration.Close()

	if err := migration.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run down migrations: %w", err)
	}

	level.Info(m.logger).Log("msg", "database down migrations completed successfully")
	return nil
}

// Reset drops all tables and re-runs migrations
func (m *MigrationManager) Reset() error {
	level.Info(m.logger).Log("msg", "resetting database")

	if err := m.Down(); err != nil {
		return fmt.Errorf("failed to run down migrations during reset: %w", err)
	}

	if err := m.Up(); err != nil {
		return fmt.Errorf("failed to run up migrations during reset: %w", err)
	}

	level.Info(m.logger).Log("msg", "database reset completed successfully")
	return nil
}

// Version returns current migration version
func (m *MigrationManager) Version() (uint, bool, error) {
	migration, err := m.createMigrationInstance()
	if err != nil {
		return 0, false, err
	}
	defer migration.Close()

	return migration.Version()
}

// Force sets the migration version without running migrations
func (m *MigrationManager) Force(version int) error {
	migration, err := m.createMigrationInstance()
	if err != nil {
		return err
	}
	defer migration.Close()

	return migration.Force(version)
}

// createMigrationInstance creates a new migration instance on its own
// connection, closed together with the instance
func (m *MigrationManager) createMigrationInstance() (*migrate.Migrate, error) {
	migrationDB, err := sql.Open("postgres", m.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration database connection: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		migrationDB.Close()
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	migrationsPath, err := filepath.Abs(m.migrationsDir)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to get absolute path for migrations: %w", err)
	}

	migration, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return migration, nil
}

// EnsureDatabase creates the database if it doesn't exist
func EnsureDatabase(cfg config.DatabaseConfig, logger log.Logger) error {
	// Connect to postgres database to create the target database
	db, err := sql.Open("postgres", cfg.MaintenanceDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	// Check if database exists
	var exists bool
	query := "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1)"
	err = db.QueryRow(query, cfg.DBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if exists {
		level.Debug(logger).Log("msg", "database already exists", "database", cfg.DBName)
		return nil
	}

	level.Info(logger).Log("msg", "creating database", "database", cfg.DBName)
	if _, err = db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(cfg.DBName)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	level.Info(logger).Log("msg", "database created", "database", cfg.DBName)
	return nil
}

// Logger returns the logger migrations report to
func (m *MigrationManager) Logger() log.Logger {
	return m.logger
}
