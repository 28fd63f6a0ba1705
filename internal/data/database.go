package data

import (
	"errors"
	"fmt"
	"time"

	"go-blog-admin/internal/config"
	"go-blog-admin/migrations"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Supported driver names.
const (
	DriverMySQL   = "mysql"
	DriverSQLite3 = "sqlite3"
)

// NewDB creates a new database connection pool for the configured driver.
func NewDB(cfg config.DBConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverMySQL, DriverSQLite3:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	dsn, err := driverDSN(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	// sqlx.Connect opens a connection and pings it to verify it's alive.
	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %v", ErrStorageUnavailable, err)
	}

	if cfg.Driver == DriverSQLite3 {
		// SQLite has a single writer. One connection keeps in-memory databases
		// shared and makes writers queue instead of failing with SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// driverDSN adjusts the configured DSN for the driver. MySQL needs parseTime
// so DATETIME columns scan into time.Time, UTC to match the timestamps
// written by the repositories, and multiStatements for the migration files.
func driverDSN(driver, dsn string) (string, error) {
	if driver != DriverMySQL {
		return dsn, nil
	}
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("%w: invalid mysql dsn: %v", ErrInvalidInput, err)
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.MultiStatements = true
	return mc.FormatDSN(), nil
}

// ApplyMigrations runs all up migrations embedded for the db's driver.
// It must not close the migrate instance: doing so would close db as well.
func ApplyMigrations(db *sqlx.DB) error {
	driver := db.DriverName()
	source, err := iofs.New(migrations.FS, driver)
	if err != nil {
		return fmt.Errorf("failed to open migrations for %s: %w", driver, err)
	}

	var m *migrate.Migrate
	switch driver {
	case DriverMySQL:
		instance, err := migratemysql.WithInstance(db.DB, &migratemysql.Config{})
		if err != nil {
			return fmt.Errorf("failed to create migrate driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, driver, instance)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
	case DriverSQLite3:
		instance, err := migratesqlite3.WithInstance(db.DB, &migratesqlite3.Config{})
		if err != nil {
			return fmt.Errorf("failed to create migrate driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, driver, instance)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	// Up applies all available up migrations.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
