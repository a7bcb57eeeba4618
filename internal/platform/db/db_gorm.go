// Package db opens the relational store and owns the schema lifecycle.
package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"course_api/internal/platform/config"
)

// retryInterval is the wait between connection attempts.
var retryInterval = 3 * time.Second

// Config describes how to reach the database.
type Config struct {
	Driver         string
	DSN            string
	EnableLogging  bool
	ConnectTimeout time.Duration
}

// ConfigFrom derives a Config from the application configuration.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Driver:         cfg.DBDriver,
		DSN:            cfg.DBDSN,
		EnableLogging:  cfg.DBEnableLogging,
		ConnectTimeout: 60 * time.Second,
	}
}

// BuildDSN returns the DSN handed to the driver.
// SQLite connections always enable foreign key enforcement so that
// course rows follow their owner on delete.
func BuildDSN(cfg Config) string {
	if cfg.Driver != config.DriverSQLite {
		return cfg.DSN
	}
	if strings.Contains(cfg.DSN, "_foreign_keys") || strings.Contains(cfg.DSN, "_fk=") {
		return cfg.DSN
	}
	sep := "?"
	if strings.Contains(cfg.DSN, "?") {
		sep = "&"
	}
	return cfg.DSN + sep + "_foreign_keys=on"
}

// Dialector returns the gorm dialector for driver.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// SQLXDriverName maps a configured driver to the name sqlx uses for bind variables.
func SQLXDriverName(driver string) string {
	if driver == config.DriverPostgres {
		return "pgx"
	}
	return "sqlite3"
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(dsn string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

// Open connects to the configured database.
func Open(cfg Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.EnableLogging {
		level = logger.Info
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	opener := func(dsn string) (*gorm.DB, error) {
		dialector, err := Dialector(cfg.Driver, dsn)
		if err != nil {
			return nil, err
		}
		return gorm.Open(dialector, gormCfg)
	}

	gdb, err := ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, opener)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DriverSQLite {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		// One connection: SQLite serialises writers anyway and :memory: databases are per-connection.
		sqlDB.SetMaxOpenConns(1)
	}

	slog.Info("database connected", "driver", cfg.Driver)
	return gdb, nil
}

// SQLX wraps the pool behind gdb for raw statement execution.
func SQLX(gdb *gorm.DB, driver string) (*sqlx.DB, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlx.NewDb(sqlDB, SQLXDriverName(driver)), nil
}

// Close releases the connection pool.
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
