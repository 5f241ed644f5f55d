package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/kasamthapa/krisi/internal/infrastructure/config"
	"github.com/kasamthapa/krisi/internal/infrastructure/logger"
	"github.com/kasamthapa/krisi/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// slowQueryThreshold is the duration above which SQL statements are logged as slow
const slowQueryThreshold = 200 * time.Millisecond

// Database wraps the GORM DB instance
type Database struct {
	DB     *gorm.DB
	driver string
}

// Options tunes how the connection is opened
type Options struct {
	LogLevel string // silent, error, warn, info
	Plugins  []gorm.Plugin
}

// NewDatabase opens a connection for the configured driver, applies pool
// settings and registers any plugins (e.g. query tracing).
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger, opts Options) (*Database, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewSQLLogger(log, opts.LogLevel, slowQueryThreshold),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite allows one writer; an in-memory database also lives only as
		// long as its connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	for _, plugin := range opts.Plugins {
		if err := db.Use(plugin); err != nil {
			return nil, fmt.Errorf("failed to register plugin %s: %w", plugin.Name(), err)
		}
	}

	log.Info("Database connected",
		zap.String("driver", cfg.Driver),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)

	return &Database{DB: db, driver: cfg.Driver}, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		return sqlite.Open(path), nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
}

// Migrate creates or updates the marketplace tables
func (d *Database) Migrate() error {
	return d.DB.AutoMigrate(models.All()...)
}

// Driver returns the configured driver name
func (d *Database) Driver() string {
	return d.driver
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database is reachable
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction executes fn within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
