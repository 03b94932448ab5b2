package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/legalcms/backend/internal/config"
	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/models"
)

// Connect opens the database described by cfg and sizes its pool.
func Connect(cfg config.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(logLevel),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// One connection keeps ":memory:" databases alive and serializes writers.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	logger.Info("Database connected", map[string]interface{}{
		"driver": cfg.Driver,
	})
	return db, nil
}

// OpenSQLite opens a sqlite database at path; ":memory:" gives a private
// throwaway database.
func OpenSQLite(path string) (*gorm.DB, error) {
	return Connect(config.DatabaseConfig{Driver: "sqlite", URL: path}, "ERROR")
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "pgx":
		return postgres.Open(cfg.DSN()), nil
	case "postgres":
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: cfg.DSN()}), nil
	case "sqlite":
		return sqlite.Open(cfg.URL), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func newGormLogger(levelName string) gormlogger.Interface {
	level := gormlogger.Error
	switch logger.ParseLevel(levelName) {
	case logrus.DebugLevel:
		level = gormlogger.Info
	case logrus.WarnLevel:
		level = gormlogger.Warn
	}
	return gormlogger.New(logger.GetLogger(), gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	entities := []interface{}{
		&models.User{},
		&models.Case{},
		&models.Appointment{},
		&models.Document{},
		&models.ChatMessage{},
	}
	for _, entity := range entities {
		if err := db.AutoMigrate(entity); err != nil {
			return fmt.Errorf("migrate %T: %w", entity, err)
		}
	}
	logger.Info("Database migrations completed", map[string]interface{}{
		"tables": len(entities),
	})
	return nil
}

// Ping checks that the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
