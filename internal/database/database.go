// Package database opens the relational store and keeps its schema current.
package database

import (
	"fmt"
	"log/slog"

	"petitshop/internal/config"
	"petitshop/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the configured driver and migrates the schema.
func Open(cfg config.DatabaseConfig, log *slog.Logger, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log, debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table. Parents come before children so the
// cascade constraints can be created.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Business{},
		&models.Page{},
		&models.CartItem{},
		&models.Product{},
		&models.Order{},
	)
	return errors.Wrap(err, "failed to migrate database")
}

// OpenInMemory opens a private in-memory sqlite database with foreign keys enabled.
func OpenInMemory(log *slog.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	return Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, log, false)
}
