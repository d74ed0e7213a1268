// Package database manages the sqlx connection and the schema.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lexloop/lexloop/internal/infrastructure/config"
)

// NewConnection opens a sqlx database for the configured driver and verifies
// it with a ping.
func NewConnection(cfg *config.Config) (*sqlx.DB, func(), error) {
	driver := cfg.Database.Driver
	switch driver {
	case "pgx", "sqlite3":
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sqlx.Open(driver, cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if driver == "pgx" {
		db.SetMaxOpenConns(10)
	} else {
		// sqlite locks the whole file on write; a single connection avoids
		// SQLITE_BUSY under concurrent handlers.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	return db, func() { _ = db.Close() }, nil
}
