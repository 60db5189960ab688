package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"backoffice/pkg/logger"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Retry policy for the initial ping.
var (
	PingAttempts = 5
	PingInterval = 2 * time.Second
)

// Connect opens driver ("postgres" or "sqlite") at dsn and pings it, retrying
// a few times in case of a temporary network blip.
func Connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if driver == "sqlite" {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	for i := 0; i < PingAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return db, nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", PingInterval, err)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(PingInterval):
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", PingAttempts, err)
}
