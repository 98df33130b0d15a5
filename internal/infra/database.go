package infra

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Session settings applied to every pooled connection. A trade waits at most
// lockTimeout for another trade of the same user to release its row lock.
const (
	applicationName  = "papertrade"
	lockTimeout      = "5s"
	statementTimeout = "15s"
)

// NewDatabase opens the Postgres pool behind users, transactions and sessions
func NewDatabase(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := poolConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	log.Printf("Connecting to PostgreSQL (max %d conns)...", config.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("[OK] Database connected successfully")
	return pool, nil
}

// poolConfig parses databaseURL and applies the pool sizing for request-scoped
// trades. Settings given in the URL win over the session defaults.
func poolConfig(databaseURL string) (*pgxpool.Config, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// One connection per in-flight request; trades hold it for a few statements
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 10 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	params := config.ConnConfig.RuntimeParams
	for key, value := range map[string]string{
		"application_name":  applicationName,
		"lock_timeout":      lockTimeout,
		"statement_timeout": statementTimeout,
	} {
		if _, ok := params[key]; !ok {
			params[key] = value
		}
	}

	return config, nil
}
