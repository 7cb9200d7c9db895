// Package db provides PostgreSQL access for the bot's channel opt-out store.
// It wraps a pgx connection pool and applies embedded goose migrations at
// startup.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/embedfixer/embedfixer/migrations"
)

const (
	maxConnectionRetries = 5
	connectionRetrySleep = 2 * time.Second
)

// DB wraps a PostgreSQL connection pool. Safe for concurrent use.
type DB struct {
	Pool   *pgxpool.Pool
	Logger *zerolog.Logger
}

func New(ctx context.Context, dsn string, logger *zerolog.Logger) (*DB, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	var pool *pgxpool.Pool

	for i := 0; i < maxConnectionRetries; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &DB{Pool: pool, Logger: logger}, nil
			}
		}

		if pool != nil {
			pool.Close()
		}

		time.Sleep(connectionRetrySleep)
	}

	return nil, fmt.Errorf("connect to database: %w", err)
}

// Migrate applies pending migrations from the embedded filesystem.
func (db *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func (db *DB) Close() {
	db.Pool.Close()
}
