// Package persistence implements the ledger repositories on GORM and PostgreSQL.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/laundrydesk/backend/internal/infrastructure/config"
	"github.com/laundrydesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const connectTimeout = 10 * time.Second

// Database is the PostgreSQL pool the ledger stores share
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

// OpenDatabase connects to PostgreSQL and sizes the pool from cfg. Every
// allocation holds one connection for its whole transaction, so MaxOpenConns
// bounds concurrent allocations.
func OpenDatabase(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger.NewGormLogger(log, cfg.LogLevel),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s/%s: %w", cfg.Host, cfg.DBName, err)
	}
	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	d := &Database{DB: db, sql: pool}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := d.Ping(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database %s/%s: %w", cfg.Host, cfg.DBName, err)
	}

	log.Info("Database connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.DBName),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return d, nil
}

// Ping reports whether the pool can reach PostgreSQL; used by /health
func (d *Database) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Close releases every pooled connection
func (d *Database) Close() error {
	return d.sql.Close()
}
