package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/faculty-report-portal/pkg/config"
)

// exportJobsSchema is applied on startup; the ledger is the only table the
// portal owns.
const exportJobsSchema = `CREATE TABLE IF NOT EXISTS export_jobs (
	id            TEXT PRIMARY KEY,
	dataset       TEXT NOT NULL,
	format        TEXT NOT NULL,
	status        TEXT NOT NULL,
	result_url    TEXT,
	created_by    TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ,
	error_message TEXT
)`

// NewPostgres returns a configured PostgreSQL client for the export job
// ledger, or nil when the ledger is kept in memory.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, exportJobsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure export_jobs table: %w", err)
	}

	return db, nil
}
