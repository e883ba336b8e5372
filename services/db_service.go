package services

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	_ "github.com/lib/pq"
)

type DBService struct {
	db *sql.DB
}

func NewDBService(dsn string) (*DBService, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}

	return &DBService{db: db}, nil
}

// NewDBServiceWithDB wraps an already opened handle.
func NewDBServiceWithDB(db *sql.DB) *DBService {
	return &DBService{db: db}
}

func (s *DBService) Close() error {
	return s.db.Close()
}

func (s *DBService) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InitSchema creates tables if they don't exist
func (s *DBService) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reminder_jobs (
		id TEXT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		payload JSONB NOT NULL,
		run_at TIMESTAMPTZ NOT NULL,
		fired BOOLEAN NOT NULL DEFAULT FALSE,
		fired_at TIMESTAMPTZ,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_reminder_jobs_due ON reminder_jobs(run_at) WHERE fired = FALSE;
	`

	_, err := s.db.ExecContext(ctx, schema)
	return errors.Wrap(err, "init schema")
}
