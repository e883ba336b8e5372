package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"remindme-server/models"
)

const jobColumns = `id, name, payload, run_at, fired, fired_at, status, error_message, created_at`

// RegisterJob inserts a one-shot job that becomes due at runAt
func (s *DBService) RegisterJob(ctx context.Context, name string, payload json.RawMessage, runAt time.Time) (models.JobHandle, error) {
	handle := models.JobHandle{
		ID:    uuid.New().String(),
		Name:  name,
		RunAt: runAt.UTC(),
	}

	err := capture(ctx, "Postgres.RegisterJob", func(ctx1 context.Context) error {
		_, err := s.db.ExecContext(ctx1, `
			INSERT INTO reminder_jobs (id, name, payload, run_at, fired, status)
			VALUES ($1, $2, $3, $4, FALSE, $5)
		`, handle.ID, handle.Name, []byte(payload), handle.RunAt, models.JobStatusPending)
		return err
	})
	if err != nil {
		return models.JobHandle{}, errors.Wrap(err, "register job")
	}
	return handle, nil
}

// GetJob retrieves a job by ID, nil when it does not exist
func (s *DBService) GetJob(ctx context.Context, id string) (*models.ScheduledJob, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM reminder_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get job %s", id)
	}
	return job, nil
}

// ClaimDueJobs locks due jobs, marks them fired and returns them. A job is
// returned by at most one call.
func (s *DBService) ClaimDueJobs(ctx context.Context, now time.Time, limit int) ([]models.ScheduledJob, error) {
	if limit <= 0 {
		limit = 10
	}

	var jobs []models.ScheduledJob
	err := capture(ctx, "Postgres.ClaimDueJobs", func(ctx1 context.Context) error {
		tx, err := s.db.BeginTx(ctx1, &sql.TxOptions{})
		if err != nil {
			return err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx1, `
			SELECT `+jobColumns+`
			FROM reminder_jobs
			WHERE fired = FALSE AND run_at <= $1
			ORDER BY run_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		`, now.UTC(), limit)
		if err != nil {
			return err
		}

		var ids []string
		for rows.Next() {
			job, err := scanJob(rows)
			if err != nil {
				rows.Close()
				return err
			}
			jobs = append(jobs, *job)
			ids = append(ids, job.ID)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		// Mark as fired in the same transaction to prevent a second claim
		if len(ids) > 0 {
			if _, err := tx.ExecContext(ctx1, `
				UPDATE reminder_jobs
				SET fired = TRUE, fired_at = $2
				WHERE id = ANY($1)
			`, pq.Array(ids), now.UTC()); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, errors.Wrap(err, "claim due jobs")
	}

	for i := range jobs {
		jobs[i].Fired = true
		firedAt := now.UTC()
		jobs[i].FiredAt = &firedAt
	}
	return jobs, nil
}

// MarkJobResult records the outcome of a fired job
func (s *DBService) MarkJobResult(ctx context.Context, id, status, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE reminder_jobs
		SET status = $2, error_message = $3
		WHERE id = $1
	`, id, status, errMsg)
	return errors.Wrapf(err, "mark job %s", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.ScheduledJob, error) {
	var job models.ScheduledJob
	var payload []byte
	var firedAt sql.NullTime
	var status, errorMsg sql.NullString

	if err := row.Scan(&job.ID, &job.Name, &payload, &job.RunAt, &job.Fired, &firedAt, &status, &errorMsg, &job.CreatedAt); err != nil {
		return nil, err
	}

	job.Payload = json.RawMessage(payload)
	if firedAt.Valid {
		job.FiredAt = &firedAt.Time
	}
	if status.Valid {
		job.Status = status.String
	}
	if errorMsg.Valid {
		job.ErrorMessage = errorMsg.String
	}
	return &job, nil
}
