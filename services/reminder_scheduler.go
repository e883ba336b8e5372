package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"remindme-server/logger"
	"remindme-server/models"
)

// ReminderJobName is the name the reminder job is registered under
const ReminderJobName = "remind-me"

// JobRegistry persists one-shot jobs for later execution.
type JobRegistry interface {
	RegisterJob(ctx context.Context, name string, payload json.RawMessage, runAt time.Time) (models.JobHandle, error)
}

// ReminderScheduler registers reminder jobs. It does not validate runAt;
// callers must reject times that are not in the future.
type ReminderScheduler struct {
	registry JobRegistry
}

func NewReminderScheduler(registry JobRegistry) *ReminderScheduler {
	return &ReminderScheduler{registry: registry}
}

// Schedule registers a reminder that fires at runAt with payload.
func (s *ReminderScheduler) Schedule(ctx context.Context, payload models.ReminderPayload, runAt time.Time) (models.JobHandle, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.JobHandle{}, errors.Wrap(err, "encode reminder payload")
	}

	handle, err := s.registry.RegisterJob(ctx, ReminderJobName, raw, runAt)
	if err != nil {
		return models.JobHandle{}, err
	}

	logger.C(ctx).Info().
		Str("job_id", handle.ID).
		Str("actor_id", payload.ActorID).
		Str("target_id", payload.TargetID).
		Time("run_at", handle.RunAt).
		Msg("reminder scheduled")
	return handle, nil
}
