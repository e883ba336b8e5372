package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"remindme-server/logger"
	"remindme-server/models"
)

// Directory resolves actors and targets. A nil record with a nil error
// means the record no longer exists.
type Directory interface {
	GetActorByID(ctx context.Context, id string) (*models.Actor, error)
	GetTargetByID(ctx context.Context, id string) (*models.Target, error)
}

// Messenger delivers private messages.
type Messenger interface {
	SendPrivateMessage(ctx context.Context, to models.Actor, subject, body string) error
}

// ReminderTimeLayout is used whenever a reminder time is shown to a user
const ReminderTimeLayout = "Mon, 02 Jan 2006 15:04 MST"

// ComposeReminder builds the notification for a fired reminder. It reports
// false when the actor or the target is gone.
func ComposeReminder(payload models.ReminderPayload, actor *models.Actor, target *models.Target) (models.PrivateMessage, bool) {
	if actor == nil || target == nil {
		return models.PrivateMessage{}, false
	}

	name := actor.Username
	if name == "" {
		name = actor.ID
	}
	title := target.Title
	if title == "" {
		title = target.ID
	}

	body := fmt.Sprintf("Hi %s,\n\nYou asked to be reminded about [%s](%s).\n\nYou set this reminder on %s.",
		name, title, target.Locator, formatReminderTime(payload.CreatedAt()))

	return models.PrivateMessage{
		To:      *actor,
		Subject: "RemindMe: " + title,
		Body:    body,
	}, true
}

// ReminderJob is the fire-time body of a reminder.
type ReminderJob struct {
	directory Directory
	messenger Messenger
}

func NewReminderJob(directory Directory, messenger Messenger) *ReminderJob {
	return &ReminderJob{directory: directory, messenger: messenger}
}

// OnFire looks up the live actor and target and sends one private message.
// Missing records end the job quietly with JobStatusSkipped. Delivery
// failures are returned but never retried.
func (j *ReminderJob) OnFire(ctx context.Context, payload models.ReminderPayload) (string, error) {
	log := logger.C(ctx).With().
		Str("actor_id", payload.ActorID).
		Str("target_id", payload.TargetID).
		Logger()

	actor, err := j.directory.GetActorByID(ctx, payload.ActorID)
	if err != nil {
		log.Debug().Err(err).Msg("actor lookup failed; skipping reminder")
		return models.JobStatusSkipped, nil
	}
	target, err := j.directory.GetTargetByID(ctx, payload.TargetID)
	if err != nil {
		log.Debug().Err(err).Msg("target lookup failed; skipping reminder")
		return models.JobStatusSkipped, nil
	}

	msg, ok := ComposeReminder(payload, actor, target)
	if !ok {
		log.Debug().Bool("actor_found", actor != nil).Bool("target_found", target != nil).Msg("skipping reminder")
		return models.JobStatusSkipped, nil
	}

	if err := j.messenger.SendPrivateMessage(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		log.Warn().Err(err).Msg("reminder delivery failed")
		return models.JobStatusFailed, errors.Wrap(err, "send reminder")
	}

	log.Info().Msg("reminder delivered")
	return models.JobStatusDelivered, nil
}

// Handle decodes a raw job payload and fires it. It satisfies JobHandler.
func (j *ReminderJob) Handle(ctx context.Context, raw json.RawMessage) (string, error) {
	var payload models.ReminderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.JobStatusFailed, errors.Wrap(err, "decode reminder payload")
	}
	return j.OnFire(ctx, payload)
}

// formatReminderTime renders t the way users see reminder times.
func formatReminderTime(t time.Time) string {
	return t.UTC().Format(ReminderTimeLayout)
}
