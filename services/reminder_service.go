package services

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"remindme-server/logger"
	"remindme-server/models"
)

// User-facing flow failures. Each ends the current flow without leaving a
// scheduled job behind.
var (
	ErrMissingIdentity = errors.New("this action must be run on a post or comment while logged in")
	ErrMissingActor    = errors.New("you must be logged in to set a reminder")
	ErrMissingHandoff  = errors.New("something went wrong, please try setting the reminder again")
	ErrPastSchedule    = errors.New("cannot remind you in the past")
)

// Stage1Result is the outcome of a successful text submission.
type Stage1Result struct {
	ScheduledAt time.Time
	Prompt      string
}

// Stage2Result is the outcome of the confirmation stage.
type Stage2Result struct {
	Toast     string
	Scheduled bool
	Handle    models.JobHandle
}

// ReminderService runs the two interaction stages of setting a reminder.
// Stage 1 parses the text and stores it in the handoff store; stage 2
// consumes it and schedules the job.
type ReminderService struct {
	parser    *TimeParser
	handoff   *HandoffStore
	scheduler *ReminderScheduler
	now       func() time.Time
}

func NewReminderService(parser *TimeParser, handoff *HandoffStore, scheduler *ReminderScheduler) *ReminderService {
	return &ReminderService{
		parser:    parser,
		handoff:   handoff,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *ReminderService) WithClock(now func() time.Time) *ReminderService {
	s.now = now
	return s
}

// SubmitText handles the reminder text form.
func (s *ReminderService) SubmitText(ctx context.Context, fc models.FlowContext, text string) (*Stage1Result, error) {
	if !fc.Complete() {
		return nil, ErrMissingIdentity
	}

	at, err := s.parser.Parse(text, s.now())
	if err != nil {
		logger.C(ctx).Debug().Str("actor_id", fc.ActorID).Str("text", text).Msg("unparseable reminder text")
		return nil, ErrParseFailure
	}

	req := models.ReminderRequest{ActorID: fc.ActorID, TargetID: fc.TargetID, ScheduledAt: at}
	if err := s.handoff.Put(ctx, req); err != nil {
		return nil, err
	}

	return &Stage1Result{
		ScheduledAt: at,
		Prompt:      "Remind you on " + formatReminderTime(at) + "?",
	}, nil
}

// Confirm handles the confirmation form. A declined confirmation discards
// the pending request.
func (s *ReminderService) Confirm(ctx context.Context, fc models.FlowContext, confirm bool) (*Stage2Result, error) {
	actorID, ok := fc.Actor()
	if !ok {
		return nil, ErrMissingActor
	}

	req, err := s.handoff.TakeAndDelete(ctx, actorID, fc.TargetID)
	if err != nil {
		return nil, err
	}

	if !confirm {
		return &Stage2Result{Toast: "Reminder cancelled"}, nil
	}
	if req == nil {
		return nil, ErrMissingHandoff
	}

	now := s.now()
	if !req.ScheduledAt.After(now) {
		return nil, ErrPastSchedule
	}

	payload := models.ReminderPayload{
		ActorID:       req.ActorID,
		TargetID:      req.TargetID,
		InitTimestamp: now.UnixMilli(),
	}
	handle, err := s.scheduler.Schedule(ctx, payload, req.ScheduledAt)
	if err != nil {
		return nil, err
	}

	return &Stage2Result{
		Toast:     "I'll remind you on " + formatReminderTime(req.ScheduledAt),
		Scheduled: true,
		Handle:    handle,
	}, nil
}

// IsUserError reports whether err is a flow failure meant for the user.
func IsUserError(err error) bool {
	switch errors.Cause(err) {
	case ErrMissingIdentity, ErrMissingActor, ErrMissingHandoff, ErrPastSchedule, ErrParseFailure:
		return true
	}
	return false
}
