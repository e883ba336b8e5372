package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remindme-server/models"
)

type flowFixture struct {
	mr      *miniredis.Miniredis
	jobs    *memoryJobs
	service *ReminderService
	clock   time.Time
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()
	mr, rs := newTestRedis(t)
	f := &flowFixture{
		mr:    mr,
		jobs:  &memoryJobs{},
		clock: refNow,
	}
	f.service = NewReminderService(
		NewTimeParser(),
		NewHandoffStore(rs, DefaultHandoffTTL),
		NewReminderScheduler(f.jobs),
	).WithClock(func() time.Time { return f.clock })
	return f
}

var aliceOnPost = models.FlowContext{ActorID: "alice", TargetID: "post-x"}

func TestReminderService_ScheduleAndFire(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)

	s1, err := f.service.SubmitText(ctx, aliceOnPost, "in one hour")
	require.NoError(t, err)
	assert.True(t, refNow.Add(time.Hour).Equal(s1.ScheduledAt))
	assert.Equal(t, "Remind you on Tue, 10 Mar 2026 10:30 UTC?", s1.Prompt)
	assert.True(t, f.mr.Exists("alice::post-x"))

	f.clock = refNow.Add(10 * time.Second)
	s2, err := f.service.Confirm(ctx, aliceOnPost, true)
	require.NoError(t, err)
	assert.True(t, s2.Scheduled)
	assert.Equal(t, "I'll remind you on Tue, 10 Mar 2026 10:30 UTC", s2.Toast)
	assert.Equal(t, ReminderJobName, s2.Handle.Name)
	assert.True(t, refNow.Add(time.Hour).Equal(s2.Handle.RunAt))
	assert.False(t, f.mr.Exists("alice::post-x"))
	require.Equal(t, 1, f.jobs.Len())

	job, err := f.jobs.GetJob(ctx, s2.Handle.ID)
	require.NoError(t, err)
	var payload models.ReminderPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, models.ReminderPayload{
		ActorID:       "alice",
		TargetID:      "post-x",
		InitTimestamp: refNow.Add(10 * time.Second).UnixMilli(),
	}, payload)

	// fire it
	msgr := &fakeMessenger{}
	runner := NewScheduleRunner(f.jobs, time.Second, 10)
	runner.Register(ReminderJobName, NewReminderJob(newFakeDirectory(), msgr).Handle)

	runner.now = func() time.Time { return refNow.Add(30 * time.Minute) }
	n, err := runner.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	runner.now = func() time.Time { return refNow.Add(time.Hour + time.Second) }
	n, err = runner.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sent := msgr.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice", sent[0].To.ID)
	assert.Equal(t, "RemindMe: Post X", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "You set this reminder on Tue, 10 Mar 2026 09:30 UTC.")

	n, err = runner.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, msgr.Sent(), 1)
}

func TestReminderService_Decline(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)

	_, err := f.service.SubmitText(ctx, aliceOnPost, "in one hour")
	require.NoError(t, err)

	res, err := f.service.Confirm(ctx, aliceOnPost, false)
	require.NoError(t, err)
	assert.False(t, res.Scheduled)
	assert.Equal(t, "Reminder cancelled", res.Toast)
	assert.Equal(t, 0, f.jobs.Len())
	assert.False(t, f.mr.Exists("alice::post-x"))

	// the declined request is gone
	_, err = f.service.Confirm(ctx, aliceOnPost, true)
	assert.Equal(t, ErrMissingHandoff, err)
}

func TestReminderService_PastTime(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)

	s1, err := f.service.SubmitText(ctx, aliceOnPost, "yesterday")
	require.NoError(t, err)
	assert.True(t, s1.ScheduledAt.Before(refNow))

	_, err = f.service.Confirm(ctx, aliceOnPost, true)
	assert.Equal(t, ErrPastSchedule, err)
	assert.True(t, IsUserError(err))
	assert.Equal(t, 0, f.jobs.Len())
	assert.False(t, f.mr.Exists("alice::post-x"))
}

func TestReminderService_TimePassesBeforeConfirm(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)

	_, err := f.service.SubmitText(ctx, aliceOnPost, "in 30 minutes")
	require.NoError(t, err)

	f.clock = refNow.Add(30 * time.Minute)
	_, err = f.service.Confirm(ctx, aliceOnPost, true)
	assert.Equal(t, ErrPastSchedule, err)
	assert.Equal(t, 0, f.jobs.Len())
}

func TestReminderService_ConfirmWithoutSubmit(t *testing.T) {
	f := newFlowFixture(t)

	_, err := f.service.Confirm(context.Background(), aliceOnPost, true)
	assert.Equal(t, ErrMissingHandoff, err)
	assert.Equal(t, 0, f.jobs.Len())
}

func TestReminderService_HandoffExpired(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)

	_, err := f.service.SubmitText(ctx, aliceOnPost, "2 days from now")
	require.NoError(t, err)

	f.mr.FastForward(DefaultHandoffTTL + time.Minute)
	_, err = f.service.Confirm(ctx, aliceOnPost, true)
	assert.Equal(t, ErrMissingHandoff, err)
	assert.Equal(t, 0, f.jobs.Len())
}

func TestReminderService_LatestSubmissionWins(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)

	_, err := f.service.SubmitText(ctx, aliceOnPost, "in one hour")
	require.NoError(t, err)
	_, err = f.service.SubmitText(ctx, aliceOnPost, "2 days from now")
	require.NoError(t, err)

	res, err := f.service.Confirm(ctx, aliceOnPost, true)
	require.NoError(t, err)
	assert.True(t, refNow.Add(48*time.Hour).Equal(res.Handle.RunAt))
	assert.Equal(t, 1, f.jobs.Len())
}

func TestReminderService_IdentityChecks(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)

	_, err := f.service.SubmitText(ctx, models.FlowContext{TargetID: "post-x"}, "in one hour")
	assert.Equal(t, ErrMissingIdentity, err)
	_, err = f.service.SubmitText(ctx, models.FlowContext{ActorID: "alice"}, "in one hour")
	assert.Equal(t, ErrMissingIdentity, err)
	assert.Empty(t, f.mr.Keys())

	_, err = f.service.SubmitText(ctx, aliceOnPost, "in one hour")
	require.NoError(t, err)

	// a missing actor does not consume the pending request
	_, err = f.service.Confirm(ctx, models.FlowContext{TargetID: "post-x"}, true)
	assert.Equal(t, ErrMissingActor, err)
	assert.True(t, f.mr.Exists("alice::post-x"))

	_, err = f.service.Confirm(ctx, models.FlowContext{ActorID: "alice"}, true)
	assert.Equal(t, ErrMissingHandoff, err)
	assert.True(t, f.mr.Exists("alice::post-x"))
}

func TestReminderService_ParseFailure(t *testing.T) {
	f := newFlowFixture(t)

	_, err := f.service.SubmitText(context.Background(), aliceOnPost, "hello there")
	assert.Equal(t, ErrParseFailure, err)
	assert.True(t, IsUserError(err))
	assert.Empty(t, f.mr.Keys())
}

func TestReminderService_PairsDoNotInterfere(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)
	bobOnPost := models.FlowContext{ActorID: "bob", TargetID: "post-x"}

	_, err := f.service.SubmitText(ctx, aliceOnPost, "in one hour")
	require.NoError(t, err)
	_, err = f.service.SubmitText(ctx, bobOnPost, "2 days from now")
	require.NoError(t, err)

	res, err := f.service.Confirm(ctx, bobOnPost, true)
	require.NoError(t, err)
	assert.True(t, refNow.Add(48*time.Hour).Equal(res.Handle.RunAt))

	res, err = f.service.Confirm(ctx, aliceOnPost, true)
	require.NoError(t, err)
	assert.True(t, refNow.Add(time.Hour).Equal(res.Handle.RunAt))
}
