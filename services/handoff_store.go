package services

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"remindme-server/logger"
	"remindme-server/models"
)

const (
	// DefaultHandoffTTL bounds how long an unconfirmed request survives
	DefaultHandoffTTL = time.Hour

	handoffKeySeparator = "::"
	fieldReminderTS     = "reminderTimestamp"
)

// HandoffKey composes the storage key for an (actor, target) pair.
func HandoffKey(actorID, targetID string) string {
	return actorID + handoffKeySeparator + targetID
}

// HandoffStore carries a ReminderRequest from the input stage to the
// confirmation stage. It holds at most one request per (actor, target) pair
// and each request can be taken once.
//
// TakeAndDelete reads then deletes without a lock: two confirmations racing
// on the same pair may both observe the request.
type HandoffStore struct {
	kv  KVBackend
	ttl time.Duration
}

func NewHandoffStore(kv KVBackend, ttl time.Duration) *HandoffStore {
	if ttl <= 0 {
		ttl = DefaultHandoffTTL
	}
	return &HandoffStore{kv: kv, ttl: ttl}
}

// Put overwrites the request stored for req's pair and resets its expiry.
// It does nothing when either identity is missing.
func (s *HandoffStore) Put(ctx context.Context, req models.ReminderRequest) error {
	if req.ActorID == "" || req.TargetID == "" {
		return nil
	}

	key := HandoffKey(req.ActorID, req.TargetID)
	fields := map[string]string{
		fieldReminderTS: models.EpochMillis(req.ScheduledAt),
	}
	if err := s.kv.HSet(ctx, key, fields); err != nil {
		return errors.Wrap(err, "store handoff")
	}
	if err := s.kv.Expire(ctx, key, s.ttl); err != nil {
		return errors.Wrap(err, "expire handoff")
	}

	logger.C(ctx).Debug().
		Str("actor_id", req.ActorID).
		Str("target_id", req.TargetID).
		Time("scheduled_at", req.ScheduledAt).
		Msg("handoff stored")
	return nil
}

// TakeAndDelete returns the request stored for the pair and removes it.
// A nil request means none is available. The key is deleted even when the
// read fails or the record is incomplete.
func (s *HandoffStore) TakeAndDelete(ctx context.Context, actorID, targetID string) (*models.ReminderRequest, error) {
	if actorID == "" || targetID == "" {
		return nil, nil
	}

	key := HandoffKey(actorID, targetID)
	fields, readErr := s.kv.HGetAll(ctx, key)
	delErr := s.kv.Del(ctx, key)

	if readErr != nil {
		return nil, errors.Wrap(readErr, "read handoff")
	}
	if delErr != nil {
		// the record was read; the TTL will clean it up
		logger.C(ctx).Warn().Err(delErr).Str("key", key).Msg("failed to delete handoff")
	}

	raw, ok := fields[fieldReminderTS]
	if !ok || raw == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.C(ctx).Warn().Str("key", key).Str("value", raw).Msg("malformed handoff timestamp")
		return nil, nil
	}

	return &models.ReminderRequest{
		ActorID:     actorID,
		TargetID:    targetID,
		ScheduledAt: time.UnixMilli(ms).UTC(),
	}, nil
}
