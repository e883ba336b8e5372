package models

import (
	"strconv"
	"time"
)

// FlowContext carries the identities the UI layer attached to an
// interaction. An empty field means the identity is unavailable.
type FlowContext struct {
	ActorID  string
	TargetID string
}

// Actor returns the actor id and whether it is present.
func (fc FlowContext) Actor() (string, bool) {
	return fc.ActorID, fc.ActorID != ""
}

// Target returns the target id and whether it is present.
func (fc FlowContext) Target() (string, bool) {
	return fc.TargetID, fc.TargetID != ""
}

// Complete reports whether both identities are present.
func (fc FlowContext) Complete() bool {
	return fc.ActorID != "" && fc.TargetID != ""
}

// ReminderRequest is the record handed from stage 1 to stage 2.
type ReminderRequest struct {
	ActorID     string    `json:"actor_id"`
	TargetID    string    `json:"target_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// ReminderPayload is the job payload handed verbatim to the fire-time
// callback. InitTimestamp is the confirmation time in epoch milliseconds.
type ReminderPayload struct {
	ActorID       string `json:"actorId"`
	TargetID      string `json:"targetId"`
	InitTimestamp int64  `json:"initTimestamp"`
}

// CreatedAt returns InitTimestamp as a UTC time.
func (p ReminderPayload) CreatedAt() time.Time {
	return time.UnixMilli(p.InitTimestamp).UTC()
}

// Stage1Request is the body of the reminder text form.
type Stage1Request struct {
	Text string `json:"text" validate:"required,max=256"`
}

// Stage1Response is the confirmation prompt returned after a successful parse.
type Stage1Response struct {
	Prompt      string `json:"prompt"`
	ScheduledAt int64  `json:"scheduled_at"`
}

// Stage2Request is the body of the confirmation form.
type Stage2Request struct {
	Confirm bool `json:"confirm"`
}

// Stage2Response is the toast shown after the confirmation form.
type Stage2Response struct {
	Toast string `json:"toast"`
	JobID string `json:"job_id,omitempty"`
	RunAt int64  `json:"run_at,omitempty"`
}

// EpochMillis formats t as a decimal epoch-millisecond string.
func EpochMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
