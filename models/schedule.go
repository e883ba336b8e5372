package models

import (
	"encoding/json"
	"time"
)

// ScheduledJob is a one-shot job owned by the scheduler (reminder_jobs table)
type ScheduledJob struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Payload      json.RawMessage `json:"payload"`
	RunAt        time.Time       `json:"run_at"`
	Fired        bool            `json:"fired"`
	FiredAt      *time.Time      `json:"fired_at,omitempty"`
	Status       string          `json:"status,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// JobHandle identifies a registered job
type JobHandle struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	RunAt time.Time `json:"run_at"`
}

// Job status constants
const (
	JobStatusPending   = "pending"
	JobStatusDelivered = "delivered"
	JobStatusSkipped   = "skipped"
	JobStatusFailed    = "failed"
)
