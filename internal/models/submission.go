package models

import "time"

const (
	SubmissionInProgress = "in_progress"
	SubmissionCompleted  = "completed"
	SubmissionAbandoned  = "abandoned"
)

// Answer is one respondent value for one field. Value holds the raw input
// (string, float64, bool or []string). NumericValue is pre-resolved for
// choice answers (selected option's numeric value, or the sum of them for
// multi-select) and is consulted by the scoring engine as a fallback.
type Answer struct {
	Value        interface{} `bson:"value" json:"value"`
	NumericValue *float64    `bson:"numeric_value,omitempty" json:"numeric_value,omitempty"`
}

type Submission struct {
	ID               string            `bson:"_id,omitempty" json:"id"`
	FormID           string            `bson:"form_id" json:"form_id"`
	SessionToken     string            `bson:"session_token" json:"session_token"`
	Email            string            `bson:"email,omitempty" json:"email,omitempty"`
	Answers          map[string]Answer `bson:"answers" json:"answers"`
	Status           string            `bson:"status" json:"status"`
	CurrentFieldKey  string            `bson:"current_field_key,omitempty" json:"current_field_key,omitempty"`
	ProgressPercent  int               `bson:"progress_percent" json:"progress_percent"`
	Score            *float64          `bson:"score,omitempty" json:"score,omitempty"`
	Classification   string            `bson:"classification,omitempty" json:"classification,omitempty"`
	Metadata         map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	StartedAt        time.Time         `bson:"started_at" json:"started_at"`
	CompletedAt      *time.Time        `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	TimeSpentSeconds int               `bson:"time_spent_seconds" json:"time_spent_seconds"`
}

// FieldAnswer is the flattened per-field answer row kept for analytics.
type FieldAnswer struct {
	ID            string      `bson:"_id,omitempty" json:"id"`
	SubmissionID  string      `bson:"submission_id" json:"submission_id"`
	FormID        string      `bson:"form_id" json:"form_id"`
	FieldKey      string      `bson:"field_key" json:"field_key"`
	Value         interface{} `bson:"value" json:"value"`
	WeightedScore *float64    `bson:"weighted_score,omitempty" json:"weighted_score,omitempty"`
	Pillar        string      `bson:"pillar,omitempty" json:"pillar,omitempty"`
	AnsweredAt    time.Time   `bson:"answered_at" json:"answered_at"`
}
