package models

import "time"

// ViolationSeverity grades a flagged activity record.
type ViolationSeverity string

const (
	SeverityLow    ViolationSeverity = "LOW"
	SeverityMedium ViolationSeverity = "MEDIUM"
	SeverityHigh   ViolationSeverity = "HIGH"
)

// SuspiciousActivityRecord is a pre-flagged discussion event sourced from the
// external detection process. The integrity pipeline only aggregates these.
type SuspiciousActivityRecord struct {
	ID          string            `db:"id" json:"id"`
	Type        string            `db:"type" json:"type"`
	Severity    ViolationSeverity `db:"severity" json:"severity"`
	Description string            `db:"description" json:"description"`
	OccurredAt  time.Time         `db:"occurred_at" json:"occurred_at"`
	UserID      string            `db:"user_id" json:"user_id"`
	RoomID      string            `db:"room_id" json:"room_id"`
	QuizID      string            `db:"quiz_id" json:"quiz_id,omitempty"`
	Evidence    string            `db:"evidence" json:"evidence,omitempty"`
	Resolved    bool              `db:"resolved" json:"resolved"`
}
