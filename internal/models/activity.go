package models

import "time"

// RoomType categorises discussion rooms.
type RoomType string

const (
	RoomQuizDiscussion RoomType = "quiz_discussion"
	RoomStudyGroup     RoomType = "study_group"
	RoomGeneral        RoomType = "general"
)

// RoomTypes lists every known room category in a stable order.
func RoomTypes() []RoomType {
	return []RoomType{RoomQuizDiscussion, RoomStudyGroup, RoomGeneral}
}

// ActivityWindow is the immutable query scope for one analytics run.
type ActivityWindow struct {
	Start  time.Time
	QuizID string
}

// Days returns the window length in whole days, never below 1.
func (w ActivityWindow) Days(now time.Time) float64 {
	days := now.Sub(w.Start).Hours() / 24
	if days < 1 {
		return 1
	}
	return days
}

// DiscussionMessage is one raw chat record inside the window.
type DiscussionMessage struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	RoomType  RoomType  `db:"room_type" json:"room_type"`
	QuizID    string    `db:"quiz_id" json:"quiz_id,omitempty"`
	SentAt    time.Time `db:"sent_at" json:"sent_at"`
}

// QuizAttempt is one raw quiz submission inside the window.
type QuizAttempt struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	QuizID       string    `db:"quiz_id" json:"quiz_id"`
	Score        float64   `db:"score" json:"score"`
	Passed       bool      `db:"passed" json:"passed"`
	PassingScore float64   `db:"passing_score" json:"passing_score"`
	CompletedAt  time.Time `db:"completed_at" json:"completed_at"`
}

// GroupMembership links a student to a study group.
type GroupMembership struct {
	StudentID string `db:"student_id" json:"student_id"`
	GroupID   string `db:"group_id" json:"group_id"`
	Active    bool   `db:"active" json:"active"`
}

// StudentActivity bundles one student's raw records for the window.
// Messages and Attempts are chronological; the repository guarantees ordering.
type StudentActivity struct {
	StudentID   string              `json:"student_id"`
	DisplayName string              `json:"display_name"`
	Messages    []DiscussionMessage `json:"messages"`
	Attempts    []QuizAttempt       `json:"attempts"`
}
