package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/edupulse/edupulse-api/internal/models"
)

// ActivityRepository exposes read-only queries feeding both analytics
// pipelines. Reads are best-effort snapshots of the window; no transactional
// isolation is assumed.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository instantiates the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

type studentRow struct {
	ID          string `db:"id"`
	DisplayName string `db:"display_name"`
}

// StudentActivities returns every enrolled student with their discussion
// messages and quiz attempts inside the window, both ordered chronologically.
// Students without any activity are included with empty record sets.
func (r *ActivityRepository) StudentActivities(ctx context.Context, window models.ActivityWindow) ([]models.StudentActivity, error) {
	var students []studentRow
	if err := r.db.SelectContext(ctx, &students,
		"SELECT id, display_name FROM students WHERE active = TRUE ORDER BY id"); err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}

	messages, err := r.messages(ctx, window)
	if err != nil {
		return nil, err
	}
	attempts, err := r.attempts(ctx, window)
	if err != nil {
		return nil, err
	}

	messagesByStudent := make(map[string][]models.DiscussionMessage, len(students))
	for _, msg := range messages {
		messagesByStudent[msg.StudentID] = append(messagesByStudent[msg.StudentID], msg)
	}
	attemptsByStudent := make(map[string][]models.QuizAttempt, len(students))
	for _, attempt := range attempts {
		attemptsByStudent[attempt.StudentID] = append(attemptsByStudent[attempt.StudentID], attempt)
	}

	activities := make([]models.StudentActivity, 0, len(students))
	for _, student := range students {
		activities = append(activities, models.StudentActivity{
			StudentID:   student.ID,
			DisplayName: student.DisplayName,
			Messages:    messagesByStudent[student.ID],
			Attempts:    attemptsByStudent[student.ID],
		})
	}
	return activities, nil
}

func (r *ActivityRepository) messages(ctx context.Context, window models.ActivityWindow) ([]models.DiscussionMessage, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT m.id, m.student_id, m.room_id, r.room_type, COALESCE(r.quiz_id, '') AS quiz_id, m.sent_at
        FROM discussion_messages m
        JOIN discussion_rooms r ON r.id = m.room_id
        WHERE m.sent_at >= $1`)
	args := []interface{}{window.Start}
	if window.QuizID != "" {
		args = append(args, window.QuizID)
		builder.WriteString(fmt.Sprintf(" AND r.quiz_id = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY m.sent_at ASC")

	var messages []models.DiscussionMessage
	if err := r.db.SelectContext(ctx, &messages, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query discussion messages: %w", err)
	}
	return messages, nil
}

func (r *ActivityRepository) attempts(ctx context.Context, window models.ActivityWindow) ([]models.QuizAttempt, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT a.id, a.student_id, a.quiz_id, a.score, a.passed, q.passing_score, a.completed_at
        FROM quiz_attempts a
        JOIN quizzes q ON q.id = a.quiz_id
        WHERE a.completed_at >= $1`)
	args := []interface{}{window.Start}
	if window.QuizID != "" {
		args = append(args, window.QuizID)
		builder.WriteString(fmt.Sprintf(" AND a.quiz_id = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY a.completed_at ASC")

	var attempts []models.QuizAttempt
	if err := r.db.SelectContext(ctx, &attempts, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query quiz attempts: %w", err)
	}
	return attempts, nil
}

// QuizAttempts returns the attempts for the window, scoped to the window's
// quiz when one is set.
func (r *ActivityRepository) QuizAttempts(ctx context.Context, window models.ActivityWindow) ([]models.QuizAttempt, error) {
	return r.attempts(ctx, window)
}

// GroupMemberships returns active study-group memberships.
func (r *ActivityRepository) GroupMemberships(ctx context.Context, window models.ActivityWindow) ([]models.GroupMembership, error) {
	var memberships []models.GroupMembership
	if err := r.db.SelectContext(ctx, &memberships,
		"SELECT student_id, group_id, active FROM study_group_members WHERE active = TRUE ORDER BY student_id, group_id"); err != nil {
		return nil, fmt.Errorf("query group memberships: %w", err)
	}
	return memberships, nil
}

// SuspiciousActivities returns pre-flagged records inside the window,
// newest first.
func (r *ActivityRepository) SuspiciousActivities(ctx context.Context, window models.ActivityWindow) ([]models.SuspiciousActivityRecord, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT id, type, severity, description, occurred_at, user_id, room_id, COALESCE(quiz_id, '') AS quiz_id, evidence, resolved
        FROM suspicious_activities
        WHERE occurred_at >= $1`)
	args := []interface{}{window.Start}
	if window.QuizID != "" {
		args = append(args, window.QuizID)
		builder.WriteString(fmt.Sprintf(" AND quiz_id = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY occurred_at DESC")

	var records []models.SuspiciousActivityRecord
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query suspicious activities: %w", err)
	}
	return records, nil
}

// QuizExists reports whether the quiz id is known.
func (r *ActivityRepository) QuizExists(ctx context.Context, quizID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM quizzes WHERE id = $1)", quizID); err != nil {
		return false, fmt.Errorf("query quiz existence: %w", err)
	}
	return exists, nil
}
