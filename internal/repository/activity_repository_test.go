package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/edupulse-api/internal/models"
)

func newActivityMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestActivityRepositoryStudentActivities(t *testing.T) {
	db, mock, cleanup := newActivityMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	sentAt := start.AddDate(0, 0, 3)
	completedAt := start.AddDate(0, 0, 5)

	mock.ExpectQuery("SELECT id, display_name FROM students WHERE active = TRUE ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name"}).
			AddRow("stu-1", "Ada Lovelace").
			AddRow("stu-2", "Grace Hopper"))

	mock.ExpectQuery("FROM discussion_messages m").
		WithArgs(start).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "room_id", "room_type", "quiz_id", "sent_at"}).
			AddRow("msg-1", "stu-1", "room-1", "quiz_discussion", "quiz-1", sentAt))

	mock.ExpectQuery("FROM quiz_attempts a").
		WithArgs(start).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "quiz_id", "score", "passed", "passing_score", "completed_at"}).
			AddRow("att-1", "stu-1", "quiz-1", 87.5, true, 60.0, completedAt))

	activities, err := repo.StudentActivities(context.Background(), models.ActivityWindow{Start: start})
	require.NoError(t, err)
	require.Len(t, activities, 2)

	assert.Equal(t, "stu-1", activities[0].StudentID)
	assert.Equal(t, "Ada Lovelace", activities[0].DisplayName)
	require.Len(t, activities[0].Messages, 1)
	assert.Equal(t, models.RoomQuizDiscussion, activities[0].Messages[0].RoomType)
	require.Len(t, activities[0].Attempts, 1)
	assert.Equal(t, 87.5, activities[0].Attempts[0].Score)
	assert.True(t, activities[0].Attempts[0].Passed)

	// students without activity keep empty record sets
	assert.Equal(t, "stu-2", activities[1].StudentID)
	assert.Empty(t, activities[1].Messages)
	assert.Empty(t, activities[1].Attempts)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryStudentActivitiesQuizScoped(t *testing.T) {
	db, mock, cleanup := newActivityMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, display_name FROM students").
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name"}))
	mock.ExpectQuery(`FROM discussion_messages m[\s\S]*AND r\.quiz_id = \$2`).
		WithArgs(start, "quiz-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "room_id", "room_type", "quiz_id", "sent_at"}))
	mock.ExpectQuery(`FROM quiz_attempts a[\s\S]*AND a\.quiz_id = \$2`).
		WithArgs(start, "quiz-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "quiz_id", "score", "passed", "passing_score", "completed_at"}))

	activities, err := repo.StudentActivities(context.Background(), models.ActivityWindow{Start: start, QuizID: "quiz-1"})
	require.NoError(t, err)
	assert.Empty(t, activities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryStudentActivitiesError(t *testing.T) {
	db, mock, cleanup := newActivityMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery("SELECT id, display_name FROM students").
		WillReturnError(assert.AnError)

	_, err := repo.StudentActivities(context.Background(), models.ActivityWindow{Start: time.Now()})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestActivityRepositoryGroupMemberships(t *testing.T) {
	db, mock, cleanup := newActivityMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery("SELECT student_id, group_id, active FROM study_group_members WHERE active = TRUE").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "group_id", "active"}).
			AddRow("stu-1", "grp-1", true).
			AddRow("stu-1", "grp-2", true))

	memberships, err := repo.GroupMemberships(context.Background(), models.ActivityWindow{Start: time.Now()})
	require.NoError(t, err)
	require.Len(t, memberships, 2)
	assert.Equal(t, "grp-1", memberships[0].GroupID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositorySuspiciousActivities(t *testing.T) {
	db, mock, cleanup := newActivityMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	occurred := start.AddDate(0, 0, 10)

	mock.ExpectQuery("FROM suspicious_activities").
		WithArgs(start).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "severity", "description", "occurred_at", "user_id", "room_id", "quiz_id", "evidence", "resolved"}).
			AddRow("v-1", "RAPID_ANSWER_SHARING", "HIGH", "answers posted during quiz", occurred, "user-1", "room-1", "quiz-1", "message ids 4,5", false))

	records, err := repo.SuspiciousActivities(context.Background(), models.ActivityWindow{Start: start})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.SeverityHigh, records[0].Severity)
	assert.Equal(t, "user-1", records[0].UserID)
	assert.False(t, records[0].Resolved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositorySuspiciousActivitiesQuizScoped(t *testing.T) {
	db, mock, cleanup := newActivityMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM suspicious_activities[\s\S]*AND quiz_id = \$2`).
		WithArgs(start, "quiz-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "severity", "description", "occurred_at", "user_id", "room_id", "quiz_id", "evidence", "resolved"}))

	records, err := repo.SuspiciousActivities(context.Background(), models.ActivityWindow{Start: start, QuizID: "quiz-1"})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryQuizExists(t *testing.T) {
	db, mock, cleanup := newActivityMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("quiz-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("quiz-404").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.QuizExists(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.QuizExists(context.Background(), "quiz-404")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
