package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edupulse/edupulse-api/internal/models"
)

func testWindow(now time.Time, days int) models.ActivityWindow {
	return models.ActivityWindow{Start: now.AddDate(0, 0, -days)}
}

func messageOf(roomType models.RoomType) models.DiscussionMessage {
	return models.DiscussionMessage{RoomType: roomType}
}

func attemptAt(score float64, passed bool, completedAt time.Time) models.QuizAttempt {
	return models.QuizAttempt{Score: score, Passed: passed, CompletedAt: completedAt}
}

func TestChatEngagementEmptyInput(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	metrics := DefaultScoringPolicy().chatEngagement(nil, testWindow(now, 30), now)

	assert.Zero(t, metrics.TotalMessages)
	assert.Zero(t, metrics.MessagesPerDay)
	assert.Zero(t, metrics.DiversityScore)
	assert.Zero(t, metrics.EngagementScore)
}

func TestChatEngagementMixedRooms(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []models.DiscussionMessage{
		messageOf(models.RoomQuizDiscussion),
		messageOf(models.RoomQuizDiscussion),
		messageOf(models.RoomQuizDiscussion),
		messageOf(models.RoomQuizDiscussion),
		messageOf(models.RoomStudyGroup),
		messageOf(models.RoomStudyGroup),
		messageOf(models.RoomStudyGroup),
		messageOf(models.RoomGeneral),
		messageOf(models.RoomGeneral),
		messageOf(models.RoomGeneral),
	}

	metrics := DefaultScoringPolicy().chatEngagement(messages, testWindow(now, 10), now)

	assert.Equal(t, 10, metrics.TotalMessages)
	assert.Equal(t, 4, metrics.ByRoomType.QuizDiscussion)
	assert.Equal(t, 3, metrics.ByRoomType.StudyGroup)
	assert.Equal(t, 3, metrics.ByRoomType.General)
	assert.InDelta(t, 1.0, metrics.MessagesPerDay, 1e-9)
	assert.InDelta(t, 1.0, metrics.DiversityScore, 1e-9)
	// 1.0 msgs/day * 10 + 1.0 diversity * 30
	assert.InDelta(t, 40.0, metrics.EngagementScore, 1e-9)
}

func TestChatEngagementSingleRoomType(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []models.DiscussionMessage{
		messageOf(models.RoomGeneral),
		messageOf(models.RoomGeneral),
	}

	metrics := DefaultScoringPolicy().chatEngagement(messages, testWindow(now, 20), now)

	assert.InDelta(t, 1.0/3.0, metrics.DiversityScore, 1e-9)
	assert.InDelta(t, 0.1, metrics.MessagesPerDay, 1e-9)
}

func TestChatEngagementScoreClamped(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := make([]models.DiscussionMessage, 0, 60)
	for i := 0; i < 60; i++ {
		messages = append(messages, messageOf(models.RoomGeneral))
	}

	metrics := DefaultScoringPolicy().chatEngagement(messages, testWindow(now, 2), now)

	assert.Equal(t, 100.0, metrics.EngagementScore)
}

func TestQuizPerformanceEmptyInput(t *testing.T) {
	metrics := DefaultScoringPolicy().quizPerformance(nil)

	assert.Zero(t, metrics.TotalAttempts)
	assert.Zero(t, metrics.AverageScore)
	assert.Zero(t, metrics.PassRate)
	assert.Zero(t, metrics.ImprovementTrend)
	assert.Zero(t, metrics.ConsistencyScore)
	assert.Zero(t, metrics.RecentPerformance)
}

func TestQuizPerformanceSingleAttempt(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	metrics := DefaultScoringPolicy().quizPerformance([]models.QuizAttempt{
		attemptAt(85, true, base),
	})

	assert.Equal(t, 1, metrics.TotalAttempts)
	assert.Equal(t, 85.0, metrics.AverageScore)
	assert.Equal(t, 1.0, metrics.PassRate)
	assert.Zero(t, metrics.ImprovementTrend)
	assert.Equal(t, 100.0, metrics.ConsistencyScore)
	assert.Equal(t, 85.0, metrics.RecentPerformance)
}

func TestQuizPerformanceImprovingStudent(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	attempts := []models.QuizAttempt{
		attemptAt(55, false, base),
		attemptAt(65, true, base.AddDate(0, 0, 2)),
		attemptAt(85, true, base.AddDate(0, 0, 4)),
		attemptAt(85, true, base.AddDate(0, 0, 6)),
	}

	metrics := DefaultScoringPolicy().quizPerformance(attempts)

	assert.Equal(t, 4, metrics.TotalAttempts)
	assert.InDelta(t, 72.5, metrics.AverageScore, 1e-9)
	assert.InDelta(t, 0.75, metrics.PassRate, 1e-9)
	// second half mean 85 minus first half mean 60
	assert.InDelta(t, 25.0, metrics.ImprovementTrend, 1e-9)
	assert.InDelta(t, (65.0+85+85)/3, metrics.RecentPerformance, 1e-9)
}

func TestQuizPerformanceTrendIgnoresStorageOrder(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	chronological := []models.QuizAttempt{
		attemptAt(50, false, base),
		attemptAt(60, true, base.AddDate(0, 0, 1)),
		attemptAt(80, true, base.AddDate(0, 0, 2)),
		attemptAt(90, true, base.AddDate(0, 0, 3)),
	}
	shuffled := []models.QuizAttempt{chronological[3], chronological[0], chronological[2], chronological[1]}

	policy := DefaultScoringPolicy()
	assert.Equal(t, policy.quizPerformance(chronological), policy.quizPerformance(shuffled))
	assert.InDelta(t, 30.0, policy.quizPerformance(shuffled).ImprovementTrend, 1e-9)
}

func TestQuizPerformanceOddCountSplit(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	attempts := []models.QuizAttempt{
		attemptAt(40, false, base),
		attemptAt(50, false, base.AddDate(0, 0, 1)),
		attemptAt(60, true, base.AddDate(0, 0, 2)),
		attemptAt(70, true, base.AddDate(0, 0, 3)),
		attemptAt(80, true, base.AddDate(0, 0, 4)),
	}

	metrics := DefaultScoringPolicy().quizPerformance(attempts)

	// five attempts split 2/3: mean(60,70,80) - mean(40,50)
	assert.InDelta(t, 25.0, metrics.ImprovementTrend, 1e-9)
}

func TestQuizPerformanceConsistencyDropsWithVariance(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	steady := DefaultScoringPolicy().quizPerformance([]models.QuizAttempt{
		attemptAt(80, true, base),
		attemptAt(80, true, base.AddDate(0, 0, 1)),
	})
	erratic := DefaultScoringPolicy().quizPerformance([]models.QuizAttempt{
		attemptAt(20, false, base),
		attemptAt(100, true, base.AddDate(0, 0, 1)),
	})

	assert.Equal(t, 100.0, steady.ConsistencyScore)
	assert.Less(t, erratic.ConsistencyScore, steady.ConsistencyScore)
	assert.InDelta(t, 60.0, erratic.ConsistencyScore, 1e-9)
}

func TestStudyGroupParticipation(t *testing.T) {
	policy := DefaultScoringPolicy()

	none := policy.studyGroupParticipation(nil)
	assert.False(t, none.HasGroups)
	assert.Zero(t, none.ParticipationScore)

	some := policy.studyGroupParticipation([]models.GroupMembership{
		{StudentID: "stu-1", GroupID: "grp-1", Active: true},
		{StudentID: "stu-1", GroupID: "grp-2", Active: true},
		{StudentID: "stu-1", GroupID: "grp-3", Active: false},
	})
	assert.True(t, some.HasGroups)
	assert.Equal(t, 2, some.ActiveGroups)
	assert.Equal(t, 50.0, some.ParticipationScore)

	many := policy.studyGroupParticipation([]models.GroupMembership{
		{GroupID: "grp-1", Active: true},
		{GroupID: "grp-2", Active: true},
		{GroupID: "grp-3", Active: true},
		{GroupID: "grp-4", Active: true},
		{GroupID: "grp-5", Active: true},
	})
	assert.Equal(t, 100.0, many.ParticipationScore)
}
