package service

import (
	"sort"
	"time"

	"github.com/edupulse/edupulse-api/internal/dto"
	"github.com/edupulse/edupulse-api/internal/models"
	"github.com/edupulse/edupulse-api/internal/stats"
)

const recentAttemptCount = 3

// chatEngagement computes discussion metrics for one student over the window.
// Empty input yields a zero-valued struct.
func (p ScoringPolicy) chatEngagement(messages []models.DiscussionMessage, window models.ActivityWindow, now time.Time) dto.ChatEngagementMetrics {
	metrics := dto.ChatEngagementMetrics{TotalMessages: len(messages)}
	for _, msg := range messages {
		switch msg.RoomType {
		case models.RoomQuizDiscussion:
			metrics.ByRoomType.QuizDiscussion++
		case models.RoomStudyGroup:
			metrics.ByRoomType.StudyGroup++
		default:
			metrics.ByRoomType.General++
		}
	}

	days := window.Days(now)
	metrics.MessagesPerDay = float64(len(messages)) / days

	categories := 0
	if metrics.ByRoomType.QuizDiscussion > 0 {
		categories++
	}
	if metrics.ByRoomType.StudyGroup > 0 {
		categories++
	}
	if metrics.ByRoomType.General > 0 {
		categories++
	}
	metrics.DiversityScore = float64(categories) / float64(len(models.RoomTypes()))

	metrics.EngagementScore = stats.Clamp(
		metrics.MessagesPerDay*p.MessagesPerDayWeight+metrics.DiversityScore*p.DiversityWeight,
		0, 100,
	)
	return metrics
}

// quizPerformance computes attempt metrics for one student. Attempts are
// re-sorted chronologically so the trend split never depends on storage order.
func (p ScoringPolicy) quizPerformance(attempts []models.QuizAttempt) dto.PerformanceMetrics {
	metrics := dto.PerformanceMetrics{TotalAttempts: len(attempts)}
	if len(attempts) == 0 {
		return metrics
	}

	ordered := make([]models.QuizAttempt, len(attempts))
	copy(ordered, attempts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CompletedAt.Before(ordered[j].CompletedAt)
	})

	scores := make([]float64, len(ordered))
	passed := 0
	for i, attempt := range ordered {
		scores[i] = attempt.Score
		if attempt.Passed {
			passed++
		}
	}

	metrics.AverageScore = stats.Mean(scores)
	metrics.PassRate = float64(passed) / float64(len(ordered))

	half := len(scores) / 2
	if half > 0 {
		metrics.ImprovementTrend = stats.Mean(scores[half:]) - stats.Mean(scores[:half])
	}

	metrics.ConsistencyScore = stats.Clamp(100-stats.StdDev(scores), 0, 100)

	recent := scores
	if len(scores) > recentAttemptCount {
		recent = scores[len(scores)-recentAttemptCount:]
	}
	metrics.RecentPerformance = stats.Mean(recent)

	return metrics
}

// studyGroupParticipation scores active group memberships.
func (p ScoringPolicy) studyGroupParticipation(memberships []models.GroupMembership) dto.StudyGroupParticipation {
	active := 0
	for _, membership := range memberships {
		if membership.Active {
			active++
		}
	}
	return dto.StudyGroupParticipation{
		ActiveGroups:       active,
		ParticipationScore: stats.Clamp(float64(active)*p.PointsPerGroup, 0, 100),
		HasGroups:          active > 0,
	}
}
