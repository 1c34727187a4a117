package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edupulse/edupulse-api/internal/dto"
	"github.com/edupulse/edupulse-api/internal/models"
	"github.com/edupulse/edupulse-api/internal/stats"
	appErrors "github.com/edupulse/edupulse-api/pkg/errors"
)

// IntegrityRepository supplies pre-flagged activity records and attempt counts
// for the integrity pipeline.
type IntegrityRepository interface {
	SuspiciousActivities(ctx context.Context, window models.ActivityWindow) ([]models.SuspiciousActivityRecord, error)
	QuizAttempts(ctx context.Context, window models.ActivityWindow) ([]models.QuizAttempt, error)
	QuizExists(ctx context.Context, quizID string) (bool, error)
}

// IntegrityPolicy concentrates the thresholds of the integrity pipeline.
type IntegrityPolicy struct {
	HighPenalty   float64
	MediumPenalty float64
	LowPenalty    float64

	// Qualitative level floors over the aggregate score.
	ExcellentFloor float64
	GoodFloor      float64
	FairFloor      float64
	PoorFloor      float64

	// Per-user risk classification over the weighted user score.
	UserHighRiskFloor   float64
	UserMediumRiskFloor float64

	RepeatOffenderMin int

	// Recommendation triggers.
	ProctoringHighCount   int
	MonitoringTotalCount  int
	CompromisedQuizShare  float64
	LateNightHourEnd      int
	LateNightViolationMin int
}

// DefaultIntegrityPolicy returns the production integrity configuration.
func DefaultIntegrityPolicy() IntegrityPolicy {
	return IntegrityPolicy{
		HighPenalty:   15,
		MediumPenalty: 8,
		LowPenalty:    3,

		ExcellentFloor: 90,
		GoodFloor:      75,
		FairFloor:      60,
		PoorFloor:      40,

		UserHighRiskFloor:   50,
		UserMediumRiskFloor: 20,

		RepeatOffenderMin: 2,

		ProctoringHighCount:   3,
		MonitoringTotalCount:  10,
		CompromisedQuizShare:  0.2,
		LateNightHourEnd:      5,
		LateNightViolationMin: 3,
	}
}

func (p IntegrityPolicy) penalty(severity models.ViolationSeverity) float64 {
	switch severity {
	case models.SeverityHigh:
		return p.HighPenalty
	case models.SeverityMedium:
		return p.MediumPenalty
	default:
		return p.LowPenalty
	}
}

func (p IntegrityPolicy) level(score float64) (string, string) {
	switch {
	case score >= p.ExcellentFloor:
		return "Excellent", "discussion channels show no meaningful integrity concerns"
	case score >= p.GoodFloor:
		return "Good", "isolated incidents, no systematic pattern"
	case score >= p.FairFloor:
		return "Fair", "recurring incidents worth closer review"
	case score >= p.PoorFloor:
		return "Poor", "widespread incidents degrading assessment reliability"
	default:
		return "Critical", "integrity of the assessment window is compromised"
	}
}

func (p IntegrityPolicy) userRiskLevel(score float64) dto.RiskLevel {
	switch {
	case score >= p.UserHighRiskFloor:
		return dto.RiskHigh
	case score >= p.UserMediumRiskFloor:
		return dto.RiskMedium
	default:
		return dto.RiskLow
	}
}

// IntegrityRequest scopes one integrity-analysis run.
type IntegrityRequest struct {
	Days   int    `json:"days" validate:"required,min=1,max=365"`
	QuizID string `json:"quizId"`
}

// IntegrityService aggregates flagged discussion activity into a severity
// classified report. It shares only the window/quiz input contract with the
// prediction pipeline.
type IntegrityService struct {
	repo      IntegrityRepository
	cache     *CacheService
	metrics   *MetricsService
	policy    IntegrityPolicy
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	cacheTTL  time.Duration
}

// NewIntegrityService constructs the integrity service.
func NewIntegrityService(repo IntegrityRepository, cache *CacheService, metrics *MetricsService, policy IntegrityPolicy, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *IntegrityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntegrityService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		policy:    policy,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		cacheTTL:  cacheTTL,
	}
}

// Analyze produces the integrity report for the requested window. The boolean
// indicates whether the report originated from cache.
func (s *IntegrityService) Analyze(ctx context.Context, req IntegrityRequest) (*dto.IntegrityReport, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "days must be an integer between 1 and 365")
	}
	if req.QuizID != "" {
		exists, err := s.repo.QuizExists(ctx, req.QuizID)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrComputationFailed.Code, appErrors.ErrComputationFailed.Status, "verify quiz")
		}
		if !exists {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown quiz %q", req.QuizID))
		}
	}

	cacheKey := fmt.Sprintf("integrity:%d:%s", req.Days, req.QuizID)
	var cached dto.IntegrityReport
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get integrity cache: %w", err)
		} else if hit {
			return &cached, true, nil
		}
	}

	start := s.now()
	window := models.ActivityWindow{Start: start.AddDate(0, 0, -req.Days), QuizID: req.QuizID}

	records, err := s.repo.SuspiciousActivities(ctx, window)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrComputationFailed.Code, appErrors.ErrComputationFailed.Status, "load suspicious activity")
	}

	var attempts []models.QuizAttempt
	if req.QuizID != "" {
		attempts, err = s.repo.QuizAttempts(ctx, window)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrComputationFailed.Code, appErrors.ErrComputationFailed.Status, "load quiz attempts")
		}
	}

	report := s.compose(records, attempts, req)
	if s.metrics != nil {
		s.metrics.ObservePipeline("integrity", s.now().Sub(start))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, report, s.cacheTTL); err != nil {
			s.logger.Warn("cache integrity report", zap.Error(err))
		}
	}
	return report, false, nil
}

// compose is the pure aggregation over already-fetched flagged records.
// Zero records yield a perfect score and empty collections, never an error.
func (s *IntegrityService) compose(records []models.SuspiciousActivityRecord, attempts []models.QuizAttempt, req IntegrityRequest) *dto.IntegrityReport {
	report := &dto.IntegrityReport{
		SuspiciousActivities: records,
		PatternAnalysis: dto.PatternAnalysis{
			ByType: map[string]int{},
		},
		Recommendations: []string{},
	}
	report.Summary.WindowDays = req.Days

	byHour := map[int]*dto.HourlyViolations{}
	byUser := map[string]*dto.UserRisk{}

	for _, record := range records {
		report.Summary.TotalViolations++
		if record.Resolved {
			report.Summary.ResolvedRecords++
		}
		report.PatternAnalysis.ByType[record.Type]++

		hour := record.OccurredAt.Hour()
		hourly := byHour[hour]
		if hourly == nil {
			hourly = &dto.HourlyViolations{Hour: hour}
			byHour[hour] = hourly
		}
		hourly.Total++

		user := byUser[record.UserID]
		if user == nil {
			user = &dto.UserRisk{UserID: record.UserID}
			byUser[record.UserID] = user
		}
		user.TotalRecords++

		switch record.Severity {
		case models.SeverityHigh:
			report.Summary.HighSeverity++
			hourly.High++
			user.HighCount++
		case models.SeverityMedium:
			report.Summary.MediumSeverity++
			hourly.Medium++
			user.MediumCount++
		default:
			report.Summary.LowSeverity++
			hourly.Low++
			user.LowCount++
		}
	}
	report.Summary.UniqueUsers = len(byUser)

	penalty := float64(report.Summary.HighSeverity)*s.policy.HighPenalty +
		float64(report.Summary.MediumSeverity)*s.policy.MediumPenalty +
		float64(report.Summary.LowSeverity)*s.policy.LowPenalty
	score := stats.Clamp(100-penalty, 0, 100)
	level, description := s.policy.level(score)
	report.IntegrityScore = dto.IntegrityScore{Score: score, Level: level, Description: description}

	report.PatternAnalysis.ByHour = sortedHours(byHour)
	report.PatternAnalysis.RepeatOffenders = s.repeatOffenders(byUser)
	report.UserRiskAssessment = s.assessUsers(byUser)

	if req.QuizID != "" {
		report.QuizAnalysis = s.analyzeQuiz(req.QuizID, attempts, byUser)
	}

	report.Recommendations = s.recommend(report)
	return report
}

func sortedHours(byHour map[int]*dto.HourlyViolations) []dto.HourlyViolations {
	hours := make([]dto.HourlyViolations, 0, len(byHour))
	for _, hourly := range byHour {
		hours = append(hours, *hourly)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Hour < hours[j].Hour })
	return hours
}

func (s *IntegrityService) repeatOffenders(byUser map[string]*dto.UserRisk) []dto.RepeatOffender {
	offenders := make([]dto.RepeatOffender, 0)
	for _, user := range byUser {
		if user.TotalRecords >= s.policy.RepeatOffenderMin {
			offenders = append(offenders, dto.RepeatOffender{UserID: user.UserID, Count: user.TotalRecords})
		}
	}
	sort.Slice(offenders, func(i, j int) bool {
		if offenders[i].Count == offenders[j].Count {
			return offenders[i].UserID < offenders[j].UserID
		}
		return offenders[i].Count > offenders[j].Count
	})
	return offenders
}

func (s *IntegrityService) assessUsers(byUser map[string]*dto.UserRisk) []dto.UserRisk {
	users := make([]dto.UserRisk, 0, len(byUser))
	for _, user := range byUser {
		user.RiskScore = stats.Clamp(
			float64(user.HighCount)*s.policy.HighPenalty+
				float64(user.MediumCount)*s.policy.MediumPenalty+
				float64(user.LowCount)*s.policy.LowPenalty,
			0, 100,
		)
		user.RiskLevel = s.policy.userRiskLevel(user.RiskScore)
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].RiskScore == users[j].RiskScore {
			return users[i].UserID < users[j].UserID
		}
		return users[i].RiskScore > users[j].RiskScore
	})
	return users
}

func (s *IntegrityService) analyzeQuiz(quizID string, attempts []models.QuizAttempt, byUser map[string]*dto.UserRisk) *dto.QuizIntegrityAnalysis {
	analysis := &dto.QuizIntegrityAnalysis{QuizID: quizID, TotalAttempts: len(attempts), IntegrityScore: 100}
	for _, attempt := range attempts {
		if _, flagged := byUser[attempt.StudentID]; flagged {
			analysis.CompromisedAttempts++
		}
	}
	if analysis.TotalAttempts > 0 {
		clean := float64(analysis.TotalAttempts-analysis.CompromisedAttempts) / float64(analysis.TotalAttempts)
		analysis.IntegrityScore = stats.Round(clean * 100)
	}
	return analysis
}

func (s *IntegrityService) recommend(report *dto.IntegrityReport) []string {
	recommendations := []string{}
	if report.Summary.TotalViolations == 0 {
		return recommendations
	}

	if report.Summary.HighSeverity >= s.policy.ProctoringHighCount {
		recommendations = append(recommendations, "Consider proctored sessions for upcoming quizzes; high-severity violations exceeded the alert threshold.")
	}
	if len(report.PatternAnalysis.RepeatOffenders) > 0 {
		recommendations = append(recommendations, fmt.Sprintf("Review %d repeat offenders individually before the next assessment.", len(report.PatternAnalysis.RepeatOffenders)))
	}
	if report.Summary.TotalViolations >= s.policy.MonitoringTotalCount {
		recommendations = append(recommendations, "Increase discussion-channel monitoring; overall violation volume is elevated.")
	}

	lateNight := 0
	for _, hourly := range report.PatternAnalysis.ByHour {
		if hourly.Hour <= s.policy.LateNightHourEnd {
			lateNight += hourly.Total
		}
	}
	if lateNight >= s.policy.LateNightViolationMin {
		recommendations = append(recommendations, "Violations cluster in late-night hours; review off-hours room activity.")
	}

	if report.QuizAnalysis != nil && report.QuizAnalysis.TotalAttempts > 0 {
		share := float64(report.QuizAnalysis.CompromisedAttempts) / float64(report.QuizAnalysis.TotalAttempts)
		if share >= s.policy.CompromisedQuizShare {
			recommendations = append(recommendations, fmt.Sprintf("A large share of attempts on quiz %s involve flagged participants; consider re-assessment.", report.QuizAnalysis.QuizID))
		}
	}

	return recommendations
}
