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

// ActivityRepository describes the read-only persistence layer feeding the
// prediction pipeline.
type ActivityRepository interface {
	StudentActivities(ctx context.Context, window models.ActivityWindow) ([]models.StudentActivity, error)
	GroupMemberships(ctx context.Context, window models.ActivityWindow) ([]models.GroupMembership, error)
	QuizExists(ctx context.Context, quizID string) (bool, error)
}

// PredictionRequest scopes one pipeline run.
type PredictionRequest struct {
	Days   int    `json:"days" validate:"required,min=1,max=365"`
	QuizID string `json:"quizId"`
}

// PredictionService runs the success-prediction pipeline over one activity window.
type PredictionService struct {
	repo      ActivityRepository
	cache     *CacheService
	metrics   *MetricsService
	policy    ScoringPolicy
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	cacheTTL  time.Duration
}

// NewPredictionService constructs a prediction service. The policy is
// validated on construction so a misconfigured weight set fails fast.
func NewPredictionService(repo ActivityRepository, cache *CacheService, metrics *MetricsService, policy ScoringPolicy, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) (*PredictionService, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("scoring policy: %w", err)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		policy:    policy,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		cacheTTL:  cacheTTL,
	}, nil
}

// Predict runs the pipeline for the requested window. The boolean indicates
// whether the result originated from cache.
func (s *PredictionService) Predict(ctx context.Context, req PredictionRequest) (*dto.PredictionResult, bool, error) {
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

	cacheKey := fmt.Sprintf("predictions:%d:%s", req.Days, req.QuizID)
	var cached dto.PredictionResult
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get prediction cache: %w", err)
		} else if hit {
			return &cached, true, nil
		}
	}

	start := s.now()
	window := models.ActivityWindow{Start: start.AddDate(0, 0, -req.Days), QuizID: req.QuizID}

	students, err := s.repo.StudentActivities(ctx, window)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrComputationFailed.Code, appErrors.ErrComputationFailed.Status, "load student activity")
	}
	memberships, err := s.repo.GroupMemberships(ctx, window)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrComputationFailed.Code, appErrors.ErrComputationFailed.Status, "load group memberships")
	}

	result := s.compute(students, memberships, window, start)
	if s.metrics != nil {
		s.metrics.ObservePipeline("predictions", s.now().Sub(start))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("cache predictions", zap.Error(err))
		}
	}
	return result, false, nil
}

// compute is the pure single-pass pipeline over already-fetched records.
func (s *PredictionService) compute(students []models.StudentActivity, memberships []models.GroupMembership, window models.ActivityWindow, now time.Time) *dto.PredictionResult {
	groupsByStudent := make(map[string][]models.GroupMembership, len(memberships))
	for _, membership := range memberships {
		groupsByStudent[membership.StudentID] = append(groupsByStudent[membership.StudentID], membership)
	}

	predictions := make([]dto.SuccessPrediction, 0, len(students))
	for _, student := range students {
		metrics := dto.StudentMetrics{
			Chat:        s.policy.chatEngagement(student.Messages, window, now),
			Performance: s.policy.quizPerformance(student.Attempts),
			StudyGroup:  s.policy.studyGroupParticipation(groupsByStudent[student.StudentID]),
		}

		probability := s.policy.successProbability(metrics)
		factors := s.policy.riskFactors(metrics)

		predictions = append(predictions, dto.SuccessPrediction{
			StudentID:           student.StudentID,
			StudentName:         student.DisplayName,
			Metrics:             metrics,
			SuccessProbability:  probability,
			RiskLevel:           s.policy.RiskLevelFor(probability),
			NextQuizSuccessRate: s.policy.nextQuizSuccessRate(metrics),
			RiskFactors:         factors,
			Interventions:       interventionsFor(factors),
		})
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		if predictions[i].SuccessProbability == predictions[j].SuccessProbability {
			return predictions[i].StudentID < predictions[j].StudentID
		}
		return predictions[i].SuccessProbability < predictions[j].SuccessProbability
	})

	return &dto.PredictionResult{
		Predictions:    predictions,
		CohortInsights: s.policy.cohortInsights(predictions),
		EarlyWarnings:  s.policy.earlyWarnings(predictions),
		Summary:        summarise(predictions),
	}
}

func summarise(predictions []dto.SuccessPrediction) dto.PredictionSummary {
	summary := dto.PredictionSummary{TotalStudents: len(predictions)}
	probabilities := make([]float64, 0, len(predictions))
	for _, prediction := range predictions {
		probabilities = append(probabilities, prediction.SuccessProbability)
		switch prediction.RiskLevel {
		case dto.RiskHigh:
			summary.HighRiskCount++
		case dto.RiskMedium:
			summary.MediumRiskCount++
		default:
			summary.LowRiskCount++
		}
	}
	summary.AverageSuccessProbability = stats.Mean(probabilities)
	return summary
}
