package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/edupulse-api/internal/dto"
)

func factorTypes(factors []dto.RiskFactor) []dto.RiskFactorType {
	types := make([]dto.RiskFactorType, 0, len(factors))
	for _, factor := range factors {
		types = append(types, factor.Type)
	}
	return types
}

func TestSuccessProbabilityWeighting(t *testing.T) {
	policy := DefaultScoringPolicy()
	metrics := dto.StudentMetrics{
		Chat:        dto.ChatEngagementMetrics{EngagementScore: 40},
		Performance: dto.PerformanceMetrics{AverageScore: 80, ConsistencyScore: 90},
		StudyGroup:  dto.StudyGroupParticipation{ParticipationScore: 50},
	}

	// 0.4*80 + 0.3*40 + 0.2*50 + 0.1*90
	assert.Equal(t, 63.0, policy.successProbability(metrics))
}

func TestSuccessProbabilityZeroActivity(t *testing.T) {
	assert.Zero(t, DefaultScoringPolicy().successProbability(dto.StudentMetrics{}))
}

func TestNextQuizSuccessRate(t *testing.T) {
	policy := DefaultScoringPolicy()

	improving := dto.StudentMetrics{
		Chat:        dto.ChatEngagementMetrics{EngagementScore: 60},
		Performance: dto.PerformanceMetrics{RecentPerformance: 70, ImprovementTrend: 5},
	}
	assert.Equal(t, 85.0, policy.nextQuizSuccessRate(improving))

	declining := dto.StudentMetrics{
		Chat:        dto.ChatEngagementMetrics{EngagementScore: 10},
		Performance: dto.PerformanceMetrics{RecentPerformance: 70, ImprovementTrend: -5},
	}
	assert.Equal(t, 55.0, policy.nextQuizSuccessRate(declining))
}

func TestNextQuizSuccessRateFallsBackToAverage(t *testing.T) {
	policy := DefaultScoringPolicy()
	metrics := dto.StudentMetrics{
		Performance: dto.PerformanceMetrics{AverageScore: 62, ImprovementTrend: 4},
	}

	// averaged baseline 62 + trend bonus 10 + engagement penalty -10
	assert.Equal(t, 62.0, policy.nextQuizSuccessRate(metrics))
}

func TestNextQuizSuccessRateClamped(t *testing.T) {
	policy := DefaultScoringPolicy()

	high := dto.StudentMetrics{
		Chat:        dto.ChatEngagementMetrics{EngagementScore: 90},
		Performance: dto.PerformanceMetrics{RecentPerformance: 98, ImprovementTrend: 10},
	}
	assert.Equal(t, 100.0, policy.nextQuizSuccessRate(high))

	low := dto.StudentMetrics{
		Performance: dto.PerformanceMetrics{RecentPerformance: 5, ImprovementTrend: -20},
	}
	assert.Equal(t, 0.0, policy.nextQuizSuccessRate(low))
}

func TestRiskFactorsSkipPerformanceRulesWithoutAttempts(t *testing.T) {
	policy := DefaultScoringPolicy()
	metrics := dto.StudentMetrics{
		Chat:        dto.ChatEngagementMetrics{TotalMessages: 0, MessagesPerDay: 0},
		Performance: dto.PerformanceMetrics{TotalAttempts: 0},
		StudyGroup:  dto.StudyGroupParticipation{},
	}

	types := factorTypes(policy.riskFactors(metrics))

	assert.Contains(t, types, dto.FactorLowEngagement)
	assert.Contains(t, types, dto.FactorInfrequentParticipation)
	assert.Contains(t, types, dto.FactorNoStudyGroups)
	assert.NotContains(t, types, dto.FactorLowPerformance)
	assert.NotContains(t, types, dto.FactorDecliningPerformance)
	assert.NotContains(t, types, dto.FactorInconsistentPerformance)
}

func TestRiskFactorsPerformanceBoundaries(t *testing.T) {
	policy := DefaultScoringPolicy()

	atFloor := dto.StudentMetrics{
		Chat:        dto.ChatEngagementMetrics{TotalMessages: 10, MessagesPerDay: 1},
		Performance: dto.PerformanceMetrics{TotalAttempts: 3, AverageScore: 60, ConsistencyScore: 80},
		StudyGroup:  dto.StudyGroupParticipation{HasGroups: true, ActiveGroups: 1},
	}
	assert.Empty(t, policy.riskFactors(atFloor))

	belowFloor := atFloor
	belowFloor.Performance.AverageScore = 59.9
	types := factorTypes(policy.riskFactors(belowFloor))
	assert.Equal(t, []dto.RiskFactorType{dto.FactorLowPerformance}, types)
}

func TestRiskFactorsDecliningAndInconsistent(t *testing.T) {
	policy := DefaultScoringPolicy()
	metrics := dto.StudentMetrics{
		Chat: dto.ChatEngagementMetrics{TotalMessages: 20, MessagesPerDay: 2},
		Performance: dto.PerformanceMetrics{
			TotalAttempts:    5,
			AverageScore:     75,
			ImprovementTrend: -12,
			ConsistencyScore: 25,
		},
		StudyGroup: dto.StudyGroupParticipation{HasGroups: true, ActiveGroups: 1},
	}

	factors := policy.riskFactors(metrics)
	types := factorTypes(factors)

	assert.Equal(t, []dto.RiskFactorType{dto.FactorDecliningPerformance, dto.FactorInconsistentPerformance}, types)
	require.Len(t, factors, 2)
	assert.Equal(t, severityHigh, factors[0].Severity)
	assert.Equal(t, -12.0, factors[0].Value)
	assert.Equal(t, severityMedium, factors[1].Severity)
}

func TestRiskFactorsAreIndependent(t *testing.T) {
	policy := DefaultScoringPolicy()
	metrics := dto.StudentMetrics{
		Chat:        dto.ChatEngagementMetrics{TotalMessages: 2, MessagesPerDay: 0.05},
		Performance: dto.PerformanceMetrics{TotalAttempts: 4, AverageScore: 40, ImprovementTrend: -20, ConsistencyScore: 10},
		StudyGroup:  dto.StudyGroupParticipation{},
	}

	factors := policy.riskFactors(metrics)

	assert.Len(t, factors, 6)
}

func TestInterventionsForMapsEachFactor(t *testing.T) {
	factors := []dto.RiskFactor{
		{Type: dto.FactorLowPerformance},
		{Type: dto.FactorNoStudyGroups},
	}

	interventions := interventionsFor(factors)

	require.Len(t, interventions, 2)
	assert.Equal(t, "TUTORING", interventions[0].Type)
	assert.Equal(t, "schedule_tutoring", interventions[0].Action)
	assert.Equal(t, "GROUP_INVITE", interventions[1].Type)
}

func TestInterventionsForSkipsUnknownFactorTypes(t *testing.T) {
	factors := []dto.RiskFactor{
		{Type: dto.RiskFactorType("SOMETHING_NEW")},
		{Type: dto.FactorLowEngagement},
	}

	interventions := interventionsFor(factors)

	require.Len(t, interventions, 1)
	assert.Equal(t, "ENGAGEMENT_NUDGE", interventions[0].Type)
}

func TestInterventionTableCoversEveryRule(t *testing.T) {
	for _, rule := range riskRules {
		_, ok := interventionTable[rule.factorType]
		assert.True(t, ok, "missing intervention for %s", rule.factorType)
	}
}
