package service

import (
	"fmt"
	"math"

	"github.com/edupulse/edupulse-api/internal/dto"
)

// ScoringWeights are the success-probability component weights. They must sum to 1.
type ScoringWeights struct {
	Performance float64
	Engagement  float64
	StudyGroup  float64
	Consistency float64
}

// Sum returns the total weight mass.
func (w ScoringWeights) Sum() float64 {
	return w.Performance + w.Engagement + w.StudyGroup + w.Consistency
}

// ScoringPolicy concentrates every threshold used by the prediction pipeline so
// the scoring behaviour is auditable and swappable without touching control flow.
type ScoringPolicy struct {
	Weights ScoringWeights

	// Risk bands over success probability, inclusive on the lower edge.
	LowRiskFloor    float64
	MediumRiskFloor float64

	// Engagement composite.
	MessagesPerDayWeight float64
	DiversityWeight      float64

	// Study group composite.
	PointsPerGroup float64

	// Next-quiz prediction adjustments.
	TrendBonus        float64
	TrendPenalty      float64
	EngagementBonus   float64
	EngagementPenalty float64
	EngagedFloor      float64

	// Risk-factor rule thresholds.
	LowPerformanceFloor     float64
	DecliningTrendFloor     float64
	LowEngagementMessages   int
	InfrequentDailyMessages float64
	InconsistencyFloor      float64

	// Early-warning thresholds.
	SteepDeclineFloor     float64
	SilentStudentMessages int

	// Cohort distribution band edges.
	ExcellentFloor     float64
	GoodFloor          float64
	AverageFloor       float64
	HighEngagement     float64
	ModerateEngagement float64

	// Correlation strength buckets.
	StrongCorrelation   float64
	ModerateCorrelation float64
}

// DefaultScoringPolicy returns the production scoring configuration.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		Weights: ScoringWeights{
			Performance: 0.4,
			Engagement:  0.3,
			StudyGroup:  0.2,
			Consistency: 0.1,
		},

		LowRiskFloor:    75,
		MediumRiskFloor: 50,

		MessagesPerDayWeight: 10,
		DiversityWeight:      30,

		PointsPerGroup: 25,

		TrendBonus:        10,
		TrendPenalty:      -5,
		EngagementBonus:   5,
		EngagementPenalty: -10,
		EngagedFloor:      50,

		LowPerformanceFloor:     60,
		DecliningTrendFloor:     -10,
		LowEngagementMessages:   5,
		InfrequentDailyMessages: 0.1,
		InconsistencyFloor:      30,

		SteepDeclineFloor:     -15,
		SilentStudentMessages: 3,

		ExcellentFloor:     90,
		GoodFloor:          80,
		AverageFloor:       70,
		HighEngagement:     70,
		ModerateEngagement: 40,

		StrongCorrelation:   0.7,
		ModerateCorrelation: 0.3,
	}
}

// Validate checks policy invariants.
func (p ScoringPolicy) Validate() error {
	if sum := p.Weights.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %v", sum)
	}
	if p.LowRiskFloor <= p.MediumRiskFloor {
		return fmt.Errorf("low risk floor %v must exceed medium risk floor %v", p.LowRiskFloor, p.MediumRiskFloor)
	}
	return nil
}

// RiskLevelFor classifies a success probability. Exactly LowRiskFloor is LOW
// and exactly MediumRiskFloor is MEDIUM.
func (p ScoringPolicy) RiskLevelFor(successProbability float64) dto.RiskLevel {
	switch {
	case successProbability >= p.LowRiskFloor:
		return dto.RiskLow
	case successProbability >= p.MediumRiskFloor:
		return dto.RiskMedium
	default:
		return dto.RiskHigh
	}
}

// CorrelationStrength buckets the absolute correlation value.
func (p ScoringPolicy) CorrelationStrength(r float64) string {
	abs := r
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= p.StrongCorrelation:
		return "Strong"
	case abs >= p.ModerateCorrelation:
		return "Moderate"
	default:
		return "Weak"
	}
}
