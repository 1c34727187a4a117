package service

import (
	"fmt"

	"github.com/edupulse/edupulse-api/internal/dto"
	"github.com/edupulse/edupulse-api/internal/stats"
)

// cohortInsights reduces the full prediction set into distribution buckets,
// the engagement/performance correlation and trend summaries.
func (p ScoringPolicy) cohortInsights(predictions []dto.SuccessPrediction) dto.CohortInsights {
	insights := dto.CohortInsights{}
	insights.Correlation.Strength = p.CorrelationStrength(0)
	if len(predictions) == 0 {
		return insights
	}

	engagement := make([]float64, 0, len(predictions))
	performance := make([]float64, 0, len(predictions))
	trends := make([]float64, 0, len(predictions))
	withGroups := 0

	for _, prediction := range predictions {
		avgScore := prediction.Metrics.Performance.AverageScore
		engScore := prediction.Metrics.Chat.EngagementScore

		switch {
		case avgScore >= p.ExcellentFloor:
			insights.PerformanceDistribution.Excellent++
		case avgScore >= p.GoodFloor:
			insights.PerformanceDistribution.Good++
		case avgScore >= p.AverageFloor:
			insights.PerformanceDistribution.Average++
		default:
			insights.PerformanceDistribution.NeedsSupport++
		}

		switch {
		case engScore >= p.HighEngagement:
			insights.EngagementPatterns.HighlyEngaged++
		case engScore >= p.ModerateEngagement:
			insights.EngagementPatterns.ModeratelyEngaged++
		default:
			insights.EngagementPatterns.Disengaged++
		}

		engagement = append(engagement, engScore)
		performance = append(performance, avgScore)
		trends = append(trends, prediction.Metrics.Performance.ImprovementTrend)

		if prediction.Metrics.StudyGroup.HasGroups {
			withGroups++
		}
		if prediction.Metrics.Performance.ImprovementTrend > 0 {
			insights.Trends.ImprovingStudents++
		} else if prediction.Metrics.Performance.ImprovementTrend < 0 {
			insights.Trends.DecliningStudents++
		}
	}

	r := stats.Pearson(engagement, performance)
	insights.Correlation = dto.Correlation{Value: r, Strength: p.CorrelationStrength(r)}

	insights.Trends.AverageImprovement = stats.Mean(trends)
	insights.Trends.StudyGroupAdoption = float64(withGroups) / float64(len(predictions))

	return insights
}

// earlyWarnings runs the three cross-student detectors. Detectors with no
// matches emit nothing.
func (p ScoringPolicy) earlyWarnings(predictions []dto.SuccessPrediction) []dto.EarlyWarning {
	var critical, declining, silent []string

	for _, prediction := range predictions {
		if prediction.RiskLevel == dto.RiskHigh && hasHighSeverityFactor(prediction.RiskFactors) {
			critical = append(critical, prediction.StudentName)
		}
		if prediction.Metrics.Performance.ImprovementTrend < p.SteepDeclineFloor {
			declining = append(declining, prediction.StudentName)
		}
		if prediction.Metrics.Chat.TotalMessages < p.SilentStudentMessages &&
			prediction.Metrics.Performance.TotalAttempts > 0 {
			silent = append(silent, prediction.StudentName)
		}
	}

	var warnings []dto.EarlyWarning
	if len(critical) > 0 {
		warnings = append(warnings, dto.EarlyWarning{
			Type:             "CRITICAL_RISK",
			Severity:         severityHigh,
			Count:            len(critical),
			Message:          fmt.Sprintf("%d students need immediate attention", len(critical)),
			AffectedStudents: critical,
		})
	}
	if len(declining) > 0 {
		warnings = append(warnings, dto.EarlyWarning{
			Type:             "DECLINING_TREND",
			Severity:         severityHigh,
			Count:            len(declining),
			Message:          fmt.Sprintf("%d students show steeply declining quiz scores", len(declining)),
			AffectedStudents: declining,
		})
	}
	if len(silent) > 0 {
		warnings = append(warnings, dto.EarlyWarning{
			Type:             "LOW_ENGAGEMENT",
			Severity:         severityMedium,
			Count:            len(silent),
			Message:          fmt.Sprintf("%d active test-takers are silent in discussions", len(silent)),
			AffectedStudents: silent,
		})
	}
	return warnings
}

func hasHighSeverityFactor(factors []dto.RiskFactor) bool {
	for _, factor := range factors {
		if factor.Severity == severityHigh {
			return true
		}
	}
	return false
}
