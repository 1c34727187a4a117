package service

import (
	"fmt"

	"github.com/edupulse/edupulse-api/internal/dto"
	"github.com/edupulse/edupulse-api/internal/stats"
)

const (
	severityLow    = "LOW"
	severityMedium = "MEDIUM"
	severityHigh   = "HIGH"
)

// successProbability combines the three metric groups into a 0-100 composite.
// Each term is clamped into [0,100] before weighting.
func (p ScoringPolicy) successProbability(m dto.StudentMetrics) float64 {
	performance := stats.Clamp(m.Performance.AverageScore, 0, 100)
	engagement := stats.Clamp(m.Chat.EngagementScore, 0, 100)
	studyGroup := stats.Clamp(m.StudyGroup.ParticipationScore, 0, 100)
	consistency := stats.Clamp(m.Performance.ConsistencyScore, 0, 100)

	return stats.Round(
		performance*p.Weights.Performance +
			engagement*p.Weights.Engagement +
			studyGroup*p.Weights.StudyGroup +
			consistency*p.Weights.Consistency,
	)
}

// nextQuizSuccessRate projects the next attempt from recent performance,
// trajectory and engagement.
func (p ScoringPolicy) nextQuizSuccessRate(m dto.StudentMetrics) float64 {
	baseline := m.Performance.RecentPerformance
	if baseline == 0 {
		baseline = m.Performance.AverageScore
	}

	trendBonus := p.TrendPenalty
	if m.Performance.ImprovementTrend > 0 {
		trendBonus = p.TrendBonus
	}

	engagementBonus := p.EngagementPenalty
	if m.Chat.EngagementScore > p.EngagedFloor {
		engagementBonus = p.EngagementBonus
	}

	return stats.Clamp(baseline+trendBonus+engagementBonus, 0, 100)
}

// riskRule is one entry of the ordered threshold rule table.
type riskRule struct {
	factorType    dto.RiskFactorType
	severity      string
	needsAttempts bool
	matches       func(p ScoringPolicy, m dto.StudentMetrics) bool
	value         func(m dto.StudentMetrics) float64
	describe      func(m dto.StudentMetrics) string
}

// riskRules is evaluated in order; rules are independent, not mutually exclusive.
// Performance-based rules are skipped for students without attempts so that
// "never attempted" is not conflated with "actually failing".
var riskRules = []riskRule{
	{
		factorType:    dto.FactorLowPerformance,
		severity:      severityHigh,
		needsAttempts: true,
		matches: func(p ScoringPolicy, m dto.StudentMetrics) bool {
			return m.Performance.AverageScore < p.LowPerformanceFloor
		},
		value: func(m dto.StudentMetrics) float64 { return m.Performance.AverageScore },
		describe: func(m dto.StudentMetrics) string {
			return fmt.Sprintf("average quiz score %.1f is below passing expectations", m.Performance.AverageScore)
		},
	},
	{
		factorType:    dto.FactorDecliningPerformance,
		severity:      severityHigh,
		needsAttempts: true,
		matches: func(p ScoringPolicy, m dto.StudentMetrics) bool {
			return m.Performance.ImprovementTrend < p.DecliningTrendFloor
		},
		value: func(m dto.StudentMetrics) float64 { return m.Performance.ImprovementTrend },
		describe: func(m dto.StudentMetrics) string {
			return fmt.Sprintf("quiz scores dropped %.1f points across the window", -m.Performance.ImprovementTrend)
		},
	},
	{
		factorType: dto.FactorLowEngagement,
		severity:   severityMedium,
		matches: func(p ScoringPolicy, m dto.StudentMetrics) bool {
			return m.Chat.TotalMessages < p.LowEngagementMessages
		},
		value: func(m dto.StudentMetrics) float64 { return float64(m.Chat.TotalMessages) },
		describe: func(m dto.StudentMetrics) string {
			return fmt.Sprintf("only %d discussion messages in the window", m.Chat.TotalMessages)
		},
	},
	{
		factorType: dto.FactorInfrequentParticipation,
		severity:   severityMedium,
		matches: func(p ScoringPolicy, m dto.StudentMetrics) bool {
			return m.Chat.MessagesPerDay < p.InfrequentDailyMessages
		},
		value: func(m dto.StudentMetrics) float64 { return m.Chat.MessagesPerDay },
		describe: func(m dto.StudentMetrics) string {
			return fmt.Sprintf("participates %.2f times per day on average", m.Chat.MessagesPerDay)
		},
	},
	{
		factorType: dto.FactorNoStudyGroups,
		severity:   severityLow,
		matches: func(p ScoringPolicy, m dto.StudentMetrics) bool {
			return !m.StudyGroup.HasGroups
		},
		value: func(m dto.StudentMetrics) float64 { return float64(m.StudyGroup.ActiveGroups) },
		describe: func(m dto.StudentMetrics) string {
			return "not a member of any study group"
		},
	},
	{
		factorType:    dto.FactorInconsistentPerformance,
		severity:      severityMedium,
		needsAttempts: true,
		matches: func(p ScoringPolicy, m dto.StudentMetrics) bool {
			return m.Performance.ConsistencyScore < p.InconsistencyFloor
		},
		value: func(m dto.StudentMetrics) float64 { return m.Performance.ConsistencyScore },
		describe: func(m dto.StudentMetrics) string {
			return fmt.Sprintf("quiz scores vary widely, consistency %.1f/100", m.Performance.ConsistencyScore)
		},
	},
}

// riskFactors evaluates the rule table against one student's metrics.
func (p ScoringPolicy) riskFactors(m dto.StudentMetrics) []dto.RiskFactor {
	var factors []dto.RiskFactor
	for _, rule := range riskRules {
		if rule.needsAttempts && m.Performance.TotalAttempts == 0 {
			continue
		}
		if !rule.matches(p, m) {
			continue
		}
		factors = append(factors, dto.RiskFactor{
			Type:        rule.factorType,
			Severity:    rule.severity,
			Description: rule.describe(m),
			Value:       rule.value(m),
		})
	}
	return factors
}

// interventionTable maps each risk-factor type to exactly one intervention.
var interventionTable = map[dto.RiskFactorType]dto.Intervention{
	dto.FactorLowPerformance: {
		Type:        "TUTORING",
		Priority:    severityHigh,
		Action:      "schedule_tutoring",
		Description: "Pair the student with a subject tutor for weekly sessions",
	},
	dto.FactorDecliningPerformance: {
		Type:        "INSTRUCTOR_MEETING",
		Priority:    severityHigh,
		Action:      "schedule_instructor_meeting",
		Description: "Arrange a one-on-one check-in with the course instructor",
	},
	dto.FactorLowEngagement: {
		Type:        "ENGAGEMENT_NUDGE",
		Priority:    severityMedium,
		Action:      "send_engagement_nudge",
		Description: "Prompt the student with discussion topics relevant to recent quizzes",
	},
	dto.FactorInfrequentParticipation: {
		Type:        "PARTICIPATION_REMINDER",
		Priority:    severityMedium,
		Action:      "send_participation_reminder",
		Description: "Remind the student about daily discussion goals",
	},
	dto.FactorNoStudyGroups: {
		Type:        "GROUP_INVITE",
		Priority:    severityLow,
		Action:      "suggest_study_groups",
		Description: "Invite the student to an active study group matching their courses",
	},
	dto.FactorInconsistentPerformance: {
		Type:        "STUDY_SKILLS_WORKSHOP",
		Priority:    severityMedium,
		Action:      "enroll_study_skills_workshop",
		Description: "Enroll the student in a study-skills workshop to stabilise results",
	},
}

// interventionsFor derives recommendations from matched risk factors.
// Factor types without a table entry are skipped.
func interventionsFor(factors []dto.RiskFactor) []dto.Intervention {
	var interventions []dto.Intervention
	for _, factor := range factors {
		intervention, ok := interventionTable[factor.Type]
		if !ok {
			continue
		}
		interventions = append(interventions, intervention)
	}
	return interventions
}
