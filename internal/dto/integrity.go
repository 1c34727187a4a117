package dto

import "github.com/edupulse/edupulse-api/internal/models"

// IntegritySummary gives headline violation counts for one run.
type IntegritySummary struct {
	TotalViolations int `json:"totalViolations"`
	HighSeverity    int `json:"highSeverity"`
	MediumSeverity  int `json:"mediumSeverity"`
	LowSeverity     int `json:"lowSeverity"`
	UniqueUsers     int `json:"uniqueUsers"`
	ResolvedRecords int `json:"resolvedRecords"`
	WindowDays      int `json:"windowDays"`
}

// IntegrityScore is the aggregate 0-100 health measure with a qualitative level.
type IntegrityScore struct {
	Score       float64 `json:"score"`
	Level       string  `json:"level"`
	Description string  `json:"description"`
}

// HourlyViolations counts violations per hour of day, split by severity.
type HourlyViolations struct {
	Hour   int `json:"hour"`
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// RepeatOffender is a user appearing in two or more flagged records.
type RepeatOffender struct {
	UserID string `json:"userId"`
	Count  int    `json:"count"`
}

// PatternAnalysis groups flagged activity along type, time and user axes.
type PatternAnalysis struct {
	ByType          map[string]int     `json:"byType"`
	ByHour          []HourlyViolations `json:"byHour"`
	RepeatOffenders []RepeatOffender   `json:"repeatOffenders"`
}

// UserRisk is the per-user integrity risk assessment.
type UserRisk struct {
	UserID       string    `json:"userId"`
	HighCount    int       `json:"highCount"`
	MediumCount  int       `json:"mediumCount"`
	LowCount     int       `json:"lowCount"`
	TotalRecords int       `json:"totalRecords"`
	RiskScore    float64   `json:"riskScore"`
	RiskLevel    RiskLevel `json:"riskLevel"`
}

// QuizIntegrityAnalysis scopes integrity findings to one quiz.
type QuizIntegrityAnalysis struct {
	QuizID              string  `json:"quizId"`
	TotalAttempts       int     `json:"totalAttempts"`
	CompromisedAttempts int     `json:"compromisedAttempts"`
	IntegrityScore      float64 `json:"integrityScore"`
}

// IntegrityReport is the full integrity-analysis payload for one run.
type IntegrityReport struct {
	Summary              IntegritySummary                  `json:"summary"`
	IntegrityScore       IntegrityScore                    `json:"integrityScore"`
	SuspiciousActivities []models.SuspiciousActivityRecord `json:"suspiciousActivities"`
	PatternAnalysis      PatternAnalysis                   `json:"patternAnalysis"`
	UserRiskAssessment   []UserRisk                        `json:"userRiskAssessment"`
	QuizAnalysis         *QuizIntegrityAnalysis            `json:"quizAnalysis,omitempty"`
	Recommendations      []string                          `json:"recommendations"`
}
