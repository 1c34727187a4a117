package dto

// RiskLevel classifies success probability into coarse bands.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Worse reports whether the level indicates higher risk than other.
func (r RiskLevel) Worse(other RiskLevel) bool {
	return r.rank() > other.rank()
}

func (r RiskLevel) rank() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// RiskFactorType names a threshold rule match.
type RiskFactorType string

const (
	FactorLowPerformance          RiskFactorType = "LOW_PERFORMANCE"
	FactorDecliningPerformance    RiskFactorType = "DECLINING_PERFORMANCE"
	FactorLowEngagement           RiskFactorType = "LOW_ENGAGEMENT"
	FactorInfrequentParticipation RiskFactorType = "INFREQUENT_PARTICIPATION"
	FactorNoStudyGroups           RiskFactorType = "NO_STUDY_GROUPS"
	FactorInconsistentPerformance RiskFactorType = "INCONSISTENT_PERFORMANCE"
)

// ChatEngagementMetrics summarises a student's discussion activity.
type ChatEngagementMetrics struct {
	TotalMessages   int              `json:"totalMessages"`
	ByRoomType      RoomTypeMessages `json:"byRoomType"`
	MessagesPerDay  float64          `json:"messagesPerDay"`
	DiversityScore  float64          `json:"diversityScore"`
	EngagementScore float64          `json:"engagementScore"`
}

// RoomTypeMessages counts messages per room category.
type RoomTypeMessages struct {
	QuizDiscussion int `json:"quizDiscussion"`
	StudyGroup     int `json:"studyGroup"`
	General        int `json:"general"`
}

// PerformanceMetrics summarises a student's quiz attempts.
type PerformanceMetrics struct {
	TotalAttempts     int     `json:"totalAttempts"`
	AverageScore      float64 `json:"averageScore"`
	PassRate          float64 `json:"passRate"`
	ImprovementTrend  float64 `json:"improvementTrend"`
	ConsistencyScore  float64 `json:"consistencyScore"`
	RecentPerformance float64 `json:"recentPerformance"`
}

// StudyGroupParticipation summarises study-group membership.
type StudyGroupParticipation struct {
	ActiveGroups       int     `json:"activeGroups"`
	ParticipationScore float64 `json:"participationScore"`
	HasGroups          bool    `json:"hasGroups"`
}

// StudentMetrics groups the three metric families for one student.
type StudentMetrics struct {
	Chat        ChatEngagementMetrics   `json:"chat"`
	Performance PerformanceMetrics      `json:"performance"`
	StudyGroup  StudyGroupParticipation `json:"studyGroup"`
}

// RiskFactor is one matched threshold rule.
type RiskFactor struct {
	Type        RiskFactorType `json:"type"`
	Severity    string         `json:"severity"`
	Description string         `json:"description"`
	Value       float64        `json:"value"`
}

// Intervention is a recommended action derived from a risk factor.
type Intervention struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// SuccessPrediction is the per-student pipeline output.
type SuccessPrediction struct {
	StudentID           string         `json:"studentId"`
	StudentName         string         `json:"studentName"`
	Metrics             StudentMetrics `json:"metrics"`
	SuccessProbability  float64        `json:"successProbability"`
	RiskLevel           RiskLevel      `json:"riskLevel"`
	NextQuizSuccessRate float64        `json:"nextQuizSuccessRate"`
	RiskFactors         []RiskFactor   `json:"riskFactors"`
	Interventions       []Intervention `json:"interventions"`
}

// PerformanceDistribution buckets students by average score.
type PerformanceDistribution struct {
	Excellent    int `json:"excellent"`
	Good         int `json:"good"`
	Average      int `json:"average"`
	NeedsSupport int `json:"needsSupport"`
}

// EngagementPatterns buckets students by engagement score.
type EngagementPatterns struct {
	HighlyEngaged     int `json:"highlyEngaged"`
	ModeratelyEngaged int `json:"moderatelyEngaged"`
	Disengaged        int `json:"disengaged"`
}

// Correlation carries the engagement/performance Pearson coefficient.
type Correlation struct {
	Value    float64 `json:"value"`
	Strength string  `json:"strength"`
}

// CohortTrends aggregates trajectory signals across the cohort.
type CohortTrends struct {
	AverageImprovement float64 `json:"averageImprovement"`
	StudyGroupAdoption float64 `json:"studyGroupAdoption"`
	ImprovingStudents  int     `json:"improvingStudents"`
	DecliningStudents  int     `json:"decliningStudents"`
}

// CohortInsights is derived solely from the prediction set of one run.
type CohortInsights struct {
	PerformanceDistribution PerformanceDistribution `json:"performanceDistribution"`
	EngagementPatterns      EngagementPatterns      `json:"engagementPatterns"`
	Correlation             Correlation             `json:"correlation"`
	Trends                  CohortTrends            `json:"trends"`
}

// EarlyWarning is one cross-student alert group.
type EarlyWarning struct {
	Type             string   `json:"type"`
	Severity         string   `json:"severity"`
	Count            int      `json:"count"`
	Message          string   `json:"message"`
	AffectedStudents []string `json:"affectedStudents"`
}

// PredictionSummary gives headline counts for the run.
type PredictionSummary struct {
	TotalStudents             int     `json:"totalStudents"`
	HighRiskCount             int     `json:"highRiskCount"`
	MediumRiskCount           int     `json:"mediumRiskCount"`
	LowRiskCount              int     `json:"lowRiskCount"`
	AverageSuccessProbability float64 `json:"averageSuccessProbability"`
}

// PredictionResult is the full success-prediction payload for one run.
type PredictionResult struct {
	Predictions    []SuccessPrediction `json:"predictions"`
	CohortInsights CohortInsights      `json:"cohortInsights"`
	EarlyWarnings  []EarlyWarning      `json:"earlyWarnings"`
	Summary        PredictionSummary   `json:"summary"`
}
