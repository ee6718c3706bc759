package models

// TrendClassification labels the recent direction of a student's cumulative attendance rate.
type TrendClassification string

const (
	TrendStable    TrendClassification = "STABLE"
	TrendImproving TrendClassification = "IMPROVING"
	TrendDeclining TrendClassification = "DECLINING"
	TrendVolatile  TrendClassification = "VOLATILE"
)

// TrendResult is the least-squares fit over recent cumulative rates.
type TrendResult struct {
	Slope          float64             `json:"slope"`
	RSquared       float64             `json:"r_squared"`
	Classification TrendClassification `json:"classification"`
}

// StudentScorecard is the computed performance summary for one student.
type StudentScorecard struct {
	Rank        int    `json:"rank"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`

	Present         int `json:"present"`
	Late            int `json:"late"`
	UnexcusedAbsent int `json:"unexcused_absent"`
	Excused         int `json:"excused"`
	EffectiveDays   int `json:"effective_days"`

	AttendanceRate        float64 `json:"attendance_rate"`
	QualityAdjustedRate   float64 `json:"quality_adjusted_rate"`
	PunctualityRate       float64 `json:"punctuality_rate"`
	ConsistencyIndex      float64 `json:"consistency_index"`
	ConsistencyPercentage float64 `json:"consistency_percentage"`
	CoverageFactor        float64 `json:"coverage_factor"`
	RawWeightedScore      float64 `json:"raw_weighted_score"`
	FinalWeightedScore    float64 `json:"final_weighted_score"`

	Trend        TrendResult `json:"trend"`
	WeeklyChange float64     `json:"weekly_change"`
	MinRate      float64     `json:"min_rate"`
	AvgRate      float64     `json:"avg_rate"`
	MaxRate      float64     `json:"max_rate"`

	LateBreakdown map[string]int `json:"late_breakdown,omitempty"`
}

// AllStudentsMarker replaces the excused name list on dates where the session was not held.
const AllStudentsMarker = "All Students"

// DateAggregate summarises one session date.
type DateAggregate struct {
	Date            string  `json:"date"`
	Present         int     `json:"present"`
	Late            int     `json:"late"`
	Excused         int     `json:"excused"`
	UnexcusedAbsent int     `json:"unexcused_absent"`
	Unmarked        int     `json:"unmarked"`
	EnrolledCount   int     `json:"enrolled_count"`
	AttendanceRate  float64 `json:"attendance_rate"`
	SessionNotHeld  bool    `json:"session_not_held"`

	PresentNames []string `json:"present_names"`
	LateNames    []string `json:"late_names"`
	ExcusedNames []string `json:"excused_names"`
	AbsentNames  []string `json:"absent_names"`

	HostLocation  string `json:"host_location,omitempty"`
	BookReference string `json:"book_reference,omitempty"`
}

// HostRanking aggregates the sessions held at one host location.
type HostRanking struct {
	Rank             int      `json:"rank"`
	HostLocation     string   `json:"host_location"`
	SessionsHosted   int      `json:"sessions_hosted"`
	TotalPresent     int      `json:"total_present"`
	TotalAccountable int      `json:"total_accountable"`
	AverageRate      float64  `json:"average_rate"`
	Dates            []string `json:"dates"`
}

// Evaluation bundles everything computed from one snapshot of records.
type Evaluation struct {
	Scorecards    []StudentScorecard `json:"scorecards"`
	Dates         []DateAggregate    `json:"dates"`
	Hosts         []HostRanking      `json:"hosts"`
	TotalSessions int                `json:"total_sessions"`
}
