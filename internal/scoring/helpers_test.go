package scoring

import (
	"fmt"
	"time"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

var termStart = time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return termStart.AddDate(0, 0, offset*7)
}

func record(studentID string, offset int, status models.AttendanceStatus) models.AttendanceRecord {
	return models.AttendanceRecord{
		StudentID:   studentID,
		StudentName: "Student " + studentID,
		SessionID:   fmt.Sprintf("session-%d", offset),
		Date:        day(offset),
		Status:      status,
	}
}

func lateRecord(studentID string, offset int, minutes float64) models.AttendanceRecord {
	r := record(studentID, offset, models.AttendanceStatusLate)
	r.LateMinutes = &minutes
	return r
}

func withHost(r models.AttendanceRecord, host string) models.AttendanceRecord {
	r.HostLocation = &host
	return r
}

func floatPtr(v float64) *float64 {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// neutralPolicy disables coverage so component maths can be asserted directly.
func neutralPolicy() models.ScoringPolicy {
	policy := models.DefaultPolicy()
	policy.Coverage.Enabled = false
	return policy
}
