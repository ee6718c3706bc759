package models

import "time"

// AttendanceStatus represents the recorded outcome for one student on one session date.
type AttendanceStatus string

const (
	AttendanceStatusOnTime      AttendanceStatus = "ON_TIME"
	AttendanceStatusLate        AttendanceStatus = "LATE"
	AttendanceStatusAbsent      AttendanceStatus = "ABSENT"
	AttendanceStatusExcused     AttendanceStatus = "EXCUSED"
	AttendanceStatusNotEnrolled AttendanceStatus = "NOT_ENROLLED"
)

// SessionNotHeld is the host location sentinel marking a date on which the session did not take place.
const SessionNotHeld = "SESSION_NOT_HELD"

// DateLayout is the calendar date format used on the API surface.
const DateLayout = "2006-01-02"

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusOnTime, AttendanceStatusLate, AttendanceStatusAbsent, AttendanceStatusExcused, AttendanceStatusNotEnrolled:
		return true
	default:
		return false
	}
}

// Attended reports whether the status counts towards presence.
func (s AttendanceStatus) Attended() bool {
	return s == AttendanceStatusOnTime || s == AttendanceStatusLate
}

// AttendanceRecord is one student's recorded outcome for one session date, joined with
// the student and enrollment metadata the scoring engine needs.
type AttendanceRecord struct {
	StudentID      string           `db:"student_id" json:"student_id"`
	StudentName    string           `db:"student_name" json:"student_name"`
	SessionID      string           `db:"session_id" json:"session_id"`
	Date           time.Time        `db:"date" json:"date"`
	Status         AttendanceStatus `db:"status" json:"status"`
	LateMinutes    *float64         `db:"late_minutes" json:"late_minutes,omitempty"`
	HostLocation   *string          `db:"host_location" json:"host_location,omitempty"`
	BookReference  *string          `db:"book_reference" json:"book_reference,omitempty"`
	EnrollmentDate *time.Time       `db:"enrollment_date" json:"enrollment_date,omitempty"`
}

// SessionNotHeld reports whether the record carries the not-held sentinel.
func (r AttendanceRecord) SessionNotHeld() bool {
	return r.HostLocation != nil && *r.HostLocation == SessionNotHeld
}

// AttendanceRecordFilter scopes the snapshot of records fetched for one evaluation.
type AttendanceRecordFilter struct {
	CourseID string
	DateFrom *time.Time
	DateTo   *time.Time
}
