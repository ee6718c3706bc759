package scoring

import (
	"sort"
	"time"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

// ClassifiedRecord is an attendance record after enrollment and not-held inference.
type ClassifiedRecord struct {
	models.AttendanceRecord
	Effective models.AttendanceStatus
	DateKey   string
	NotHeld   bool
}

// DisplayName returns the student's name, falling back to the identifier.
func (r ClassifiedRecord) DisplayName() string {
	if r.StudentName != "" {
		return r.StudentName
	}
	return r.StudentID
}

// ClassifyRecord resolves the status the engine scores a record with.
//
// With a known enrollment date the date comparison is authoritative: records dated before
// enrollment are NotEnrolled, and a stale NotEnrolled mark on or after enrollment counts as
// an absence. Without one the recorded status is trusted. A not-held session excuses the
// student regardless of the recorded status.
func ClassifyRecord(record models.AttendanceRecord, enrollmentDate *time.Time) models.AttendanceStatus {
	if enrollmentDate != nil {
		if civilDate(record.Date).Before(civilDate(*enrollmentDate)) {
			return models.AttendanceStatusNotEnrolled
		}
	} else if record.Status == models.AttendanceStatusNotEnrolled {
		return models.AttendanceStatusNotEnrolled
	}
	if record.SessionNotHeld() {
		return models.AttendanceStatusExcused
	}
	if record.Status == models.AttendanceStatusNotEnrolled || !record.Status.Valid() {
		return models.AttendanceStatusAbsent
	}
	return record.Status
}

// Prepare classifies the raw snapshot, excuses every record on a not-held date, drops
// NotEnrolled rows and duplicate (student, date) pairs, and returns the remainder ordered
// by date then student.
func Prepare(records []models.AttendanceRecord) []ClassifiedRecord {
	sorted := make([]models.AttendanceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := dateKey(sorted[i].Date), dateKey(sorted[j].Date)
		if ki != kj {
			return ki < kj
		}
		if sorted[i].StudentID != sorted[j].StudentID {
			return sorted[i].StudentID < sorted[j].StudentID
		}
		return sorted[i].SessionID < sorted[j].SessionID
	})

	notHeld := make(map[string]struct{})
	for _, record := range sorted {
		if record.SessionNotHeld() {
			notHeld[dateKey(record.Date)] = struct{}{}
		}
	}

	type studentDate struct {
		studentID string
		date      string
	}
	seen := make(map[studentDate]struct{}, len(sorted))
	result := make([]ClassifiedRecord, 0, len(sorted))
	for _, record := range sorted {
		effective := ClassifyRecord(record, record.EnrollmentDate)
		if effective == models.AttendanceStatusNotEnrolled {
			continue
		}
		key := dateKey(record.Date)
		id := studentDate{studentID: record.StudentID, date: key}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		_, skipped := notHeld[key]
		if skipped {
			effective = models.AttendanceStatusExcused
		}
		result = append(result, ClassifiedRecord{
			AttendanceRecord: record,
			Effective:        effective,
			DateKey:          key,
			NotHeld:          skipped,
		})
	}
	return result
}

// CountSessions returns the number of distinct dates on which a session was held.
func CountSessions(records []ClassifiedRecord) int {
	dates := make(map[string]struct{})
	for _, record := range records {
		if record.NotHeld {
			continue
		}
		dates[record.DateKey] = struct{}{}
	}
	return len(dates)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string {
	return civilDate(t).Format(models.DateLayout)
}
