package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

func TestClassifyRecordEnrollmentDate(t *testing.T) {
	enrolled := timePtr(day(3))

	before := record("a", 2, models.AttendanceStatusAbsent)
	assert.Equal(t, models.AttendanceStatusNotEnrolled, ClassifyRecord(before, enrolled))

	staleMark := record("a", 3, models.AttendanceStatusNotEnrolled)
	assert.Equal(t, models.AttendanceStatusAbsent, ClassifyRecord(staleMark, enrolled))

	after := record("a", 4, models.AttendanceStatusLate)
	assert.Equal(t, models.AttendanceStatusLate, ClassifyRecord(after, enrolled))
}

func TestClassifyRecordWithoutEnrollmentDateTrustsStatus(t *testing.T) {
	r := record("a", 0, models.AttendanceStatusNotEnrolled)
	assert.Equal(t, models.AttendanceStatusNotEnrolled, ClassifyRecord(r, nil))

	r = record("a", 0, models.AttendanceStatusOnTime)
	assert.Equal(t, models.AttendanceStatusOnTime, ClassifyRecord(r, nil))

	r = record("a", 0, models.AttendanceStatus("BOGUS"))
	assert.Equal(t, models.AttendanceStatusAbsent, ClassifyRecord(r, nil))
}

func TestClassifyRecordSessionNotHeld(t *testing.T) {
	r := withHost(record("a", 0, models.AttendanceStatusAbsent), models.SessionNotHeld)
	assert.Equal(t, models.AttendanceStatusExcused, ClassifyRecord(r, nil))
}

func TestPrepareFiltersSortsAndDedupes(t *testing.T) {
	enrolledLate := record("b", 0, models.AttendanceStatusAbsent)
	enrolledLate.EnrollmentDate = timePtr(day(1))

	records := []models.AttendanceRecord{
		record("c", 1, models.AttendanceStatusOnTime),
		record("a", 1, models.AttendanceStatusOnTime),
		record("a", 0, models.AttendanceStatusNotEnrolled),
		enrolledLate,
		record("c", 1, models.AttendanceStatusAbsent),
		withHost(record("a", 2, models.AttendanceStatusOnTime), models.SessionNotHeld),
		record("c", 2, models.AttendanceStatusOnTime),
	}

	prepared := Prepare(records)
	require.Len(t, prepared, 4)

	assert.Equal(t, "a", prepared[0].StudentID)
	assert.Equal(t, day(1).Format(models.DateLayout), prepared[0].DateKey)
	assert.Equal(t, "c", prepared[1].StudentID)
	assert.Equal(t, models.AttendanceStatusOnTime, prepared[1].Effective)

	for _, r := range prepared[2:] {
		assert.True(t, r.NotHeld)
		assert.Equal(t, models.AttendanceStatusExcused, r.Effective)
	}
	assert.Equal(t, 1, CountSessions(prepared))
}
