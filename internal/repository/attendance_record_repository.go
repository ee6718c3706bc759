package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

// AttendanceRecordRepository reads attendance snapshots joined with student and enrollment metadata.
type AttendanceRecordRepository struct {
	db *sqlx.DB
}

// NewAttendanceRecordRepository constructs the repository.
func NewAttendanceRecordRepository(db *sqlx.DB) *AttendanceRecordRepository {
	return &AttendanceRecordRepository{db: db}
}

// ListByCourse returns every attendance record of a course inside the optional date range,
// ordered by session date then student.
func (r *AttendanceRecordRepository) ListByCourse(ctx context.Context, filter models.AttendanceRecordFilter) ([]models.AttendanceRecord, error) {
	where := []string{"cs.course_id = $1"}
	args := []interface{}{filter.CourseID}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("cs.session_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("cs.session_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	query := fmt.Sprintf(`SELECT ar.student_id, s.full_name AS student_name, ar.session_id, cs.session_date AS date,
        ar.status, ar.late_minutes, COALESCE(ar.host_location, cs.host_location) AS host_location,
        cs.book_reference, ce.enrolled_at AS enrollment_date
FROM attendance_records ar
JOIN course_sessions cs ON cs.id = ar.session_id
JOIN students s ON s.id = ar.student_id
LEFT JOIN course_enrollments ce ON ce.course_id = cs.course_id AND ce.student_id = ar.student_id
WHERE %s
ORDER BY cs.session_date ASC, ar.student_id ASC, ar.session_id ASC`, strings.Join(where, " AND "))

	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return records, nil
}

// CourseExists reports whether a course with the identifier is present.
func (r *AttendanceRecordRepository) CourseExists(ctx context.Context, courseID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, courseID); err != nil {
		return false, fmt.Errorf("check course exists: %w", err)
	}
	return exists, nil
}
