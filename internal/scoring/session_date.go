package scoring

import (
	"sort"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

// AggregateDates computes per-date counts and rates over prepared records.
//
// A student counts as enrolled on a date once any of their records is dated on or before
// it. Enrolled students without a record for the date are unmarked and treated as
// unexcused absences.
func AggregateDates(records []ClassifiedRecord) []models.DateAggregate {
	byDate := make(map[string][]ClassifiedRecord)
	order := make([]string, 0)
	for _, record := range records {
		if _, ok := byDate[record.DateKey]; !ok {
			order = append(order, record.DateKey)
		}
		byDate[record.DateKey] = append(byDate[record.DateKey], record)
	}
	sort.Strings(order)

	enrolled := make(map[string]string)
	result := make([]models.DateAggregate, 0, len(order))
	for _, date := range order {
		dayRecords := byDate[date]
		for _, record := range dayRecords {
			enrolled[record.StudentID] = record.DisplayName()
		}
		result = append(result, aggregateDate(date, dayRecords, enrolled))
	}
	return result
}

func aggregateDate(date string, dayRecords []ClassifiedRecord, enrolled map[string]string) models.DateAggregate {
	agg := models.DateAggregate{
		Date:          date,
		EnrolledCount: len(enrolled),
		PresentNames:  []string{},
		LateNames:     []string{},
		ExcusedNames:  []string{},
		AbsentNames:   []string{},
	}

	marked := make(map[string]struct{}, len(dayRecords))
	for _, record := range dayRecords {
		marked[record.StudentID] = struct{}{}
		if record.NotHeld {
			agg.SessionNotHeld = true
		}
		if agg.HostLocation == "" && record.HostLocation != nil && *record.HostLocation != models.SessionNotHeld {
			agg.HostLocation = *record.HostLocation
		}
		if agg.BookReference == "" && record.BookReference != nil {
			agg.BookReference = *record.BookReference
		}
	}

	if agg.SessionNotHeld {
		agg.Excused = len(enrolled)
		agg.ExcusedNames = []string{models.AllStudentsMarker}
		return agg
	}

	for _, record := range dayRecords {
		name := record.DisplayName()
		switch record.Effective {
		case models.AttendanceStatusOnTime:
			agg.Present++
			agg.PresentNames = append(agg.PresentNames, name)
		case models.AttendanceStatusLate:
			agg.Late++
			agg.LateNames = append(agg.LateNames, name)
		case models.AttendanceStatusExcused:
			agg.Excused++
			agg.ExcusedNames = append(agg.ExcusedNames, name)
		default:
			agg.UnexcusedAbsent++
			agg.AbsentNames = append(agg.AbsentNames, name)
		}
	}
	for studentID, name := range enrolled {
		if _, ok := marked[studentID]; ok {
			continue
		}
		agg.Unmarked++
		agg.UnexcusedAbsent++
		agg.AbsentNames = append(agg.AbsentNames, name)
	}

	sort.Strings(agg.PresentNames)
	sort.Strings(agg.LateNames)
	sort.Strings(agg.ExcusedNames)
	sort.Strings(agg.AbsentNames)

	accountable := agg.EnrolledCount - agg.Excused
	agg.AttendanceRate = round2(percent(float64(agg.Present+agg.Late), float64(accountable)))
	return agg
}
