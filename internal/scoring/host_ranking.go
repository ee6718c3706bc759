package scoring

import (
	"sort"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

// RankHosts folds date aggregates by host location. Dates whose session was not held or
// that carry no host are skipped.
func RankHosts(dates []models.DateAggregate) []models.HostRanking {
	byHost := make(map[string]*models.HostRanking)
	rateTotals := make(map[string]float64)
	for _, date := range dates {
		if date.SessionNotHeld || date.HostLocation == "" {
			continue
		}
		host, ok := byHost[date.HostLocation]
		if !ok {
			host = &models.HostRanking{HostLocation: date.HostLocation, Dates: []string{}}
			byHost[date.HostLocation] = host
		}
		host.SessionsHosted++
		host.TotalPresent += date.Present + date.Late
		host.TotalAccountable += date.EnrolledCount - date.Excused
		host.Dates = append(host.Dates, date.Date)
		rateTotals[date.HostLocation] += date.AttendanceRate
	}

	result := make([]models.HostRanking, 0, len(byHost))
	for name, host := range byHost {
		host.AverageRate = round2(rateTotals[name] / float64(host.SessionsHosted))
		result = append(result, *host)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SessionsHosted != result[j].SessionsHosted {
			return result[i].SessionsHosted > result[j].SessionsHosted
		}
		if result[i].AverageRate != result[j].AverageRate {
			return result[i].AverageRate > result[j].AverageRate
		}
		return result[i].HostLocation < result[j].HostLocation
	})
	for i := range result {
		result[i].Rank = i + 1
	}
	return result
}
