package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

func TestRankHostsSkipsNotHeldDates(t *testing.T) {
	hosts := RankHosts(AggregateDates(Prepare(sampleTerm())))
	require.Len(t, hosts, 2)

	alice := hosts[0]
	assert.Equal(t, 1, alice.Rank)
	assert.Equal(t, "Alice Home", alice.HostLocation)
	assert.Equal(t, 2, alice.SessionsHosted)
	assert.Equal(t, 6, alice.TotalPresent)
	assert.Equal(t, 7, alice.TotalAccountable)
	assert.InDelta(t, 83.335, alice.AverageRate, 0.01)
	assert.Equal(t, []string{day(0).Format(models.DateLayout), day(3).Format(models.DateLayout)}, alice.Dates)

	bob := hosts[1]
	assert.Equal(t, 2, bob.Rank)
	assert.Equal(t, "Bob Home", bob.HostLocation)
	assert.Equal(t, 50.0, bob.AverageRate)

	for _, host := range hosts {
		assert.NotEqual(t, "Carol Home", host.HostLocation)
	}
}

func TestRankHostsOrdering(t *testing.T) {
	dates := []models.DateAggregate{
		{Date: "2024-01-08", HostLocation: "Yusuf", AttendanceRate: 80},
		{Date: "2024-01-15", HostLocation: "Xavier", AttendanceRate: 80},
		{Date: "2024-01-22", HostLocation: "Zaid", AttendanceRate: 90},
		{Date: "2024-01-29", HostLocation: "Wafa", AttendanceRate: 10},
		{Date: "2024-02-05", HostLocation: "Wafa", AttendanceRate: 20},
		{Date: "2024-02-12", AttendanceRate: 100},
	}
	hosts := RankHosts(dates)
	require.Len(t, hosts, 4)

	names := make([]string, 0, len(hosts))
	for _, host := range hosts {
		names = append(names, host.HostLocation)
	}
	assert.Equal(t, []string{"Wafa", "Zaid", "Xavier", "Yusuf"}, names)
	assert.Equal(t, 15.0, hosts[0].AverageRate)
}
