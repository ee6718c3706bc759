package scoring

import (
	"sort"
	"sync"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

// Engine evaluates snapshots of attendance records. It holds no state between calls and is
// safe for concurrent use with different policies.
type Engine struct {
	workers int
}

// NewEngine builds an engine that spreads per-student aggregation over the given number of
// goroutines. Values below one run serially.
func NewEngine(workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{workers: workers}
}

// Evaluate computes ranked scorecards, per-date aggregates and host rankings.
func (e *Engine) Evaluate(records []models.AttendanceRecord, policy models.ScoringPolicy) models.Evaluation {
	prepared := Prepare(records)
	totalSessions := CountSessions(prepared)

	byStudent := make(map[string][]ClassifiedRecord)
	for _, record := range prepared {
		byStudent[record.StudentID] = append(byStudent[record.StudentID], record)
	}
	studentIDs := make([]string, 0, len(byStudent))
	for id := range byStudent {
		studentIDs = append(studentIDs, id)
	}
	sort.Strings(studentIDs)

	scorecards := make([]models.StudentScorecard, len(studentIDs))
	e.each(len(studentIDs), func(i int) {
		scorecards[i] = AggregateStudent(byStudent[studentIDs[i]], totalSessions, policy)
	})
	RankScorecards(scorecards)

	dates := AggregateDates(prepared)
	return models.Evaluation{
		Scorecards:    scorecards,
		Dates:         dates,
		Hosts:         RankHosts(dates),
		TotalSessions: totalSessions,
	}
}

// RankScorecards orders scorecards by final score descending, breaking ties by student ID,
// and assigns 1-based ranks.
func RankScorecards(cards []models.StudentScorecard) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].FinalWeightedScore != cards[j].FinalWeightedScore {
			return cards[i].FinalWeightedScore > cards[j].FinalWeightedScore
		}
		return cards[i].StudentID < cards[j].StudentID
	})
	for i := range cards {
		cards[i].Rank = i + 1
	}
}

func (e *Engine) each(n int, fn func(i int)) {
	if e.workers <= 1 || n < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	indexes := make(chan int)
	var wg sync.WaitGroup
	workers := e.workers
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}
