package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	"github.com/noah-isme/sma-attendance-scoring/internal/scoring"
)

type studentDiff struct {
	StudentID      string
	StudentName    string
	BaselineRank   int
	CandidateRank  int
	BaselineScore  float64
	CandidateScore float64
}

func (d studentDiff) rankDelta() int {
	return d.BaselineRank - d.CandidateRank
}

func (d studentDiff) scoreDelta() float64 {
	return math.Round((d.CandidateScore-d.BaselineScore)*100) / 100
}

func main() {
	var (
		recordsPath   string
		baselinePath  string
		candidatePath string
		workers       int
		threshold     float64
	)

	flag.StringVar(&recordsPath, "records", "", "Path to a JSON array of attendance records")
	flag.StringVar(&baselinePath, "baseline", "", "Path to the baseline policy JSON (default policy when empty)")
	flag.StringVar(&candidatePath, "candidate", "", "Path to the candidate policy JSON")
	flag.IntVar(&workers, "workers", 4, "Engine worker count")
	flag.Float64Var(&threshold, "threshold", 0, "Only report students whose score moves by more than this")
	flag.Parse()

	if recordsPath == "" || candidatePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	var records []models.AttendanceRecord
	if err := loadJSON(recordsPath, &records); err != nil {
		log.Fatalf("failed to load records: %v", err)
	}
	baseline, err := loadPolicy(baselinePath)
	if err != nil {
		log.Fatalf("failed to load baseline policy: %v", err)
	}
	candidate, err := loadPolicy(candidatePath)
	if err != nil {
		log.Fatalf("failed to load candidate policy: %v", err)
	}

	engine := scoring.NewEngine(workers)
	before := engine.Evaluate(records, baseline)
	after := engine.Evaluate(records, candidate)

	diffs := compare(before.Scorecards, after.Scorecards)
	printReport(diffs, threshold, before.TotalSessions)
}

func loadJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func loadPolicy(path string) (models.ScoringPolicy, error) {
	policy := models.DefaultPolicy()
	if path == "" {
		return policy, nil
	}
	if err := loadJSON(path, &policy); err != nil {
		return policy, err
	}
	if err := scoring.ValidatePolicy(policy); err != nil {
		return policy, fmt.Errorf("%s: %w", path, err)
	}
	return policy, nil
}

// compare pairs scorecards by student and orders the result by the largest score movement.
func compare(baseline, candidate []models.StudentScorecard) []studentDiff {
	byStudent := make(map[string]*studentDiff, len(baseline))
	for _, card := range baseline {
		byStudent[card.StudentID] = &studentDiff{
			StudentID:     card.StudentID,
			StudentName:   card.StudentName,
			BaselineRank:  card.Rank,
			BaselineScore: card.FinalWeightedScore,
		}
	}
	for _, card := range candidate {
		diff, ok := byStudent[card.StudentID]
		if !ok {
			diff = &studentDiff{StudentID: card.StudentID, StudentName: card.StudentName}
			byStudent[card.StudentID] = diff
		}
		diff.CandidateRank = card.Rank
		diff.CandidateScore = card.FinalWeightedScore
	}

	result := make([]studentDiff, 0, len(byStudent))
	for _, diff := range byStudent {
		result = append(result, *diff)
	}
	sort.Slice(result, func(i, j int) bool {
		di, dj := math.Abs(result[i].scoreDelta()), math.Abs(result[j].scoreDelta())
		if di != dj {
			return di > dj
		}
		return result[i].StudentID < result[j].StudentID
	})
	return result
}

func printReport(diffs []studentDiff, threshold float64, sessions int) {
	fmt.Println("Policy Compare Report")
	fmt.Println("=====================")
	fmt.Printf("Students: %d, Sessions: %d\n", len(diffs), sessions)
	var moved int
	for _, diff := range diffs {
		if math.Abs(diff.scoreDelta()) <= threshold && diff.rankDelta() == 0 {
			continue
		}
		moved++
		fmt.Printf("[%+d] %s (%s)\n", diff.rankDelta(), diff.StudentName, diff.StudentID)
		fmt.Printf("  Rank: %d -> %d\n", diff.BaselineRank, diff.CandidateRank)
		fmt.Printf("  Score: %.2f -> %.2f (%+.2f)\n", diff.BaselineScore, diff.CandidateScore, diff.scoreDelta())
	}
	fmt.Printf("Students moved: %d\n", moved)
}
