package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	"github.com/noah-isme/sma-attendance-scoring/internal/scoring"
	"github.com/noah-isme/sma-attendance-scoring/pkg/export"
	"github.com/noah-isme/sma-attendance-scoring/pkg/storage"
)

type evaluationStub struct {
	evaluation *models.Evaluation
	err        error
	filters    []models.AttendanceRecordFilter
}

func (e *evaluationStub) Evaluate(_ context.Context, filter models.AttendanceRecordFilter) (*models.Evaluation, bool, error) {
	e.filters = append(e.filters, filter)
	if e.err != nil {
		return nil, false, e.err
	}
	return e.evaluation, false, nil
}

func sampleEvaluation() *models.Evaluation {
	evaluation := scoring.NewEngine(1).Evaluate(courseRecords(), models.DefaultPolicy())
	return &evaluation
}

func newExportServiceForTest(t *testing.T, source evaluationSource) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(source, store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store
}

func readExport(t *testing.T, svc *ExportService, relPath string) string {
	t.Helper()
	file, err := svc.Open(relPath)
	require.NoError(t, err)
	defer file.Close()
	payload, err := io.ReadAll(file)
	require.NoError(t, err)
	return string(payload)
}

func TestExportServiceGenerateScorecardsCSV(t *testing.T) {
	source := &evaluationStub{evaluation: sampleEvaluation()}
	svc, _ := newExportServiceForTest(t, source)
	from := "2024-03-01"
	job := &models.ExportJob{
		ID:        "job-1",
		Dataset:   models.ExportDatasetScorecards,
		Params:    models.ExportJobParams{CourseID: "course-1", DateFrom: &from, Format: models.ExportFormatCSV},
		CreatedBy: "admin",
	}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.RelativePath, "scorecards/course-1_"))
	assert.True(t, strings.HasSuffix(result.RelativePath, ".csv"))
	assert.Equal(t, "/api/v1/export/"+result.Token, result.URL)

	require.Len(t, source.filters, 1)
	require.NotNil(t, source.filters[0].DateFrom)
	assert.Equal(t, "2024-03-01", source.filters[0].DateFrom.Format(models.DateLayout))
	assert.Nil(t, source.filters[0].DateTo)

	content := readExport(t, svc, result.RelativePath)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Rank,Student,Present"))
	card := source.evaluation.Scorecards[0]
	assert.Contains(t, lines[1], "1,Amina,4,0,0,0,4,100.00")
	assert.Contains(t, lines[1], formatFloat(card.FinalWeightedScore))
}

func TestExportServiceGenerateHostsPDF(t *testing.T) {
	svc, _ := newExportServiceForTest(t, &evaluationStub{evaluation: sampleEvaluation()})
	job := &models.ExportJob{
		ID:      "job-2",
		Dataset: models.ExportDatasetHosts,
		Params:  models.ExportJobParams{CourseID: "course-1", Format: models.ExportFormatPDF},
	}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatPDF, result.Format)
	assert.True(t, strings.HasPrefix(readExport(t, svc, result.RelativePath), "%PDF"))
}

func TestExportServiceGenerateErrors(t *testing.T) {
	bad := "03/01/2024"
	cases := []struct {
		name   string
		source *evaluationStub
		job    *models.ExportJob
	}{
		{"nil job", &evaluationStub{}, nil},
		{"unknown format", &evaluationStub{}, &models.ExportJob{ID: "a", Dataset: models.ExportDatasetDates, Params: models.ExportJobParams{CourseID: "c", Format: "xlsx"}}},
		{"bad date", &evaluationStub{}, &models.ExportJob{ID: "b", Dataset: models.ExportDatasetDates, Params: models.ExportJobParams{CourseID: "c", DateTo: &bad, Format: models.ExportFormatCSV}}},
		{"evaluation failure", &evaluationStub{err: errors.New("db down")}, &models.ExportJob{ID: "c", Dataset: models.ExportDatasetDates, Params: models.ExportJobParams{CourseID: "c", Format: models.ExportFormatCSV}}},
		{"unknown dataset", &evaluationStub{evaluation: sampleEvaluation()}, &models.ExportJob{ID: "d", Dataset: "grades", Params: models.ExportJobParams{CourseID: "c", Format: models.ExportFormatCSV}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newExportServiceForTest(t, tc.source)
			_, err := svc.Generate(context.Background(), tc.job)
			require.Error(t, err)
		})
	}
}

func TestBuildDatasetDates(t *testing.T) {
	evaluation := *sampleEvaluation()
	evaluation.Dates[1].SessionNotHeld = true

	dataset, err := BuildDataset(models.ExportDatasetDates, evaluation)
	require.NoError(t, err)
	require.NoError(t, dataset.Validate())
	require.Len(t, dataset.Rows, 4)
	assert.Equal(t, []string{"2024-03-04", "2", "1", "0", "0", "1", "0", "50.00", "Hall A", ""}, dataset.Rows[0])
	assert.Equal(t, "Not held", dataset.Rows[1][8])
}

func TestBuildDatasetScorecardsMatchesEvaluation(t *testing.T) {
	evaluation := *sampleEvaluation()
	dataset, err := BuildDataset(models.ExportDatasetScorecards, evaluation)
	require.NoError(t, err)
	require.NoError(t, dataset.Validate())
	for i, card := range evaluation.Scorecards {
		row := dataset.Rows[i]
		assert.Equal(t, card.StudentName, row[1])
		assert.Equal(t, formatFloat(card.FinalWeightedScore), row[12])
		assert.Equal(t, string(card.Trend.Classification), row[13])
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, "math-101_a", sanitizeFilename("math/101 a"))
	assert.Len(t, sanitizeFilename(strings.Repeat("x", 100)), 64)
}
