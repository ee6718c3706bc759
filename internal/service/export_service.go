package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	"github.com/noah-isme/sma-attendance-scoring/pkg/export"
	"github.com/noah-isme/sma-attendance-scoring/pkg/storage"
)

type evaluationSource interface {
	Evaluate(ctx context.Context, filter models.AttendanceRecordFilter) (*models.Evaluation, bool, error)
}

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders evaluations to files and issues signed download links. Numbers are
// taken from ScoringService output unchanged so exports match the API.
type ExportService struct {
	evaluations evaluationSource
	storage     fileStorage
	renderers   map[models.ExportFormat]datasetRenderer
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	cfg         ExportConfig
}

// NewExportService constructs an ExportService. Nil renderers fall back to the stock ones.
func NewExportService(evaluations evaluationSource, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		evaluations: evaluations,
		storage:     files,
		renderers: map[models.ExportFormat]datasetRenderer{
			models.ExportFormatCSV: csv,
			models.ExportFormatPDF: pdf,
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
	}
}

// Generate evaluates the job's course, renders the requested dataset and stores the file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("export job is nil")
	}
	renderer, ok := s.renderers[job.Params.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	filter, err := filterFromParams(job.Params)
	if err != nil {
		return nil, err
	}
	evaluation, _, err := s.evaluations.Evaluate(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("evaluate course %s: %w", job.Params.CourseID, err)
	}
	dataset, err := BuildDataset(job.Dataset, *evaluation)
	if err != nil {
		return nil, err
	}
	dataset.Subtitle = exportSubtitle(job.Params)

	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, err
	}
	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Debug("export rendered", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates a download token.
func (s *ExportService) ParseToken(token string, allowExpired bool) (*storage.DownloadToken, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to a stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, or the configured result TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	id := job.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s/%s_%s_%s.%s", job.Dataset, sanitizeFilename(job.Params.CourseID), timestamp, id, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 64 {
		return result[:64]
	}
	return result
}

// BuildDataset turns one evaluation view into an export table.
func BuildDataset(kind models.ExportDataset, evaluation models.Evaluation) (export.Dataset, error) {
	switch kind {
	case models.ExportDatasetScorecards:
		return scorecardDataset(evaluation.Scorecards), nil
	case models.ExportDatasetDates:
		return dateDataset(evaluation.Dates), nil
	case models.ExportDatasetHosts:
		return hostDataset(evaluation.Hosts), nil
	default:
		return export.Dataset{}, fmt.Errorf("unsupported export dataset %s", kind)
	}
}

func scorecardDataset(cards []models.StudentScorecard) export.Dataset {
	num := func(header string) export.Column {
		return export.Column{Header: header, Align: export.AlignRight}
	}
	rows := make([][]string, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, []string{
			strconv.Itoa(card.Rank),
			card.StudentName,
			strconv.Itoa(card.Present),
			strconv.Itoa(card.Late),
			strconv.Itoa(card.UnexcusedAbsent),
			strconv.Itoa(card.Excused),
			strconv.Itoa(card.EffectiveDays),
			formatFloat(card.AttendanceRate),
			formatFloat(card.QualityAdjustedRate),
			formatFloat(card.PunctualityRate),
			formatFloat(card.ConsistencyPercentage),
			formatFloat(card.CoverageFactor),
			formatFloat(card.FinalWeightedScore),
			string(card.Trend.Classification),
		})
	}
	return export.Dataset{
		Title: "Student Scorecards",
		Columns: []export.Column{
			num("Rank"), {Header: "Student", Width: 3}, num("Present"), num("Late"), num("Absent"),
			num("Excused"), num("Days"), num("Attendance %"), num("Quality %"), num("Punctuality %"),
			num("Consistency %"), num("Coverage"), num("Final Score"), {Header: "Trend", Width: 1.5},
		},
		Rows: rows,
	}
}

func dateDataset(dates []models.DateAggregate) export.Dataset {
	num := func(header string) export.Column {
		return export.Column{Header: header, Align: export.AlignRight}
	}
	rows := make([][]string, 0, len(dates))
	for _, date := range dates {
		host := date.HostLocation
		if date.SessionNotHeld {
			host = "Not held"
		}
		rows = append(rows, []string{
			date.Date,
			strconv.Itoa(date.EnrolledCount),
			strconv.Itoa(date.Present),
			strconv.Itoa(date.Late),
			strconv.Itoa(date.Excused),
			strconv.Itoa(date.UnexcusedAbsent),
			strconv.Itoa(date.Unmarked),
			formatFloat(date.AttendanceRate),
			host,
			date.BookReference,
		})
	}
	return export.Dataset{
		Title: "Session Dates",
		Columns: []export.Column{
			{Header: "Date", Width: 1.5}, num("Enrolled"), num("Present"), num("Late"), num("Excused"),
			num("Absent"), num("Unmarked"), num("Rate %"), {Header: "Host", Width: 2}, {Header: "Book", Width: 2},
		},
		Rows: rows,
	}
}

func hostDataset(hosts []models.HostRanking) export.Dataset {
	rows := make([][]string, 0, len(hosts))
	for _, host := range hosts {
		rows = append(rows, []string{
			strconv.Itoa(host.Rank),
			host.HostLocation,
			strconv.Itoa(host.SessionsHosted),
			strconv.Itoa(host.TotalPresent),
			strconv.Itoa(host.TotalAccountable),
			formatFloat(host.AverageRate),
			strings.Join(host.Dates, " "),
		})
	}
	return export.Dataset{
		Title: "Host Rankings",
		Columns: []export.Column{
			{Header: "Rank", Width: 0.6, Align: export.AlignRight},
			{Header: "Host", Width: 2},
			{Header: "Sessions", Align: export.AlignRight},
			{Header: "Present", Align: export.AlignRight},
			{Header: "Accountable", Align: export.AlignRight},
			{Header: "Avg Rate %", Align: export.AlignRight},
			{Header: "Dates", Width: 3},
		},
		Rows: rows,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func exportSubtitle(params models.ExportJobParams) string {
	from, to := "start", "today"
	if params.DateFrom != nil {
		from = *params.DateFrom
	}
	if params.DateTo != nil {
		to = *params.DateTo
	}
	return fmt.Sprintf("Course %s, %s to %s", params.CourseID, from, to)
}

func filterFromParams(params models.ExportJobParams) (models.AttendanceRecordFilter, error) {
	filter := models.AttendanceRecordFilter{CourseID: params.CourseID}
	var err error
	if filter.DateFrom, err = parseDatePtr(params.DateFrom); err != nil {
		return filter, fmt.Errorf("dateFrom: %w", err)
	}
	if filter.DateTo, err = parseDatePtr(params.DateTo); err != nil {
		return filter, fmt.Errorf("dateTo: %w", err)
	}
	return filter, nil
}

func parseDatePtr(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(models.DateLayout, *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
