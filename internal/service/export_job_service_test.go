package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-attendance-scoring/internal/dto"
	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	"github.com/noah-isme/sma-attendance-scoring/internal/repository"
	appErrors "github.com/noah-isme/sma-attendance-scoring/pkg/errors"
	"github.com/noah-isme/sma-attendance-scoring/pkg/jobs"
)

type exportRepoStub struct {
	jobs     map[string]*models.ExportJob
	finished []models.ExportJob
}

func newExportRepoStub() *exportRepoStub {
	return &exportRepoStub{jobs: map[string]*models.ExportJob{}}
}

func (r *exportRepoStub) Create(_ context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *exportRepoStub) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("get export job: %w", sql.ErrNoRows)
	}
	return job, nil
}

func (r *exportRepoStub) Update(_ context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *exportRepoStub) ListQueued(_ context.Context, _ int) ([]models.ExportJob, error) {
	var queued []models.ExportJob
	for _, job := range r.jobs {
		if job.Status == models.ExportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (r *exportRepoStub) ListFinishedBefore(_ context.Context, _ time.Time, _ int) ([]models.ExportJob, error) {
	return r.finished, nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type exportStub struct {
	result *ExportResult
	err    error
}

func (e exportStub) Generate(_ context.Context, _ *models.ExportJob) (*ExportResult, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func newExportJobServiceForTest(t *testing.T) (*ExportJobService, *exportRepoStub, *queueStub, *ExportService) {
	t.Helper()
	repo := newExportRepoStub()
	queue := &queueStub{}
	exportSvc, _ := newExportServiceForTest(t, &evaluationStub{evaluation: sampleEvaluation()})
	svc := NewExportJobService(repo, queue, exportSvc, nil, NewMetricsService(), zap.NewNop(), ExportJobServiceConfig{
		ResultTTL:       time.Hour,
		CleanupInterval: time.Hour,
	})
	return svc, repo, queue, exportSvc
}

func TestExportJobServiceCreateJob(t *testing.T) {
	svc, repo, queue, _ := newExportJobServiceForTest(t)
	from, to := "2024-03-01", "2024-03-31"

	resp, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Dataset:  models.ExportDatasetScorecards,
		Format:   models.ExportFormatCSV,
		CourseID: "course-1",
		DateFrom: &from,
		DateTo:   &to,
	}, "admin-1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "export:scorecards", queue.jobs[0].Type)
	require.Contains(t, repo.jobs, resp.ID)
	assert.Equal(t, "course-1", repo.jobs[resp.ID].Params.CourseID)
	assert.Equal(t, "admin-1", repo.jobs[resp.ID].CreatedBy)
}

func TestExportJobServiceCreateJobValidation(t *testing.T) {
	svc, repo, _, _ := newExportJobServiceForTest(t)
	from, to, bad := "2024-03-31", "2024-03-01", "31-03-2024"

	cases := []dto.ExportRequest{
		{Dataset: "grades", Format: models.ExportFormatCSV, CourseID: "c"},
		{Dataset: models.ExportDatasetHosts, Format: "xlsx", CourseID: "c"},
		{Dataset: models.ExportDatasetHosts, Format: models.ExportFormatPDF},
		{Dataset: models.ExportDatasetHosts, Format: models.ExportFormatPDF, CourseID: "c", DateFrom: &bad},
		{Dataset: models.ExportDatasetHosts, Format: models.ExportFormatPDF, CourseID: "c", DateFrom: &from, DateTo: &to},
	}
	for _, req := range cases {
		_, err := svc.CreateJob(context.Background(), req, "admin-1")
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	}
	assert.Empty(t, repo.jobs)
}

func TestExportJobServiceCreateJobEnqueueFailure(t *testing.T) {
	svc, repo, queue, _ := newExportJobServiceForTest(t)
	queue.err = jobs.ErrQueueFull

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Dataset:  models.ExportDatasetDates,
		Format:   models.ExportFormatCSV,
		CourseID: "course-1",
	}, "admin-1")
	require.Error(t, err)
	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		assert.Equal(t, models.ExportStatusFailed, job.Status)
		assert.NotNil(t, job.FinishedAt)
	}
}

func TestExportJobServiceGetStatus(t *testing.T) {
	svc, repo, _, _ := newExportJobServiceForTest(t)
	msg := "evaluate course course-1: db down"
	repo.jobs["job-1"] = &models.ExportJob{
		ID:           "job-1",
		Dataset:      models.ExportDatasetHosts,
		Params:       models.ExportJobParams{CourseID: "course-1", Format: models.ExportFormatCSV},
		Status:       models.ExportStatusQueued,
		ErrorMessage: &msg,
		CreatedBy:    "teacher-1",
	}

	resp, err := svc.GetStatus(context.Background(), "job-1", "teacher-1", models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, models.ExportDatasetHosts, resp.Dataset)
	require.NotNil(t, resp.Error)
	assert.Equal(t, msg, *resp.Error)

	_, err = svc.GetStatus(context.Background(), "job-1", "teacher-2", models.RoleTeacher)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.GetStatus(context.Background(), "job-1", "admin-1", models.RoleAdmin)
	assert.NoError(t, err)

	_, err = svc.GetStatus(context.Background(), "missing", "admin-1", models.RoleAdmin)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestExportJobServiceResolveDownload(t *testing.T) {
	svc, repo, _, exportSvc := newExportJobServiceForTest(t)
	job := &models.ExportJob{
		ID:        "job-download",
		Dataset:   models.ExportDatasetScorecards,
		Params:    models.ExportJobParams{CourseID: "course-1", Format: models.ExportFormatCSV},
		Status:    models.ExportStatusProcessing,
		CreatedBy: "admin",
	}
	repo.jobs[job.ID] = job
	result, err := exportSvc.Generate(context.Background(), job)
	require.NoError(t, err)
	job.ResultURL = &result.URL

	_, err = svc.ResolveDownload(context.Background(), result.Token)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	job.Status = models.ExportStatusFinished
	download, err := svc.ResolveDownload(context.Background(), result.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, filepath.Base(result.RelativePath), download.Filename)
	assert.Equal(t, models.ExportFormatCSV, download.Format)

	_, err = svc.ResolveDownload(context.Background(), "not-a-token")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestExportJobServiceRecoverPendingJobs(t *testing.T) {
	svc, repo, queue, _ := newExportJobServiceForTest(t)
	repo.jobs["queued"] = &models.ExportJob{ID: "queued", Dataset: models.ExportDatasetDates, Status: models.ExportStatusQueued}
	repo.jobs["done"] = &models.ExportJob{ID: "done", Dataset: models.ExportDatasetDates, Status: models.ExportStatusFinished}

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "queued", queue.jobs[0].ID)
	assert.Equal(t, "export:dates", queue.jobs[0].Type)
}

func TestExportJobServiceCleanupExpired(t *testing.T) {
	svc, repo, _, exportSvc := newExportJobServiceForTest(t)
	job := &models.ExportJob{
		ID:      "job-old",
		Dataset: models.ExportDatasetHosts,
		Params:  models.ExportJobParams{CourseID: "course-1", Format: models.ExportFormatCSV},
		Status:  models.ExportStatusFinished,
	}
	result, err := exportSvc.Generate(context.Background(), job)
	require.NoError(t, err)
	job.ResultURL = &result.URL
	repo.finished = []models.ExportJob{*job}

	svc.cleanupExpired(context.Background())
	_, err = exportSvc.Open(result.RelativePath)
	assert.Error(t, err)
}

func TestExportWorkerHandleSuccess(t *testing.T) {
	repo := newExportRepoStub()
	repo.jobs["job-1"] = &models.ExportJob{
		ID:        "job-1",
		Dataset:   models.ExportDatasetScorecards,
		Params:    models.ExportJobParams{CourseID: "course-1", Format: models.ExportFormatCSV},
		Status:    models.ExportStatusQueued,
		CreatedBy: "admin",
	}
	metrics := NewMetricsService()
	worker := NewExportWorker(repo, exportStub{result: &ExportResult{URL: "/api/v1/export/token"}}, metrics, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1"})
	require.NoError(t, err)
	job := repo.jobs["job-1"]
	assert.Equal(t, models.ExportStatusFinished, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ResultURL)
	assert.Equal(t, "/api/v1/export/token", *job.ResultURL)
	assert.Equal(t, uint64(1), metrics.Snapshot().ExportJobsFinished)
}

func TestExportWorkerHandleRequeuesBeforeFinalAttempt(t *testing.T) {
	repo := newExportRepoStub()
	repo.jobs["job-1"] = &models.ExportJob{ID: "job-1", Dataset: models.ExportDatasetDates, Status: models.ExportStatusQueued}
	worker := NewExportWorker(repo, exportStub{err: errors.New("boom")}, nil, 2, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusQueued, repo.jobs["job-1"].Status)
	assert.Equal(t, 0, repo.jobs["job-1"].Progress)
}

func TestExportWorkerHandleFailsOnFinalAttempt(t *testing.T) {
	repo := newExportRepoStub()
	repo.jobs["job-1"] = &models.ExportJob{ID: "job-1", Dataset: models.ExportDatasetDates, Status: models.ExportStatusQueued}
	worker := NewExportWorker(repo, exportStub{err: errors.New("boom")}, nil, 2, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 2})
	require.Error(t, err)
	job := repo.jobs["job-1"]
	assert.Equal(t, models.ExportStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "boom", *job.ErrorMessage)
}
