package dto

import "github.com/noah-isme/sma-attendance-scoring/internal/models"

// ExportRequest captures the POST /exports payload.
type ExportRequest struct {
	Dataset  models.ExportDataset `json:"dataset" validate:"required,oneof=scorecards dates hosts"`
	Format   models.ExportFormat  `json:"format" validate:"required,oneof=csv pdf"`
	CourseID string               `json:"courseId" validate:"required"`
	DateFrom *string              `json:"dateFrom,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateTo   *string              `json:"dateTo,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string               `json:"id"`
	Dataset   models.ExportDataset `json:"dataset"`
	Status    models.ExportStatus  `json:"status"`
	Progress  int                  `json:"progress"`
	ResultURL *string              `json:"resultUrl,omitempty"`
	Error     *string              `json:"error,omitempty"`
}
