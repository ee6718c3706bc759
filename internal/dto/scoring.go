package dto

import "github.com/noah-isme/sma-attendance-scoring/internal/models"

// PolicyResponse is the GET/PUT /scoring/policy payload.
type PolicyResponse struct {
	Policy    models.ScoringPolicy `json:"policy"`
	UpdatedBy *string              `json:"updatedBy,omitempty"`
	UpdatedAt *string              `json:"updatedAt,omitempty"`
	Saved     bool                 `json:"saved"`
}

// EvaluationSummary is returned by the preview endpoint alongside the evaluation.
type EvaluationSummary struct {
	Students      int     `json:"students"`
	TotalSessions int     `json:"totalSessions"`
	AverageScore  float64 `json:"averageScore"`
	AverageRate   float64 `json:"averageRate"`
}

// PreviewResponse carries a full evaluation under an unsaved policy.
type PreviewResponse struct {
	Summary    EvaluationSummary    `json:"summary"`
	Evaluation models.Evaluation    `json:"evaluation"`
	Policy     models.ScoringPolicy `json:"policy"`
}
