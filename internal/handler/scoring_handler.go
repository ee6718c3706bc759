package handler

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-attendance-scoring/internal/dto"
	"github.com/noah-isme/sma-attendance-scoring/internal/middleware"
	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	appErrors "github.com/noah-isme/sma-attendance-scoring/pkg/errors"
	"github.com/noah-isme/sma-attendance-scoring/pkg/response"
)

type scoringService interface {
	Scorecards(ctx context.Context, filter models.AttendanceRecordFilter) ([]models.StudentScorecard, bool, error)
	Scorecard(ctx context.Context, filter models.AttendanceRecordFilter, studentID string) (*models.StudentScorecard, bool, error)
	Dates(ctx context.Context, filter models.AttendanceRecordFilter) ([]models.DateAggregate, bool, error)
	Hosts(ctx context.Context, filter models.AttendanceRecordFilter) ([]models.HostRanking, bool, error)
	Preview(ctx context.Context, filter models.AttendanceRecordFilter, policy models.ScoringPolicy) (*models.Evaluation, error)
}

// ScoringHandler exposes course evaluations.
type ScoringHandler struct {
	scoring scoringService
}

// NewScoringHandler constructs the scoring handler.
func NewScoringHandler(scoring scoringService) *ScoringHandler {
	return &ScoringHandler{scoring: scoring}
}

// Scorecards godoc
// @Summary Ranked student scorecards for a course
// @Tags Scoring
// @Produce json
// @Param courseId path string true "Course ID"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scoring/courses/{courseId}/scorecards [get]
func (h *ScoringHandler) Scorecards(c *gin.Context) {
	filter, err := courseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	cards, cacheHit, err := h.scoring.Scorecards(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, cards, middleware.ResponseMeta(c))
}

// Scorecard godoc
// @Summary One student's scorecard
// @Tags Scoring
// @Produce json
// @Param courseId path string true "Course ID"
// @Param studentId path string true "Student ID"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scoring/courses/{courseId}/scorecards/{studentId} [get]
func (h *ScoringHandler) Scorecard(c *gin.Context) {
	filter, err := courseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	card, cacheHit, err := h.scoring.Scorecard(c.Request.Context(), filter, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, card, middleware.ResponseMeta(c))
}

// Dates godoc
// @Summary Per-date attendance aggregates for a course
// @Tags Scoring
// @Produce json
// @Param courseId path string true "Course ID"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /scoring/courses/{courseId}/dates [get]
func (h *ScoringHandler) Dates(c *gin.Context) {
	filter, err := courseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	dates, cacheHit, err := h.scoring.Dates(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, dates, middleware.ResponseMeta(c))
}

// Hosts godoc
// @Summary Host location rankings for a course
// @Tags Scoring
// @Produce json
// @Param courseId path string true "Course ID"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /scoring/courses/{courseId}/hosts [get]
func (h *ScoringHandler) Hosts(c *gin.Context) {
	filter, err := courseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	hosts, cacheHit, err := h.scoring.Hosts(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, hosts, middleware.ResponseMeta(c))
}

// Preview godoc
// @Summary Evaluate a course under an unsaved policy
// @Tags Scoring
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param payload body models.ScoringPolicy true "Policy to preview"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scoring/courses/{courseId}/preview [post]
func (h *ScoringHandler) Preview(c *gin.Context) {
	filter, err := courseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var policy models.ScoringPolicy
	if err := c.ShouldBindJSON(&policy); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid policy payload"))
		return
	}
	evaluation, err := h.scoring.Preview(c.Request.Context(), filter, policy)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, false)
	response.JSON(c, http.StatusOK, dto.PreviewResponse{
		Summary:    summarize(*evaluation),
		Evaluation: *evaluation,
		Policy:     policy,
	}, middleware.ResponseMeta(c))
}

func summarize(evaluation models.Evaluation) dto.EvaluationSummary {
	summary := dto.EvaluationSummary{
		Students:      len(evaluation.Scorecards),
		TotalSessions: evaluation.TotalSessions,
	}
	if summary.Students == 0 {
		return summary
	}
	var scores, rates float64
	for _, card := range evaluation.Scorecards {
		scores += card.FinalWeightedScore
		rates += card.AttendanceRate
	}
	n := float64(summary.Students)
	summary.AverageScore = math.Round(scores/n*100) / 100
	summary.AverageRate = math.Round(rates/n*100) / 100
	return summary
}
