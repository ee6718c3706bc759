package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-attendance-scoring/internal/dto"
	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	appErrors "github.com/noah-isme/sma-attendance-scoring/pkg/errors"
	"github.com/noah-isme/sma-attendance-scoring/pkg/response"
)

type policyService interface {
	Stored(ctx context.Context) (*models.StoredScoringPolicy, error)
	Update(ctx context.Context, policy models.ScoringPolicy, actorID string) (*models.StoredScoringPolicy, error)
}

// PolicyHandler reads and replaces the scoring policy.
type PolicyHandler struct {
	policies policyService
}

// NewPolicyHandler constructs the policy handler.
func NewPolicyHandler(policies policyService) *PolicyHandler {
	return &PolicyHandler{policies: policies}
}

// Get godoc
// @Summary Current scoring policy
// @Tags Scoring
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /scoring/policy [get]
func (h *PolicyHandler) Get(c *gin.Context) {
	stored, err := h.policies.Stored(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toPolicyResponse(stored))
}

// Update godoc
// @Summary Replace the scoring policy
// @Tags Scoring
// @Accept json
// @Produce json
// @Param payload body models.ScoringPolicy true "Policy"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scoring/policy [put]
func (h *PolicyHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var policy models.ScoringPolicy
	if err := c.ShouldBindJSON(&policy); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid policy payload"))
		return
	}
	stored, err := h.policies.Update(c.Request.Context(), policy, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toPolicyResponse(stored))
}

func toPolicyResponse(stored *models.StoredScoringPolicy) dto.PolicyResponse {
	resp := dto.PolicyResponse{Policy: stored.Policy, UpdatedBy: stored.UpdatedBy}
	if !stored.UpdatedAt.IsZero() {
		updatedAt := stored.UpdatedAt.UTC().Format(time.RFC3339)
		resp.UpdatedAt = &updatedAt
		resp.Saved = true
	}
	return resp
}
