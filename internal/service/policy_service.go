package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	"github.com/noah-isme/sma-attendance-scoring/internal/scoring"
	appErrors "github.com/noah-isme/sma-attendance-scoring/pkg/errors"
)

type policyStore interface {
	Get(ctx context.Context, scope string) (*models.StoredScoringPolicy, error)
	Upsert(ctx context.Context, stored *models.StoredScoringPolicy) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// PolicyService loads and saves the scoring policy. Nothing saved means the default policy.
type PolicyService struct {
	store     policyStore
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPolicyService constructs the policy service.
func NewPolicyService(store policyStore, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *PolicyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolicyService{store: store, cache: cache, validator: validate, logger: logger}
}

// Current returns the policy evaluations should use.
func (s *PolicyService) Current(ctx context.Context) (*models.ScoringPolicy, error) {
	stored, err := s.Stored(ctx)
	if err != nil {
		return nil, err
	}
	policy := stored.Policy
	return &policy, nil
}

// Stored returns the persisted policy row, or an unsaved row holding the defaults.
func (s *PolicyService) Stored(ctx context.Context) (*models.StoredScoringPolicy, error) {
	stored, err := s.store.Get(ctx, models.DefaultPolicyScope)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.StoredScoringPolicy{Scope: models.DefaultPolicyScope, Policy: models.DefaultPolicy()}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scoring policy")
	}
	if stored.Policy.LateBrackets == nil {
		stored.Policy.LateBrackets = models.DefaultLateBrackets()
	}
	return stored, nil
}

// Validate checks struct constraints and the engine's numeric ranges.
func (s *PolicyService) Validate(policy models.ScoringPolicy) error {
	if err := s.validator.Struct(policy); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidPolicy.Code, appErrors.ErrInvalidPolicy.Status, "invalid scoring policy")
	}
	return scoring.ValidatePolicy(policy)
}

// Update validates and saves policy, then drops every cached evaluation.
func (s *PolicyService) Update(ctx context.Context, policy models.ScoringPolicy, actorID string) (*models.StoredScoringPolicy, error) {
	if err := s.Validate(policy); err != nil {
		return nil, err
	}
	stored := &models.StoredScoringPolicy{Scope: models.DefaultPolicyScope, Policy: policy}
	if actorID != "" {
		stored.UpdatedBy = &actorID
	}
	if err := s.store.Upsert(ctx, stored); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scoring policy")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, evaluationCachePattern); err != nil {
			s.logger.Warn("evaluation cache not invalidated after policy update", zap.Error(err))
		}
	}
	s.logger.Info("scoring policy updated", zap.String("actor_id", actorID))
	return stored, nil
}
