package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
)

// ScoringPolicyRepository persists scoring policies as JSONB keyed by scope.
type ScoringPolicyRepository struct {
	db *sqlx.DB
}

// NewScoringPolicyRepository constructs the repository.
func NewScoringPolicyRepository(db *sqlx.DB) *ScoringPolicyRepository {
	return &ScoringPolicyRepository{db: db}
}

// Get fetches the stored policy for a scope. The wrapped error matches sql.ErrNoRows when
// nothing has been saved yet.
func (r *ScoringPolicyRepository) Get(ctx context.Context, scope string) (*models.StoredScoringPolicy, error) {
	const query = `SELECT scope, policy, updated_by, updated_at FROM scoring_policies WHERE scope = $1`
	var stored models.StoredScoringPolicy
	if err := r.db.GetContext(ctx, &stored, query, scope); err != nil {
		return nil, fmt.Errorf("get scoring policy: %w", err)
	}
	return &stored, nil
}

// Upsert inserts or replaces the policy for its scope.
func (r *ScoringPolicyRepository) Upsert(ctx context.Context, stored *models.StoredScoringPolicy) error {
	const query = `INSERT INTO scoring_policies (scope, policy, updated_by, updated_at)
VALUES (:scope, :policy, :updated_by, :updated_at)
ON CONFLICT (scope)
DO UPDATE SET policy = EXCLUDED.policy, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if stored.Scope == "" {
		stored.Scope = models.DefaultPolicyScope
	}
	stored.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, stored); err != nil {
		return fmt.Errorf("upsert scoring policy: %w", err)
	}
	return nil
}
