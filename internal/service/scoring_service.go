package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-attendance-scoring/internal/models"
	"github.com/noah-isme/sma-attendance-scoring/internal/scoring"
	appErrors "github.com/noah-isme/sma-attendance-scoring/pkg/errors"
)

const (
	evaluationCachePrefix  = "eval"
	evaluationCachePattern = evaluationCachePrefix + ":*"
)

type attendanceRecordSource interface {
	ListByCourse(ctx context.Context, filter models.AttendanceRecordFilter) ([]models.AttendanceRecord, error)
	CourseExists(ctx context.Context, courseID string) (bool, error)
}

type policyProvider interface {
	Current(ctx context.Context) (*models.ScoringPolicy, error)
	Validate(policy models.ScoringPolicy) error
}

type evaluationCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ScoringServiceConfig tunes evaluation caching.
type ScoringServiceConfig struct {
	CacheTTL time.Duration
}

// ScoringService fetches attendance snapshots, runs the engine and caches evaluations.
type ScoringService struct {
	records  attendanceRecordSource
	policies policyProvider
	engine   *scoring.Engine
	cache    evaluationCache
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ScoringServiceConfig
}

// NewScoringService constructs the scoring service. cache and metrics may be nil.
func NewScoringService(records attendanceRecordSource, policies policyProvider, engine *scoring.Engine, cache evaluationCache, metrics *MetricsService, logger *zap.Logger, cfg ScoringServiceConfig) *ScoringService {
	if engine == nil {
		engine = scoring.NewEngine(1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringService{
		records:  records,
		policies: policies,
		engine:   engine,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// Evaluate scores a course under the current policy. The boolean reports a cache hit.
func (s *ScoringService) Evaluate(ctx context.Context, filter models.AttendanceRecordFilter) (*models.Evaluation, bool, error) {
	if err := validateFilter(filter); err != nil {
		return nil, false, err
	}
	policy, err := s.policies.Current(ctx)
	if err != nil {
		return nil, false, err
	}

	key := evaluationCacheKey(filter, *policy)
	if s.cache != nil {
		var cached models.Evaluation
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	evaluation, err := s.run(ctx, filter, *policy, "stored")
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, evaluation, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("cache evaluation", zap.String("course_id", filter.CourseID), zap.Error(err))
		}
	}
	return evaluation, false, nil
}

// Preview scores a course under an ad-hoc policy without touching the cache.
func (s *ScoringService) Preview(ctx context.Context, filter models.AttendanceRecordFilter, policy models.ScoringPolicy) (*models.Evaluation, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if policy.LateBrackets == nil {
		policy.LateBrackets = models.DefaultLateBrackets()
	}
	if err := s.policies.Validate(policy); err != nil {
		return nil, err
	}
	return s.run(ctx, filter, policy, "preview")
}

// Scorecards returns the ranked scorecards of a course.
func (s *ScoringService) Scorecards(ctx context.Context, filter models.AttendanceRecordFilter) ([]models.StudentScorecard, bool, error) {
	evaluation, hit, err := s.Evaluate(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	return evaluation.Scorecards, hit, nil
}

// Scorecard returns one student's scorecard.
func (s *ScoringService) Scorecard(ctx context.Context, filter models.AttendanceRecordFilter, studentID string) (*models.StudentScorecard, bool, error) {
	evaluation, hit, err := s.Evaluate(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	for i := range evaluation.Scorecards {
		if evaluation.Scorecards[i].StudentID == studentID {
			card := evaluation.Scorecards[i]
			return &card, hit, nil
		}
	}
	return nil, hit, appErrors.Clone(appErrors.ErrNotFound, "student has no scorecard in this course")
}

// Dates returns the per-date aggregates of a course.
func (s *ScoringService) Dates(ctx context.Context, filter models.AttendanceRecordFilter) ([]models.DateAggregate, bool, error) {
	evaluation, hit, err := s.Evaluate(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	return evaluation.Dates, hit, nil
}

// Hosts returns the host rankings of a course.
func (s *ScoringService) Hosts(ctx context.Context, filter models.AttendanceRecordFilter) ([]models.HostRanking, bool, error) {
	evaluation, hit, err := s.Evaluate(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	return evaluation.Hosts, hit, nil
}

func (s *ScoringService) run(ctx context.Context, filter models.AttendanceRecordFilter, policy models.ScoringPolicy, mode string) (*models.Evaluation, error) {
	start := time.Now()
	records, err := s.records.ListByCourse(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}
	s.metrics.ObserveDBQuery("attendance_records", time.Since(start))

	if len(records) == 0 {
		exists, err := s.records.CourseExists(ctx, filter.CourseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
		}
		if !exists {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
	}

	start = time.Now()
	evaluation := s.engine.Evaluate(records, policy)
	s.metrics.ObserveEvaluation(mode, len(evaluation.Scorecards), time.Since(start))
	s.logger.Debug("course evaluated",
		zap.String("course_id", filter.CourseID),
		zap.String("mode", mode),
		zap.Int("records", len(records)),
		zap.Int("students", len(evaluation.Scorecards)),
		zap.Int("sessions", evaluation.TotalSessions),
	)
	return &evaluation, nil
}

func validateFilter(filter models.AttendanceRecordFilter) error {
	if strings.TrimSpace(filter.CourseID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return appErrors.Clone(appErrors.ErrValidation, "date_from must not be after date_to")
	}
	return nil
}

func evaluationCacheKey(filter models.AttendanceRecordFilter, policy models.ScoringPolicy) string {
	parts := []string{
		evaluationCachePrefix,
		strings.ReplaceAll(filter.CourseID, ":", "|"),
		formatDate(filter.DateFrom),
		formatDate(filter.DateTo),
		policyFingerprint(policy),
	}
	return strings.Join(parts, ":")
}

func policyFingerprint(policy models.ScoringPolicy) string {
	payload, err := json.Marshal(policy)
	if err != nil {
		return "default"
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:8])
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(models.DateLayout)
}
