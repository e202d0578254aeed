// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	repository "github.com/formlab/motionscore/internal/adapters/repository"
	"github.com/formlab/motionscore/internal/domain/motion"
	"github.com/formlab/motionscore/internal/domain/similarity"
	"github.com/formlab/motionscore/internal/domain/types"
	"github.com/formlab/motionscore/internal/domain/weights"
	"github.com/formlab/motionscore/pkg/logger"
	"github.com/formlab/motionscore/pkg/metrics"
)

// Submission is one scoring request after transport decoding.
// Nil visibility matrices mean fully visible.
type Submission struct {
	UserID              string
	Reference           motion.Sequence
	User                motion.Sequence
	ReferenceVisibility motion.Visibility
	UserVisibility      motion.Visibility
	Difficulty          string
}

// Result is the outcome of a scored submission.
type Result struct {
	Score     float64
	BestScore float64
}

// Service orchestrates the scoring engine and the score store. The
// engine components are pure; all per-request state is local, so
// concurrent submissions need no coordination beyond the store.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	estimator *weights.Estimator
	scorer    *similarity.Scorer
	source    weights.Source

	// Configuration
	storePath        string
	historyLimit     int
	visibleThreshold float64
	cutoffRatio      float64
	epsilon          float64

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStorePath sets the SQLite DSN for the score store.
func WithStorePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.storePath = path
		}
	}
}

// WithStore injects a pre-built store, bypassing WithStorePath.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithHistoryLimit sets the default row count for history queries.
func WithHistoryLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithVisibleThreshold sets the per-frame joint visibility threshold.
func WithVisibleThreshold(t float64) Option {
	return func(s *Service) {
		if t >= 0 && t <= 1 {
			s.visibleThreshold = t
		}
	}
}

// WithCutoffRatio sets the occlusion exclusion ratio.
func WithCutoffRatio(r float64) Option {
	return func(s *Service) {
		if r >= 0 && r <= 1 {
			s.cutoffRatio = r
		}
	}
}

// WithVisibilitySource selects which capture's visibility gates weighting.
func WithVisibilitySource(src weights.Source) Option {
	return func(s *Service) {
		if src != "" {
			s.source = src
		}
	}
}

// WithEpsilon sets the similarity denominator guard.
func WithEpsilon(eps float64) Option {
	return func(s *Service) {
		if eps > 0 {
			s.epsilon = eps
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storePath:        "motionscore.db",
		historyLimit:     20,
		visibleThreshold: 0.5,
		cutoffRatio:      0.4,
		epsilon:          1e-8,
		source:           weights.SourceReference,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the scoring components and opens the score store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.estimator = weights.NewEstimator(
		weights.WithVisibleThreshold(s.visibleThreshold),
		weights.WithCutoffRatio(s.cutoffRatio),
	)
	s.scorer = similarity.NewScorer(
		similarity.WithEpsilon(s.epsilon),
	)

	if s.store == nil {
		store, err := repository.NewSQLStore(ctx, s.storePath,
			repository.WithHistoryLimit(s.historyLimit),
		)
		if err != nil {
			return err
		}
		s.store = store
		s.logger.Info(ctx, "using sqlite score store", logger.String("path", s.storePath))
	}

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Float64("visibleThreshold", s.visibleThreshold),
		logger.Float64("cutoffRatio", s.cutoffRatio),
		logger.String("visibilitySource", string(s.source)),
	)
	return nil
}

// Stop releases the score store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing score store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

// SubmitScore validates a submission, scores it, and records the result.
//
// Validation failures surface as motion/types sentinel kinds so the
// transport can map them to 400s; a failed record insert is a store
// error (500) and the score is not returned, keeping history consistent.
func (s *Service) SubmitScore(ctx context.Context, sub Submission) (Result, error) {
	start := time.Now()

	level, err := types.ParseDifficulty(sub.Difficulty)
	if err != nil {
		return Result{}, err
	}
	if err := sub.Reference.Validate(); err != nil {
		return Result{}, err
	}
	if err := sub.User.Validate(); err != nil {
		return Result{}, err
	}
	if err := motion.SameDims(sub.Reference, sub.User); err != nil {
		return Result{}, err
	}

	frames, joints := sub.Reference.Frames(), sub.Reference.Joints()
	if sub.ReferenceVisibility != nil {
		if err := sub.ReferenceVisibility.Validate(frames, joints); err != nil {
			return Result{}, err
		}
	}
	if sub.UserVisibility != nil {
		if err := sub.UserVisibility.Validate(frames, joints); err != nil {
			return Result{}, err
		}
	}
	vis := weights.Combine(s.source, sub.ReferenceVisibility, sub.UserVisibility, frames, joints)

	jointWeights, err := s.estimator.Weights(sub.Reference, vis)
	if err != nil {
		metrics.RecordScoringError()
		return Result{}, err
	}
	score, err := s.scorer.Score(sub.Reference, sub.User, jointWeights)
	if err != nil {
		metrics.RecordScoringError()
		return Result{}, err
	}
	metrics.RecordScoreComputed()
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))

	best, err := s.store.UpsertBest(ctx, sub.UserID, level, score)
	if err != nil {
		// Degraded mode: the score stands even when the best-score
		// update cannot be read; treat the fresh score as the best.
		s.logger.Warn(ctx, "best score update failed; falling back to current score",
			logger.String("userID", sub.UserID),
			logger.Error(err),
		)
		best = score
	} else if best == score {
		metrics.RecordBestScoreUpdate()
	}

	rec := types.Record{
		ID:          uuid.New().String(),
		UserID:      sub.UserID,
		Difficulty:  level,
		Score:       score,
		BestScore:   best,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.store.InsertRecord(ctx, rec); err != nil {
		return Result{}, err
	}

	s.logger.Debug(ctx, "submission scored",
		logger.String("userID", sub.UserID),
		logger.String("difficulty", string(level)),
		logger.Float64("score", score),
		logger.Float64("bestScore", best),
	)
	return Result{Score: score, BestScore: best}, nil
}

// Best returns the stored best score for a user at a difficulty level.
func (s *Service) Best(ctx context.Context, userID, difficulty string) (types.Entry, error) {
	level, err := types.ParseDifficulty(difficulty)
	if err != nil {
		return types.Entry{}, err
	}
	best, err := s.store.Best(ctx, userID, level)
	if err != nil {
		return types.Entry{}, err
	}
	return types.Entry{UserID: userID, Difficulty: level, BestScore: best}, nil
}

// History returns a user's most recent records, newest first. An empty
// difficulty spans all levels.
func (s *Service) History(ctx context.Context, userID, difficulty string, limit int) ([]types.Record, error) {
	var level types.Difficulty
	if difficulty != "" {
		var err error
		if level, err = types.ParseDifficulty(difficulty); err != nil {
			return nil, err
		}
	}
	return s.store.History(ctx, userID, level, limit)
}

// TopN returns the top n leaderboard entries for a difficulty level.
// An empty difficulty spans all levels.
func (s *Service) TopN(ctx context.Context, difficulty string, n int) ([]types.Entry, error) {
	var level types.Difficulty
	if difficulty != "" {
		var err error
		if level, err = types.ParseDifficulty(difficulty); err != nil {
			return nil, err
		}
	}
	return s.store.TopN(ctx, level, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"visibilitySource": string(s.source),
		"visibleThreshold": s.visibleThreshold,
		"cutoffRatio":      s.cutoffRatio,
	}
	if s.started {
		users := s.store.Count(context.Background())
		stats["totalUsers"] = users
		metrics.UpdateTotalUsers(users)
	}
	return stats
}
