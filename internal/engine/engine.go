// Package engine coordinates the score cache, per-batch profile data and the
// scorers into a single CalculateMatch entry point.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/cache"
	"github.com/spigell/skill-matcher/internal/logger"
	"github.com/spigell/skill-matcher/internal/matching"
)

const defaultWorkers = 4

// Engine owns the long-lived score cache. Profile data is cached per Batch.
type Engine struct {
	loader  matching.ProfileLoader
	scores  *cache.ScoreCache
	logger  *zap.Logger
	now     func() time.Time
	workers int

	cacheSize int
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.WithFields(l)
	}
}

// WithClock replaces time.Now, which dates current jobs and results.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithScoreCacheSize(size int) Option {
	return func(e *Engine) {
		e.cacheSize = size
	}
}

// WithWorkers bounds how many jobs a batch scores in parallel.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func New(loader matching.ProfileLoader, opts ...Option) (*Engine, error) {
	if loader == nil {
		return nil, fmt.Errorf("profile loader is required")
	}

	e := &Engine{
		loader:    loader,
		logger:    zap.NewNop(),
		now:       time.Now,
		workers:   defaultWorkers,
		cacheSize: cache.DefaultScoreCacheSize,
	}

	for _, opt := range opts {
		opt(e)
	}

	scores, err := cache.NewScoreCache(e.cacheSize)
	if err != nil {
		return nil, err
	}
	e.scores = scores

	return e, nil
}

// CalculateMatch scores a profile against a job using a throwaway batch.
// Callers matching one profile against many jobs should open a Batch instead.
func (e *Engine) CalculateMatch(ctx context.Context, profileID int64, job matching.JobOffer) (matching.MatchingScore, error) {
	batch := e.NewBatch()
	defer batch.Close()

	return batch.CalculateMatch(ctx, profileID, job)
}

func (e *Engine) calculate(ctx context.Context, profiles *cache.ProfileDataCache, log *zap.Logger, profileID int64, job matching.JobOffer) (matching.MatchingScore, error) {
	if profileID <= 0 {
		return matching.MatchingScore{}, fmt.Errorf("%w: %d", matching.ErrInvalidProfileID, profileID)
	}
	if job.ID <= 0 {
		return matching.MatchingScore{}, fmt.Errorf("%w: id must be positive, got %d", matching.ErrInvalidJobOffer, job.ID)
	}

	log = log.With(logger.MatchFields(profileID, job.ID)...)

	if score, ok := e.scores.Get(profileID, job.ID); ok {
		log.Debug("match served from cache", zap.String(logger.FieldCache, "hit"))
		return score, nil
	}

	data, err := profiles.GetOrLoad(ctx, profileID)
	if err != nil {
		log.Warn("loading profile data failed", zap.Error(err))
		return matching.MatchingScore{}, fmt.Errorf("calculating match for profile %d and job %d: %w", profileID, job.ID, err)
	}

	now := e.now()
	score := matching.NewMatchingScore(
		profileID,
		job.ID,
		matching.Score(data, job, now),
		matching.BuildFactors(data, job, now),
		now,
	)

	e.scores.Put(profileID, job.ID, score)

	log.Debug("match calculated",
		zap.String(logger.FieldCache, "miss"),
		zap.Float64(logger.FieldTotalScore, score.Total),
		zap.String("job_title", logger.Truncate(job.Title)),
	)

	return score, nil
}

// Invalidate drops a cached result so the next call recomputes it.
func (e *Engine) Invalidate(profileID, jobID int64) bool {
	return e.scores.Remove(profileID, jobID)
}

// InvalidateProfile drops every cached result for a profile, typically after
// its skills or experiences were edited.
func (e *Engine) InvalidateProfile(profileID int64) int {
	return e.scores.RemoveProfile(profileID)
}

func (e *Engine) Purge() {
	e.scores.Purge()
}

func (e *Engine) Stats() cache.Stats {
	return e.scores.Stats()
}
