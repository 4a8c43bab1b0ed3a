package engine

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/skill-matcher/internal/cache"
	"github.com/spigell/skill-matcher/internal/logger"
	"github.com/spigell/skill-matcher/internal/matching"
)

// Batch scopes profile data caching to one caller-defined unit of work, for
// example all jobs matched against one profile in a single UI action.
// A Batch is safe for concurrent use; Close it when the work is done.
type Batch struct {
	ID uuid.UUID

	engine   *Engine
	profiles *cache.ProfileDataCache
	logger   *zap.Logger
}

func (e *Engine) NewBatch() *Batch {
	id := uuid.New()
	return &Batch{
		ID:       id,
		engine:   e,
		profiles: cache.NewProfileDataCache(e.loader),
		logger:   e.logger.With(zap.String(logger.FieldBatchID, id.String())),
	}
}

// CalculateMatch returns the cached score for the pair or computes and caches it.
func (b *Batch) CalculateMatch(ctx context.Context, profileID int64, job matching.JobOffer) (matching.MatchingScore, error) {
	return b.engine.calculate(ctx, b.profiles, b.logger, profileID, job)
}

// RankJobs scores every job for the profile and returns the results ordered by
// total score, best first; ties keep ascending job id order. The first error
// stops the remaining work and is returned.
func (b *Batch) RankJobs(ctx context.Context, profileID int64, jobs []matching.JobOffer) ([]matching.MatchingScore, error) {
	results := make([]matching.MatchingScore, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.engine.workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			score, err := b.CalculateMatch(gctx, profileID, job)
			if err != nil {
				return err
			}
			results[i] = score
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortByTotal(results)

	b.logger.Info("jobs ranked",
		zap.Int64(logger.FieldProfileID, profileID),
		zap.Int("jobs", len(results)),
	)

	return results, nil
}

// SortByTotal orders scores best first, breaking ties by job id.
func SortByTotal(scores []matching.MatchingScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Total != scores[j].Total {
			return scores[i].Total > scores[j].Total
		}
		return scores[i].JobOfferID < scores[j].JobOfferID
	})
}

// Profiles exposes the batch's profile data cache.
func (b *Batch) Profiles() *cache.ProfileDataCache {
	return b.profiles
}

// Close releases the memoized profile data. The batch must not be used afterwards.
func (b *Batch) Close() {
	b.profiles.Clear()
}
