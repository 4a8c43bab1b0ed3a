package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/logger"
	"github.com/spigell/skill-matcher/internal/matching"
	"github.com/spigell/skill-matcher/internal/ranking"
)

type matchRequest struct {
	ProfileID int64             `json:"profile_id" binding:"required,min=1"`
	Job       matching.JobOffer `json:"job" binding:"required"`
}

type rankRequest struct {
	ProfileID      int64               `json:"profile_id" binding:"required,min=1"`
	Jobs           []matching.JobOffer `json:"jobs" binding:"required,min=1,dive"`
	Limit          int                 `json:"limit" binding:"min=0"`
	MinimumScore   float64             `json:"minimum_score" binding:"min=0,max=100"`
	MinimumQuality matching.Quality    `json:"minimum_quality" binding:"omitempty,oneof=Excellent 'Very Good' Good Fair Poor"`
}

// scoreResponse is a MatchingScore plus its derived presentation fields.
type scoreResponse struct {
	matching.MatchingScore
	Band      matching.Quality   `json:"quality"`
	Breakdown matching.Breakdown `json:"breakdown"`
}

func newScoreResponse(score matching.MatchingScore) scoreResponse {
	return scoreResponse{
		MatchingScore: score,
		Band:          score.Quality(),
		Breakdown:     score.Breakdown(),
	}
}

func (server *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"cache":  server.engine.Stats(),
	})
}

func (server *Server) match(ctx *gin.Context) {
	var req matchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	score, err := server.engine.CalculateMatch(ctx.Request.Context(), req.ProfileID, req.Job)
	if err != nil {
		ctx.JSON(statusFor(err), errorResponse(err))
		return
	}

	server.persist(ctx, []matching.MatchingScore{score})

	ctx.JSON(http.StatusOK, newScoreResponse(score))
}

func (server *Server) rank(ctx *gin.Context) {
	var req rankRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	batch := server.engine.NewBatch()
	defer batch.Close()

	log := server.logger.With(zap.String(logger.FieldBatchID, batch.ID.String()))

	scores, err := batch.RankJobs(ctx.Request.Context(), req.ProfileID, req.Jobs)
	if err != nil {
		ctx.JSON(statusFor(err), errorResponse(err))
		return
	}

	server.persist(ctx, scores)

	steps := []ranking.Filter{
		ranking.NewMinimumScore(req.MinimumScore),
		ranking.NewMinimumQuality(req.MinimumQuality),
		ranking.NewLimit(req.Limit),
	}

	filtered, err := ranking.Run(ctx.Request.Context(), log, steps, scores)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	results := make([]scoreResponse, 0, len(filtered))
	for _, score := range filtered {
		results = append(results, newScoreResponse(score))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"batch_id": batch.ID.String(),
		"ranked":   len(scores),
		"results":  results,
	})
}

// clearCache drops one pair, one profile or everything, depending on which
// query parameters are present.
func (server *Server) clearCache(ctx *gin.Context) {
	profileID, hasProfile, err := int64Query(ctx, "profile_id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	jobID, hasJob, err := int64Query(ctx, "job_id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	switch {
	case hasProfile && hasJob:
		removed := 0
		if server.engine.Invalidate(profileID, jobID) {
			removed = 1
		}
		ctx.JSON(http.StatusOK, gin.H{"removed": removed})
	case hasProfile:
		ctx.JSON(http.StatusOK, gin.H{"removed": server.engine.InvalidateProfile(profileID)})
	case hasJob:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "job_id requires profile_id"})
	default:
		removed := server.engine.Stats().Size
		server.engine.Purge()
		ctx.JSON(http.StatusOK, gin.H{"removed": removed})
	}
}

func int64Query(ctx *gin.Context, key string) (int64, bool, error) {
	raw, ok := ctx.GetQuery(key)
	if !ok {
		return 0, false, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, false, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, true, nil
}

// persist saves scores when a saver is configured. Failures are logged and
// never fail the request.
func (server *Server) persist(ctx *gin.Context, scores []matching.MatchingScore) {
	if server.saver == nil || len(scores) == 0 {
		return
	}

	if err := server.saver.SaveScores(ctx.Request.Context(), scores); err != nil {
		server.logger.Warn("persisting scores failed",
			zap.Int("scores", len(scores)),
			zap.Error(err),
		)
	}
}
