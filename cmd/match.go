package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/dataset"
	applog "github.com/spigell/skill-matcher/internal/logger"
	"github.com/spigell/skill-matcher/internal/matching"
	"github.com/spigell/skill-matcher/internal/ranking"
)

const (
	PromptExit = "exit"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank the dataset's jobs for a profile",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Int64P("profile", "p", 0, "profile id to match (required)")
	matchCmd.Flags().Int64SliceP("job", "J", nil, "only match these job ids. Default is every job in the dataset")
	matchCmd.Flags().BoolP("interactive", "i", false, "pick results to show their score breakdown")
	matchCmd.Flags().Float64("minimum-score", 0, "drop results below this total score")
	matchCmd.Flags().Int("limit", 0, "keep at most this many results. 0 keeps all")
	matchCmd.Flags().String("minimum-quality", "", "drop results below this quality band")

	matchCmd.MarkFlagRequired("profile")

	viper.BindPFlag("ranking.minimum-score", matchCmd.Flags().Lookup("minimum-score"))
	viper.BindPFlag("ranking.limit", matchCmd.Flags().Lookup("limit"))
	viper.BindPFlag("ranking.minimum-quality", matchCmd.Flags().Lookup("minimum-quality"))
}

func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := applog.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the skill-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	profileID, _ := cmd.Flags().GetInt64("profile")
	jobIDs, _ := cmd.Flags().GetInt64Slice("job")

	src, err := openSources(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening data sources", zap.Error(err))
	}
	defer src.Close()

	if src.dataset == nil {
		logger.Fatal("a dataset is required to read jobs from", zap.String("hint", "set --dataset or the 'dataset' key"))
	}

	jobs, err := selectJobs(src.dataset, jobIDs)
	if err != nil {
		logger.Fatal("selecting jobs", zap.Error(err))
	}

	if len(jobs) == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs found"))
		return
	}

	eng, err := newEngine(config, src.loader, logger)
	if err != nil {
		logger.Fatal("starting engine", zap.Error(err))
	}

	batch := eng.NewBatch()
	defer batch.Close()

	scores, err := batch.RankJobs(ctx, profileID, jobs)
	if err != nil {
		logger.Fatal("ranking jobs", zap.Error(err))
	}

	if config.Persist {
		if err := src.store.SaveScores(ctx, scores); err != nil {
			logger.Fatal("persisting scores", zap.Error(err))
		}
		logger.Info("scores persisted", zap.Int("count", len(scores)))
	}

	steps := rankingSteps(config.Ranking)
	for _, status := range ranking.Describe(steps) {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	results, err := ranking.Run(ctx, logger, steps, scores)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if len(results) == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs left after filters"))
		return
	}

	titles := jobTitles(jobs)
	for i, score := range results {
		logger.Info("job matched",
			zap.Int("rank", i+1),
			zap.Int64(applog.FieldJobID, score.JobOfferID),
			zap.String("title", applog.Truncate(titles[score.JobOfferID])),
			zap.Float64(applog.FieldTotalScore, score.Total),
			zap.String("quality", string(score.Quality())),
		)
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		if err := showBreakdowns(logger, results, titles); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func rankingSteps(cfg RankingConfig) []ranking.Filter {
	return []ranking.Filter{
		ranking.NewMinimumScore(cfg.MinimumScore),
		ranking.NewMinimumQuality(matching.Quality(cfg.MinimumQuality)),
		ranking.NewLimit(cfg.Limit),
	}
}

// selectJobs returns the requested jobs, or every job when ids is empty.
func selectJobs(d *dataset.Dataset, ids []int64) ([]matching.JobOffer, error) {
	if len(ids) == 0 {
		return d.Jobs(), nil
	}

	jobs := make([]matching.JobOffer, 0, len(ids))
	for _, id := range ids {
		job, ok := d.Job(id)
		if !ok {
			return nil, fmt.Errorf("there is no such job id %d", id)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func jobTitles(jobs []matching.JobOffer) map[int64]string {
	titles := make(map[int64]string, len(jobs))
	for _, job := range jobs {
		titles[job.ID] = job.Title
	}
	return titles
}

func resultLabel(score matching.MatchingScore, title string) string {
	return fmt.Sprintf("%d %s / %.2f / %s", score.JobOfferID, title, score.Total, score.Quality())
}

func showBreakdowns(logger *zap.Logger, results []matching.MatchingScore, titles map[int64]string) error {
	byID := make(map[int64]matching.MatchingScore, len(results))
	items := make([]string, 0, len(results)+1)
	for _, score := range results {
		byID[score.JobOfferID] = score
		items = append(items, resultLabel(score, titles[score.JobOfferID]))
	}

	for {
		resultPrompt := promptui.Select{
			Label: "Choose a job to see its breakdown and press ENTER",
			Items: append(items, PromptExit),
		}

		_, selected, err := resultPrompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		if selected == PromptExit {
			return nil
		}

		jobID, err := strconv.ParseInt(strings.Split(selected, " ")[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing job id from %q: %w", selected, err)
		}

		score := byID[jobID]
		pretty, _ := json.MarshalIndent(struct {
			Breakdown matching.Breakdown `json:"breakdown"`
			Factors   matching.Factors   `json:"factors"`
		}{score.Breakdown(), score.Factors}, "", "  ")

		logger.Info(string(pretty), zap.Int64(applog.FieldJobID, jobID))
	}
}
