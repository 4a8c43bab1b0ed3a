package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skill-matcher/internal/cache"
	"github.com/spigell/skill-matcher/internal/dataset"
	"github.com/spigell/skill-matcher/internal/matching"
)

func newTestViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()

	v := viper.New()
	setDefaults(v)

	if yaml != "" {
		path := filepath.Join(t.TempDir(), "skill-matcher.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())
	}

	return v
}

func TestDecodeConfigDefaults(t *testing.T) {
	config, err := decodeConfig(newTestViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, cache.DefaultScoreCacheSize, config.ScoreCacheSize)
	assert.Equal(t, 4, config.Workers)
	assert.Equal(t, ":8080", config.Server.Address)
	assert.False(t, config.Persist)
}

func TestDecodeConfigFile(t *testing.T) {
	config, err := decodeConfig(newTestViper(t, `
dataset: data.yaml
score-cache-size: 50
workers: 8
database:
  dsn-file: /run/secrets/dsn
ranking:
  minimum-score: 45
  minimum-quality: Very Good
  limit: 10
`))
	require.NoError(t, err)

	assert.Equal(t, "data.yaml", config.Dataset)
	assert.Equal(t, 50, config.ScoreCacheSize)
	assert.Equal(t, 8, config.Workers)
	assert.Equal(t, "/run/secrets/dsn", config.Database.DSNFile)
	assert.Equal(t, RankingConfig{MinimumScore: 45, MinimumQuality: "Very Good", Limit: 10}, config.Ranking)
}

func TestDecodeConfigFromEnv(t *testing.T) {
	t.Setenv("SKILL_MATCHER_SCORE_CACHE_SIZE", "25")
	t.Setenv("SKILL_MATCHER_RANKING_LIMIT", "3")

	config, err := decodeConfig(newTestViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 25, config.ScoreCacheSize)
	assert.Equal(t, 3, config.Ranking.Limit)
}

func TestDecodeConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "zero cache", yaml: "score-cache-size: 0\n"},
		{name: "too many workers", yaml: "workers: 65\n"},
		{name: "minimum score above 100", yaml: "ranking:\n  minimum-score: 101\n"},
		{name: "unknown quality", yaml: "ranking:\n  minimum-quality: Superb\n"},
		{name: "negative limit", yaml: "ranking:\n  limit: -1\n"},
		{name: "empty address", yaml: "server:\n  address: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeConfig(newTestViper(t, tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestSelectJobs(t *testing.T) {
	d, err := dataset.FromMap(map[string]any{
		"jobs": []any{
			map[string]any{"id": 1, "title": "Go Developer"},
			map[string]any{"id": 2, "title": "Designer"},
		},
	})
	require.NoError(t, err)

	all, err := selectJobs(d, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := selectJobs(d, []int64{2})
	require.NoError(t, err)
	assert.Equal(t, []matching.JobOffer{{ID: 2, Title: "Designer"}}, some)

	_, err = selectJobs(d, []int64{3})
	require.Error(t, err)
}

func TestRankingSteps(t *testing.T) {
	steps := rankingSteps(RankingConfig{MinimumScore: 50})
	require.Len(t, steps, 3)

	assert.True(t, steps[0].IsEnabled())
	assert.False(t, steps[1].IsEnabled(), "no quality floor configured")
	assert.False(t, steps[2].IsEnabled(), "no limit configured")
}

func TestResultLabel(t *testing.T) {
	score := matching.MatchingScore{JobOfferID: 12, Total: 76.5}
	assert.Equal(t, "12 Go Developer / 76.50 / Very Good", resultLabel(score, "Go Developer"))
}
