package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/dataset"
	"github.com/spigell/skill-matcher/internal/engine"
	"github.com/spigell/skill-matcher/internal/matching"
	"github.com/spigell/skill-matcher/internal/secrets"
	"github.com/spigell/skill-matcher/internal/storage/postgres"
)

// sources holds where profiles and jobs come from. Profiles are read from
// the database when one is configured, otherwise from the dataset.
type sources struct {
	loader  matching.ProfileLoader
	dataset *dataset.Dataset
	store   *postgres.Store
}

func openSources(ctx context.Context, config *Config, logger *zap.Logger) (*sources, error) {
	s := &sources{}

	if config.Dataset != "" {
		d, err := dataset.Load(config.Dataset)
		if err != nil {
			return nil, err
		}
		s.dataset = d
		s.loader = d

		logger.Info("dataset loaded",
			zap.String("path", config.Dataset),
			zap.Int("profiles", len(d.ProfileIDs())),
			zap.Int("jobs", len(d.Jobs())),
		)
	}

	dsn, err := resolveDSN(config)
	switch {
	case errors.Is(err, secrets.ErrNotConfigured):
	case err != nil:
		return nil, err
	default:
		store, err := postgres.Connect(ctx, dsn)
		if err != nil {
			return nil, err
		}
		s.store = store
		s.loader = store

		logger.Info("profiles are read from the database")
	}

	if s.loader == nil {
		return nil, errors.New("either a dataset or a database must be configured")
	}

	if config.Persist && s.store == nil {
		s.Close()
		return nil, errors.New("persist requires a database")
	}

	return s, nil
}

func (s *sources) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

func resolveDSN(config *Config) (string, error) {
	return secrets.Load(secrets.Source{
		Name:  "database dsn",
		File:  config.Database.DSNFile,
		Value: config.Database.DSN,
		Env:   databaseURLEnv,
	})
}

func newEngine(config *Config, loader matching.ProfileLoader, logger *zap.Logger) (*engine.Engine, error) {
	eng, err := engine.New(loader,
		engine.WithLogger(logger),
		engine.WithScoreCacheSize(config.ScoreCacheSize),
		engine.WithWorkers(config.Workers),
	)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return eng, nil
}
