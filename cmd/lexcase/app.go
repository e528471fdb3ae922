package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexcase/internal/config"
	logpkg "github.com/kailas-cloud/lexcase/internal/logger"
	corpusrepo "github.com/kailas-cloud/lexcase/internal/repository/corpus"
	"github.com/kailas-cloud/lexcase/internal/usecase/retrieval"
)

// core carries what every subcommand needs: configuration, a logger and the indexed corpus.
type core struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	corpus *retrieval.Service
}

// loadConfig resolves the config file from --config, --env or $ENV.
func loadConfig(flags *pflag.FlagSet) (config.Config, string, error) {
	env, _ := flags.GetString("env")
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if path, _ := flags.GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, env, nil
}

// bootstrap loads configuration, builds the logger and indexes both collections.
func bootstrap(ctx context.Context, flags *pflag.FlagSet) (*core, error) {
	cfg, env, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	corpus, err := openCorpus(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &core{env: env, cfg: cfg, logger: logger, corpus: corpus}, nil
}

func openCorpus(ctx context.Context, cfg config.Config, logger *zap.Logger) (*retrieval.Service, error) {
	store := corpusrepo.New(corpusrepo.Config{
		LawsPath:       cfg.Corpus.LawsPath,
		PrecedentsPath: cfg.Corpus.PrecedentsPath,
		SkipMalformed:  cfg.Corpus.SkipMalformed,
	}, logger)

	corpus, err := retrieval.Open(ctx, store, retrieval.Config{
		RelevanceFloor:       cfg.Retrieval.Floor(),
		LawMaxFeatures:       cfg.Retrieval.LawMaxFeatures,
		PrecedentMaxFeatures: cfg.Retrieval.PrecedentMaxFeatures,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}

	st := corpus.Stats()
	logger.Info("Corpus ready",
		zap.Int("laws", st.Laws.Documents),
		zap.Int("precedents", st.Precedents.Documents),
		zap.Float64("relevance_floor", st.RelevanceFloor),
	)
	return corpus, nil
}
