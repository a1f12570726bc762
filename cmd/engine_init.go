package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/platewise/costoracle/internal/aggregate"
	"github.com/platewise/costoracle/internal/cache"
	"github.com/platewise/costoracle/internal/gather"
	"github.com/platewise/costoracle/pkg/anthropic"
	"github.com/platewise/costoracle/pkg/exa"
)

// engineEnv holds the initialized cache and engine shared by the estimate,
// batch, and serve commands.
type engineEnv struct {
	Cache  cache.Cache
	Engine *aggregate.Engine
}

// Close releases resources held by the environment.
func (e *engineEnv) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
}

// initEngine validates config, opens the cache backend, and wires the
// search and generation clients into the engine. Callers should defer
// env.Close().
func initEngine(ctx context.Context) (*engineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := initCache(ctx)
	if err != nil {
		return nil, err
	}

	exaClient := exa.NewClient(cfg.Exa.Key, exa.WithBaseURL(cfg.Exa.BaseURL))
	searcher := gather.NewExaSearcher(exaClient)

	gatherOpts := []gather.Option{
		gather.WithResultLimit(cfg.Gather.ResultLimit),
		gather.WithEscalationThreshold(cfg.Gather.EscalationThreshold),
	}
	if cfg.Gather.DomainsFile != "" {
		domains, err := gather.LoadPreferredDomains(cfg.Gather.DomainsFile)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		gatherOpts = append(gatherOpts, gather.WithDomains(domains))
		zap.L().Info("loaded preferred domains",
			zap.String("file", cfg.Gather.DomainsFile),
			zap.Int("count", len(domains)),
		)
	}
	gatherer := gather.New(searcher, gatherOpts...)

	anthropicClient := anthropic.NewClient(cfg.Anthropic.Key)

	engine := aggregate.NewEngine(c, gatherer, anthropicClient,
		aggregate.WithGenerationModel(cfg.Anthropic.Model),
		aggregate.WithGenerationMaxTokens(cfg.Anthropic.MaxTokens),
	)

	return &engineEnv{Cache: c, Engine: engine}, nil
}

// initCache opens the configured cache backend.
func initCache(ctx context.Context) (cache.Cache, error) {
	switch cfg.Cache.Driver {
	case "sqlite":
		zap.L().Debug("using sqlite cache", zap.String("path", cfg.Cache.Path))
		return cache.NewSQLite(ctx, cfg.Cache.Path)
	case "postgres":
		zap.L().Debug("using postgres cache")
		return cache.NewPostgres(ctx, cfg.Cache.DatabaseURL)
	default:
		zap.L().Debug("using file cache", zap.String("path", cfg.Cache.Path))
		return cache.NewFile(cfg.Cache.Path)
	}
}
