package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Lirov/claim-checker/internal/cache"
	"github.com/Lirov/claim-checker/internal/evidence"
	"github.com/Lirov/claim-checker/internal/logging"
	"github.com/Lirov/claim-checker/internal/metrics"
	"github.com/Lirov/claim-checker/internal/model"
	"github.com/Lirov/claim-checker/internal/pipeline"
	"github.com/Lirov/claim-checker/internal/score"
	"github.com/Lirov/claim-checker/internal/store"
	"github.com/Lirov/claim-checker/internal/worker"
)

// app holds the wired components shared by the commands
type app struct {
	cfg      *model.Config
	logger   *zap.Logger
	store    *store.Store
	redis    *cache.RedisCache
	metrics  *metrics.Metrics
	pipeline *pipeline.Pipeline
}

// newApp wires store, cache, rate limiter, evidence gateway, scorer and
// pipeline from cfg. Close must be called when done.
func newApp(ctx context.Context, cfg *model.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(cfg.Database.Driver, cfg.Database.DSN, store.MigrateUp); err != nil {
			return nil, err
		}
	}

	a.store, err = store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		c, err = a.buildCache(ctx)
		if err != nil {
			return nil, err
		}
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	gw, err := evidence.New(cfg.Evidence, cfg.Fetch.UserAgent, c, cfg.Cache.TTL, limiter, logger)
	if err != nil {
		return nil, err
	}

	scorer, err := score.New(cfg.Scoring.Strategy)
	if err != nil {
		return nil, err
	}

	opts := pipeline.OptionsFromConfig(cfg)
	opts.Metrics = a.metrics
	opts.Resolver = pipeline.NewResolverFromConfig(cfg.Fetch, limiter)

	a.pipeline = pipeline.New(a.store, gw, scorer, logger, opts)

	logger.Debug("app ready",
		zap.String("database", a.store.Driver()),
		zap.String("provider", cfg.Evidence.Provider),
		zap.String("scorer", scorer.Name()),
		zap.Bool("cache", c != nil),
		zap.Bool("resolve_urls", cfg.Fetch.ResolveURLs),
	)
	return a, nil
}

// buildCache returns the in-process cache, layered over Redis when an
// address is configured
func (a *app) buildCache(ctx context.Context) (cache.Cache, error) {
	local := cache.NewMemoryCache(a.cfg.Cache.TTL, 10*time.Minute)
	if a.cfg.Cache.RedisAddr == "" {
		return local, nil
	}

	shared, err := cache.NewRedisCache(ctx, a.cfg.Cache.RedisAddr, a.cfg.Cache.RedisPass, a.cfg.Cache.RedisDB, a.cfg.Cache.TTL)
	if err != nil {
		return nil, err
	}
	a.redis = shared
	return cache.NewLayeredCache(local, shared), nil
}

// Close releases the store and cache connections
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// setup loads configuration and builds the logger and app
func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return a, nil
}
