package app

import (
	"context"
	"fmt"
	"io"

	"github.com/riskibarqy/ballstats/external/balldontlie"
	"github.com/riskibarqy/ballstats/internal/config"
	"github.com/riskibarqy/ballstats/internal/interfaces/console"
	"github.com/riskibarqy/ballstats/internal/platform/cache"
	"github.com/riskibarqy/ballstats/internal/platform/logging"
	"github.com/riskibarqy/ballstats/internal/usecase"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var appTracer = otel.Tracer("ballstats/internal/app")

// Run loads players and season averages through the configured cache and
// writes progress lines followed by the top-scorer table to stdout.
func Run(ctx context.Context, cfg config.Config, stdout io.Writer, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}

	ctx, span := appTracer.Start(ctx, "ballstats.process")
	defer span.End()

	if err := run(ctx, cfg, stdout, logger); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func run(ctx context.Context, cfg config.Config, stdout io.Writer, logger *logging.Logger) error {
	store, closeStore, err := NewStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close cache store failed", "driver", cfg.CacheDriver, "error", err)
		}
	}()

	service := NewProcessService(cfg, store, stdout, logger)
	rows, err := service.Run(ctx)
	if err != nil {
		return err
	}

	if err := console.RenderTable(stdout, console.TopScorerHeaders, console.TopScorerRows(rows)); err != nil {
		return fmt.Errorf("render top scorers: %w", err)
	}
	return nil
}

// NewProcessService wires the balldontlie client into the pipeline.
func NewProcessService(cfg config.Config, store cache.Store, progress io.Writer, logger *logging.Logger) *usecase.ProcessService {
	client := balldontlie.NewClient(balldontlie.ClientConfig{
		BaseURL:            cfg.BaseURL,
		PlayersPath:        cfg.PlayersPath,
		SeasonAveragesPath: cfg.SeasonAveragesPath,
		APIKey:             cfg.APIKey,
		Timeout:            cfg.Timeout,
		RawQuery:           cfg.QueryEncoding == config.QueryEncodingRaw,
		Logger:             logger,
	})

	return usecase.NewProcessService(client, store, usecase.ProcessConfig{
		Season:         cfg.Season,
		PlayersPerPage: cfg.PlayersPerPage,
		StatsChunkSize: cfg.StatsChunkSize,
		MaxPages:       cfg.MaxPages,
		ReportLimit:    cfg.ReportLimit,
		OrphanPolicy:   usecase.OrphanPolicy(cfg.OrphanPolicy),
	}, progress, logger)
}

// NewStore opens the cache backend named by CACHE_DRIVER. The returned
// close func releases its connections.
func NewStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (cache.Store, func() error, error) {
	var (
		store     cache.Store
		target    string
		closeFunc = func() error { return nil }
	)

	switch cfg.CacheDriver {
	case config.CacheDriverMemory:
		store = cache.NewMemoryStore(0)
	case config.CacheDriverSQLite, config.CacheDriverPostgres:
		db, err := cache.OpenSQL(ctx, cfg.CacheDriver, cfg.CacheDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache target=%s: %w", redactDSN(cfg.CacheDSN), err)
		}
		target = redactDSN(cfg.CacheDSN)
		sqlStore := cache.NewSQLStore(db)
		if err := sqlStore.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("prepare cache schema: %w", err)
		}
		store = sqlStore
		closeFunc = db.Close
	case config.CacheDriverRedis:
		client, err := cache.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache target=%s: %w", redactDSN(cfg.RedisURL), err)
		}
		target = redactDSN(cfg.RedisURL)
		store = cache.NewRedisStore(client)
		closeFunc = client.Close
	default:
		return nil, nil, fmt.Errorf("%w: unsupported cache driver %q", config.ErrConfiguration, cfg.CacheDriver)
	}

	logger.InfoContext(ctx, "cache store ready", "driver", cfg.CacheDriver, "target", target, "prefix", cfg.CacheKeyPrefix)

	return cache.WithPrefix(store, cfg.CacheKeyPrefix), closeFunc, nil
}
