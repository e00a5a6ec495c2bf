package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MarkCruse/k3y-open-sessions/internal/handler"
	"github.com/MarkCruse/k3y-open-sessions/internal/repository"
	"github.com/MarkCruse/k3y-open-sessions/internal/service"
	"github.com/MarkCruse/k3y-open-sessions/pkg/cache"
	"github.com/MarkCruse/k3y-open-sessions/pkg/config"
	"github.com/MarkCruse/k3y-open-sessions/pkg/logger"
	"github.com/MarkCruse/k3y-open-sessions/pkg/storage"
)

// app holds the wired services shared by the CLI and the HTTP server.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *service.MetricsService
	redis    *redis.Client
	settings *service.SettingsService
	slots    *service.OpenSlotService
	exports  *service.ExportService
}

func bootstrap(sourceOverride string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if sourceOverride != "" {
		switch sourceOverride {
		case config.SourceJSON, config.SourceHTML:
			cfg.Schedule.Source = sourceOverride
		default:
			return nil, nil, fmt.Errorf("unknown source %q: must be %s or %s", sourceOverride, config.SourceJSON, config.SourceHTML)
		}
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg, logr, nil
}

func newApp(cfg *config.Config, logr *zap.Logger) (*app, error) {
	metrics := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis, 5*time.Second)
		if err != nil {
			logr.Warn("redis unavailable, result cache disabled", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
		} else {
			redisClient = client
		}
	}
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Cache.TTL, logr, redisClient != nil)

	settingsStore, err := storage.NewLocalStorage(cfg.Settings.Dir)
	if err != nil {
		return nil, err
	}
	settingsRepo := repository.NewSettingsRepository(settingsStore, cfg.Settings.File, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logr,
		metrics:  metrics,
		redis:    redisClient,
		settings: service.NewSettingsService(settingsRepo, validator.New(), logr),
		slots:    service.NewOpenSlotService(newScheduleSource(cfg.Schedule, logr), cacheSvc, metrics, logr, service.OpenSlotServiceConfig{CacheTTL: cfg.Cache.TTL}),
		exports:  service.NewExportService(exportStore, service.ExportConfig{}, logr, nil, nil),
	}, nil
}

func newScheduleSource(cfg config.ScheduleConfig, logr *zap.Logger) service.ScheduleSource {
	limiter := repository.NewFetchLimiter(cfg.MinInterval)
	if cfg.Source == config.SourceHTML {
		return repository.NewScheduleHTMLRepository(cfg.HTMLURL, cfg.HTMLTimeout, limiter, logr)
	}
	return repository.NewScheduleJSONRepository(cfg.JSONURL, cfg.JSONTimeout, limiter, logr)
}

func (a *app) handlers() handler.Handlers {
	checks := map[string]handler.ReadinessCheck{}
	if a.redis != nil {
		client := a.redis
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return handler.Handlers{
		OpenSlots: handler.NewOpenSlotHandler(a.slots, a.settings, a.exports),
		Settings:  handler.NewSettingsHandler(a.settings),
		Reference: handler.NewReferenceHandler(),
		Metrics:   handler.NewMetricsHandler(a.metrics, checks),
	}
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.logger.Sync()
}
