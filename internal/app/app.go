// Package app assembles the long-lived dependencies shared by the API
// server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/extraction"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/service"
)

// App holds the opened connections and the services built on them.
// Redis is nil when it is neither needed nor reachable.
type App struct {
	DB            *gorm.DB
	Redis         *redis.Client
	Recipes       *service.RecipeService
	ShoppingLists *service.ShoppingListService
	Auth          *service.AuthService
	Orchestrator  *extraction.Orchestrator

	closers []func() error
}

// Options switches off the parts a caller does not need.
type Options struct {
	SkipDatabase bool
	Registerer   prometheus.Registerer
}

// New opens the database, redis, the acquisition cache and the image mirror
// according to cfg and builds the extraction pipeline on top of them.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts Options) (*App, error) {
	a := &App{Auth: service.NewAuthService(cfg.JWTSecret)}

	if !opts.SkipDatabase {
		db, err := database.Open(ctx, cfg, logging.Component(log, "database"))
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		if err := database.RunMigrations(db, cfg.MigrationsDir, logging.Component(log, "migrations")); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		a.DB = db
		a.Recipes = service.NewRecipeService(db, logging.Component(log, "recipes"))
		a.ShoppingLists = service.NewShoppingListService(db, logging.Component(log, "shopping_lists"))
	}

	needRedis := cfg.Extraction.CacheBackend == "redis" || cfg.Extraction.RateLimit > 0
	if needRedis {
		client, err := database.NewRedisClient(ctx, cfg, logging.Component(log, "redis"))
		if err != nil {
			log.WithError(err).Warn("Redis unavailable; running without acquisition cache and rate limiting")
		} else {
			a.Redis = client
			a.closers = append(a.closers, client.Close)
		}
	}

	deps := extraction.Deps{}
	if a.Recipes != nil {
		deps.Store = a.Recipes
	}
	if opts.Registerer != nil {
		deps.Metrics = extraction.NewMetrics(opts.Registerer)
	}

	switch cfg.Extraction.CacheBackend {
	case "redis":
		if a.Redis != nil {
			deps.Cache = extraction.NewRedisCache(a.Redis)
		}
	case "badger":
		cache, err := extraction.OpenBadgerCache(cfg.Extraction.BadgerPath)
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Cache = cache
		a.closers = append(a.closers, cache.Close)
	}

	if cfg.Storage.MirrorImages {
		s3Config, err := config.NewS3Config(ctx, cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to configure image storage: %w", err)
		}
		deps.Mirror = service.NewImageService(s3Config, logging.Component(log, "images"))
	}

	orch, err := extraction.Build(cfg, deps, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Orchestrator = orch

	log.WithFields(logrus.Fields{
		"platforms": cfg.Extraction.EnabledPlatforms,
		"cache":     cfg.Extraction.CacheBackend,
		"mirror":    cfg.Storage.MirrorImages,
	}).Info("Extraction pipeline ready")
	return a, nil
}

// Close releases everything New opened, most recent first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
