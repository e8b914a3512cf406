package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/app"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/router"
	"github.com/pageza/recipebox/backend/internal/server"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New("info", "text").WithError(err).Fatal("Failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := config.ValidateProviders(cfg); err != nil {
		log.WithError(err).Fatal("Provider configuration is incomplete")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, app.Options{Registerer: prometheus.DefaultRegisterer})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}

	var rdb redis.Cmdable
	if a.Redis != nil {
		rdb = a.Redis
	}

	handler := router.SetupRouter(router.Dependencies{
		Config:        cfg,
		DB:            a.DB,
		Redis:         rdb,
		Auth:          a.Auth,
		Extractor:     a.Orchestrator,
		Recipes:       a.Recipes,
		ShoppingLists: a.ShoppingLists,
		Log:           log,
	})

	srv := server.New(cfg, handler, logging.Component(log, "server"))
	err = srv.Run(ctx)
	if cerr := a.Close(); cerr != nil {
		log.WithError(cerr).Warn("Failed to release resources")
	}
	if err != nil {
		log.WithError(err).Fatal("Server error")
	}
	log.Info("Server stopped")
}
