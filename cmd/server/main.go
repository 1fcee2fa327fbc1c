package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"ledger-reports/internal/config"
	"ledger-reports/internal/credits"
	"ledger-reports/internal/database"
	"ledger-reports/internal/logging"
	"ledger-reports/internal/plans"
	"ledger-reports/internal/repository"
	"ledger-reports/internal/server"
	"ledger-reports/internal/yearly"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	logger := logging.New(cfg.LogLevel)

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	db, err := database.Open(startCtx, cfg, logger)
	if err != nil {
		cancel()
		logger.WithError(err).Fatal("Failed to open database")
	}
	catalog, err := database.LoadCatalog(startCtx, db, cfg)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load dictionary catalog")
	}

	repo := repository.NewLedgerRepository(db, catalog, logger)
	today := func() time.Time { return time.Now().In(cfg.Location) }

	app := server.New(server.Deps{
		Config:      cfg,
		Logger:      logger,
		Credits:     credits.NewService(repo, today, logger),
		Ingestor:    plans.NewIngestor(repo, catalog, cfg.PlanLabels, logger),
		Performance: plans.NewPerformance(repo, catalog, logger),
		Rollup:      yearly.NewRollup(repo, catalog, logger),
		Health:      repo,
	})

	go func() {
		logger.WithFields(logrus.Fields{
			"port":   cfg.HTTPPort,
			"labels": cfg.PlanLabels.Labels(),
		}).Info("Starting server")
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			logger.WithError(err).Fatal("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}
