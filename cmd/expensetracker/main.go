package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/amqp"
	"expensetracker/internal/backend"
	"expensetracker/internal/cache"
	"expensetracker/internal/cli"
	"expensetracker/internal/export/sheets"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
	"expensetracker/internal/repository"
	"expensetracker/internal/session"
	"expensetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).Create(startCtx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err)
		os.Exit(1)
	}

	loader := cache.NewLoader(cfg.CacheSize, cfg.CacheTTL, logger)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(loader)

	hostname, _ := os.Hostname()
	origin := hostname + "-" + uuid.NewString()[:8]

	repoOpts := []repository.Option{repository.WithLogger(logger)}
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, change notifications disabled", log.FieldError, err)
		} else {
			repoOpts = append(repoOpts, repository.WithPublisher(amqpClient, origin))
		}
	}
	repos := repository.New(result.Dispatcher, loader, repoOpts...)

	sessions := session.NewManager(repos, logger, session.WithScopeStore(result.Local))
	if err := sessions.Start(startCtx); err != nil {
		logger.Error("Failed to prepare local store", log.FieldError, err)
		os.Exit(1)
	}

	deps := apphttp.Deps{Repos: repos, Session: sessions, Logger: logger}
	if result.Dispatcher.CloudEnabled() {
		deps.Tokens = session.NewTokenVerifier(cfg.AuthJWTSecret)
	}
	if cfg.SheetsEnabled() {
		exporter, err := sheets.New(startCtx,
			sheets.Credentials{JSON: cfg.GoogleServiceAccountJSON, File: cfg.GoogleServiceAccountFile},
			cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets export", log.FieldError, err)
			os.Exit(1)
		}
		deps.Sheets = exporter
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	cacheManager.StartCleanup(ctx, time.Minute)
	go worker.NewRevalidator(sessions, repos, cfg.RevalidateInterval, logger).Run(ctx)
	if amqpClient != nil {
		invalidations := worker.NewInvalidationWorker(amqpClient, loader, origin, logger)
		go func() {
			if err := invalidations.Run(ctx); err != nil {
				logger.Error("Invalidation worker stopped", log.FieldError, err)
			}
		}()
	}

	logger.Info("Starting expensetracker server",
		"port", cfg.Port,
		"local_backend", cfg.LocalBackend,
		"cloud", cfg.CloudEnabled(),
		"amqp", amqpClient != nil,
		log.FieldOrigin, origin)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	cacheManager.Stop()
	if amqpClient != nil {
		amqpClient.Close()
	}
	if err := result.Cleanup(); err != nil {
		logger.Error("Failed to close storage", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
