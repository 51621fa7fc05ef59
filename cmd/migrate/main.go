// Command migrate applies the cloud schema to CLOUD_DATABASE_URL.
package main

import (
	"os"

	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/log"
	"expensetracker/internal/storage/cloud"
)

func main() {
	cli.LoadEnvFile()
	cfg, err := config.Load()
	logger := cli.SetupLogger("info")
	if err != nil {
		logger.Error("Failed to read configuration", log.FieldError, err)
		os.Exit(1)
	}
	if !cfg.CloudEnabled() {
		logger.Error("CLOUD_DATABASE_URL is not set")
		os.Exit(1)
	}

	if err := cloud.RunMigrations(cfg.CloudDatabaseURL); err != nil {
		logger.Error("Migration failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Cloud schema is up to date")
}
