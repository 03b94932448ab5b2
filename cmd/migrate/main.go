package main

import (
	"log"

	"github.com/legalcms/backend/internal/config"
	"github.com/legalcms/backend/internal/db"
	"github.com/legalcms/backend/internal/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.LogLevel, cfg.LogFile)

	gdb, err := db.Connect(cfg.Database, cfg.LogLevel)
	if err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}

	logger.Info("Running database migrations...", nil)
	if err := db.AutoMigrate(gdb); err != nil {
		logger.Fatal("Migrations failed", map[string]interface{}{"error": err.Error()})
	}
	logger.Info("Database migrations completed successfully", nil)
}
